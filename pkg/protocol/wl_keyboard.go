package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlKeyboard relays keymap/key/modifiers verbatim; enter/leave carry a
// surface reference that must be translated like any other object
// argument, which is the only reason this proxy looks past capabilities().
type WlKeyboard struct {
	core *object.Core
}

type WlKeyboardHandler interface {
	HandleRelease(k *WlKeyboard) *object.Error
	HandleKeymap(k *WlKeyboard, format uint32, fd int, size uint32) *object.Error
	HandleEnter(k *WlKeyboard, serial uint32, surface *WlSurface, keys []byte) *object.Error
	HandleLeave(k *WlKeyboard, serial uint32, surface *WlSurface) *object.Error
	HandleKey(k *WlKeyboard, serial, time, key, state uint32) *object.Error
	HandleModifiers(k *WlKeyboard, serial, modsDepressed, modsLatched, modsLocked, group uint32) *object.Error
	HandleRepeatInfo(k *WlKeyboard, rate, delay int32) *object.Error
}

func NewWlKeyboard(version uint32, destroyed func() bool) *WlKeyboard {
	return &WlKeyboard{core: object.NewCore(object.InterfaceWlKeyboard, version, destroyed)}
}

func (k *WlKeyboard) Core() *object.Core          { return k.core }
func (k *WlKeyboard) Interface() object.Interface { return object.InterfaceWlKeyboard }

func (k *WlKeyboard) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // release
		if err := checkTrailing(args); err != nil {
			return err
		}
		k.core.HandleClientDestroy()
		k.core.HandleServerDestroy()
		if h, ok := object.HandlerAs[WlKeyboardHandler](k.core.Handler); ok {
			guard, berr := k.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleRelease(k)
		}
		return k.forwardRelease()
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (k *WlKeyboard) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // keymap
		format, err := args.Uint32("format")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		fd, err := args.Fd("fd", fdr)
		if err != nil {
			return wireErrToObjectErr(err)
		}
		size, err := args.Uint32("size")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlKeyboardHandler](k.core.Handler); ok {
			guard, berr := k.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleKeymap(k, format, fd, size)
		}
		return k.forwardKeymap(format, fd, size)
	case 1: // enter
		serial, err := args.Uint32("serial")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceID, err := args.Object("surface")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		keys, err := args.Array("keys")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		var surface *WlSurface
		if surfaceID != 0 {
			obj, lerr := lookupTarget(k.core.ServerEndpoint(), surfaceID, clientID)
			if lerr != nil {
				return lerr
			}
			sf, ok := obj.(*WlSurface)
			if !ok {
				return &object.Error{Kind: object.ErrWrongObjectType, Arg: "surface", Got: obj.Interface().String(), Want: object.InterfaceWlSurface.String()}
			}
			surface = sf
		}
		if h, ok := object.HandlerAs[WlKeyboardHandler](k.core.Handler); ok {
			guard, berr := k.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleEnter(k, serial, surface, keys)
		}
		return k.forwardEnter(serial, surface, keys)
	case 2: // leave
		serial, err := args.Uint32("serial")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceID, err := args.Object("surface")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		var surface *WlSurface
		if surfaceID != 0 {
			obj, lerr := lookupTarget(k.core.ServerEndpoint(), surfaceID, clientID)
			if lerr != nil {
				return lerr
			}
			sf, ok := obj.(*WlSurface)
			if !ok {
				return &object.Error{Kind: object.ErrWrongObjectType, Arg: "surface", Got: obj.Interface().String(), Want: object.InterfaceWlSurface.String()}
			}
			surface = sf
		}
		if h, ok := object.HandlerAs[WlKeyboardHandler](k.core.Handler); ok {
			guard, berr := k.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleLeave(k, serial, surface)
		}
		return k.forwardLeave(serial, surface)
	case 3: // key
		serial, err := args.Uint32("serial")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		time, err := args.Uint32("time")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		key, err := args.Uint32("key")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		state, err := args.Uint32("state")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlKeyboardHandler](k.core.Handler); ok {
			guard, berr := k.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleKey(k, serial, time, key, state)
		}
		return k.forwardKey(serial, time, key, state)
	case 4: // modifiers
		serial, err := args.Uint32("serial")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		modsDepressed, err := args.Uint32("mods_depressed")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		modsLatched, err := args.Uint32("mods_latched")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		modsLocked, err := args.Uint32("mods_locked")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		group, err := args.Uint32("group")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlKeyboardHandler](k.core.Handler); ok {
			guard, berr := k.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleModifiers(k, serial, modsDepressed, modsLatched, modsLocked, group)
		}
		return k.forwardModifiers(serial, modsDepressed, modsLatched, modsLocked, group)
	case 5: // repeat_info
		rate, err := args.Int32("rate")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		delay, err := args.Int32("delay")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlKeyboardHandler](k.core.Handler); ok {
			guard, berr := k.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleRepeatInfo(k, rate, delay)
		}
		return k.forwardRepeatInfo(rate, delay)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (k *WlKeyboard) forwardRelease() *object.Error {
	sid, err := serverIDOf(k, "keyboard")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 0)
	data, fds := w.Finish()
	k.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (k *WlKeyboard) forwardKeymap(format uint32, fd int, size uint32) *object.Error {
	cid, err := clientIDOf(k, "keyboard", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutUint32(format)
	w.PutFd(fd)
	w.PutUint32(size)
	data, fds := w.Finish()
	k.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (k *WlKeyboard) forwardEnter(serial uint32, surface *WlSurface, keys []byte) *object.Error {
	cid, err := clientIDOf(k, "keyboard", 0)
	if err != nil {
		return err
	}
	var surfaceCID uint32
	if surface != nil {
		id, serr := clientIDOf(surface, "surface", 0)
		if serr != nil {
			return serr
		}
		surfaceCID = id
	}
	w := wire.NewMessage(cid, 1)
	w.PutUint32(serial)
	w.PutObject(surfaceCID)
	w.PutArray(keys)
	data, fds := w.Finish()
	k.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (k *WlKeyboard) forwardLeave(serial uint32, surface *WlSurface) *object.Error {
	cid, err := clientIDOf(k, "keyboard", 0)
	if err != nil {
		return err
	}
	var surfaceCID uint32
	if surface != nil {
		id, serr := clientIDOf(surface, "surface", 0)
		if serr != nil {
			return serr
		}
		surfaceCID = id
	}
	w := wire.NewMessage(cid, 2)
	w.PutUint32(serial)
	w.PutObject(surfaceCID)
	data, fds := w.Finish()
	k.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (k *WlKeyboard) forwardKey(serial, time, key, state uint32) *object.Error {
	cid, err := clientIDOf(k, "keyboard", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 3)
	w.PutUint32(serial)
	w.PutUint32(time)
	w.PutUint32(key)
	w.PutUint32(state)
	data, fds := w.Finish()
	k.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (k *WlKeyboard) forwardModifiers(serial, modsDepressed, modsLatched, modsLocked, group uint32) *object.Error {
	cid, err := clientIDOf(k, "keyboard", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 4)
	w.PutUint32(serial)
	w.PutUint32(modsDepressed)
	w.PutUint32(modsLatched)
	w.PutUint32(modsLocked)
	w.PutUint32(group)
	data, fds := w.Finish()
	k.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (k *WlKeyboard) forwardRepeatInfo(rate, delay int32) *object.Error {
	cid, err := clientIDOf(k, "keyboard", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 5)
	w.PutInt32(rate)
	w.PutInt32(delay)
	data, fds := w.Finish()
	k.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

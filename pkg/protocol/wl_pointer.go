package protocol

import (
	"wlproxy/pkg/fixed"
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlPointer mirrors WlKeyboard's shape: enter, leave and set_cursor are the
// only three messages naming a surface, everything else (motion/button/
// axis/frame) is pure passthrough.
type WlPointer struct {
	core *object.Core
}

type WlPointerHandler interface {
	HandleSetCursor(p *WlPointer, serial uint32, surface *WlSurface, hotspotX, hotspotY int32) *object.Error
	HandleRelease(p *WlPointer) *object.Error
	HandleEnter(p *WlPointer, serial uint32, surface *WlSurface, surfaceX, surfaceY fixed.Fixed) *object.Error
	HandleLeave(p *WlPointer, serial uint32, surface *WlSurface) *object.Error
	HandleMotion(p *WlPointer, time uint32, surfaceX, surfaceY fixed.Fixed) *object.Error
	HandleButton(p *WlPointer, serial, time, button, state uint32) *object.Error
	HandleAxis(p *WlPointer, time, axis uint32, value fixed.Fixed) *object.Error
	HandleFrame(p *WlPointer) *object.Error
}

func NewWlPointer(version uint32, destroyed func() bool) *WlPointer {
	return &WlPointer{core: object.NewCore(object.InterfaceWlPointer, version, destroyed)}
}

func (p *WlPointer) Core() *object.Core          { return p.core }
func (p *WlPointer) Interface() object.Interface { return object.InterfaceWlPointer }

func (p *WlPointer) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // set_cursor
		serial, err := args.Uint32("serial")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceID, err := args.Object("surface")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		hotspotX, err := args.Int32("hotspot_x")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		hotspotY, err := args.Int32("hotspot_y")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		var surface *WlSurface
		if surfaceID != 0 {
			obj, lerr := lookupTarget(p.core.ClientEndpoint(), surfaceID, clientID)
			if lerr != nil {
				return lerr
			}
			sf, ok := obj.(*WlSurface)
			if !ok {
				return &object.Error{Kind: object.ErrWrongObjectType, Arg: "surface", Got: obj.Interface().String(), Want: object.InterfaceWlSurface.String()}
			}
			surface = sf
		}
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleSetCursor(p, serial, surface, hotspotX, hotspotY)
		}
		return p.forwardSetCursor(serial, surface, hotspotX, hotspotY)
	case 1: // release
		if err := checkTrailing(args); err != nil {
			return err
		}
		p.core.HandleClientDestroy()
		p.core.HandleServerDestroy()
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleRelease(p)
		}
		return p.forwardRelease()
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (p *WlPointer) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // enter
		serial, err := args.Uint32("serial")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceID, err := args.Object("surface")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceX, err := args.Fixed("surface_x")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceY, err := args.Fixed("surface_y")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		var surface *WlSurface
		if surfaceID != 0 {
			obj, lerr := lookupTarget(p.core.ServerEndpoint(), surfaceID, clientID)
			if lerr != nil {
				return lerr
			}
			sf, ok := obj.(*WlSurface)
			if !ok {
				return &object.Error{Kind: object.ErrWrongObjectType, Arg: "surface", Got: obj.Interface().String(), Want: object.InterfaceWlSurface.String()}
			}
			surface = sf
		}
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleEnter(p, serial, surface, surfaceX, surfaceY)
		}
		return p.forwardEnter(serial, surface, surfaceX, surfaceY)
	case 1: // leave
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
			obj, lerr := lookupTarget(p.core.ServerEndpoint(), surfaceID, clientID)
			if lerr != nil {
				return lerr
			}
			sf, ok := obj.(*WlSurface)
			if !ok {
				return &object.Error{Kind: object.ErrWrongObjectType, Arg: "surface", Got: obj.Interface().String(), Want: object.InterfaceWlSurface.String()}
			}
			surface = sf
		}
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleLeave(p, serial, surface)
		}
		return p.forwardLeave(serial, surface)
	case 2: // motion
		time, err := args.Uint32("time")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceX, err := args.Fixed("surface_x")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		surfaceY, err := args.Fixed("surface_y")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleMotion(p, time, surfaceX, surfaceY)
		}
		return p.forwardMotion(time, surfaceX, surfaceY)
	case 3: // button
		serial, err := args.Uint32("serial")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		time, err := args.Uint32("time")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		button, err := args.Uint32("button")
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
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleButton(p, serial, time, button, state)
		}
		return p.forwardButton(serial, time, button, state)
	case 4: // axis
		time, err := args.Uint32("time")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		axis, err := args.Uint32("axis")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		value, err := args.Fixed("value")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleAxis(p, time, axis, value)
		}
		return p.forwardAxis(time, axis, value)
	case 5: // frame
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlPointerHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleFrame(p)
		}
		return p.forwardFrame()
	default:
		// axis_source/axis_stop/axis_discrete/axis_value120 carry no
		// object references and nothing in this build inspects them.
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (p *WlPointer) forwardSetCursor(serial uint32, surface *WlSurface, hotspotX, hotspotY int32) *object.Error {
	sid, err := serverIDOf(p, "pointer")
	if err != nil {
		return err
	}
	var surfaceSID uint32
	if surface != nil {
		id, serr := serverIDOf(surface, "surface")
		if serr != nil {
			return serr
		}
		surfaceSID = id
	}
	w := wire.NewMessage(sid, 0)
	w.PutUint32(serial)
	w.PutObject(surfaceSID)
	w.PutInt32(hotspotX)
	w.PutInt32(hotspotY)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlPointer) forwardRelease() *object.Error {
	sid, err := serverIDOf(p, "pointer")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 1)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlPointer) forwardEnter(serial uint32, surface *WlSurface, surfaceX, surfaceY fixed.Fixed) *object.Error {
	cid, err := clientIDOf(p, "pointer", 0)
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
	w := wire.NewMessage(cid, 0)
	w.PutUint32(serial)
	w.PutObject(surfaceCID)
	w.PutFixed(surfaceX)
	w.PutFixed(surfaceY)
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlPointer) forwardLeave(serial uint32, surface *WlSurface) *object.Error {
	cid, err := clientIDOf(p, "pointer", 0)
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
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlPointer) forwardMotion(time uint32, surfaceX, surfaceY fixed.Fixed) *object.Error {
	cid, err := clientIDOf(p, "pointer", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 2)
	w.PutUint32(time)
	w.PutFixed(surfaceX)
	w.PutFixed(surfaceY)
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlPointer) forwardButton(serial, time, button, state uint32) *object.Error {
	cid, err := clientIDOf(p, "pointer", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 3)
	w.PutUint32(serial)
	w.PutUint32(time)
	w.PutUint32(button)
	w.PutUint32(state)
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlPointer) forwardAxis(time, axis uint32, value fixed.Fixed) *object.Error {
	cid, err := clientIDOf(p, "pointer", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 4)
	w.PutUint32(time)
	w.PutUint32(axis)
	w.PutFixed(value)
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlPointer) forwardFrame() *object.Error {
	cid, err := clientIDOf(p, "pointer", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 5)
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// ZwpLinuxBufferParamsV1 accumulates plane descriptors (add) before the
// client asks for a buffer (create/create_immed); the compositor answers
// asynchronously with created or failed. created names the server-chosen
// buffer id itself, so it is paired the event-originated way.
type ZwpLinuxBufferParamsV1 struct {
	core *object.Core
}

type ZwpLinuxBufferParamsV1Handler interface {
	HandleAdd(p *ZwpLinuxBufferParamsV1, fd int, planeIdx uint32, offset, stride, modifierHi, modifierLo uint32) *object.Error
	HandleCreate(p *ZwpLinuxBufferParamsV1, width, height int32, format, flags uint32) *object.Error
	HandleCreateImmed(p *ZwpLinuxBufferParamsV1, buffer *WlBuffer, width, height int32, format, flags uint32) *object.Error
	HandleDestroy(p *ZwpLinuxBufferParamsV1) *object.Error
	HandleCreated(p *ZwpLinuxBufferParamsV1, buffer *WlBuffer) *object.Error
	HandleFailed(p *ZwpLinuxBufferParamsV1) *object.Error
}

func NewZwpLinuxBufferParamsV1(version uint32, destroyed func() bool) *ZwpLinuxBufferParamsV1 {
	return &ZwpLinuxBufferParamsV1{core: object.NewCore(object.InterfaceZwpLinuxBufferParamsV1, version, destroyed)}
}

func (p *ZwpLinuxBufferParamsV1) Core() *object.Core          { return p.core }
func (p *ZwpLinuxBufferParamsV1) Interface() object.Interface { return object.InterfaceZwpLinuxBufferParamsV1 }

func (p *ZwpLinuxBufferParamsV1) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // destroy
		if err := checkTrailing(args); err != nil {
			return err
		}
		p.core.HandleClientDestroy()
		return p.forwardDestroy()
	case 1: // add
		fd, err := args.Fd("fd", fdr)
		if err != nil {
			return wireErrToObjectErr(err)
		}
		planeIdx, err := args.Uint32("plane_idx")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		offset, err := args.Uint32("offset")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		stride, err := args.Uint32("stride")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		modifierHi, err := args.Uint32("modifier_hi")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		modifierLo, err := args.Uint32("modifier_lo")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[ZwpLinuxBufferParamsV1Handler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleAdd(p, fd, planeIdx, offset, stride, modifierHi, modifierLo)
		}
		return p.forwardAdd(fd, planeIdx, offset, stride, modifierHi, modifierLo)
	case 2: // create
		width, err := args.Int32("width")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		height, err := args.Int32("height")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		format, err := args.Uint32("format")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		flags, err := args.Uint32("flags")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[ZwpLinuxBufferParamsV1Handler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCreate(p, width, height, format, flags)
		}
		return p.forwardCreate(width, height, format, flags)
	case 3: // create_immed
		newID, err := args.NewID("buffer_id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		width, err := args.Int32("width")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		height, err := args.Int32("height")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		format, err := args.Uint32("format")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		flags, err := args.Uint32("flags")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		buffer := NewWlBuffer(p.core.Version(), nil)
		if perr := pairNewChildFromRequest(p.core.ClientEndpoint(), p.core.ServerEndpoint(), newID, buffer); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[ZwpLinuxBufferParamsV1Handler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCreateImmed(p, buffer, width, height, format, flags)
		}
		return p.forwardCreateImmed(buffer, width, height, format, flags)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (p *ZwpLinuxBufferParamsV1) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // created
		newID, err := args.NewID("buffer")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		buffer := NewWlBuffer(p.core.Version(), nil)
		if perr := pairNewChildFromEvent(p.core.ServerEndpoint(), p.core.ClientEndpoint(), newID, buffer); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[ZwpLinuxBufferParamsV1Handler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCreated(p, buffer)
		}
		return p.forwardCreated(buffer)
	case 1: // failed
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[ZwpLinuxBufferParamsV1Handler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleFailed(p)
		}
		return p.forwardFailed()
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (p *ZwpLinuxBufferParamsV1) forwardDestroy() *object.Error {
	sid, err := serverIDOf(p, "params")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 0)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *ZwpLinuxBufferParamsV1) forwardAdd(fd int, planeIdx, offset, stride, modifierHi, modifierLo uint32) *object.Error {
	sid, err := serverIDOf(p, "params")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 1)
	w.PutFd(fd)
	w.PutUint32(planeIdx)
	w.PutUint32(offset)
	w.PutUint32(stride)
	w.PutUint32(modifierHi)
	w.PutUint32(modifierLo)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *ZwpLinuxBufferParamsV1) forwardCreate(width, height int32, format, flags uint32) *object.Error {
	sid, err := serverIDOf(p, "params")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 2)
	w.PutInt32(width)
	w.PutInt32(height)
	w.PutUint32(format)
	w.PutUint32(flags)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *ZwpLinuxBufferParamsV1) forwardCreateImmed(buffer *WlBuffer, width, height int32, format, flags uint32) *object.Error {
	sid, err := serverIDOf(p, "params")
	if err != nil {
		return err
	}
	bufSID, err := serverIDOf(buffer, "buffer_id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 3)
	w.PutObject(bufSID)
	w.PutInt32(width)
	w.PutInt32(height)
	w.PutUint32(format)
	w.PutUint32(flags)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *ZwpLinuxBufferParamsV1) forwardCreated(buffer *WlBuffer) *object.Error {
	cid, err := clientIDOf(p, "params", 0)
	if err != nil {
		return err
	}
	bufCID, err := clientIDOf(buffer, "buffer", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutObject(bufCID)
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *ZwpLinuxBufferParamsV1) forwardFailed() *object.Error {
	cid, err := clientIDOf(p, "params", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 1)
	data, fds := w.Finish()
	p.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

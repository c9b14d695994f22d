package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlShmPool hands out wl_buffer objects backed by a shared-memory region;
// this proxy never inspects pool contents, only the format word each
// buffer names.
type WlShmPool struct {
	core *object.Core
}

type WlShmPoolHandler interface {
	HandleCreateBuffer(p *WlShmPool, buffer *WlBuffer, offset, width, height, stride int32, format uint32) *object.Error
	HandleDestroy(p *WlShmPool) *object.Error
}

func NewWlShmPool(version uint32, destroyed func() bool) *WlShmPool {
	return &WlShmPool{core: object.NewCore(object.InterfaceWlShmPool, version, destroyed)}
}

func (p *WlShmPool) Core() *object.Core          { return p.core }
func (p *WlShmPool) Interface() object.Interface { return object.InterfaceWlShmPool }

func (p *WlShmPool) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // create_buffer
		newID, err := args.NewID("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		offset, err := args.Int32("offset")
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
		stride, err := args.Int32("stride")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		format, err := args.Uint32("format")
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
		if h, ok := object.HandlerAs[WlShmPoolHandler](p.core.Handler); ok {
			guard, berr := p.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCreateBuffer(p, buffer, offset, width, height, stride, format)
		}
		return p.forwardCreateBuffer(buffer, offset, width, height, stride, format)
	case 1: // destroy
		if err := checkTrailing(args); err != nil {
			return err
		}
		p.core.HandleClientDestroy()
		return p.forwardDestroy()
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (p *WlShmPool) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
}

func (p *WlShmPool) forwardCreateBuffer(buffer *WlBuffer, offset, width, height, stride int32, format uint32) *object.Error {
	poolSID, err := serverIDOf(p, "pool")
	if err != nil {
		return err
	}
	bufSID, err := serverIDOf(buffer, "id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(poolSID, 0)
	w.PutObject(bufSID)
	w.PutInt32(offset)
	w.PutInt32(width)
	w.PutInt32(height)
	w.PutInt32(stride)
	w.PutUint32(format)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (p *WlShmPool) forwardDestroy() *object.Error {
	sid, err := serverIDOf(p, "pool")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 1)
	data, fds := w.Finish()
	p.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

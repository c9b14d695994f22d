package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlSurface is a thin pass-through object: this proxy does not rewrite
// surface content, only buffer-format advertisements further up the
// compositor's stack, so attach/commit/destroy default-forward verbatim
// (modulo the usual object-id translation on the buffer argument).
type WlSurface struct {
	core *object.Core
}

type WlSurfaceHandler interface {
	HandleAttach(s *WlSurface, buffer *WlBuffer, x, y int32) *object.Error
	HandleCommit(s *WlSurface) *object.Error
	HandleDestroy(s *WlSurface) *object.Error
}

func NewWlSurface(version uint32, destroyed func() bool) *WlSurface {
	return &WlSurface{core: object.NewCore(object.InterfaceWlSurface, version, destroyed)}
}

func (s *WlSurface) Core() *object.Core          { return s.core }
func (s *WlSurface) Interface() object.Interface { return object.InterfaceWlSurface }

func (s *WlSurface) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // destroy
		if err := checkTrailing(args); err != nil {
			return err
		}
		s.core.HandleClientDestroy()
		return s.forwardDestroy()
	case 1: // attach
		bufID, err := args.Object("buffer")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		x, err := args.Int32("x")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		y, err := args.Int32("y")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		var buffer *WlBuffer
		if bufID != 0 {
			obj, lerr := lookupTarget(s.core.ClientEndpoint(), bufID, clientID)
			if lerr != nil {
				return lerr
			}
			b, ok := obj.(*WlBuffer)
			if !ok {
				return &object.Error{Kind: object.ErrWrongObjectType, Arg: "buffer", Got: obj.Interface().String(), Want: object.InterfaceWlBuffer.String()}
			}
			buffer = b
		}
		if h, ok := object.HandlerAs[WlSurfaceHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleAttach(s, buffer, x, y)
		}
		return s.forwardAttach(buffer, x, y)
	case 6: // commit
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlSurfaceHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCommit(s)
		}
		return s.forwardCommit()
	default:
		// Other real wl_surface requests (damage, frame, set_opaque_region,
		// ...) are out of scope for this proxy's inspected surface; they
		// are not wired here because nothing in this build needs to see
		// them, not because forwarding them would be wrong.
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (s *WlSurface) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	switch opcode {
	case 0: // enter
		return s.relayEvent(opcode, body)
	case 1: // leave
		return s.relayEvent(opcode, body)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

// relayEvent forwards enter/leave verbatim: both carry only an output
// object id this build does not translate (wl_output is not implemented),
// so the words are passed through untouched.
func (s *WlSurface) relayEvent(opcode uint16, body []uint32) *object.Error {
	cid, err := clientIDOf(s, "surface", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, opcode)
	for _, word := range body {
		w.PutUint32(word)
	}
	data, fds := w.Finish()
	s.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (s *WlSurface) forwardDestroy() *object.Error {
	sid, err := serverIDOf(s, "surface")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 0)
	data, fds := w.Finish()
	s.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (s *WlSurface) forwardAttach(buffer *WlBuffer, x, y int32) *object.Error {
	sid, err := serverIDOf(s, "surface")
	if err != nil {
		return err
	}
	var bufSID uint32
	if buffer != nil {
		id, berr := serverIDOf(buffer, "buffer")
		if berr != nil {
			return berr
		}
		bufSID = id
	}
	w := wire.NewMessage(sid, 1)
	w.PutObject(bufSID)
	w.PutInt32(x)
	w.PutInt32(y)
	data, fds := w.Finish()
	s.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (s *WlSurface) forwardCommit() *object.Error {
	sid, err := serverIDOf(s, "surface")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 6)
	data, fds := w.Finish()
	s.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

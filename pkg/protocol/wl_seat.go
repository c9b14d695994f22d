package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlSeat is the input-device aggregate; this proxy follows it far enough
// to hand out wl_keyboard/wl_pointer objects, needed because those two
// carry a surface-id argument (enter) that must be translated like any
// other object reference.
type WlSeat struct {
	core *object.Core
}

type WlSeatHandler interface {
	HandleGetPointer(s *WlSeat, pointer *WlPointer) *object.Error
	HandleGetKeyboard(s *WlSeat, keyboard *WlKeyboard) *object.Error
	HandleRelease(s *WlSeat) *object.Error
	HandleCapabilities(s *WlSeat, capabilities uint32) *object.Error
	HandleName(s *WlSeat, name string) *object.Error
}

func NewWlSeat(version uint32, destroyed func() bool) *WlSeat {
	return &WlSeat{core: object.NewCore(object.InterfaceWlSeat, version, destroyed)}
}

func (s *WlSeat) Core() *object.Core          { return s.core }
func (s *WlSeat) Interface() object.Interface { return object.InterfaceWlSeat }

func (s *WlSeat) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // get_pointer
		newID, err := args.NewID("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		pointer := NewWlPointer(s.core.Version(), nil)
		if perr := pairNewChildFromRequest(s.core.ClientEndpoint(), s.core.ServerEndpoint(), newID, pointer); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[WlSeatHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleGetPointer(s, pointer)
		}
		return s.forwardGetPointer(pointer)
	case 1: // get_keyboard
		newID, err := args.NewID("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		keyboard := NewWlKeyboard(s.core.Version(), nil)
		if perr := pairNewChildFromRequest(s.core.ClientEndpoint(), s.core.ServerEndpoint(), newID, keyboard); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[WlSeatHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleGetKeyboard(s, keyboard)
		}
		return s.forwardGetKeyboard(keyboard)
	case 3: // release
		if err := checkTrailing(args); err != nil {
			return err
		}
		s.core.HandleClientDestroy()
		s.core.HandleServerDestroy()
		if h, ok := object.HandlerAs[WlSeatHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleRelease(s)
		}
		return s.forwardRelease()
	default:
		// get_touch is out of scope: no handler in this build inspects
		// touch input.
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (s *WlSeat) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // capabilities
		capabilities, err := args.Uint32("capabilities")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlSeatHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCapabilities(s, capabilities)
		}
		return s.forwardCapabilities(capabilities)
	case 1: // name
		name, err := args.String("name")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlSeatHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleName(s, name)
		}
		return s.forwardName(name)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (s *WlSeat) forwardGetPointer(pointer *WlPointer) *object.Error {
	seatSID, err := serverIDOf(s, "seat")
	if err != nil {
		return err
	}
	pointerSID, err := serverIDOf(pointer, "id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(seatSID, 0)
	w.PutObject(pointerSID)
	data, fds := w.Finish()
	s.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (s *WlSeat) forwardGetKeyboard(keyboard *WlKeyboard) *object.Error {
	seatSID, err := serverIDOf(s, "seat")
	if err != nil {
		return err
	}
	keyboardSID, err := serverIDOf(keyboard, "id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(seatSID, 1)
	w.PutObject(keyboardSID)
	data, fds := w.Finish()
	s.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (s *WlSeat) forwardRelease() *object.Error {
	sid, err := serverIDOf(s, "seat")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 3)
	data, fds := w.Finish()
	s.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (s *WlSeat) forwardCapabilities(capabilities uint32) *object.Error {
	cid, err := clientIDOf(s, "seat", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutUint32(capabilities)
	data, fds := w.Finish()
	s.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (s *WlSeat) forwardName(name string) *object.Error {
	cid, err := clientIDOf(s, "seat", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 1)
	w.PutString(name)
	data, fds := w.Finish()
	s.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

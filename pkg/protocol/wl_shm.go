package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlShm advertises supported pixel formats and hands out shared-memory
// pools. Its format event is one of the three the format-filter
// application (C10) inspects.
type WlShm struct {
	core *object.Core
}

type WlShmHandler interface {
	HandleCreatePool(s *WlShm, pool *WlShmPool, fd int, size int32) *object.Error
	HandleFormat(s *WlShm, format uint32) *object.Error
}

func NewWlShm(version uint32, destroyed func() bool) *WlShm {
	return &WlShm{core: object.NewCore(object.InterfaceWlShm, version, destroyed)}
}

func (s *WlShm) Core() *object.Core          { return s.core }
func (s *WlShm) Interface() object.Interface { return object.InterfaceWlShm }

func (s *WlShm) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // create_pool
		newID, err := args.NewID("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		fd, err := args.Fd("fd", fdr)
		if err != nil {
			return wireErrToObjectErr(err)
		}
		size, err := args.Int32("size")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		pool := NewWlShmPool(s.core.Version(), nil)
		if perr := pairNewChildFromRequest(s.core.ClientEndpoint(), s.core.ServerEndpoint(), newID, pool); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[WlShmHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCreatePool(s, pool, fd, size)
		}
		return s.ForwardCreatePool(pool, fd, size)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (s *WlShm) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // format
		format, err := args.Uint32("format")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlShmHandler](s.core.Handler); ok {
			guard, berr := s.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleFormat(s, format)
		}
		return s.TrySendFormat(format)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

// TrySendFormat is the default-forward path and also what a format-filter
// handler calls after deciding an event passes its rules.
func (s *WlShm) TrySendFormat(format uint32) *object.Error {
	cid, err := clientIDOf(s, "shm", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutUint32(format)
	data, fds := w.Finish()
	s.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// ForwardCreatePool is the default-forward path for create_pool, exported
// so a format-filter handler installed for the HandleFormat hook can still
// pass every other wl_shm request through untouched.
func (s *WlShm) ForwardCreatePool(pool *WlShmPool, fd int, size int32) *object.Error {
	shmSID, err := serverIDOf(s, "shm")
	if err != nil {
		return err
	}
	poolSID, err := serverIDOf(pool, "id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(shmSID, 0)
	w.PutObject(poolSID)
	w.PutFd(fd)
	w.PutInt32(size)
	data, fds := w.Finish()
	s.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

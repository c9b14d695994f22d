package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlDrm is the legacy DRM-buffer-sharing global some compositors still
// advertise alongside (or instead of) zwp_linux_dmabuf_v1. Its format
// event is the same kind of format-filter target as wl_shm's.
type WlDrm struct {
	core *object.Core
}

type WlDrmHandler interface {
	HandleAuthenticate(d *WlDrm, id uint32) *object.Error
	HandleDevice(d *WlDrm, name string) *object.Error
	HandleFormat(d *WlDrm, format uint32) *object.Error
	HandleAuthenticated(d *WlDrm) *object.Error
	HandleCapabilities(d *WlDrm, value uint32) *object.Error
}

func NewWlDrm(version uint32, destroyed func() bool) *WlDrm {
	return &WlDrm{core: object.NewCore(object.InterfaceWlDrm, version, destroyed)}
}

func (d *WlDrm) Core() *object.Core          { return d.core }
func (d *WlDrm) Interface() object.Interface { return object.InterfaceWlDrm }

func (d *WlDrm) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // authenticate
		id, err := args.Uint32("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlDrmHandler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleAuthenticate(d, id)
		}
		return d.ForwardAuthenticate(id)
	default:
		// create_buffer/create_planar_buffer/create_prime_buffer carry no
		// format-filter-relevant state and this build has no handler that
		// needs to see them; they are not wired.
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (d *WlDrm) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // device
		name, err := args.String("name")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlDrmHandler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleDevice(d, name)
		}
		return d.TrySendDevice(name)
	case 1: // format
		format, err := args.Uint32("format")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlDrmHandler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleFormat(d, format)
		}
		return d.TrySendFormat(format)
	case 2: // authenticated
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlDrmHandler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleAuthenticated(d)
		}
		return d.ForwardAuthenticated()
	case 3: // capabilities
		value, err := args.Uint32("value")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if h, ok := object.HandlerAs[WlDrmHandler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCapabilities(d, value)
		}
		return d.ForwardCapabilities(value)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

// TrySendFormat is what the format-filter handler calls after allowing a
// format event through.
func (d *WlDrm) TrySendFormat(format uint32) *object.Error {
	cid, err := clientIDOf(d, "drm", 1)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 1)
	w.PutUint32(format)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// TrySendDevice is the default-forward path for the device event.
func (d *WlDrm) TrySendDevice(name string) *object.Error {
	cid, err := clientIDOf(d, "drm", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutString(name)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// ForwardAuthenticate is the default-forward path, exported for
// format-filter handlers that only override Format.
func (d *WlDrm) ForwardAuthenticate(id uint32) *object.Error {
	sid, err := serverIDOf(d, "drm")
	if err != nil {
		return err
	}
	w := wire.NewMessage(sid, 0)
	w.PutUint32(id)
	data, fds := w.Finish()
	d.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

// ForwardAuthenticated is the default-forward path for the authenticated event.
func (d *WlDrm) ForwardAuthenticated() *object.Error {
	cid, err := clientIDOf(d, "drm", 2)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 2)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// ForwardCapabilities is the default-forward path for the capabilities event.
func (d *WlDrm) ForwardCapabilities(value uint32) *object.Error {
	cid, err := clientIDOf(d, "drm", 3)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 3)
	w.PutUint32(value)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// ZwpLinuxDmabufV1 is the modern dmabuf-import global. Its format/modifier
// events are format-filter targets alongside wl_shm.format and
// wl_drm.format.
type ZwpLinuxDmabufV1 struct {
	core *object.Core
}

type ZwpLinuxDmabufV1Handler interface {
	HandleCreateParams(d *ZwpLinuxDmabufV1, params *ZwpLinuxBufferParamsV1) *object.Error
	HandleFormat(d *ZwpLinuxDmabufV1, format uint32) *object.Error
	HandleModifier(d *ZwpLinuxDmabufV1, format, modifierHi, modifierLo uint32) *object.Error
}

func NewZwpLinuxDmabufV1(version uint32, destroyed func() bool) *ZwpLinuxDmabufV1 {
	return &ZwpLinuxDmabufV1{core: object.NewCore(object.InterfaceZwpLinuxDmabufV1, version, destroyed)}
}

func (d *ZwpLinuxDmabufV1) Core() *object.Core          { return d.core }
func (d *ZwpLinuxDmabufV1) Interface() object.Interface { return object.InterfaceZwpLinuxDmabufV1 }

func (d *ZwpLinuxDmabufV1) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 1: // create_params
		newID, err := args.NewID("params_id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		params := NewZwpLinuxBufferParamsV1(d.core.Version(), nil)
		if perr := pairNewChildFromRequest(d.core.ClientEndpoint(), d.core.ServerEndpoint(), newID, params); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[ZwpLinuxDmabufV1Handler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCreateParams(d, params)
		}
		return d.ForwardCreateParams(params)
	default:
		// destroy and the get_default_feedback/get_surface_feedback family
		// (version-gated, feedback-object-creating) are not exercised by
		// anything this build needs to observe.
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (d *ZwpLinuxDmabufV1) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
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
		if h, ok := object.HandlerAs[ZwpLinuxDmabufV1Handler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleFormat(d, format)
		}
		return d.TrySendFormat(format)
	case 1: // modifier
		format, err := args.Uint32("format")
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
		if h, ok := object.HandlerAs[ZwpLinuxDmabufV1Handler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleModifier(d, format, modifierHi, modifierLo)
		}
		return d.TrySendModifier(format, modifierHi, modifierLo)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

// TrySendFormat is the default-forward path and also what a format-filter
// handler calls after deciding a format event passes its rules.
func (d *ZwpLinuxDmabufV1) TrySendFormat(format uint32) *object.Error {
	cid, err := clientIDOf(d, "dmabuf", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutUint32(format)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// TrySendModifier is the default-forward path and also what a format-filter
// handler calls after deciding a modifier event passes its rules.
func (d *ZwpLinuxDmabufV1) TrySendModifier(format, modifierHi, modifierLo uint32) *object.Error {
	cid, err := clientIDOf(d, "dmabuf", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 1)
	w.PutUint32(format)
	w.PutUint32(modifierHi)
	w.PutUint32(modifierLo)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// ForwardCreateParams is the default-forward path for create_params,
// exported for format-filter handlers that only override Format/Modifier.
func (d *ZwpLinuxDmabufV1) ForwardCreateParams(params *ZwpLinuxBufferParamsV1) *object.Error {
	dmabufSID, err := serverIDOf(d, "dmabuf")
	if err != nil {
		return err
	}
	paramsSID, err := serverIDOf(params, "params_id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(dmabufSID, 1)
	w.PutObject(paramsSID)
	data, fds := w.Finish()
	d.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

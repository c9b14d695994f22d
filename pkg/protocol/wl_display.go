package protocol

import (
	"wlproxy/pkg/logger"
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlDisplay is the one object every connection is guaranteed to have,
// paired under wire id 1 on both endpoints at connection setup (spec
// §4.8 step 2).
type WlDisplay struct {
	core *object.Core
}

// WlDisplayHandler lets a handler intercept sync/get_registry before the
// default forward-and-pair behavior runs.
type WlDisplayHandler interface {
	HandleSync(d *WlDisplay, callback *WlCallback) *object.Error
	HandleGetRegistry(d *WlDisplay, registry *WlRegistry) *object.Error
}

func NewWlDisplay(version uint32, destroyed func() bool) *WlDisplay {
	return &WlDisplay{core: object.NewCore(object.InterfaceWlDisplay, version, destroyed)}
}

func (d *WlDisplay) Core() *object.Core          { return d.core }
func (d *WlDisplay) Interface() object.Interface { return object.InterfaceWlDisplay }

// TrySendError forwards a protocol error event to the client, naming which
// object (by its client-side id) the compositor considered at fault.
func (d *WlDisplay) TrySendError(onObject object.Object, code uint32, message string) *object.Error {
	cid, err := clientIDOf(d, "display", 0)
	if err != nil {
		return err
	}
	onID, err := clientIDOf(onObject, "object", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutObject(onID)
	w.PutUint32(code)
	w.PutString(message)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (d *WlDisplay) SendError(onObject object.Object, code uint32, message string) {
	if err := d.TrySendError(onObject, code, message); err != nil {
		logDropped(d.Interface(), "error", err)
	}
}

// TrySendDeleteID implements the wl_display.delete_id event: the server
// endpoint has evicted id and the client endpoint may reuse it.
func (d *WlDisplay) TrySendDeleteID(id uint32) *object.Error {
	cid, err := clientIDOf(d, "display", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 1)
	w.PutUint32(id)
	data, fds := w.Finish()
	d.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (d *WlDisplay) SendDeleteID(id uint32) {
	if err := d.TrySendDeleteID(id); err != nil {
		logDropped(d.Interface(), "delete_id", err)
	}
}

func (d *WlDisplay) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	clientEP, serverEP := d.core.ClientEndpoint(), d.core.ServerEndpoint()
	switch opcode {
	case 0: // sync
		newID, err := args.NewID("callback")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		callback := NewWlCallback(d.core.Version(), nil)
		if perr := pairNewChildFromRequest(clientEP, serverEP, newID, callback); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[WlDisplayHandler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleSync(d, callback)
		}
		return d.ForwardSync(callback)
	case 1: // get_registry
		newID, err := args.NewID("registry")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		registry := NewWlRegistry(d.core.Version(), nil)
		if perr := pairNewChildFromRequest(clientEP, serverEP, newID, registry); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[WlDisplayHandler](d.core.Handler); ok {
			guard, berr := d.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleGetRegistry(d, registry)
		}
		return d.ForwardGetRegistry(registry)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (d *WlDisplay) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // error
		onObjectID, err := args.Object("object_id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		code, err := args.Uint32("code")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		message, err := args.String("message")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		onObject, lerr := lookupTarget(d.core.ServerEndpoint(), onObjectID, clientID)
		if lerr != nil {
			return lerr
		}
		return d.TrySendError(onObject, code, message)
	case 1: // delete_id
		id, err := args.Uint32("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		obj, ok := d.core.ServerEndpoint().Lookup(id)
		if !ok {
			// Objects that self-evict both endpoints immediately when torn
			// down (wl_buffer.destroy, wl_callback.done, ...) have already
			// released this id; the compositor's delete_id just confirms
			// what the proxy did locally, so there is nothing left to
			// translate.
			logger.Debug().Uint32("id", id).Msg("delete_id for an id already released locally")
			return nil
		}
		cid, cerr := clientIDOf(obj, "object", clientID)
		if cerr != nil {
			return cerr
		}
		obj.Core().DeleteID()
		return d.TrySendDeleteID(cid)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

// ForwardSync forwards the already-paired sync request upstream: it
// targets the server-side wl_display object and carries the server id the
// proxy just minted for callback as the request's new_id argument. Exported
// so a handler installed only to intercept get_registry (pkg/proxystate)
// can still pass sync through untouched.
func (d *WlDisplay) ForwardSync(callback *WlCallback) *object.Error {
	displaySID, err := serverIDOf(d, "display")
	if err != nil {
		return err
	}
	callbackSID, err := serverIDOf(callback, "callback")
	if err != nil {
		return err
	}
	w := wire.NewMessage(displaySID, 0)
	w.PutObject(callbackSID)
	data, fds := w.Finish()
	d.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

// ForwardGetRegistry is the default-forward path for get_registry, exported
// for the same reason as ForwardSync.
func (d *WlDisplay) ForwardGetRegistry(registry *WlRegistry) *object.Error {
	displaySID, err := serverIDOf(d, "display")
	if err != nil {
		return err
	}
	registrySID, err := serverIDOf(registry, "registry")
	if err != nil {
		return err
	}
	w := wire.NewMessage(displaySID, 1)
	w.PutObject(registrySID)
	data, fds := w.Finish()
	d.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

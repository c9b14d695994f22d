package protocol

import (
	"wlproxy/pkg/globalmapper"
	"wlproxy/pkg/logger"
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlRegistry is the per-connection global directory. Unlike every other
// interface here, its events are never simple passthrough: every global
// and global_remove is translated through the connection's global mapper
// (§4.7, C7) before reaching the client.
type WlRegistry struct {
	core   *object.Core
	mapper *globalmapper.Mapper

	// OnBind, if set, is called with every freshly-paired bind target
	// before the bind itself is forwarded upstream, letting the owning
	// connection install a handler (e.g. pkg/formatfilter's per-interface
	// handlers) on objects it cares about.
	OnBind func(child object.Object)
}

func NewWlRegistry(version uint32, destroyed func() bool) *WlRegistry {
	return &WlRegistry{core: object.NewCore(object.InterfaceWlRegistry, version, destroyed)}
}

// BindMapper attaches the connection's global mapper; called once, right
// after pairing, by whichever code path created this registry (spec §4.8
// wires one mapper per client connection).
func (r *WlRegistry) BindMapper(m *globalmapper.Mapper) { r.mapper = m }

func (r *WlRegistry) Core() *object.Core          { return r.core }
func (r *WlRegistry) Interface() object.Interface { return object.InterfaceWlRegistry }

// Global implements globalmapper.Registry: announce a global to the real
// client under its client-visible name.
func (r *WlRegistry) Global(name uint32, iface object.Interface, version uint32) *object.Error {
	cid, err := clientIDOf(r, "registry", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutUint32(name)
	w.PutString(iface.String())
	w.PutUint32(version)
	data, fds := w.Finish()
	r.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// GlobalRemove implements globalmapper.Registry.
func (r *WlRegistry) GlobalRemove(name uint32) *object.Error {
	cid, err := clientIDOf(r, "registry", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 1)
	w.PutUint32(name)
	data, fds := w.Finish()
	r.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

// Bind implements globalmapper.Registry: forward a real bind upstream,
// resending the interface/version/new_id triple the compositor expects.
func (r *WlRegistry) Bind(serverName uint32, obj object.Object) *object.Error {
	registrySID, err := serverIDOf(r, "registry")
	if err != nil {
		return err
	}
	objSID, err := serverIDOf(obj, "id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(registrySID, 0)
	w.PutUint32(serverName)
	w.PutString(obj.Interface().String())
	w.PutUint32(obj.Core().Version())
	w.PutObject(objSID)
	data, fds := w.Finish()
	r.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (r *WlRegistry) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // bind
		name, err := args.Uint32("name")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		ifaceName, err := args.String("interface")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		version, err := args.Uint32("version")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		newID, err := args.NewID("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		if !r.mapper.Known(name) {
			// Per spec §9's open question: binding a never-advertised
			// client name is a silent drop.
			return nil
		}
		factory, ok := Factories[ifaceName]
		if !ok {
			logger.Warn().Str("interface", ifaceName).Uint32("name", name).Msg("bind for unrecognized interface, dropping")
			return nil
		}
		clientEP, serverEP := r.core.ClientEndpoint(), r.core.ServerEndpoint()
		child := factory(version, nil)
		if perr := child.Core().SetClientID(clientEP, newID, child); perr != nil {
			return perr
		}
		if _, real := r.mapper.Resolve(name); real {
			if _, perr := child.Core().GenerateServerID(serverEP, child); perr != nil {
				return perr
			}
		}
		if r.OnBind != nil {
			r.OnBind(child)
		}
		r.mapper.ForwardBind(r, name, child)
		return nil
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (r *WlRegistry) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // global
		serverName, err := args.Uint32("name")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		ifaceName, err := args.String("interface")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		version, err := args.Uint32("version")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		iface, known := object.InterfaceByName(ifaceName)
		if !known {
			r.mapper.IgnoreGlobal(serverName)
			return nil
		}
		r.mapper.ForwardGlobal(r, serverName, iface, version)
		return nil
	case 1: // global_remove
		serverName, err := args.Uint32("name")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		r.mapper.ForwardGlobalRemove(r, serverName)
		return nil
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

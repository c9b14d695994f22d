// Package globalmapper implements the registry-global bijection described
// in spec §4.7 (C7): the proxy's own numbering of wl_registry globals shown
// to the client, kept distinct from the compositor's numbering of the same
// globals, plus synthetic globals that exist purely on the client side.
//
// The bookkeeping here is ported directly from the reference
// implementation's global_mapper module (only its test suite survived
// distillation into original_source/, so the two maps' shapes, the shared
// name counter, and every edge case below are reconstructed from the
// behavior that test suite pins down) and re-expressed with Go's nil
// pointer in place of Rust's Option<u32>.
package globalmapper

import (
	"wlproxy/pkg/logger"
	"wlproxy/pkg/object"
)

// Registry is the narrow view of the client's wl_registry object that the
// mapper emits synthetic/translated events through. pkg/protocol's
// wl_registry implementation satisfies it.
type Registry interface {
	Global(name uint32, iface object.Interface, version uint32) *object.Error
	GlobalRemove(name uint32) *object.Error
	Bind(serverName uint32, obj object.Object) *object.Error
}

// Mapper owns the client-visible global name space and its relationship to
// the compositor's own name space.
type Mapper struct {
	nextName uint32

	// serverToClient maps a compositor-assigned global name to the
	// client-visible name the proxy gave it. A present key with a nil
	// value marks a global the proxy deliberately hid from the client
	// (IgnoreGlobal); an absent key means the name is unknown.
	serverToClient map[uint32]*uint32

	// clientToServer is indexed by client-visible name; slot 0 is an
	// unused sentinel (name 0 is never allocated). A nil entry marks a
	// synthetic global with no compositor-side counterpart, so binds to
	// it are absorbed locally instead of forwarded.
	clientToServer []*uint32
}

// New returns a Mapper with no globals known yet.
func New() *Mapper {
	return &Mapper{
		nextName:       1,
		serverToClient: map[uint32]*uint32{0: nil},
		clientToServer: []*uint32{nil},
	}
}

func (m *Mapper) allocName() uint32 {
	name := m.nextName
	m.nextName++
	return name
}

// TryAddSyntheticGlobal allocates a fresh client-visible name for a global
// that exists only on the proxy's side (e.g. a synthesized wl_seat) and
// announces it to the client. The name is allocated and recorded even if
// the announcement itself fails.
func (m *Mapper) TryAddSyntheticGlobal(r Registry, iface object.Interface, version uint32) (uint32, *object.Error) {
	name := m.allocName()
	m.clientToServer = append(m.clientToServer, nil)
	if err := r.Global(name, iface, version); err != nil {
		return name, err
	}
	return name, nil
}

// AddSyntheticGlobal is TryAddSyntheticGlobal with announcement failures
// logged and swallowed; it still always returns the allocated name.
func (m *Mapper) AddSyntheticGlobal(r Registry, iface object.Interface, version uint32) uint32 {
	name, err := m.TryAddSyntheticGlobal(r, iface, version)
	if err != nil {
		logger.Warn().Err(err).Uint32("name", name).Msg("failed to announce synthetic global")
	}
	return name
}

// TryRemoveSyntheticGlobal announces removal of a previously-synthesized
// global by its client-visible name.
func (m *Mapper) TryRemoveSyntheticGlobal(r Registry, name uint32) *object.Error {
	return r.GlobalRemove(name)
}

// RemoveSyntheticGlobal is TryRemoveSyntheticGlobal with errors logged and
// swallowed.
func (m *Mapper) RemoveSyntheticGlobal(r Registry, name uint32) {
	if err := m.TryRemoveSyntheticGlobal(r, name); err != nil {
		logger.Warn().Err(err).Uint32("name", name).Msg("failed to announce synthetic global removal")
	}
}

// TryForwardGlobal allocates a fresh client-visible name for a real
// compositor global, records the bijection, and announces it to the
// client under the new name.
func (m *Mapper) TryForwardGlobal(r Registry, serverName uint32, iface object.Interface, version uint32) (uint32, *object.Error) {
	clientName := m.allocName()
	sn := serverName
	cn := clientName
	m.clientToServer = append(m.clientToServer, &sn)
	m.serverToClient[serverName] = &cn
	if err := r.Global(clientName, iface, version); err != nil {
		return clientName, err
	}
	return clientName, nil
}

// ForwardGlobal is TryForwardGlobal with announcement failures logged and
// swallowed.
func (m *Mapper) ForwardGlobal(r Registry, serverName uint32, iface object.Interface, version uint32) uint32 {
	clientName, err := m.TryForwardGlobal(r, serverName, iface, version)
	if err != nil {
		logger.Warn().Err(err).Uint32("server_name", serverName).Msg("failed to announce forwarded global")
	}
	return clientName
}

// IgnoreGlobal records serverName as deliberately hidden from the client
// (e.g. filtered out by a format-filter rule) without allocating a
// client-visible name.
func (m *Mapper) IgnoreGlobal(serverName uint32) {
	m.serverToClient[serverName] = nil
}

// TryForwardGlobalRemove translates a compositor global_remove to the
// client-visible name and announces it, or does nothing if serverName was
// never known or was ignored.
func (m *Mapper) TryForwardGlobalRemove(r Registry, serverName uint32) *object.Error {
	clientNamePtr, known := m.serverToClient[serverName]
	if !known {
		return nil
	}
	delete(m.serverToClient, serverName)
	if clientNamePtr == nil {
		return nil
	}
	return r.GlobalRemove(*clientNamePtr)
}

// ForwardGlobalRemove is TryForwardGlobalRemove with errors logged and
// swallowed.
func (m *Mapper) ForwardGlobalRemove(r Registry, serverName uint32) {
	if err := m.TryForwardGlobalRemove(r, serverName); err != nil {
		logger.Warn().Err(err).Uint32("server_name", serverName).Msg("failed to announce global removal")
	}
}

// TryForwardBind translates a client bind request's client-visible name
// back to the compositor's name and forwards it, or does nothing if
// clientName is out of range or names a synthetic global.
func (m *Mapper) TryForwardBind(r Registry, clientName uint32, obj object.Object) *object.Error {
	if int(clientName) >= len(m.clientToServer) {
		return nil
	}
	serverNamePtr := m.clientToServer[clientName]
	if serverNamePtr == nil {
		return nil
	}
	return r.Bind(*serverNamePtr, obj)
}

// ForwardBind is TryForwardBind with errors logged and swallowed.
func (m *Mapper) ForwardBind(r Registry, clientName uint32, obj object.Object) {
	if err := m.TryForwardBind(r, clientName, obj); err != nil {
		logger.Warn().Err(err).Uint32("client_name", clientName).Msg("failed to forward bind")
	}
}

// Known reports whether clientName was ever advertised to the client,
// synthetic or forwarded. A bind naming an unknown name is the client
// racing a global_remove, or misbehaving; callers drop it silently.
func (m *Mapper) Known(clientName uint32) bool {
	return int(clientName) < len(m.clientToServer) && clientName != 0
}

// Resolve returns the compositor-side name a client-visible name maps to.
// ok is false for name 0, an out-of-range name, or a synthetic global with
// no compositor counterpart.
func (m *Mapper) Resolve(clientName uint32) (uint32, bool) {
	if !m.Known(clientName) {
		return 0, false
	}
	serverNamePtr := m.clientToServer[clientName]
	if serverNamePtr == nil {
		return 0, false
	}
	return *serverNamePtr, true
}

package object

import "sync/atomic"

// Role distinguishes the client-allocated wire id range from the
// server-allocated one, per spec §3.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// ClientIDRangeStart/End and ServerIDRangeStart/End are the two disjoint id
// ranges an endpoint's object table may hold, per spec §3.
const (
	ClientIDRangeStart = 1
	ClientIDRangeEnd   = 0xFEFFFFFF
	ServerIDRangeStart = 0xFF000000
	ServerIDRangeEnd   = 0xFFFFFFFF
)

// Object is implemented by every generated-style interface type
// (WlDisplay, WlShm, ...); it is the minimal surface the core needs to
// treat any interface uniformly.
type Object interface {
	Core() *Core
	Interface() Interface
}

// Endpoint is the narrow view of an endpoint.Endpoint that object.Core
// needs: register/unregister a wire id, allocate a fresh server-range id,
// and know which role (client- or server-facing) this endpoint plays. It
// is declared here, not in package endpoint, so that object need not
// import endpoint — endpoint's concrete type satisfies this interface
// structurally.
type Endpoint interface {
	Register(id uint32, obj Object) *Error
	Unregister(id uint32)
	Lookup(id uint32) (Object, bool)
	AllocateServerID() (uint32, *Error)
	Role() Role
	QueueOutgoing(data []byte, fds []int)
}

var uniqueIDCounter uint64

func nextUniqueID() uint64 {
	return atomic.AddUint64(&uniqueIDCounter, 1)
}

// Core holds the bookkeeping shared by every protocol object: identity,
// pairing, destruction state, and forwarding gates. Every generated
// interface type embeds one.
type Core struct {
	iface   Interface
	version uint32

	clientEndpoint Endpoint
	clientObjID    uint32
	hasClientID    bool

	serverEndpoint Endpoint
	serverObjID    uint32
	hasServerID    bool

	destroyedByClient bool
	destroyedByServer bool

	// ForwardToServer and ForwardToClient gate the default handlers'
	// automatic forwarding; a handler clears one to absorb traffic in that
	// direction entirely.
	ForwardToServer bool
	ForwardToClient bool

	Handler *HandlerHolder

	uniqueID uint64
}

// NewCore creates a fresh Core for a newly-constructed object of the given
// interface/version. destroyed is consulted by the embedded HandlerHolder.
func NewCore(iface Interface, version uint32, destroyed func() bool) *Core {
	return &Core{
		iface:           iface,
		version:         version,
		ForwardToServer: true,
		ForwardToClient: true,
		Handler:         NewHandlerHolder(destroyed),
		uniqueID:        nextUniqueID(),
	}
}

func (c *Core) Interface() Interface { return c.iface }
func (c *Core) Version() uint32      { return c.version }
func (c *Core) UniqueID() uint64     { return c.uniqueID }

// ClientObjID returns this object's wire id on the client endpoint and
// whether one has been assigned.
func (c *Core) ClientObjID() (uint32, bool) { return c.clientObjID, c.hasClientID }

// ServerObjID returns this object's wire id on the server endpoint and
// whether one has been assigned.
func (c *Core) ServerObjID() (uint32, bool) { return c.serverObjID, c.hasServerID }

// ClientEndpoint returns the endpoint this object is registered on
// client-side, or nil if it has not been paired yet.
func (c *Core) ClientEndpoint() Endpoint { return c.clientEndpoint }

// ServerEndpoint returns the endpoint this object is registered on
// server-side, or nil if it has not been paired yet.
func (c *Core) ServerEndpoint() Endpoint { return c.serverEndpoint }

// DestroyedByClient/DestroyedByServer report the corresponding monotone
// destruction flags.
func (c *Core) DestroyedByClient() bool { return c.destroyedByClient }
func (c *Core) DestroyedByServer() bool { return c.destroyedByServer }

// SetClientID attaches self to the client endpoint under id, registering it
// in that endpoint's object table.
func (c *Core) SetClientID(endpoint Endpoint, id uint32, self Object) *Error {
	if c.hasClientID {
		return &Error{Kind: ErrClientAlreadySet}
	}
	if err := endpoint.Register(id, self); err != nil {
		return err
	}
	c.clientEndpoint = endpoint
	c.clientObjID = id
	c.hasClientID = true
	return nil
}

// SetServerID attaches self to the server endpoint under id, symmetric
// with SetClientID.
func (c *Core) SetServerID(endpoint Endpoint, id uint32, self Object) *Error {
	if c.hasServerID {
		return &Error{Kind: ErrClientAlreadySet}
	}
	if err := endpoint.Register(id, self); err != nil {
		return err
	}
	c.serverEndpoint = endpoint
	c.serverObjID = id
	c.hasServerID = true
	return nil
}

// GenerateClientID picks a fresh id on the client endpoint and registers
// self under it; used when the proxy itself originates a client-side new_id
// (rare — normally the client names its own new ids). The id comes from
// endpoint.AllocateServerID, i.e. the 0xFF000000.. range, because toward
// the client the proxy plays the server.
func (c *Core) GenerateClientID(endpoint Endpoint, self Object) (uint32, *Error) {
	id, err := endpoint.AllocateServerID()
	if err != nil {
		return 0, err
	}
	if err := c.SetClientID(endpoint, id, self); err != nil {
		return 0, err
	}
	return id, nil
}

// GenerateServerID picks a fresh id in the server range and registers self
// under it; used when forwarding a client request that carries a new_id
// argument the proxy must mirror server-side.
func (c *Core) GenerateServerID(endpoint Endpoint, self Object) (uint32, *Error) {
	id, err := endpoint.AllocateServerID()
	if err != nil {
		return 0, err
	}
	if err := c.SetServerID(endpoint, id, self); err != nil {
		return 0, err
	}
	return id, nil
}

// HandleClientDestroy marks this object destroyed from the client side.
// Once both sides have reported destruction the object is evicted from
// both endpoint tables and its identity retired.
func (c *Core) HandleClientDestroy() {
	c.destroyedByClient = true
	c.evictIfFullyDestroyed()
}

// HandleServerDestroy is the symmetric server-side counterpart.
func (c *Core) HandleServerDestroy() {
	c.destroyedByServer = true
	c.evictIfFullyDestroyed()
}

func (c *Core) evictIfFullyDestroyed() {
	if !c.destroyedByClient || !c.destroyedByServer {
		return
	}
	if c.hasClientID && c.clientEndpoint != nil {
		c.clientEndpoint.Unregister(c.clientObjID)
	}
	if c.hasServerID && c.serverEndpoint != nil {
		c.serverEndpoint.Unregister(c.serverObjID)
	}
}

// DeleteID releases the client-side id so the client may reuse it,
// implementing the wl_display.delete_id path (pkg/protocol's WlDisplay
// calls this once it has translated the server-side id the compositor
// named). DeleteID only performs the local bookkeeping; the caller is
// responsible for forwarding the delete_id event to the client.
func (c *Core) DeleteID() {
	if c.hasClientID && c.clientEndpoint != nil {
		c.clientEndpoint.Unregister(c.clientObjID)
		c.hasClientID = false
	}
}

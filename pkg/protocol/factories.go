package protocol

import "wlproxy/pkg/object"

// ObjectFactory builds a fresh, unpaired object of one interface at the
// given protocol version. destroyed is threaded through to the embedded
// HandlerHolder (see object.NewCore); nil is fine when no process-wide
// shutdown flag applies yet.
type ObjectFactory func(version uint32, destroyed func() bool) object.Object

// Factories is the interface-name-keyed registry spec §4.8 assigns to
// "Proxy core / State": wl_registry.bind names an interface dynamically by
// string, so resolving it to a concrete Go type has to go through a table
// rather than a switch embedded in one call site.
var Factories = map[string]ObjectFactory{
	"wl_compositor":       func(v uint32, d func() bool) object.Object { return NewWlCompositor(v, d) },
	"wl_shm":              func(v uint32, d func() bool) object.Object { return NewWlShm(v, d) },
	"wl_drm":              func(v uint32, d func() bool) object.Object { return NewWlDrm(v, d) },
	"zwp_linux_dmabuf_v1": func(v uint32, d func() bool) object.Object { return NewZwpLinuxDmabufV1(v, d) },
	"wl_seat":             func(v uint32, d func() bool) object.Object { return NewWlSeat(v, d) },
}

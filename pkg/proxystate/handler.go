package proxystate

import (
	"wlproxy/pkg/formatfilter"
	"wlproxy/pkg/globalmapper"
	"wlproxy/pkg/object"
	"wlproxy/pkg/protocol"
)

// displayHandler is installed on every connection's wl_display object. Its
// only job is to intercept get_registry so the freshly-paired wl_registry
// gets this connection's global mapper and format-filter bind hook wired in
// before anything else touches it; sync passes straight through.
type displayHandler struct {
	client *Client
	filter *formatfilter.Filter
}

var _ protocol.WlDisplayHandler = (*displayHandler)(nil)

func (h *displayHandler) HandleSync(d *protocol.WlDisplay, callback *protocol.WlCallback) *object.Error {
	return d.ForwardSync(callback)
}

func (h *displayHandler) HandleGetRegistry(d *protocol.WlDisplay, registry *protocol.WlRegistry) *object.Error {
	registry.BindMapper(globalmapper.New())
	registry.OnBind = func(child object.Object) {
		installFormatFilter(child, h.filter)
	}
	h.client.Registry = registry
	return d.ForwardGetRegistry(registry)
}

// installFormatFilter attaches a format-filter handler to a freshly-bound
// object if its interface is one of the three the reference application
// (C10) inspects; every other interface is left with no handler, so its
// decode path default-forwards verbatim.
func installFormatFilter(obj object.Object, filter *formatfilter.Filter) {
	switch v := obj.(type) {
	case *protocol.WlShm:
		_ = v.Core().Handler.Set(&formatfilter.ShmHandler{Filter: filter})
	case *protocol.WlDrm:
		_ = v.Core().Handler.Set(&formatfilter.DrmHandler{Filter: filter})
	case *protocol.ZwpLinuxDmabufV1:
		_ = v.Core().Handler.Set(&formatfilter.DmabufHandler{Filter: filter})
	}
}

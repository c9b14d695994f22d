package formatfilter

import (
	"wlproxy/pkg/logger"
	"wlproxy/pkg/object"
	"wlproxy/pkg/protocol"
)

// ShmHandler filters wl_shm.format events. wl_shm carries no modifier, so
// every format it advertises is checked against the implicit linear modifier.
type ShmHandler struct {
	Filter *Filter
}

var _ protocol.WlShmHandler = (*ShmHandler)(nil)

func (h *ShmHandler) HandleCreatePool(s *protocol.WlShm, pool *protocol.WlShmPool, fd int, size int32) *object.Error {
	return s.ForwardCreatePool(pool, fd, size)
}

func (h *ShmHandler) HandleFormat(s *protocol.WlShm, format uint32) *object.Error {
	if !h.Filter.Allowed(format, LinearModifier) {
		logger.Debug().Uint32("format", format).Msg("dropped wl_shm.format")
		return nil
	}
	return s.TrySendFormat(format)
}

// DrmHandler filters wl_drm.format events. wl_drm predates explicit
// modifiers, so its formats are checked against the implicit invalid
// modifier.
type DrmHandler struct {
	Filter *Filter
}

var _ protocol.WlDrmHandler = (*DrmHandler)(nil)

func (h *DrmHandler) HandleAuthenticate(d *protocol.WlDrm, id uint32) *object.Error {
	return d.ForwardAuthenticate(id)
}

func (h *DrmHandler) HandleDevice(d *protocol.WlDrm, name string) *object.Error {
	return d.TrySendDevice(name)
}

func (h *DrmHandler) HandleFormat(d *protocol.WlDrm, format uint32) *object.Error {
	if !h.Filter.Allowed(format, InvalidModifier) {
		logger.Debug().Uint32("format", format).Msg("dropped wl_drm.format")
		return nil
	}
	return d.TrySendFormat(format)
}

func (h *DrmHandler) HandleAuthenticated(d *protocol.WlDrm) *object.Error {
	return d.ForwardAuthenticated()
}

func (h *DrmHandler) HandleCapabilities(d *protocol.WlDrm, value uint32) *object.Error {
	return d.ForwardCapabilities(value)
}

// DmabufHandler filters zwp_linux_dmabuf_v1.format/modifier events. A bare
// format event (no modifier announced yet) is checked against the implicit
// invalid modifier, matching older dmabuf versions that never send
// per-modifier format advertisements.
type DmabufHandler struct {
	Filter *Filter
}

var _ protocol.ZwpLinuxDmabufV1Handler = (*DmabufHandler)(nil)

func (h *DmabufHandler) HandleCreateParams(d *protocol.ZwpLinuxDmabufV1, params *protocol.ZwpLinuxBufferParamsV1) *object.Error {
	return d.ForwardCreateParams(params)
}

func (h *DmabufHandler) HandleFormat(d *protocol.ZwpLinuxDmabufV1, format uint32) *object.Error {
	if !h.Filter.Allowed(format, InvalidModifier) {
		logger.Debug().Uint32("format", format).Msg("dropped zwp_linux_dmabuf_v1.format")
		return nil
	}
	return d.TrySendFormat(format)
}

func (h *DmabufHandler) HandleModifier(d *protocol.ZwpLinuxDmabufV1, format, modifierHi, modifierLo uint32) *object.Error {
	modifier := uint64(modifierHi)<<32 | uint64(modifierLo)
	if !h.Filter.Allowed(format, modifier) {
		logger.Debug().Uint32("format", format).Uint64("modifier", modifier).Msg("dropped zwp_linux_dmabuf_v1.modifier")
		return nil
	}
	return d.TrySendModifier(format, modifierHi, modifierLo)
}

package object

// Interface identifies a Wayland protocol interface. The concrete set is
// small and closed per build (protocol XML is compiled in, not loaded at
// runtime), so an enum is a better fit than an interned string.
type Interface int

const (
	InterfaceWlDisplay Interface = iota
	InterfaceWlRegistry
	InterfaceWlCallback
	InterfaceWlCompositor
	InterfaceWlSurface
	InterfaceWlShm
	InterfaceWlShmPool
	InterfaceWlBuffer
	InterfaceWlDrm
	InterfaceZwpLinuxDmabufV1
	InterfaceZwpLinuxBufferParamsV1
	InterfaceWlSeat
	InterfaceWlKeyboard
	InterfaceWlPointer
)

var interfaceNames = map[Interface]string{
	InterfaceWlDisplay:              "wl_display",
	InterfaceWlRegistry:             "wl_registry",
	InterfaceWlCallback:             "wl_callback",
	InterfaceWlCompositor:           "wl_compositor",
	InterfaceWlSurface:              "wl_surface",
	InterfaceWlShm:                  "wl_shm",
	InterfaceWlShmPool:              "wl_shm_pool",
	InterfaceWlBuffer:               "wl_buffer",
	InterfaceWlDrm:                  "wl_drm",
	InterfaceZwpLinuxDmabufV1:       "zwp_linux_dmabuf_v1",
	InterfaceZwpLinuxBufferParamsV1: "zwp_linux_buffer_params_v1",
	InterfaceWlSeat:                 "wl_seat",
	InterfaceWlKeyboard:             "wl_keyboard",
	InterfaceWlPointer:              "wl_pointer",
}

func (i Interface) String() string {
	if name, ok := interfaceNames[i]; ok {
		return name
	}
	return "unknown"
}

// InterfaceByName looks up an Interface by its protocol name, as used when
// a registry bind names an interface string.
func InterfaceByName(name string) (Interface, bool) {
	for k, v := range interfaceNames {
		if v == name {
			return k, true
		}
	}
	return 0, false
}

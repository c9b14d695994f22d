package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlCompositor has exactly one request this proxy cares about:
// create_surface. (create_region is omitted — no handler in this build
// needs wl_region state, and the default-forward contract for an
// interface this proxy never inspects would add nothing beyond what
// generation would produce mechanically.)
type WlCompositor struct {
	core *object.Core
}

type WlCompositorHandler interface {
	HandleCreateSurface(c *WlCompositor, surface *WlSurface) *object.Error
}

func NewWlCompositor(version uint32, destroyed func() bool) *WlCompositor {
	return &WlCompositor{core: object.NewCore(object.InterfaceWlCompositor, version, destroyed)}
}

func (c *WlCompositor) Core() *object.Core          { return c.core }
func (c *WlCompositor) Interface() object.Interface { return object.InterfaceWlCompositor }

func (c *WlCompositor) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // create_surface
		newID, err := args.NewID("id")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		surface := NewWlSurface(c.core.Version(), nil)
		if perr := pairNewChildFromRequest(c.core.ClientEndpoint(), c.core.ServerEndpoint(), newID, surface); perr != nil {
			return perr
		}
		if h, ok := object.HandlerAs[WlCompositorHandler](c.core.Handler); ok {
			guard, berr := c.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			defer guard.Release()
			return h.HandleCreateSurface(c, surface)
		}
		return c.forwardCreateSurface(surface)
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (c *WlCompositor) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
}

func (c *WlCompositor) forwardCreateSurface(surface *WlSurface) *object.Error {
	compSID, err := serverIDOf(c, "compositor")
	if err != nil {
		return err
	}
	surfSID, err := serverIDOf(surface, "id")
	if err != nil {
		return err
	}
	w := wire.NewMessage(compSID, 0)
	w.PutObject(surfSID)
	data, fds := w.Finish()
	c.core.ServerEndpoint().QueueOutgoing(data, fds)
	return nil
}

package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlBuffer is a leaf object: one request (destroy) and one event
// (release), both pure passthrough.
type WlBuffer struct {
	core *object.Core
}

func NewWlBuffer(version uint32, destroyed func() bool) *WlBuffer {
	return &WlBuffer{core: object.NewCore(object.InterfaceWlBuffer, version, destroyed)}
}

func (b *WlBuffer) Core() *object.Core          { return b.core }
func (b *WlBuffer) Interface() object.Interface { return object.InterfaceWlBuffer }

func (b *WlBuffer) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // destroy
		if err := checkTrailing(args); err != nil {
			return err
		}
		sid, serr := serverIDOf(b, "buffer")
		if serr != nil {
			return serr
		}
		w := wire.NewMessage(sid, 0)
		data, fds := w.Finish()
		b.core.ServerEndpoint().QueueOutgoing(data, fds)
		// destroy has no server-side acknowledgment in the real protocol;
		// the request alone retires both sides of the pairing.
		b.core.HandleClientDestroy()
		b.core.HandleServerDestroy()
		return nil
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

func (b *WlBuffer) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // release
		if err := checkTrailing(args); err != nil {
			return err
		}
		cid, cerr := clientIDOf(b, "buffer", 0)
		if cerr != nil {
			return cerr
		}
		w := wire.NewMessage(cid, 0)
		data, fds := w.Finish()
		b.core.ClientEndpoint().QueueOutgoing(data, fds)
		return nil
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// WlCallback is a one-shot object: the server fires exactly one `done`
// event then the object is implicitly destroyed. It has no requests.
type WlCallback struct {
	core *object.Core
}

// WlCallbackHandler lets a handler observe done before the default forward
// fires.
type WlCallbackHandler interface {
	HandleDone(cb *WlCallback, callbackData uint32) *object.Error
}

func NewWlCallback(version uint32, destroyed func() bool) *WlCallback {
	return &WlCallback{core: object.NewCore(object.InterfaceWlCallback, version, destroyed)}
}

func (c *WlCallback) Core() *object.Core          { return c.core }
func (c *WlCallback) Interface() object.Interface { return object.InterfaceWlCallback }

func (c *WlCallback) TrySendDone(callbackData uint32) *object.Error {
	cid, err := clientIDOf(c, "callback", 0)
	if err != nil {
		return err
	}
	w := wire.NewMessage(cid, 0)
	w.PutUint32(callbackData)
	data, fds := w.Finish()
	c.core.ClientEndpoint().QueueOutgoing(data, fds)
	return nil
}

func (c *WlCallback) SendDone(callbackData uint32) {
	if err := c.TrySendDone(callbackData); err != nil {
		logDropped(c.Interface(), "done", err)
	}
}

func (c *WlCallback) DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
}

func (c *WlCallback) DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error {
	args := wire.NewArgs(body)
	switch opcode {
	case 0: // done
		callbackData, err := args.Uint32("callback_data")
		if err != nil {
			return wireErrToObjectErr(err)
		}
		if err := checkTrailing(args); err != nil {
			return err
		}
		var sendErr *object.Error
		if h, ok := object.HandlerAs[WlCallbackHandler](c.core.Handler); ok {
			guard, berr := c.core.Handler.TryBorrowMut()
			if berr != nil {
				return berr
			}
			sendErr = h.HandleDone(c, callbackData)
			guard.Release()
		} else {
			sendErr = c.TrySendDone(callbackData)
		}
		// done is a destructor event: the server has already freed its
		// side, and a well-behaved client destroys its local proxy
		// without any further wire traffic, so both flags flip here,
		// after the event itself (if any) has been sent on.
		c.core.HandleServerDestroy()
		c.core.HandleClientDestroy()
		return sendErr
	default:
		return &object.Error{Kind: object.ErrUnknownMessageID, Opcode: opcode}
	}
}

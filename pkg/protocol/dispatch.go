package protocol

import (
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// Dispatchable is satisfied by every interface type in this package. The
// event loop (pkg/eventloop) type-asserts an object.Object looked up from
// an endpoint's table to this interface before handing it a message,
// picking DecodeRequest or DecodeEvent according to which endpoint the
// message arrived on, per spec §4.5.
type Dispatchable interface {
	object.Object
	DecodeRequest(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error
	DecodeEvent(opcode uint16, body []uint32, fdr *wire.Reader, clientID uint64) *object.Error
}

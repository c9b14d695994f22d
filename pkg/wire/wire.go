// Package wire implements the Wayland wire protocol codec: little-endian
// 32-bit-word framing, typed argument encode/decode, and the ancillary
// SCM_RIGHTS file descriptor bookkeeping that rides alongside a message.
//
// The framing and fd-queue handling here are adapted from the teacher
// repository's single-purpose Wayland clipboard client
// (pkg/clipboard/internal/wayland/protocol.go), generalized from one fixed
// protocol exchange into a reusable reader/writer pair that any interface
// decoder can drive.
package wire

import "encoding/binary"

var byteOrder = binary.LittleEndian

// Header is the 8-byte message header: target object id, then opcode in the
// low 16 bits and total byte size (including the header) in the high 16
// bits of the second word.
type Header struct {
	ObjectID uint32
	Opcode   uint16
	Size     uint16 // total message size in bytes, including the 8-byte header
}

func decodeHeader(b []byte) Header {
	objectID := byteOrder.Uint32(b[0:4])
	sizeOpcode := byteOrder.Uint32(b[4:8])
	return Header{
		ObjectID: objectID,
		Opcode:   uint16(sizeOpcode & 0xffff),
		Size:     uint16(sizeOpcode >> 16),
	}
}

func encodeHeader(h Header) [8]byte {
	var b [8]byte
	byteOrder.PutUint32(b[0:4], h.ObjectID)
	byteOrder.PutUint32(b[4:8], uint32(h.Opcode)|uint32(h.Size)<<16)
	return b
}

// bytesToWords reinterprets a 4-byte-aligned byte slice as 32-bit
// little-endian words.
func bytesToWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = byteOrder.Uint32(b[i*4:])
	}
	return words
}

package wire

import "wlproxy/pkg/fixed"

// Writer builds one outgoing message at a time: append words with the typed
// Put* methods, then Finish to back-patch the size field and obtain the
// encoded bytes plus any fds that must ride along in SCM_RIGHTS.
type Writer struct {
	objectID uint32
	opcode   uint16
	words    []uint32
	fds      []int
}

// NewMessage starts encoding a new message targeting objectID with the
// given opcode.
func NewMessage(objectID uint32, opcode uint16) *Writer {
	return &Writer{objectID: objectID, opcode: opcode}
}

func (w *Writer) PutUint32(v uint32) { w.words = append(w.words, v) }
func (w *Writer) PutInt32(v int32)   { w.words = append(w.words, uint32(v)) }
func (w *Writer) PutFixed(v fixed.Fixed) { w.words = append(w.words, uint32(v.ToWire())) }

// PutObject writes a wire object id; a nil/zero id encodes the protocol's
// null-object sentinel.
func (w *Writer) PutObject(id uint32) { w.words = append(w.words, id) }

// PutFd enqueues fd to ride along with this message's SCM_RIGHTS ancillary
// data; it consumes no word in the message body.
func (w *Writer) PutFd(fd int) { w.fds = append(w.fds, fd) }

// PutString encodes a non-nullable string: length (including trailing NUL)
// then the bytes, padded with zeros to a 4-byte boundary.
func (w *Writer) PutString(s string) {
	w.putStringBytes(s)
}

// PutNullableString encodes an optional string; nil encodes as a zero
// length, which the protocol treats as a null reference.
func (w *Writer) PutNullableString(s *string) {
	if s == nil {
		w.words = append(w.words, 0)
		return
	}
	w.putStringBytes(*s)
}

func (w *Writer) putStringBytes(s string) {
	n := len(s) + 1 // + trailing NUL
	w.words = append(w.words, uint32(n))
	w.appendPaddedBytes(append([]byte(s), 0))
}

// PutArray encodes a byte array: length, then bytes padded to a 4-byte
// boundary (no NUL terminator).
func (w *Writer) PutArray(b []byte) {
	w.words = append(w.words, uint32(len(b)))
	w.appendPaddedBytes(b)
}

func (w *Writer) appendPaddedBytes(b []byte) {
	padded := (len(b) + 3) &^ 3
	buf := make([]byte, padded)
	copy(buf, b)
	w.words = append(w.words, bytesToWords(buf)...)
}

// Finish back-patches the size field and returns the encoded message bytes
// plus the fds that must be sent alongside it.
func (w *Writer) Finish() (encoded []byte, fds []int) {
	size := 8 + 4*len(w.words)
	hdr := encodeHeader(Header{ObjectID: w.objectID, Opcode: w.opcode, Size: uint16(size)})
	out := make([]byte, 0, size)
	out = append(out, hdr[:]...)
	for _, word := range w.words {
		var b [4]byte
		byteOrder.PutUint32(b[:], word)
		out = append(out, b[:]...)
	}
	return out, w.fds
}

package wire

import (
	"unicode/utf8"

	"wlproxy/pkg/fixed"
)

// Args is a cursor over a decoded message body, handing out typed arguments
// in wire order. It mirrors the original implementation's
// protocol_helpers.rs parse_string/parse_array helpers, generalized to a
// cursor so every argument kind shares one offset.
type Args struct {
	words  []uint32
	offset int
}

// NewArgs wraps a decoded message body for argument-by-argument reading.
func NewArgs(words []uint32) *Args { return &Args{words: words} }

// Remaining reports how many words are left unread; a nonzero value after
// decoding every expected argument means the message carried trailing
// bytes.
func (a *Args) Remaining() int { return len(a.words) - a.offset }

// Uint32 reads a raw uint32 argument.
func (a *Args) Uint32(name string) (uint32, error) {
	if a.offset >= len(a.words) {
		return 0, missingArgument(name)
	}
	v := a.words[a.offset]
	a.offset++
	return v, nil
}

// Int32 reads a signed int32 argument.
func (a *Args) Int32(name string) (int32, error) {
	v, err := a.Uint32(name)
	return int32(v), err
}

// Fixed reads a 24.8 fixed-point argument.
func (a *Args) Fixed(name string) (fixed.Fixed, error) {
	v, err := a.Int32(name)
	return fixed.FromWire(v), err
}

// Object reads an object-id argument (0 means null when nullable).
func (a *Args) Object(name string) (uint32, error) {
	return a.Uint32(name)
}

// NewID reads a new_id argument (a freshly-minted object id).
func (a *Args) NewID(name string) (uint32, error) {
	return a.Uint32(name)
}

// String reads a non-nullable string argument; a zero-length encoding is
// rejected as NullString.
func (a *Args) String(name string) (string, error) {
	s, null, err := a.readString(name)
	if err != nil {
		return "", err
	}
	if null {
		return "", nullString(name)
	}
	return s, nil
}

// NullableString reads an optional string argument; returns (s, true) if
// present, ("", false) if the wire encoded a null reference.
func (a *Args) NullableString(name string) (string, bool, error) {
	s, null, err := a.readString(name)
	if err != nil {
		return "", false, err
	}
	return s, !null, nil
}

func (a *Args) readString(name string) (s string, null bool, err error) {
	length, err := a.Uint32(name)
	if err != nil {
		return "", false, err
	}
	words := (int(length) + 3) / 4
	if a.offset+words > len(a.words) {
		return "", false, missingArgument(name)
	}
	raw := a.wordsAsBytes(a.offset, words)
	a.offset += words
	if length == 0 {
		return "", true, nil
	}
	b := raw[:length]
	if b[len(b)-1] != 0 {
		return "", false, nonUTF8(name)
	}
	body := b[:len(b)-1]
	if !utf8.Valid(body) {
		return "", false, nonUTF8(name)
	}
	return string(body), false, nil
}

// Array reads a byte-array argument; no NUL terminator is required.
func (a *Args) Array(name string) ([]byte, error) {
	length, err := a.Uint32(name)
	if err != nil {
		return nil, err
	}
	words := (int(length) + 3) / 4
	if a.offset+words > len(a.words) {
		return nil, missingArgument(name)
	}
	raw := a.wordsAsBytes(a.offset, words)
	a.offset += words
	out := make([]byte, length)
	copy(out, raw[:length])
	return out, nil
}

// Fd consumes the next queued fd from r, left-to-right, for an fd-typed
// argument.
func (a *Args) Fd(name string, r *Reader) (int, error) {
	fd, ok := r.TakeFd()
	if !ok {
		return 0, missingArgument(name)
	}
	return fd, nil
}

func (a *Args) wordsAsBytes(offset, words int) []byte {
	b := make([]byte, words*4)
	for i := 0; i < words; i++ {
		var w [4]byte
		byteOrder.PutUint32(w[:], a.words[offset+i])
		copy(b[i*4:], w[:])
	}
	return b
}

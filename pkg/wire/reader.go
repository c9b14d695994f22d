package wire

// Reader frames a byte stream of 32-bit-aligned Wayland messages and tracks
// the file descriptors that rode alongside them in SCM_RIGHTS ancillary
// data. It owns no socket; callers push raw bytes/fds read off the wire and
// pull framed messages back out.
type Reader struct {
	buf []byte
	fds []int
}

// Push appends newly-read bytes and any fds delivered alongside them to the
// incoming buffers. fds is nil when no ancillary data arrived.
func (r *Reader) Push(data []byte, fds []int) {
	r.buf = append(r.buf, data...)
	if len(fds) > 0 {
		r.fds = append(r.fds, fds...)
	}
}

// Buffered reports how many bytes are queued but not yet framed into a
// complete message.
func (r *Reader) Buffered() int { return len(r.buf) }

// NextMessage frames and returns the next complete message, if one is
// buffered. ok is false (with a nil error) when more bytes are needed. body
// is the message's argument words, NOT including the 8-byte header.
//
// No fds are returned here; Reader keeps the running fd queue and
// Args.Fd pulls from it (via TakeFd) as the caller decodes fd-typed
// arguments, rather than the queue being sliced per message up-front.
func (r *Reader) NextMessage() (hdr Header, body []uint32, ok bool, err error) {
	if len(r.buf) < 8 {
		return Header{}, nil, false, nil
	}
	hdr = decodeHeader(r.buf[:8])
	size := int(hdr.Size)
	if size < 8 {
		return Header{}, nil, false, WrongMessageSize(size, 8)
	}
	if size%4 != 0 {
		return Header{}, nil, false, WrongMessageSize(size, size+(4-size%4))
	}
	if len(r.buf) < size {
		return Header{}, nil, false, nil
	}
	bodyBytes := r.buf[8:size]
	r.buf = r.buf[size:]
	return hdr, bytesToWords(bodyBytes), true, nil
}

// TakeFd pops and returns the next queued fd, consumed left-to-right by
// fd-typed arguments. ok is false if no fd is queued.
func (r *Reader) TakeFd() (fd int, ok bool) {
	if len(r.fds) == 0 {
		return 0, false
	}
	fd = r.fds[0]
	r.fds = r.fds[1:]
	return fd, true
}

// PendingFds returns the unconsumed fds still queued. A non-empty result
// after a connection closes indicates leaked fds that must be closed by the
// caller.
func (r *Reader) PendingFds() []int { return r.fds }

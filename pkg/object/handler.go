package object

// HandlerHolder is a single-writer, multiple-reader slot carrying an
// optional handler value. The whole proxy core runs on one goroutine (see
// spec §5), so the borrow tracking here is plain counters, not atomics or
// a sync.RWMutex — there is never a goroutine boundary to race across.
type HandlerHolder struct {
	value     any
	readers   int
	writer    bool
	destroyed func() bool
}

// NewHandlerHolder creates an empty holder. destroyed is consulted by Set
// so that handler registration is silently ignored once the process-wide
// shutdown flag is set.
func NewHandlerHolder(destroyed func() bool) *HandlerHolder {
	return &HandlerHolder{destroyed: destroyed}
}

// ReadGuard releases a borrow taken by TryBorrow.
type ReadGuard struct {
	h     *HandlerHolder
	value any
}

// Value returns the borrowed handler.
func (g *ReadGuard) Value() any { return g.value }

// Release ends this borrow.
func (g *ReadGuard) Release() {
	if g == nil || g.h == nil {
		return
	}
	g.h.readers--
	g.h = nil
}

// WriteGuard releases an exclusive borrow taken by TryBorrowMut.
type WriteGuard struct {
	h *HandlerHolder
}

// Value returns the exclusively-borrowed handler.
func (g *WriteGuard) Value() any { return g.h.value }

// Release ends this borrow.
func (g *WriteGuard) Release() {
	if g == nil || g.h == nil {
		return
	}
	g.h.writer = false
	g.h = nil
}

// TryBorrow takes a shared read borrow of the held handler. Fails with
// HandlerBorrowed if an exclusive borrow is active, or NoHandler if the
// slot is empty.
func (h *HandlerHolder) TryBorrow() (*ReadGuard, *Error) {
	if h.value == nil {
		return nil, &Error{Kind: ErrNoHandler}
	}
	if h.writer {
		return nil, &Error{Kind: ErrHandlerBorrowed}
	}
	h.readers++
	return &ReadGuard{h: h, value: h.value}, nil
}

// TryBorrowMut takes the exclusive write borrow. Fails with NoHandler if
// the slot is empty, or HandlerBorrowed if any borrow (shared or
// exclusive) is already active.
func (h *HandlerHolder) TryBorrowMut() (*WriteGuard, *Error) {
	if h.value == nil {
		return nil, &Error{Kind: ErrNoHandler}
	}
	if h.readers > 0 || h.writer {
		return nil, &Error{Kind: ErrHandlerBorrowed}
	}
	h.writer = true
	return &WriteGuard{h: h}, nil
}

// Set replaces the held handler. It is a no-op once the process has been
// marked destroyed, and fails with HandlerBorrowed if a borrow is active —
// the caller is expected to surface that to its own caller, since a
// handler re-entrantly trying to replace itself is the canonical case this
// guards against.
func (h *HandlerHolder) Set(handler any) *Error {
	if h.destroyed != nil && h.destroyed() {
		return nil
	}
	if h.readers > 0 || h.writer {
		return &Error{Kind: ErrHandlerBorrowed}
	}
	h.value = handler
	return nil
}

// IsSet reports whether a handler is currently held, independent of borrow
// state.
func (h *HandlerHolder) IsSet() bool { return h.value != nil }

// HandlerAs attempts to downcast the holder's current value to T without
// taking a borrow; used by read-only introspection. Returns ok=false if the
// slot is empty or holds a different concrete type.
func HandlerAs[T any](h *HandlerHolder) (t T, ok bool) {
	if h.value == nil {
		return t, false
	}
	t, ok = h.value.(T)
	return t, ok
}

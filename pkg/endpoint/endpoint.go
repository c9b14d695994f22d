// Package endpoint implements one UNIX-socket connection's framing state:
// the incoming ring buffer and fd queue, the outgoing byte/fd queue, and
// the object table indexed by wire id. It is the Go counterpart of
// spec §4.3 (C3).
//
// The non-blocking socket I/O and SCM_RIGHTS fd plumbing below generalize
// the teacher repository's single-purpose Wayland clipboard client
// (pkg/clipboard/internal/wayland/protocol.go), which dialed one socket,
// used syscall.Recvmsg/Sendmsg directly, and served exactly one protocol
// exchange. Here the same technique drives an arbitrary number of
// long-lived, multiplexed endpoints instead.
package endpoint

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"wlproxy/pkg/logger"
	"wlproxy/pkg/object"
	"wlproxy/pkg/wire"
)

// maxAncillaryFds bounds how many fds a single recvmsg call prepares room
// for; Wayland messages carry at most a handful of fds each.
const maxAncillaryFds = 28

var idCounter uint64

func nextEndpointID() uint64 {
	idCounter++
	return idCounter
}

// Endpoint owns one live UNIX-domain socket connection: a client's socket
// to the proxy, or the proxy's socket to the compositor.
type Endpoint struct {
	id   uint64
	fd   int
	role object.Role

	objects    map[uint32]object.Object
	nextFreeID uint32 // next unused id in the server-allocated range

	reader wire.Reader

	outgoing     []byte
	outgoingFds  []int
	flushQueued  bool
	dead         bool
	deadErr      error

	// traceID correlates every log line for this connection; see
	// pkg/proxystate for where it is minted (google/uuid).
	traceID string
}

// New wraps an already-connected, already-non-blocking fd.
func New(fd int, role object.Role, traceID string) *Endpoint {
	return &Endpoint{
		id:         nextEndpointID(),
		fd:         fd,
		role:       role,
		objects:    make(map[uint32]object.Object),
		nextFreeID: object.ServerIDRangeStart,
		traceID:    traceID,
	}
}

// ID returns the process-unique numeric identifier used only in logs.
func (e *Endpoint) ID() uint64 { return e.id }

// Fd returns the underlying socket fd, for use by the event loop's poll set.
func (e *Endpoint) Fd() int { return e.fd }

// Role reports whether this endpoint faces a real client or the real
// server (compositor).
func (e *Endpoint) Role() object.Role { return e.role }

// Dead reports whether this endpoint has suffered an unrecoverable error
// and must be torn down.
func (e *Endpoint) Dead() bool { return e.dead }

// DeadErr returns the error that killed this endpoint, if any.
func (e *Endpoint) DeadErr() error { return e.deadErr }

func (e *Endpoint) markDead(err error) {
	e.dead = true
	e.deadErr = err
}

// Reader exposes the endpoint's wire.Reader so Dispatch can pull fds for
// fd-typed arguments from the same queue NextMessage framed its bytes from.
func (e *Endpoint) Reader() *wire.Reader { return &e.reader }

// Lookup returns the object paired with id on this endpoint, if any.
func (e *Endpoint) Lookup(id uint32) (object.Object, bool) {
	obj, ok := e.objects[id]
	return obj, ok
}

// Register binds id to obj in this endpoint's table.
func (e *Endpoint) Register(id uint32, obj object.Object) *object.Error {
	if id == 0 {
		return &object.Error{Kind: object.ErrIDOutOfRange, ID: id}
	}
	if _, exists := e.objects[id]; exists {
		return &object.Error{Kind: object.ErrIDAlreadyRegistered, ID: id}
	}
	e.objects[id] = obj
	return nil
}

// Unregister removes id from this endpoint's table.
func (e *Endpoint) Unregister(id uint32) {
	delete(e.objects, id)
}

// AllocateServerID returns the next unused id in the server-allocated
// range [0xFF000000, 0xFFFFFFFF], used whenever the proxy itself must mint
// a wire id for this endpoint's table (e.g. mirroring a server→client
// object creation, or synthesizing a registry bind target).
func (e *Endpoint) AllocateServerID() (uint32, *object.Error) {
	for {
		if e.nextFreeID < object.ServerIDRangeStart {
			return 0, &object.Error{Kind: object.ErrIDOutOfRange}
		}
		id := e.nextFreeID
		e.nextFreeID++
		if _, taken := e.objects[id]; !taken {
			return id, nil
		}
	}
}

// QueueOutgoing appends an already-encoded message (and any fds riding
// with it) to this endpoint's outgoing queue. It does not register the
// endpoint in the flushable set; pkg/eventloop does that through
// proxystate.State.MarkFlushable, and only for the endpoint opposite the
// one a message was read from.
func (e *Endpoint) QueueOutgoing(data []byte, fds []int) {
	e.outgoing = append(e.outgoing, data...)
	e.outgoingFds = append(e.outgoingFds, fds...)
}

// FlushQueued reports whether this endpoint is currently registered in the
// flushable set.
func (e *Endpoint) FlushQueued() bool { return e.flushQueued }

// SetFlushQueued is called by the flushable-set bookkeeping (pkg/proxystate)
// to record membership; QueueOutgoing does not touch this flag directly so
// that set-membership stays centralized in one place.
func (e *Endpoint) SetFlushQueued(v bool) { e.flushQueued = v }

// HasOutgoing reports whether any bytes remain queued.
func (e *Endpoint) HasOutgoing() bool { return len(e.outgoing) > 0 }

// PullIncoming performs one non-blocking recvmsg call, scattering any
// delivered fds into the reader's fd queue. ok is false on EAGAIN (no data
// ready); err is non-nil and the endpoint is marked dead on any other
// failure, including an orderly peer close (n == 0).
func (e *Endpoint) PullIncoming() (ok bool, err error) {
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(maxAncillaryFds*4))
	n, oobn, _, _, rerr := unix.Recvmsg(e.fd, buf, oob, 0)
	if rerr != nil {
		if errors.Is(rerr, unix.EAGAIN) || errors.Is(rerr, unix.EWOULDBLOCK) {
			return false, nil
		}
		e.markDead(rerr)
		return false, rerr
	}
	if n == 0 {
		closedErr := fmt.Errorf("endpoint %d: peer closed connection", e.id)
		e.markDead(closedErr)
		return false, closedErr
	}

	var fds []int
	if oobn > 0 {
		scms, perr := unix.ParseSocketControlMessage(oob[:oobn])
		if perr == nil {
			for _, scm := range scms {
				rights, rerr := unix.ParseUnixRights(&scm)
				if rerr == nil {
					fds = append(fds, rights...)
				}
			}
		}
	}
	e.reader.Push(buf[:n], fds)
	return true, nil
}

// NextMessage drains one complete framed message from the reader, if one
// is buffered.
func (e *Endpoint) NextMessage() (hdr wire.Header, body []uint32, ok bool, err error) {
	return e.reader.NextMessage()
}

// Flush attempts to write all queued outgoing bytes/fds via sendmsg. On
// EAGAIN the remainder stays queued and the endpoint remains in the
// flushable set; on any other error the endpoint is marked dead.
func (e *Endpoint) Flush() error {
	for len(e.outgoing) > 0 {
		oob := []byte(nil)
		if len(e.outgoingFds) > 0 {
			n := len(e.outgoingFds)
			if n > maxAncillaryFds {
				n = maxAncillaryFds
			}
			oob = unix.UnixRights(e.outgoingFds[:n]...)
		}
		n, err := unix.SendmsgN(e.fd, e.outgoing, oob, nil, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				return nil
			}
			e.markDead(err)
			return err
		}
		if len(oob) > 0 {
			sent := len(e.outgoingFds)
			if sent > maxAncillaryFds {
				sent = maxAncillaryFds
			}
			e.outgoingFds = e.outgoingFds[sent:]
		}
		e.outgoing = e.outgoing[n:]
	}
	return nil
}

// Close releases the underlying socket and any fds still owned by queued
// messages or the incoming fd backlog.
func (e *Endpoint) Close() {
	for _, fd := range e.outgoingFds {
		_ = unix.Close(fd)
	}
	for _, fd := range e.reader.PendingFds() {
		_ = unix.Close(fd)
	}
	_ = unix.Close(e.fd)
	logger.Debug().Uint64("endpoint", e.id).Str("trace", e.traceID).Msg("endpoint closed")
}

// Package proxystate implements the proxy core (spec §4.8, C8): the
// listening socket acceptor, the per-connection client/server endpoint
// pairing, the shared interface factory registry, and the flushable set
// the event loop (pkg/eventloop) drains every iteration.
//
// Grounded on the teacher's cmd/watch.go shape (a long-running loop driven
// by a shared stop condition) generalized from one ticking goroutine to a
// poll-driven multi-connection proxy, and on spec §4.8's numbered boot
// sequence.
package proxystate

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"wlproxy/pkg/endpoint"
	"wlproxy/pkg/formatfilter"
	"wlproxy/pkg/logger"
	"wlproxy/pkg/object"
	"wlproxy/pkg/protocol"
)

// State is the process-wide shared core: the listening socket, every live
// client, and the bookkeeping the event loop needs to build its poll set.
type State struct {
	listenFd   int
	listenPath string

	upstreamAddr string

	filter *formatfilter.Filter

	clients []*Client

	// flushable holds every endpoint with outgoing bytes still queued, so
	// the event loop only calls Flush on endpoints that need it.
	flushable map[*endpoint.Endpoint]struct{}

	// Destroyed is set once a shutdown signal is observed; the event loop
	// consults it to stop accepting new connections and begin draining.
	Destroyed bool
}

// Client wraps one accepted connection: the client-facing endpoint, the
// paired endpoint to the real compositor, and the per-connection global
// mapper and trace id.
type Client struct {
	state *State

	ClientEndpoint *endpoint.Endpoint
	ServerEndpoint *endpoint.Endpoint

	Display  *protocol.WlDisplay
	Registry *protocol.WlRegistry

	TraceID string

	destroyed bool
}

// New binds the listening socket at $XDG_RUNTIME_DIR/name and prepares an
// empty State. upstreamAddr is the compositor socket path every accepted
// client will be paired against.
func New(name, upstreamAddr string, filter *formatfilter.Filter) (*State, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return nil, fmt.Errorf("proxystate: XDG_RUNTIME_DIR is not set")
	}
	listenPath := runtimeDir + "/" + name

	_ = unix.Unlink(listenPath)
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("proxystate: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: listenPath}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("proxystate: bind %s: %w", listenPath, err)
	}
	if err := unix.Listen(fd, 16); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("proxystate: listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("proxystate: set nonblock: %w", err)
	}

	return &State{
		listenFd:     fd,
		listenPath:   listenPath,
		upstreamAddr: upstreamAddr,
		filter:       filter,
		flushable:    make(map[*endpoint.Endpoint]struct{}),
	}, nil
}

// ListenFd returns the listening socket's fd, for the event loop's poll set.
func (s *State) ListenFd() int { return s.listenFd }

// ListenPath returns the filesystem path the listening socket was bound to,
// so it can be unlinked on shutdown and so WAYLAND_DISPLAY can be rebound to
// it for the spawned client program.
func (s *State) ListenPath() string { return s.listenPath }

// Clients returns every live client connection.
func (s *State) Clients() []*Client { return s.clients }

// MarkFlushable registers ep in the flushable set; the event loop drains it
// on the next iteration and removes it once fully flushed.
func (s *State) MarkFlushable(ep *endpoint.Endpoint) {
	if ep.FlushQueued() {
		return
	}
	ep.SetFlushQueued(true)
	s.flushable[ep] = struct{}{}
}

// Flushable returns the current flushable set's endpoints.
func (s *State) Flushable() []*endpoint.Endpoint {
	eps := make([]*endpoint.Endpoint, 0, len(s.flushable))
	for ep := range s.flushable {
		eps = append(eps, ep)
	}
	return eps
}

// UnmarkFlushable removes ep from the flushable set once it has nothing
// left queued.
func (s *State) UnmarkFlushable(ep *endpoint.Endpoint) {
	ep.SetFlushQueued(false)
	delete(s.flushable, ep)
}

// CloseListener stops accepting new connections, part of the orderly
// shutdown spec §4.9 step 5 describes.
func (s *State) CloseListener() {
	_ = unix.Close(s.listenFd)
	_ = unix.Unlink(s.listenPath)
}

// AcceptOne accepts a single pending connection on the listening socket and
// wires up its paired upstream connection, per spec §4.8's numbered boot
// sequence. ok is false on EAGAIN (nothing pending); err is non-nil on any
// other accept or upstream-dial failure, which the caller should log and
// ignore rather than tear down the whole proxy.
func (s *State) AcceptOne() (client *Client, ok bool, err error) {
	clientFd, _, aerr := unix.Accept(s.listenFd)
	if aerr != nil {
		if errors.Is(aerr, unix.EAGAIN) || errors.Is(aerr, unix.EWOULDBLOCK) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("proxystate: accept: %w", aerr)
	}
	if err := unix.SetNonblock(clientFd, true); err != nil {
		_ = unix.Close(clientFd)
		return nil, false, fmt.Errorf("proxystate: client set nonblock: %w", err)
	}

	serverFd, err := dialUpstream(s.upstreamAddr)
	if err != nil {
		_ = unix.Close(clientFd)
		return nil, false, fmt.Errorf("proxystate: dial upstream: %w", err)
	}

	traceID := uuid.New().String()
	c := &Client{
		state:          s,
		ClientEndpoint: endpoint.New(clientFd, object.RoleClient, traceID),
		ServerEndpoint: endpoint.New(serverFd, object.RoleServer, traceID),
		TraceID:        traceID,
	}

	// wl_display is the one object guaranteed to exist under wire id 1 on
	// both endpoints without any bind ever crossing the wire (spec §4.8
	// step 2); it is paired directly rather than through
	// pairNewChildFromRequest/Event, which both assume only one side's id
	// is known up front.
	destroyed := func() bool { return c.destroyed }
	display := protocol.NewWlDisplay(1, destroyed)
	if perr := display.Core().SetClientID(c.ClientEndpoint, 1, display); perr != nil {
		c.teardown()
		return nil, false, fmt.Errorf("proxystate: pairing wl_display: %w", perr)
	}
	if perr := display.Core().SetServerID(c.ServerEndpoint, 1, display); perr != nil {
		c.teardown()
		return nil, false, fmt.Errorf("proxystate: pairing wl_display: %w", perr)
	}
	c.Display = display
	_ = display.Core().Handler.Set(&displayHandler{client: c, filter: s.filter})

	s.clients = append(s.clients, c)
	logger.Info().Str("trace", traceID).Msg("accepted client connection")
	return c, true, nil
}

func dialUpstream(addr string) (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return 0, err
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: addr}); err != nil {
		_ = unix.Close(fd)
		return 0, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return 0, err
	}
	return fd, nil
}

// Destroyed reports whether this client's endpoints have already been torn
// down.
func (c *Client) Destroyed() bool { return c.destroyed }

func (c *Client) teardown() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.ClientEndpoint.Close()
	c.ServerEndpoint.Close()
}

// Teardown closes both of this client's endpoints and removes it from the
// owning State's client list, per spec §5's cancellation policy: a
// disconnect on either side tears down the whole pair.
func (c *Client) Teardown() {
	c.teardown()
	for i, existing := range c.state.clients {
		if existing == c {
			c.state.clients = append(c.state.clients[:i], c.state.clients[i+1:]...)
			break
		}
	}
	c.state.UnmarkFlushable(c.ClientEndpoint)
	c.state.UnmarkFlushable(c.ServerEndpoint)
	logger.Info().Str("trace", c.TraceID).Msg("client connection torn down")
}

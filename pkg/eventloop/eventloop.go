// Package eventloop implements the single-threaded cooperative poll loop
// (spec §4.9, C9): build a poll set from the listener and every live
// endpoint, wait for readiness or a signal, drain complete messages in
// arrival order, flush anything queued, and on SIGTERM/SIGINT begin an
// orderly shutdown.
//
// Grounded on the teacher's cmd/watch.go RunWatch: the same "for { do work;
// select on a stop signal or the next tick }" shape, generalized from a
// fixed-interval ticker plus a single context.Context to a readiness-driven
// unix.Poll wait plus the proxy's own State.Destroyed flag and
// os/signal.Notify.
package eventloop

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"wlproxy/pkg/endpoint"
	"wlproxy/pkg/logger"
	"wlproxy/pkg/object"
	"wlproxy/pkg/protocol"
	"wlproxy/pkg/proxystate"
	"wlproxy/pkg/wire"
)

// pollTimeoutMs bounds how long a single poll() call blocks, so the loop
// periodically re-checks State.Destroyed even without socket activity.
const pollTimeoutMs = 1000

// Run drives state until Destroyed is set and every client has drained, or
// until an unrecoverable poll error occurs.
func Run(state *proxystate.State) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			logger.Info().Msg("shutdown signal received, draining connections")
			state.Destroyed = true
			state.CloseListener()
		default:
		}

		if state.Destroyed && len(state.Clients()) == 0 {
			return nil
		}

		fds := buildPollSet(state)
		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}

		if !state.Destroyed {
			handleListener(state, fds[0])
		}

		for _, c := range append([]*proxystate.Client(nil), state.Clients()...) {
			pf := lookupPollFd(fds, c.ClientEndpoint.Fd())
			if pf != nil && pf.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
				drain(state, c, c.ClientEndpoint, c.ServerEndpoint)
			}
			pf = lookupPollFd(fds, c.ServerEndpoint.Fd())
			if pf != nil && pf.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
				drain(state, c, c.ServerEndpoint, c.ClientEndpoint)
			}
			if c.ClientEndpoint.Dead() || c.ServerEndpoint.Dead() {
				c.Teardown()
			}
		}

		flushAll(state)
	}
}

func buildPollSet(state *proxystate.State) []unix.PollFd {
	fds := make([]unix.PollFd, 0, 1+len(state.Clients())*2)
	listenEvents := int16(0)
	if !state.Destroyed {
		listenEvents = unix.POLLIN
	}
	fds = append(fds, unix.PollFd{Fd: int32(state.ListenFd()), Events: listenEvents})
	for _, c := range state.Clients() {
		fds = append(fds, unix.PollFd{Fd: int32(c.ClientEndpoint.Fd()), Events: pollEvents(c.ClientEndpoint)})
		fds = append(fds, unix.PollFd{Fd: int32(c.ServerEndpoint.Fd()), Events: pollEvents(c.ServerEndpoint)})
	}
	return fds
}

func pollEvents(ep *endpoint.Endpoint) int16 {
	events := int16(unix.POLLIN)
	if ep.FlushQueued() {
		events |= unix.POLLOUT
	}
	return events
}

func lookupPollFd(fds []unix.PollFd, fd int) *unix.PollFd {
	for i := range fds {
		if int(fds[i].Fd) == fd {
			return &fds[i]
		}
	}
	return nil
}

func handleListener(state *proxystate.State, listenerPollFd unix.PollFd) {
	if listenerPollFd.Revents&unix.POLLIN == 0 {
		return
	}
	for {
		_, ok, err := state.AcceptOne()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to accept client connection")
			return
		}
		if !ok {
			return
		}
	}
}

// drain reads everything currently available on src and dispatches each
// complete message against the object it targets, per spec §4.9 step 3. dst
// is the opposite endpoint of the same client; after each dispatch it is
// marked flushable if it has output queued. Message direction is decided by
// src's Role.
func drain(state *proxystate.State, c *proxystate.Client, src, dst *endpoint.Endpoint) {
	for {
		ok, err := src.PullIncoming()
		if !ok {
			if err != nil {
				logger.Debug().Err(err).Str("trace", c.TraceID).Msg("endpoint read failed")
			}
			break
		}
	}
	if src.Dead() {
		return
	}

	for {
		hdr, body, ok, err := src.NextMessage()
		if err != nil {
			logger.Warn().Err(err).Str("trace", c.TraceID).Msg("fatal frame error, tearing down connection")
			c.Teardown()
			return
		}
		if !ok {
			break
		}
		dispatchOne(state, c, src, dst, hdr, body)
	}
}

func dispatchOne(state *proxystate.State, c *proxystate.Client, src, dst *endpoint.Endpoint, hdr wire.Header, body []uint32) {
	obj, ok := src.Lookup(hdr.ObjectID)
	if !ok {
		logger.Warn().Uint32("object_id", hdr.ObjectID).Str("trace", c.TraceID).Msg("message for unknown object, dropping")
		return
	}
	target, ok := obj.(protocol.Dispatchable)
	if !ok {
		logger.Warn().Str("interface", obj.Interface().String()).Str("trace", c.TraceID).Msg("object has no dispatch binding, dropping")
		return
	}

	var derr *object.Error
	if src.Role() == object.RoleClient {
		derr = target.DecodeRequest(hdr.Opcode, body, src.Reader(), c.ClientEndpoint.ID())
	} else {
		derr = target.DecodeEvent(hdr.Opcode, body, src.Reader(), c.ClientEndpoint.ID())
	}
	if derr != nil {
		logger.Warn().Err(derr).Str("interface", obj.Interface().String()).Str("trace", c.TraceID).Msg("dispatch error")
		if derr.Fatal() {
			c.Teardown()
			return
		}
	}

	if dst.HasOutgoing() {
		state.MarkFlushable(dst)
	}
}

func flushAll(state *proxystate.State) {
	for _, ep := range state.Flushable() {
		if err := ep.Flush(); err != nil {
			continue
		}
		if !ep.HasOutgoing() {
			state.UnmarkFlushable(ep)
		}
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/waybridge/internal/netutil"
	"github.com/bureau-foundation/waybridge/proto"
	"github.com/bureau-foundation/waybridge/transport"
	"github.com/bureau-foundation/waybridge/wire"
)

// SessionConfig carries everything one guest client's session needs.
type SessionConfig struct {
	// Guest is the wire connection to the guest client.
	Guest *wire.Conn

	// Host is the wire connection to the host compositor. Each
	// session owns its own host connection.
	Host *wire.Conn

	// Allocator produces host-visible memory for shared-memory pools.
	Allocator transport.Allocator

	// Tag is prepended to every toplevel title forwarded to the host.
	Tag string

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// hostGlobal is one entry of the host compositor's registry.
type hostGlobal struct {
	name    uint32
	version uint32
}

// Session relays one guest client. All relay state is confined to the
// session; handlers run on a single dispatch loop.
type Session struct {
	logger *slog.Logger
	tag    string
	alloc  transport.Allocator

	guest *proto.Conn
	host  *proto.Conn

	hostGlobals map[string]hostGlobal
	registry    *proto.Object

	pools map[*poolPair]struct{}
}

// NewSession builds a session over established guest and host wire
// connections.
func NewSession(config SessionConfig) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		logger:      logger,
		tag:         config.Tag,
		alloc:       config.Allocator,
		hostGlobals: make(map[string]hostGlobal),
		pools:       make(map[*poolPair]struct{}),
	}
	s.guest = proto.NewServer(config.Guest, logger.With("conn", "guest"))
	s.host = proto.NewClient(config.Host, logger.With("conn", "host"))
	return s
}

// inbound is one reader item: a message or the reader's terminal
// error.
type inbound struct {
	in  *proto.Inbound
	err error
}

// Run drives the session until either transport closes, a protocol
// violation ends it, or ctx is cancelled. The first cause is logged;
// the resulting failure on the other side is suppressed.
func (s *Session) Run(ctx context.Context) error {
	defer s.releaseResources()

	if err := s.discoverHostGlobals(); err != nil {
		s.guest.Close()
		s.host.Close()
		return err
	}
	s.guest.Display().SetHandler(s.displayRequest)

	guestCh := make(chan inbound)
	hostCh := make(chan inbound)
	go readLoop(s.guest, guestCh)
	go readLoop(s.host, hostCh)

	var cause error
	closing := false
	shutdown := func(side string, err error) {
		if closing {
			return
		}
		closing = true
		cause = err
		if netutil.IsExpectedClose(err) {
			s.logger.Info("session closed", "by", side)
			cause = nil
		} else {
			s.logger.Error("session failed", "side", side, "error", err)
		}
		var violation *proto.ProtocolError
		if side == "guest" && errors.As(err, &violation) {
			// Report the violation before tearing the guest down.
			s.guest.PostError(violation)
		}
		s.guest.Close()
		s.host.Close()
	}

	for guestCh != nil || hostCh != nil {
		select {
		case <-ctx.Done():
			shutdown("relay", ctx.Err())
			// Keep draining so both readers exit.
			ctx = context.Background()
		case item, ok := <-guestCh:
			if !ok {
				guestCh = nil
				continue
			}
			s.handle("guest", s.guest, item, closing, shutdown)
		case item, ok := <-hostCh:
			if !ok {
				hostCh = nil
				continue
			}
			s.handle("host", s.host, item, closing, shutdown)
		}
	}
	return cause
}

func (s *Session) handle(side string, conn *proto.Conn, item inbound, closing bool, shutdown func(string, error)) {
	if item.err != nil {
		shutdown(side, item.err)
		return
	}
	if closing {
		item.in.Discard()
		return
	}
	if err := conn.Dispatch(item.in); err != nil {
		shutdown(side, err)
	}
}

// readLoop feeds one connection's messages into the dispatch loop.
// It exits, closing its channel, on the first read error.
func readLoop(conn *proto.Conn, ch chan<- inbound) {
	defer close(ch)
	for {
		in, err := conn.Read()
		ch <- inbound{in: in, err: err}
		if err != nil {
			return
		}
	}
}

// discoverHostGlobals performs the initial host registry roundtrip:
// get_registry, collect global events, and wait for a sync callback.
func (s *Session) discoverHostGlobals() error {
	registry := s.host.NewObject(proto.Registry, 1)
	registry.SetHandler(func(_ *proto.Object, op uint16, args *proto.Args) error {
		switch op {
		case proto.RegistryGlobal:
			s.hostGlobals[args.String(1)] = hostGlobal{name: args.Uint(0), version: args.Uint(2)}
		case proto.RegistryGlobalRemove:
			name := args.Uint(0)
			for iface, g := range s.hostGlobals {
				if g.name == name {
					delete(s.hostGlobals, iface)
					break
				}
			}
		}
		return nil
	})
	if err := s.host.SendRequest(s.host.Display(), proto.DisplayGetRegistry, registry); err != nil {
		return fmt.Errorf("relay: host get_registry: %w", err)
	}

	done := false
	callback := s.host.NewCallback(func(uint32) { done = true })
	if err := s.host.SendRequest(s.host.Display(), proto.DisplaySync, callback); err != nil {
		return fmt.Errorf("relay: host sync: %w", err)
	}
	for !done {
		in, err := s.host.Read()
		if err != nil {
			return fmt.Errorf("relay: host registry roundtrip: %w", err)
		}
		if err := s.host.Dispatch(in); err != nil {
			return fmt.Errorf("relay: host registry roundtrip: %w", err)
		}
	}

	s.registry = registry
	s.logger.Debug("host globals discovered", "count", len(s.hostGlobals))
	return nil
}

// bindHostGlobal binds a host global at the guest's requested version.
func (s *Session) bindHostGlobal(iface *proto.Interface, version uint32) (*proto.Object, error) {
	g, ok := s.hostGlobals[iface.Name]
	if !ok {
		return nil, fmt.Errorf("relay: host compositor does not advertise %s", iface.Name)
	}
	if g.version < version {
		return nil, fmt.Errorf("relay: host advertises %s version %d, guest needs %d", iface.Name, g.version, version)
	}
	obj := s.host.NewObject(iface, version)
	if err := s.host.SendRequest(s.registry, proto.RegistryBind, g.name, iface.Name, version, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// forwardRequest reissues a guest request on the host peer, with
// object arguments translated to their host side.
func (s *Session) forwardRequest(server *proto.Object, op uint16, args *proto.Args) error {
	return s.host.SendRequest(hostOf(server), op, args.Forward(hostOf)...)
}

// eventForwarder returns a host-object handler that re-emits every
// event on the paired server object, with object arguments translated
// to their server side.
func (s *Session) eventForwarder(server *proto.Object) proto.Handler {
	return func(_ *proto.Object, op uint16, args *proto.Args) error {
		return s.guest.SendEvent(server, op, args.Forward(serverOf)...)
	}
}

// destroyPair issues the host-side destructor and defers the server
// object's deletion until the host acknowledges its peer's death.
// Events the host emitted before the acknowledgement still reach the
// guest on a live object, in their original order; acknowledging the
// server side earlier would let the guest observe events on an object
// it was told is gone.
func (s *Session) destroyPair(server *proto.Object, hostOp uint16) error {
	host := hostOf(server)
	if err := s.host.SendRequest(host, hostOp); err != nil {
		return err
	}
	host.OnDelete(func() {
		if err := s.guest.DeleteObject(server); err != nil {
			s.logger.Debug("delete acknowledgement to guest failed", "object", server.String(), "error", err)
		}
	})
	return nil
}

// releaseResources drops per-session resources once both readers have
// exited: pool mappings and their guest files.
func (s *Session) releaseResources() {
	for pool := range s.pools {
		pool.release()
	}
	clear(s.pools)
}

// unhandledRequest covers opcodes that are in an interface's table but
// have no business reaching a particular handler.
func unhandledRequest(obj *proto.Object, op uint16) error {
	return proto.Errorf(obj, proto.DisplayErrorInvalidMethod, "unhandled %s request %d", obj.Interface().Name, op)
}

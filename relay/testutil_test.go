// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/waybridge/proto"
	"github.com/bureau-foundation/waybridge/transport"
	"github.com/bureau-foundation/waybridge/wire"
)

const testTag = "[vm] "

// socketPair returns two connected Unix stream sockets with a
// test-wide deadline so broken tests fail instead of hanging.
func socketPair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	left := fileConn(t, fds[0])
	right := fileConn(t, fds[1])
	deadline := time.Now().Add(10 * time.Second)
	left.SetDeadline(deadline)
	right.SetDeadline(deadline)
	return left, right
}

func fileConn(t *testing.T, fd int) *net.UnixConn {
	t.Helper()
	file := os.NewFile(uintptr(fd), "socketpair")
	defer file.Close()
	conn, err := net.FileConn(file)
	if err != nil {
		t.Fatalf("FileConn: %v", err)
	}
	return conn.(*net.UnixConn)
}

// mapFile maps size bytes of f read/write, the way a guest client
// maps its own pool memory.
func mapFile(t *testing.T, f *os.File, size int32) []byte {
	t.Helper()
	mem, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}
	t.Cleanup(func() { unix.Munmap(mem) })
	return mem
}

func guestMemfd(t *testing.T, size int32) *os.File {
	t.Helper()
	fd, err := unix.MemfdCreate("guest-pool", unix.MFD_CLOEXEC)
	if err != nil {
		t.Fatalf("memfd_create: %v", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		t.Fatalf("ftruncate: %v", err)
	}
	file := os.NewFile(uintptr(fd), "guest-pool")
	t.Cleanup(func() { file.Close() })
	return file
}

// hostRecord is one request observed by the fake host compositor.
type hostRecord struct {
	iface   string
	message string
	obj     *proto.Object
	args    *proto.Args
}

// hostInterfaces maps advertised names to descriptors for binds.
var hostInterfaces = []*proto.Interface{
	proto.Compositor,
	proto.Subcompositor,
	proto.Shm,
	proto.WmBase,
	proto.Seat,
	proto.Output,
	proto.DataDeviceManager,
	proto.OutputManager,
}

// fakeHost is a minimal host compositor: it answers the registry
// roundtrip, records every request the relay issues, auto-creates
// requested objects, and (unless manual) answers frame callbacks and
// confirms destructors immediately. Tests inject events into its
// loop with exec.
type fakeHost struct {
	t    *testing.T
	conn *proto.Conn

	records chan hostRecord
	do      chan func()
	closed  chan struct{}

	// manual suspends automatic frame replies and destroy
	// confirmations so tests control their order.
	manual bool

	poolMemory     map[proto.ObjectID][]byte
	frames         []*proto.Object
	pendingDestroy []*proto.Object
}

func newFakeHost(t *testing.T, conn *net.UnixConn, manual bool) *fakeHost {
	h := &fakeHost{
		t:          t,
		conn:       proto.NewServer(wire.NewConn(conn), discardLogger()),
		records:    make(chan hostRecord, 256),
		do:         make(chan func(), 16),
		closed:     make(chan struct{}),
		manual:     manual,
		poolMemory: make(map[proto.ObjectID][]byte),
	}
	h.conn.Display().SetHandler(h.displayRequest)
	return h
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (h *fakeHost) run() {
	defer close(h.closed)
	defer close(h.records)

	type item struct {
		in  *proto.Inbound
		err error
	}
	items := make(chan item)
	go func() {
		defer close(items)
		for {
			in, err := h.conn.Read()
			items <- item{in, err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case fn := <-h.do:
			fn()
		case it, ok := <-items:
			if !ok {
				return
			}
			if it.err != nil {
				continue
			}
			if err := h.conn.Dispatch(it.in); err != nil {
				h.t.Errorf("fake host dispatch: %v", err)
			}
		}
	}
}

func (h *fakeHost) displayRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.DisplaySync:
		callback := args.NewObject(0)
		if err := h.conn.SendEvent(callback, proto.CallbackDone, h.conn.Serial()); err != nil {
			return err
		}
		return h.conn.DeleteObject(callback)
	case proto.DisplayGetRegistry:
		registry := args.NewObject(0)
		registry.SetHandler(h.registryRequest)
		for i, iface := range hostInterfaces {
			if err := h.conn.SendEvent(registry, proto.RegistryGlobal, uint32(i+1), iface.Name, iface.Version); err != nil {
				return err
			}
		}
		return nil
	}
	h.t.Errorf("fake host display got opcode %d", op)
	return nil
}

func (h *fakeHost) registryRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op != proto.RegistryBind {
		h.t.Errorf("fake host registry got opcode %d", op)
		return nil
	}
	name := args.String(1)
	var iface *proto.Interface
	for _, candidate := range hostInterfaces {
		if candidate.Name == name {
			iface = candidate
		}
	}
	if iface == nil {
		h.t.Errorf("fake host asked to bind unknown interface %q", name)
		return nil
	}
	bound, err := h.conn.Register(args.NewID(3), iface, args.Uint(2))
	if err != nil {
		return err
	}
	bound.SetHandler(h.request)
	h.records <- hostRecord{iface: iface.Name, message: "bind", obj: bound, args: args}
	return nil
}

// request records the message and mimics just enough compositor
// behavior for the scenarios: pool mapping, frame callbacks, and
// destructor confirmation via delete_id.
func (h *fakeHost) request(obj *proto.Object, op uint16, args *proto.Args) error {
	h.records <- hostRecord{iface: obj.Interface().Name, message: args.Name(), obj: obj, args: args}
	for _, created := range args.NewObjects() {
		created.SetHandler(h.request)
	}

	switch {
	case obj.Interface() == proto.Shm && op == proto.ShmCreatePool:
		pool := args.NewObject(0)
		backing := args.File(1)
		defer backing.Close()
		mem, err := unix.Mmap(int(backing.Fd()), 0, int(args.Int(2)), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			h.t.Errorf("fake host map pool: %v", err)
			return nil
		}
		h.poolMemory[pool.ID()] = mem

	case obj.Interface() == proto.Surface && op == proto.SurfaceFrame:
		callback := args.NewObject(0)
		if h.manual {
			h.frames = append(h.frames, callback)
			return nil
		}
		if err := h.conn.SendEvent(callback, proto.CallbackDone, uint32(16)); err != nil {
			return err
		}
		return h.conn.DeleteObject(callback)

	case args.Name() == "destroy" || args.Name() == "release":
		if h.manual {
			h.pendingDestroy = append(h.pendingDestroy, obj)
			return nil
		}
		return h.conn.DeleteObject(obj)
	}
	return nil
}

// exec runs fn inside the fake host's loop and waits for it.
func (h *fakeHost) exec(fn func()) {
	h.t.Helper()
	done := make(chan struct{})
	select {
	case h.do <- func() { fn(); close(done) }:
	case <-h.closed:
		h.t.Fatal("fake host loop already exited")
	}
	select {
	case <-done:
	case <-h.closed:
		h.t.Fatal("fake host loop exited mid-exec")
	case <-time.After(5 * time.Second):
		h.t.Fatal("fake host exec timed out")
	}
}

// expect waits for the next record matching iface and message,
// discarding records that precede it.
func (h *fakeHost) expect(iface, message string) hostRecord {
	h.t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r, ok := <-h.records:
			if !ok {
				h.t.Fatalf("host connection closed while waiting for %s.%s", iface, message)
			}
			if r.iface == iface && r.message == message {
				return r
			}
		case <-deadline:
			h.t.Fatalf("timed out waiting for %s.%s", iface, message)
		}
	}
}

// drainRecords waits for the host loop to exit and returns everything
// it observed.
func (h *fakeHost) drainRecords() []hostRecord {
	h.t.Helper()
	select {
	case <-h.closed:
	case <-time.After(5 * time.Second):
		h.t.Fatal("fake host never shut down")
	}
	var all []hostRecord
	for r := range h.records {
		all = append(all, r)
	}
	return all
}

// guestClient drives the guest side of a session synchronously.
type guestClient struct {
	t        *testing.T
	conn     *proto.Conn
	registry *proto.Object
	globals  map[string]struct{ name, version uint32 }
}

func newGuestClient(t *testing.T, conn *net.UnixConn) *guestClient {
	g := &guestClient{
		t:       t,
		conn:    proto.NewClient(wire.NewConn(conn), discardLogger()),
		globals: make(map[string]struct{ name, version uint32 }),
	}
	g.registry = g.conn.NewObject(proto.Registry, 1)
	g.registry.SetHandler(func(_ *proto.Object, op uint16, args *proto.Args) error {
		if op == proto.RegistryGlobal {
			g.globals[args.String(1)] = struct{ name, version uint32 }{args.Uint(0), args.Uint(2)}
		}
		return nil
	})
	g.request(g.conn.Display(), proto.DisplayGetRegistry, g.registry)
	g.roundtrip()
	return g
}

func (g *guestClient) request(obj *proto.Object, op uint16, args ...any) {
	g.t.Helper()
	if err := g.conn.SendRequest(obj, op, args...); err != nil {
		g.t.Fatalf("guest request: %v", err)
	}
}

func (g *guestClient) step() error {
	in, err := g.conn.Read()
	if err != nil {
		return err
	}
	return g.conn.Dispatch(in)
}

// waitFor dispatches guest events until cond holds.
func (g *guestClient) waitFor(cond func() bool) {
	g.t.Helper()
	for !cond() {
		if err := g.step(); err != nil {
			g.t.Fatalf("guest dispatch: %v", err)
		}
	}
}

// waitForError dispatches until the connection fails, returning the
// failure.
func (g *guestClient) waitForError() error {
	for {
		if err := g.step(); err != nil {
			return err
		}
	}
}

// roundtrip barriers against the relay: sync is answered locally once
// everything before it has been dispatched.
func (g *guestClient) roundtrip() {
	g.t.Helper()
	done := false
	callback := g.conn.NewCallback(func(uint32) { done = true })
	g.request(g.conn.Display(), proto.DisplaySync, callback)
	g.waitFor(func() bool { return done })
}

// bind binds a global by interface, failing if the relay never
// advertised it.
func (g *guestClient) bind(iface *proto.Interface, version uint32) *proto.Object {
	g.t.Helper()
	advertised, ok := g.globals[iface.Name]
	if !ok {
		g.t.Fatalf("relay never advertised %s", iface.Name)
	}
	obj := g.conn.NewObject(iface, version)
	g.request(g.registry, proto.RegistryBind, advertised.name, iface.Name, version, obj)
	return obj
}

// testSession is a running relay with a scripted guest and fake host
// on either side.
type testSession struct {
	t     *testing.T
	guest *guestClient
	host  *fakeHost
	done  chan error
}

func startSession(t *testing.T, manualHost bool) *testSession {
	t.Helper()
	guestDriver, guestRelay := socketPair(t)
	hostRelay, hostDriver := socketPair(t)

	host := newFakeHost(t, hostDriver, manualHost)
	go host.run()

	session := NewSession(SessionConfig{
		Guest:     wire.NewConn(guestRelay),
		Host:      wire.NewConn(hostRelay),
		Allocator: transport.MemfdAllocator{},
		Tag:       testTag,
		Logger:    discardLogger(),
	})
	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background()) }()

	ts := &testSession{
		t:     t,
		guest: newGuestClient(t, guestDriver),
		host:  host,
		done:  done,
	}
	t.Cleanup(ts.shutdown)
	return ts
}

// shutdown closes the guest side and waits for the session and fake
// host to wind down.
func (ts *testSession) shutdown() {
	ts.guest.conn.Close()
	select {
	case <-ts.done:
	case <-time.After(5 * time.Second):
		ts.t.Error("session never finished")
	}
	select {
	case <-ts.host.closed:
	case <-time.After(5 * time.Second):
		ts.t.Error("fake host never finished")
	}
}

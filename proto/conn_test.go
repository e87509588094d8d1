// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

import (
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/waybridge/wire"
)

// pair is a client and server connection joined by a socketpair. The
// tests drive both sides synchronously: a send on one side, one step
// on the other.
type pair struct {
	client *Conn
	server *Conn

	clientWire *wire.Conn
	serverWire *wire.Conn
}

func newPair(t *testing.T) *pair {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	clientConn := fileConn(t, fds[0])
	serverConn := fileConn(t, fds[1])
	deadline := time.Now().Add(10 * time.Second)
	clientConn.SetDeadline(deadline)
	serverConn.SetDeadline(deadline)

	p := &pair{
		clientWire: wire.NewConn(clientConn),
		serverWire: wire.NewConn(serverConn),
	}
	p.client = NewClient(p.clientWire, nil)
	p.server = NewServer(p.serverWire, nil)
	t.Cleanup(func() {
		p.client.Close()
		p.server.Close()
	})
	return p
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

// step reads and dispatches exactly one message on conn.
func step(t *testing.T, conn *Conn) error {
	t.Helper()
	in, err := conn.Read()
	if err != nil {
		return err
	}
	return conn.Dispatch(in)
}

func mustStep(t *testing.T, conn *Conn) {
	t.Helper()
	if err := step(t, conn); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

// bindGlobal walks a client object through get_registry and bind so
// the server ends up with a registered peer of the same ID.
func bindGlobal(t *testing.T, p *pair, iface *Interface, version uint32) (clientObj, serverObj *Object) {
	t.Helper()

	var bound *Object
	p.server.Display().SetHandler(func(obj *Object, op uint16, args *Args) error {
		if op != DisplayGetRegistry {
			t.Fatalf("server display got opcode %d", op)
		}
		registry := args.NewObject(0)
		registry.SetHandler(func(obj *Object, op uint16, args *Args) error {
			if op != RegistryBind {
				t.Fatalf("server registry got opcode %d", op)
			}
			created, err := p.server.Register(args.NewID(3), iface, args.Uint(2))
			if err != nil {
				return err
			}
			bound = created
			return nil
		})
		return nil
	})

	registry := p.client.NewObject(Registry, 1)
	if err := p.client.SendRequest(p.client.Display(), DisplayGetRegistry, registry); err != nil {
		t.Fatalf("get_registry: %v", err)
	}
	mustStep(t, p.server)

	clientObj = p.client.NewObject(iface, version)
	if err := p.client.SendRequest(registry, RegistryBind, uint32(0), iface.Name, version, clientObj); err != nil {
		t.Fatalf("bind: %v", err)
	}
	mustStep(t, p.server)

	if bound == nil {
		t.Fatal("server never registered the bound object")
	}
	if bound.ID() != clientObj.ID() {
		t.Fatalf("server registered ID %d, client allocated %d", bound.ID(), clientObj.ID())
	}
	return clientObj, bound
}

func TestNewObjectCreationAndVersionInheritance(t *testing.T) {
	p := newPair(t)
	compositor, serverCompositor := bindGlobal(t, p, Compositor, 3)

	var created *Object
	serverCompositor.SetHandler(func(obj *Object, op uint16, args *Args) error {
		if op != CompositorCreateSurface {
			t.Fatalf("compositor got opcode %d", op)
		}
		created = args.NewObject(0)
		return nil
	})

	surface := p.client.NewObject(Surface, 3)
	if err := p.client.SendRequest(compositor, CompositorCreateSurface, surface); err != nil {
		t.Fatalf("create_surface: %v", err)
	}
	mustStep(t, p.server)

	if created == nil {
		t.Fatal("server never saw the new surface")
	}
	if created.Interface() != Surface {
		t.Fatalf("created object is %s, wanted wl_surface", created.Interface().Name)
	}
	if created.Version() != 3 {
		t.Fatalf("created surface at version %d, wanted the parent's 3", created.Version())
	}
	if got := p.server.Object(created.ID()); got != created {
		t.Fatalf("server map lookup = %v, wanted the created surface", got)
	}
}

func TestDeleteObjectConfirmsAndFiresHooks(t *testing.T) {
	p := newPair(t)
	compositor, serverCompositor := bindGlobal(t, p, Compositor, 3)

	serverCompositor.SetHandler(func(obj *Object, op uint16, args *Args) error {
		created := args.NewObject(0)
		created.SetHandler(func(obj *Object, op uint16, args *Args) error {
			if op == SurfaceDestroy {
				return p.server.DeleteObject(obj)
			}
			return nil
		})
		return nil
	})

	surface := p.client.NewObject(Surface, 3)
	if err := p.client.SendRequest(compositor, CompositorCreateSurface, surface); err != nil {
		t.Fatalf("create_surface: %v", err)
	}
	mustStep(t, p.server)

	deleted := false
	surface.OnDelete(func() { deleted = true })

	if err := p.client.SendRequest(surface, SurfaceDestroy); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	mustStep(t, p.server)

	// The client still holds the object until delete_id arrives.
	if deleted {
		t.Fatal("deletion hook fired before the server confirmed")
	}
	mustStep(t, p.client)
	if !deleted {
		t.Fatal("deletion hook never fired")
	}
	if p.client.Object(surface.ID()) != nil {
		t.Fatal("client still maps the deleted surface")
	}
}

func TestIDReuseAfterDelete(t *testing.T) {
	p := newPair(t)
	compositor, serverCompositor := bindGlobal(t, p, Compositor, 3)
	serverCompositor.SetHandler(func(obj *Object, op uint16, args *Args) error {
		created := args.NewObject(0)
		created.SetHandler(func(obj *Object, op uint16, args *Args) error {
			return p.server.DeleteObject(obj)
		})
		return nil
	})

	surface := p.client.NewObject(Surface, 3)
	if err := p.client.SendRequest(compositor, CompositorCreateSurface, surface); err != nil {
		t.Fatalf("create_surface: %v", err)
	}
	mustStep(t, p.server)
	if err := p.client.SendRequest(surface, SurfaceDestroy); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	mustStep(t, p.server)
	mustStep(t, p.client)

	replacement := p.client.NewObject(Surface, 3)
	if replacement.ID() != surface.ID() {
		t.Fatalf("freed ID %d was not reused, got %d", surface.ID(), replacement.ID())
	}
}

func TestUnknownObjectIsProtocolError(t *testing.T) {
	p := newPair(t)

	// A request on an ID the server never registered.
	ghost := p.client.NewObject(Compositor, 1)
	if err := p.client.SendRequest(ghost, CompositorCreateRegion, p.client.NewObject(Region, 1)); err != nil {
		t.Fatalf("send: %v", err)
	}

	err := step(t, p.server)
	var violation *ProtocolError
	if !errors.As(err, &violation) {
		t.Fatalf("server returned %v, wanted a protocol error", err)
	}
	if violation.Code != DisplayErrorInvalidObject {
		t.Fatalf("violation code = %d, wanted invalid_object", violation.Code)
	}
}

func TestInvalidOpcodeIsProtocolError(t *testing.T) {
	p := newPair(t)

	// Raw message with an opcode outside wl_display's table.
	raw := wire.NewMessage(1, 42)
	if err := p.clientWire.WriteMessage(raw); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := step(t, p.server)
	var violation *ProtocolError
	if !errors.As(err, &violation) {
		t.Fatalf("server returned %v, wanted a protocol error", err)
	}
	if violation.Code != DisplayErrorInvalidMethod {
		t.Fatalf("violation code = %d, wanted invalid_method", violation.Code)
	}
}

func TestPostErrorReachesClient(t *testing.T) {
	p := newPair(t)

	if err := p.server.PostError(Errorf(nil, DisplayErrorImplementation, "engine said no")); err != nil {
		t.Fatalf("PostError: %v", err)
	}
	err := step(t, p.client)
	if err == nil {
		t.Fatal("client treated wl_display.error as non-fatal")
	}
}

func TestFileDescriptorArgument(t *testing.T) {
	p := newPair(t)
	shm, serverShm := bindGlobal(t, p, Shm, 1)

	var receivedContent []byte
	serverShm.SetHandler(func(obj *Object, op uint16, args *Args) error {
		if op != ShmCreatePool {
			t.Fatalf("shm got opcode %d", op)
		}
		pool := args.File(1)
		defer pool.Close()
		buf := make([]byte, args.Int(2))
		if _, err := pool.ReadAt(buf, 0); err != nil {
			t.Fatalf("read pool descriptor: %v", err)
		}
		receivedContent = buf
		return nil
	})

	backing, err := os.CreateTemp(t.TempDir(), "pool")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer backing.Close()
	if _, err := backing.WriteString("pool"); err != nil {
		t.Fatalf("write pool: %v", err)
	}

	poolObj := p.client.NewObject(ShmPool, 1)
	if err := p.client.SendRequest(shm, ShmCreatePool, poolObj, backing, int32(4)); err != nil {
		t.Fatalf("create_pool: %v", err)
	}
	mustStep(t, p.server)

	if string(receivedContent) != "pool" {
		t.Fatalf("server read %q through the descriptor", receivedContent)
	}
}

func TestCallbackFiresOnce(t *testing.T) {
	p := newPair(t)

	fired := 0
	callback := p.client.NewCallback(func(data uint32) {
		if data != 99 {
			t.Fatalf("done data = %d", data)
		}
		fired++
	})
	if err := p.client.SendRequest(p.client.Display(), DisplaySync, callback); err != nil {
		t.Fatalf("sync: %v", err)
	}

	p.server.Display().SetHandler(func(obj *Object, op uint16, args *Args) error {
		created := args.NewObject(0)
		if err := p.server.SendEvent(created, CallbackDone, uint32(99)); err != nil {
			return err
		}
		return p.server.DeleteObject(created)
	})
	mustStep(t, p.server)

	mustStep(t, p.client) // done
	mustStep(t, p.client) // delete_id
	if fired != 1 {
		t.Fatalf("callback fired %d times", fired)
	}
	if p.client.Object(callback.ID()) != nil {
		t.Fatal("callback object survived its delete_id")
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/waybridge/wire"
)

// Role selects which side of the protocol a connection plays.
type Role int

const (
	// RoleClient faces a compositor: the local side sends requests,
	// receives events, and allocates object IDs from 1 upward.
	RoleClient Role = iota + 1

	// RoleServer faces a Wayland client: the local side sends events,
	// receives requests, and registers the IDs the remote allocates.
	RoleServer
)

// Conn is one protocol session over a wire connection: the object map,
// ID allocation for the local side, and signature-driven dispatch.
//
// Conn is not safe for concurrent use. The relay reads on a dedicated
// goroutine (Read) and dispatches plus writes from a single session
// loop (Dispatch, SendRequest, SendEvent); Read only touches the wire
// and the fd queue, never the object map.
type Conn struct {
	role   Role
	wc     *wire.Conn
	logger *slog.Logger

	objects map[ObjectID]*Object
	display *Object
	nextID  ObjectID
	freed   []ObjectID
	serial  uint32
}

// NewClient starts a client-role session: object 1 is wl_display, and
// its error and delete_id events are handled internally.
func NewClient(wc *wire.Conn, logger *slog.Logger) *Conn {
	c := newConn(RoleClient, wc, logger)
	c.display.SetHandler(c.clientDisplayEvent)
	return c
}

// NewServer starts a server-role session: object 1 is wl_display with
// no handler. The caller installs one to answer sync and get_registry.
func NewServer(wc *wire.Conn, logger *slog.Logger) *Conn {
	return newConn(RoleServer, wc, logger)
}

func newConn(role Role, wc *wire.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		role:    role,
		wc:      wc,
		logger:  logger,
		objects: make(map[ObjectID]*Object),
		nextID:  2,
	}
	c.display = &Object{id: 1, iface: Display, version: 1, conn: c}
	c.objects[1] = c.display
	return c
}

// Display returns the connection's wl_display object.
func (c *Conn) Display() *Object { return c.display }

// Object returns the live object with the given ID, or nil.
func (c *Conn) Object(id ObjectID) *Object { return c.objects[id] }

// Serial returns the count of messages dispatched so far, used as the
// done value for locally answered wl_display.sync.
func (c *Conn) Serial() uint32 { return c.serial }

// Close closes the underlying wire connection.
func (c *Conn) Close() error { return c.wc.Close() }

// NewObject allocates a local-side object. The version is the bound
// version the object lives at, at most its interface's table version.
func (c *Conn) NewObject(iface *Interface, version uint32) *Object {
	id := c.allocID()
	o := &Object{id: id, iface: iface, version: version, conn: c}
	c.objects[id] = o
	return o
}

// NewCallback allocates a wl_callback whose handler invokes fn once on
// done. The object is removed from the map when the remote confirms
// its deletion, like any other object.
func (c *Conn) NewCallback(fn func(data uint32)) *Object {
	cb := c.NewObject(Callback, 1)
	cb.SetHandler(func(obj *Object, op uint16, args *Args) error {
		if op == CallbackDone && fn != nil {
			done := fn
			fn = nil
			done(args.Uint(0))
		}
		return nil
	})
	return cb
}

// Register records a remote-allocated object on a server-role
// connection (the new_id of a request). Guest IDs must be below
// ServerIDBase and unused.
func (c *Conn) Register(id ObjectID, iface *Interface, version uint32) (*Object, error) {
	if id == 0 || id >= ServerIDBase {
		return nil, Errorf(nil, DisplayErrorInvalidObject, "client-allocated ID %d out of range", id)
	}
	if _, exists := c.objects[id]; exists {
		return nil, Errorf(nil, DisplayErrorInvalidObject, "ID %d is already in use", id)
	}
	o := &Object{id: id, iface: iface, version: version, conn: c}
	c.objects[id] = o
	return o, nil
}

// DeleteObject finalizes a server-role object: it is removed from the
// map, the client is told the ID is reusable via delete_id, and the
// object's deletion hooks run.
func (c *Conn) DeleteObject(o *Object) error {
	if _, live := c.objects[o.id]; !live {
		return nil
	}
	delete(c.objects, o.id)
	err := c.SendEvent(c.display, DisplayDeleteID, uint32(o.id))
	o.runDeleteHooks()
	return err
}

// PostError reports a protocol violation to the remote client with
// wl_display.error. The connection is unusable for anything but
// teardown afterwards.
func (c *Conn) PostError(e *ProtocolError) error {
	target := e.Object
	if target == nil {
		// Unattributable violations are reported against the display.
		target = c.display
	}
	return c.SendEvent(c.display, DisplayError, target, e.Code, e.Message)
}

// SendRequest sends a request on a client-role connection.
func (c *Conn) SendRequest(o *Object, op uint16, args ...any) error {
	desc, err := o.iface.Request(op)
	if err != nil {
		panic(err.Error())
	}
	return c.send(o, op, desc, args)
}

// SendEvent sends an event on a server-role connection.
func (c *Conn) SendEvent(o *Object, op uint16, args ...any) error {
	desc, err := o.iface.Event(op)
	if err != nil {
		panic(err.Error())
	}
	return c.send(o, op, desc, args)
}

func (c *Conn) send(o *Object, op uint16, desc *MessageDesc, args []any) error {
	if len(args) != desc.argCount() {
		panic(fmt.Sprintf("proto: %s.%s takes %d arguments, got %d", o.iface.Name, desc.Name, desc.argCount(), len(args)))
	}

	m := wire.NewMessage(uint32(o.id), op)
	err := desc.eachArg(func(index int, char byte, nullable bool, objIndex int) error {
		v := args[index]
		switch char {
		case 'i':
			m.PutInt(v.(int32))
		case 'u':
			m.PutUint(v.(uint32))
		case 'f':
			m.PutFixed(v.(wire.Fixed))
		case 's':
			m.PutString(v.(string))
		case 'o', 'n':
			obj, _ := v.(*Object)
			if obj == nil {
				if !nullable {
					panic(fmt.Sprintf("proto: %s.%s argument %d is a non-nullable object", o.iface.Name, desc.Name, index))
				}
				m.PutUint(0)
				break
			}
			m.PutUint(uint32(obj.id))
		case 'a':
			m.PutArray(v.([]byte))
		case 'h':
			m.PutFD(v.(*os.File))
		default:
			panic(fmt.Sprintf("proto: %s.%s has unknown signature character %q", o.iface.Name, desc.Name, char))
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug("send", "object", o.String(), "message", desc.Name)
	return c.wc.WriteMessage(m)
}

// Inbound is one message read off the wire with its target resolved
// and its file descriptors claimed, but its arguments not yet parsed.
// Read and Dispatch are split so that a session can read on one
// goroutine and dispatch on another without racing the object map.
type Inbound struct {
	Object *Object
	Op     uint16
	Desc   *MessageDesc

	msg *wire.Message
	fds []*os.File
}

// Discard releases any file descriptors claimed for the message. Used
// when a session drops an inbound message during teardown.
func (in *Inbound) Discard() {
	for _, f := range in.fds {
		f.Close()
	}
	in.fds = nil
}

// Read reads one message and resolves its target object and
// descriptor. File descriptors the message's signature calls for are
// claimed from the wire queue here, keeping queue order intact even if
// dispatch is deferred.
func (c *Conn) Read() (*Inbound, error) {
	m, err := c.wc.ReadMessage()
	if err != nil {
		return nil, err
	}

	o := c.objects[ObjectID(m.Sender)]
	if o == nil {
		if c.role == RoleServer {
			return nil, Errorf(nil, DisplayErrorInvalidObject, "request on unknown object %d", m.Sender)
		}
		return nil, fmt.Errorf("proto: event for unknown object %d", m.Sender)
	}

	var desc *MessageDesc
	if c.role == RoleServer {
		desc, err = o.iface.Request(m.Opcode)
		if err != nil {
			return nil, Errorf(o, DisplayErrorInvalidMethod, "invalid request opcode %d on %s", m.Opcode, o)
		}
	} else {
		desc, err = o.iface.Event(m.Opcode)
		if err != nil {
			return nil, err
		}
	}

	in := &Inbound{Object: o, Op: m.Opcode, Desc: desc, msg: m}
	for i := 0; i < len(desc.Signature); i++ {
		if desc.Signature[i] != 'h' {
			continue
		}
		f, err := c.wc.TakeFD()
		if err != nil {
			in.Discard()
			return nil, err
		}
		in.fds = append(in.fds, f)
	}
	return in, nil
}

// Dispatch parses an inbound message's arguments and invokes the
// target's handler. Messages for objects without a handler are
// dropped after closing any fd arguments.
func (c *Conn) Dispatch(in *Inbound) error {
	args, err := c.parseArgs(in)
	if err != nil {
		in.Discard()
		return err
	}
	c.serial++

	c.logger.Debug("dispatch", "object", in.Object.String(), "message", in.Desc.Name)
	if in.Object.handler == nil {
		in.Discard()
		return nil
	}
	return in.Object.handler(in.Object, in.Op, args)
}

func (c *Conn) parseArgs(in *Inbound) (*Args, error) {
	args := &Args{desc: in.Desc}
	fdIndex := 0
	err := in.Desc.eachArg(func(index int, char byte, nullable bool, objIndex int) error {
		switch char {
		case 'i':
			v, err := in.msg.Int()
			if err != nil {
				return err
			}
			args.vals = append(args.vals, v)
		case 'u':
			v, err := in.msg.Uint()
			if err != nil {
				return err
			}
			args.vals = append(args.vals, v)
		case 'f':
			v, err := in.msg.Fixed()
			if err != nil {
				return err
			}
			args.vals = append(args.vals, v)
		case 's':
			v, err := in.msg.String()
			if err != nil {
				return err
			}
			args.vals = append(args.vals, v)
		case 'o':
			id, err := in.msg.Uint()
			if err != nil {
				return err
			}
			if id == 0 {
				args.vals = append(args.vals, nil)
				break
			}
			ref := c.objects[ObjectID(id)]
			if ref == nil {
				if c.role == RoleServer {
					return Errorf(in.Object, DisplayErrorInvalidObject, "%s references unknown object %d", in.Desc.Name, id)
				}
				return fmt.Errorf("proto: %s on %s references unknown object %d", in.Desc.Name, in.Object, id)
			}
			if want := in.Desc.Types[objIndex]; want != nil && ref.iface != want {
				if c.role == RoleServer {
					return Errorf(in.Object, DisplayErrorInvalidObject,
						"%s argument %d is %s, wanted %s", in.Desc.Name, index, ref.iface.Name, want.Name)
				}
				return fmt.Errorf("proto: %s argument %d is %s, wanted %s", in.Desc.Name, index, ref.iface.Name, want.Name)
			}
			args.vals = append(args.vals, ref)
		case 'n':
			id, err := in.msg.Uint()
			if err != nil {
				return err
			}
			iface := in.Desc.Types[objIndex]
			if iface == nil {
				// Untyped new_id (wl_registry.bind): the handler
				// validates and registers the object itself.
				args.vals = append(args.vals, ObjectID(id))
				break
			}
			created, err := c.newRemoteObject(ObjectID(id), iface, in.Object.version)
			if err != nil {
				return err
			}
			args.vals = append(args.vals, created)
		case 'a':
			v, err := in.msg.Array()
			if err != nil {
				return err
			}
			args.vals = append(args.vals, v)
		case 'h':
			args.vals = append(args.vals, in.fds[fdIndex])
			fdIndex++
		default:
			return fmt.Errorf("proto: %s has unknown signature character %q", in.Desc.Name, char)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return args, nil
}

// newRemoteObject creates the object for a typed new_id argument. The
// object lives at its parent's version, capped by the interface table.
func (c *Conn) newRemoteObject(id ObjectID, iface *Interface, parentVersion uint32) (*Object, error) {
	version := min(parentVersion, iface.Version)
	if c.role == RoleServer {
		return c.Register(id, iface, version)
	}
	if _, exists := c.objects[id]; exists {
		return nil, fmt.Errorf("proto: remote created object %d which is already in use", id)
	}
	o := &Object{id: id, iface: iface, version: version, conn: c}
	c.objects[id] = o
	return o, nil
}

// clientDisplayEvent handles wl_display events on a client-role
// connection: error is fatal to the session, delete_id confirms an
// object's deletion and fires its hooks.
func (c *Conn) clientDisplayEvent(obj *Object, op uint16, args *Args) error {
	switch op {
	case DisplayError:
		target := args.Object(0)
		return fmt.Errorf("proto: fatal display error on %s: code %d: %s", target, args.Uint(1), args.String(2))
	case DisplayDeleteID:
		id := ObjectID(args.Uint(0))
		o := c.objects[id]
		if o == nil {
			return nil
		}
		delete(c.objects, id)
		c.freeID(id)
		o.runDeleteHooks()
		return nil
	}
	return nil
}

func (c *Conn) allocID() ObjectID {
	if n := len(c.freed); n > 0 {
		id := c.freed[n-1]
		c.freed = c.freed[:n-1]
		return id
	}
	id := c.nextID
	c.nextID++
	return id
}

func (c *Conn) freeID(id ObjectID) {
	c.freed = append(c.freed, id)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

import "fmt"

// ObjectID is a protocol object identifier. IDs below 0xff000000 are
// allocated by the client side of a connection, IDs at or above it by
// the server side.
type ObjectID uint32

// ServerIDBase is the first server-allocated object ID.
const ServerIDBase ObjectID = 0xff000000

// Handler receives a dispatched message: the target object, the opcode
// within the object's interface, and the parsed arguments. A returned
// error aborts the session, except *ProtocolError which is reported to
// the offending client first.
type Handler func(obj *Object, op uint16, args *Args) error

// Object is one live protocol object on a connection. It carries the
// per-proxy facilities the relay builds on: an opaque user-data slot
// and one-shot deletion hooks that fire when the object's death is
// confirmed (delete_id received in RoleClient, DeleteObject called in
// RoleServer).
type Object struct {
	id      ObjectID
	iface   *Interface
	version uint32
	conn    *Conn

	handler  Handler
	user     any
	onDelete []func()
}

// ID returns the object's protocol ID.
func (o *Object) ID() ObjectID { return o.id }

// Interface returns the object's interface descriptor.
func (o *Object) Interface() *Interface { return o.iface }

// Version returns the version the object was bound or created at.
func (o *Object) Version() uint32 { return o.version }

// SetHandler installs the message handler.
func (o *Object) SetHandler(h Handler) { o.handler = h }

// SetUserData stores an opaque value on the object.
func (o *Object) SetUserData(v any) { o.user = v }

// UserData returns the value stored with SetUserData, or nil.
func (o *Object) UserData() any { return o.user }

// OnDelete registers a hook to run when the object's deletion is
// confirmed. Hooks run in registration order, exactly once.
func (o *Object) OnDelete(fn func()) {
	o.onDelete = append(o.onDelete, fn)
}

func (o *Object) runDeleteHooks() {
	hooks := o.onDelete
	o.onDelete = nil
	for _, fn := range hooks {
		fn()
	}
}

func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", o.iface.Name, o.id)
}

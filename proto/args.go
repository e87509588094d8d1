// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/waybridge/wire"
)

// Args is the decoded argument vector of a dispatched message. The
// typed accessors are driven by the message signature; asking for the
// wrong type at an index is an engine bug and panics with the message
// context. Index positions count arguments, not signature characters
// ('?' markers are not arguments).
type Args struct {
	desc *MessageDesc
	vals []any
}

// Len returns the number of arguments.
func (a *Args) Len() int { return len(a.vals) }

// Name returns the message name, for logging.
func (a *Args) Name() string { return a.desc.Name }

func (a *Args) at(i int) any {
	if i < 0 || i >= len(a.vals) {
		panic(fmt.Sprintf("proto: %s argument %d out of range (%d args)", a.desc.Name, i, len(a.vals)))
	}
	return a.vals[i]
}

func argPanic(desc *MessageDesc, i int, want string, got any) {
	panic(fmt.Sprintf("proto: %s argument %d is %T, wanted %s", desc.Name, i, got, want))
}

// Int returns argument i as int32.
func (a *Args) Int(i int) int32 {
	v, ok := a.at(i).(int32)
	if !ok {
		argPanic(a.desc, i, "int32", a.vals[i])
	}
	return v
}

// Uint returns argument i as uint32.
func (a *Args) Uint(i int) uint32 {
	v, ok := a.at(i).(uint32)
	if !ok {
		argPanic(a.desc, i, "uint32", a.vals[i])
	}
	return v
}

// Fixed returns argument i as a 24.8 fixed-point value.
func (a *Args) Fixed(i int) wire.Fixed {
	v, ok := a.at(i).(wire.Fixed)
	if !ok {
		argPanic(a.desc, i, "fixed", a.vals[i])
	}
	return v
}

// String returns argument i as a string.
func (a *Args) String(i int) string {
	v, ok := a.at(i).(string)
	if !ok {
		argPanic(a.desc, i, "string", a.vals[i])
	}
	return v
}

// Object returns argument i as an object reference. Nullable
// arguments yield nil.
func (a *Args) Object(i int) *Object {
	v := a.at(i)
	if v == nil {
		return nil
	}
	obj, ok := v.(*Object)
	if !ok {
		argPanic(a.desc, i, "object", v)
	}
	return obj
}

// NewObject returns argument i as the freshly created object of a
// typed new_id argument.
func (a *Args) NewObject(i int) *Object {
	obj, ok := a.at(i).(*Object)
	if !ok {
		argPanic(a.desc, i, "new object", a.vals[i])
	}
	return obj
}

// NewID returns argument i as the raw ID of an untyped new_id
// argument (wl_registry.bind).
func (a *Args) NewID(i int) ObjectID {
	id, ok := a.at(i).(ObjectID)
	if !ok {
		argPanic(a.desc, i, "new id", a.vals[i])
	}
	return id
}

// Array returns argument i as a byte array.
func (a *Args) Array(i int) []byte {
	v, ok := a.at(i).([]byte)
	if !ok {
		argPanic(a.desc, i, "array", a.vals[i])
	}
	return v
}

// File returns argument i as a received file descriptor. The caller
// takes ownership.
func (a *Args) File(i int) *os.File {
	v, ok := a.at(i).(*os.File)
	if !ok {
		argPanic(a.desc, i, "fd", a.vals[i])
	}
	return v
}

// NewObjects returns the objects created by the message's typed
// new_id arguments, in signature order. A server uses it to install
// handlers on everything one request created.
func (a *Args) NewObjects() []*Object {
	var out []*Object
	a.desc.eachArg(func(index int, char byte, nullable bool, objIndex int) error {
		if char == 'n' {
			if obj, ok := a.vals[index].(*Object); ok {
				out = append(out, obj)
			}
		}
		return nil
	})
	return out
}

// Forward rebuilds the argument list for re-sending the same message
// on another connection, translating each object argument through
// translate. Typed new_id arguments are objects too and also go
// through translate; untyped new_id and fd arguments pass through
// unchanged. The caller handles messages that create objects
// explicitly.
func (a *Args) Forward(translate func(*Object) *Object) []any {
	out := make([]any, len(a.vals))
	for i, v := range a.vals {
		if obj, ok := v.(*Object); ok || v == nil {
			if obj == nil {
				out[i] = (*Object)(nil)
			} else {
				out[i] = translate(obj)
			}
			continue
		}
		out[i] = v
	}
	return out
}

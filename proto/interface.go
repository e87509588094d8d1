// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

import "fmt"

// MessageDesc describes one request or event of an interface.
//
// Signature uses the libwayland characters, one per argument:
//
//	i  int32
//	u  uint32
//	f  24.8 fixed
//	s  string
//	o  object ID
//	n  new object ID
//	a  byte array
//	h  file descriptor (out-of-band)
//
// A '?' prefixes a nullable argument ('?o', '?s'). Types carries one
// entry per 'o' and 'n' in signature order; a nil entry means the
// argument is untyped on the wire (wl_registry.bind's new_id, which
// is preceded by its interface name and version as explicit s and u
// arguments).
type MessageDesc struct {
	Name      string
	Signature string
	Types     []*Interface
}

// Interface describes a Wayland interface: its protocol name, the
// highest version this module understands, and its request and event
// tables indexed by opcode.
type Interface struct {
	Name     string
	Version  uint32
	Requests []MessageDesc
	Events   []MessageDesc
}

func (i *Interface) String() string { return i.Name }

// Request returns the descriptor for a request opcode.
func (i *Interface) Request(op uint16) (*MessageDesc, error) {
	if int(op) >= len(i.Requests) {
		return nil, fmt.Errorf("proto: %s has no request opcode %d", i.Name, op)
	}
	return &i.Requests[op], nil
}

// Event returns the descriptor for an event opcode.
func (i *Interface) Event(op uint16) (*MessageDesc, error) {
	if int(op) >= len(i.Events) {
		return nil, fmt.Errorf("proto: %s has no event opcode %d", i.Name, op)
	}
	return &i.Events[op], nil
}

// eachArg iterates the signature, invoking fn with the argument index,
// the signature character, whether the argument is nullable, and the
// running count of preceding 'o'/'n' arguments (the index into Types).
func (d *MessageDesc) eachArg(fn func(index int, c byte, nullable bool, objIndex int) error) error {
	index, objIndex := 0, 0
	nullable := false
	for i := 0; i < len(d.Signature); i++ {
		c := d.Signature[i]
		if c == '?' {
			nullable = true
			continue
		}
		if err := fn(index, c, nullable, objIndex); err != nil {
			return err
		}
		if c == 'o' || c == 'n' {
			objIndex++
		}
		index++
		nullable = false
	}
	return nil
}

// argCount returns the number of arguments in the signature.
func (d *MessageDesc) argCount() int {
	n := 0
	for i := 0; i < len(d.Signature); i++ {
		if d.Signature[i] != '?' {
			n++
		}
	}
	return n
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
	"os"
)

// headerSize is the fixed Wayland message header: sender object ID,
// then size<<16|opcode, both 32-bit words in host byte order.
const headerSize = 8

// MaxMessageSize is the largest message the wire format can express:
// the size field is 16 bits and includes the header.
const MaxMessageSize = 1<<16 - 1

// byteOrder is the host byte order. The Wayland wire format is defined
// in terms of the machine's native order, not a fixed endianness.
var byteOrder = binary.NativeEndian

// Fixed is a signed 24.8 fixed-point number, the wire representation
// of fractional coordinates.
type Fixed int32

// Float64 converts the fixed-point value to a float64.
func (f Fixed) Float64() float64 { return float64(f) / 256 }

// FixedFromFloat64 converts a float64 to 24.8 fixed point.
func FixedFromFloat64(v float64) Fixed { return Fixed(v * 256) }

// Message is a single Wayland message: the sending object's ID, the
// opcode within that object's interface, a 32-bit aligned argument
// payload, and any file descriptors attached for fd-typed arguments.
//
// A Message is either under construction (NewMessage followed by Put
// calls) or under decode (returned by Conn.ReadMessage, consumed by
// the typed getters). The getters advance an internal cursor and
// return an error on truncation; the protocol layer drives them from
// the message signature, so a truncation here means the sender framed
// the message incorrectly.
type Message struct {
	Sender uint32
	Opcode uint16

	data []byte
	off  int
	fds  []*os.File
}

// NewMessage starts a message from sender with the given opcode.
func NewMessage(sender uint32, opcode uint16) *Message {
	return &Message{Sender: sender, Opcode: opcode}
}

// Size returns the total on-wire size of the message including the
// header.
func (m *Message) Size() int { return headerSize + len(m.data) }

// FDs returns the file descriptors attached to the message, in
// argument order.
func (m *Message) FDs() []*os.File { return m.fds }

// PutUint appends a 32-bit unsigned integer argument.
func (m *Message) PutUint(v uint32) {
	m.data = byteOrder.AppendUint32(m.data, v)
}

// PutInt appends a 32-bit signed integer argument.
func (m *Message) PutInt(v int32) {
	m.data = byteOrder.AppendUint32(m.data, uint32(v))
}

// PutFixed appends a 24.8 fixed-point argument.
func (m *Message) PutFixed(v Fixed) {
	m.data = byteOrder.AppendUint32(m.data, uint32(v))
}

// PutString appends a string argument: 32-bit length including the
// terminating NUL, the bytes, a NUL, and padding to a 32-bit boundary.
func (m *Message) PutString(s string) {
	m.data = byteOrder.AppendUint32(m.data, uint32(len(s)+1))
	m.data = append(m.data, s...)
	m.data = append(m.data, 0)
	m.pad()
}

// PutArray appends a byte array argument: 32-bit length, the bytes,
// and padding to a 32-bit boundary.
func (m *Message) PutArray(b []byte) {
	m.data = byteOrder.AppendUint32(m.data, uint32(len(b)))
	m.data = append(m.data, b...)
	m.pad()
}

// PutFD attaches a file descriptor argument. FDs travel out-of-band
// as SCM_RIGHTS ancillary data and contribute no payload bytes.
func (m *Message) PutFD(f *os.File) {
	m.fds = append(m.fds, f)
}

func (m *Message) pad() {
	for len(m.data)%4 != 0 {
		m.data = append(m.data, 0)
	}
}

func (m *Message) next(n int) ([]byte, error) {
	if m.off+n > len(m.data) {
		return nil, fmt.Errorf("wire: message truncated: want %d bytes at offset %d of %d (sender %d opcode %d)",
			n, m.off, len(m.data), m.Sender, m.Opcode)
	}
	b := m.data[m.off : m.off+n]
	m.off += n
	return b, nil
}

// Uint reads a 32-bit unsigned integer argument.
func (m *Message) Uint() (uint32, error) {
	b, err := m.next(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b), nil
}

// Int reads a 32-bit signed integer argument.
func (m *Message) Int() (int32, error) {
	v, err := m.Uint()
	return int32(v), err
}

// Fixed reads a 24.8 fixed-point argument.
func (m *Message) Fixed() (Fixed, error) {
	v, err := m.Uint()
	return Fixed(v), err
}

// String reads a string argument and strips the terminating NUL.
func (m *Message) String() (string, error) {
	n, err := m.Uint()
	if err != nil {
		return "", err
	}
	if n == 0 {
		// Null string (nullable string argument).
		return "", nil
	}
	b, err := m.next(int(n + (4-n%4)%4))
	if err != nil {
		return "", err
	}
	return string(b[:n-1]), nil
}

// Array reads a byte array argument. The returned slice aliases the
// message payload and is only valid until the message is released.
func (m *Message) Array() ([]byte, error) {
	n, err := m.Uint()
	if err != nil {
		return nil, err
	}
	b, err := m.next(int(n + (4-n%4)%4))
	if err != nil {
		return nil, err
	}
	return b[:n], nil
}

// Remaining reports how many payload bytes are left to decode.
func (m *Message) Remaining() int { return len(m.data) - m.off }

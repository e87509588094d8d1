// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Conn frames Wayland messages over a Unix domain socket.
//
// Incoming file descriptors are decoupled from message boundaries: the
// kernel attaches SCM_RIGHTS data to whichever recvmsg happens to pick
// it up. Conn therefore drains every ancillary batch into an ordered
// queue, and the protocol layer pops descriptors from the queue as it
// parses fd-typed arguments. Senders emit descriptors in argument
// order, so queue order is argument order.
//
// Reads and queue pops happen on a session's reader goroutine and
// writes on its dispatcher; the mutex exists only because Close may
// arrive from the dispatcher while a read is in flight.
type Conn struct {
	conn *net.UnixConn

	mu     sync.Mutex
	fds    []*os.File
	closed bool
}

// NewConn wraps an established Unix socket connection.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{conn: c}
}

// ReadMessage reads one message header and payload. Attached file
// descriptors are queued on the connection, not on the message; use
// TakeFD to claim them in argument order.
func (c *Conn) ReadMessage() (*Message, error) {
	var header [headerSize]byte
	if err := c.readFull(header[:]); err != nil {
		return nil, err
	}
	sender := byteOrder.Uint32(header[:4])
	sizeOpcode := byteOrder.Uint32(header[4:])
	size := int(sizeOpcode >> 16)
	if size < headerSize {
		return nil, fmt.Errorf("wire: message from object %d declares size %d, minimum is %d", sender, size, headerSize)
	}

	m := &Message{
		Sender: sender,
		Opcode: uint16(sizeOpcode),
		data:   make([]byte, size-headerSize),
	}
	if err := c.readFull(m.data); err != nil {
		return nil, fmt.Errorf("wire: message body from object %d: %w", sender, err)
	}
	return m, nil
}

// readFull fills buf from the socket, collecting any ancillary file
// descriptors delivered along the way into the connection's fd queue.
func (c *Conn) readFull(buf []byte) error {
	oob := make([]byte, unix.CmsgSpace(maxFDsPerRead*4))
	for read := 0; read < len(buf); {
		n, oobn, _, _, err := c.conn.ReadMsgUnix(buf[read:], oob)
		if n > 0 {
			read += n
		}
		if oobn > 0 {
			if qErr := c.queueFDs(oob[:oobn]); qErr != nil {
				return qErr
			}
		}
		if err != nil {
			return err
		}
		if n == 0 && oobn == 0 {
			return io.EOF
		}
	}
	return nil
}

// maxFDsPerRead bounds the ancillary buffer per recvmsg. libwayland
// uses 28; anything the sender batches beyond the buffer arrives with
// a later read.
const maxFDsPerRead = 28

func (c *Conn) queueFDs(oob []byte) error {
	messages, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return fmt.Errorf("wire: parse control message: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range messages {
		fds, err := unix.ParseUnixRights(&messages[i])
		if err != nil {
			return fmt.Errorf("wire: parse SCM_RIGHTS: %w", err)
		}
		for _, fd := range fds {
			unix.CloseOnExec(fd)
			file := os.NewFile(uintptr(fd), "wayland-fd")
			if c.closed {
				file.Close()
				continue
			}
			c.fds = append(c.fds, file)
		}
	}
	return nil
}

// TakeFD claims the oldest queued file descriptor. The caller owns the
// returned file.
func (c *Conn) TakeFD() (*os.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.fds) == 0 {
		return nil, fmt.Errorf("wire: message argument wants a file descriptor but none is queued")
	}
	f := c.fds[0]
	c.fds = c.fds[1:]
	return f, nil
}

// WriteMessage sends a message, attaching its file descriptors as
// SCM_RIGHTS ancillary data on the same sendmsg. The message's files
// remain owned by the caller.
func (c *Conn) WriteMessage(m *Message) error {
	size := m.Size()
	if size > MaxMessageSize {
		return fmt.Errorf("wire: message from object %d is %d bytes, limit is %d", m.Sender, size, MaxMessageSize)
	}

	buf := make([]byte, 0, size)
	buf = byteOrder.AppendUint32(buf, m.Sender)
	buf = byteOrder.AppendUint32(buf, uint32(size)<<16|uint32(m.Opcode))
	buf = append(buf, m.data...)

	var oob []byte
	if len(m.fds) > 0 {
		raw := make([]int, len(m.fds))
		for i, f := range m.fds {
			raw[i] = int(f.Fd())
		}
		oob = unix.UnixRights(raw...)
	}

	n, oobn, err := c.conn.WriteMsgUnix(buf, oob, nil)
	if err != nil {
		return err
	}
	if n != len(buf) || oobn != len(oob) {
		return fmt.Errorf("wire: short write: %d/%d bytes, %d/%d oob", n, len(buf), oobn, len(oob))
	}
	return nil
}

// Close closes the socket and any file descriptors still queued.
func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	for _, f := range c.fds {
		f.Close()
	}
	c.fds = nil
	c.mu.Unlock()
	return c.conn.Close()
}

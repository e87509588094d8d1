// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/waybridge/internal/codec"
)

// allocRequest asks the memory daemon for a host-visible region.
type allocRequest struct {
	Op   string `cbor:"op"`
	Size int32  `cbor:"size"`
}

// allocResponse acknowledges an allocation. The descriptor itself
// arrives as SCM_RIGHTS ancillary data with the response bytes.
type allocResponse struct {
	OK    bool   `cbor:"ok"`
	Error string `cbor:"error,omitempty"`
}

// ControlAllocator obtains host-visible memory from an external memory
// daemon (the virtualization transport's allocation primitive). The
// daemon answers one request at a time; the mutex serializes sessions
// that share the allocator.
type ControlAllocator struct {
	mu   sync.Mutex
	conn *net.UnixConn
}

// DialControl connects to the memory daemon's control socket.
func DialControl(path string) (*ControlAllocator, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve control socket %s: %w", path, err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("transport: connect to memory daemon at %s: %w", path, err)
	}
	return &ControlAllocator{conn: conn}, nil
}

// Alloc requests size bytes of host-visible memory and receives the
// backing descriptor over the control socket.
func (a *ControlAllocator) Alloc(size int32) (*os.File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("transport: invalid allocation size %d", size)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	request, err := codec.Marshal(allocRequest{Op: "alloc", Size: size})
	if err != nil {
		return nil, fmt.Errorf("transport: encode alloc request: %w", err)
	}
	if _, err := a.conn.Write(request); err != nil {
		return nil, fmt.Errorf("transport: send alloc request: %w", err)
	}

	buf := make([]byte, 512)
	oob := make([]byte, unix.CmsgSpace(4))
	n, oobn, _, _, err := a.conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return nil, fmt.Errorf("transport: read alloc response: %w", err)
	}

	var response allocResponse
	if err := codec.Unmarshal(buf[:n], &response); err != nil {
		return nil, fmt.Errorf("transport: decode alloc response: %w", err)
	}
	if !response.OK {
		return nil, fmt.Errorf("transport: memory daemon refused %d bytes: %s", size, response.Error)
	}

	file, err := fileFromOOB(oob[:oobn])
	if err != nil {
		return nil, fmt.Errorf("transport: alloc response: %w", err)
	}
	return file, nil
}

// Close closes the control socket.
func (a *ControlAllocator) Close() error { return a.conn.Close() }

// fileFromOOB extracts exactly one descriptor from ancillary data.
func fileFromOOB(oob []byte) (*os.File, error) {
	messages, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("parse control message: %w", err)
	}
	for i := range messages {
		fds, err := unix.ParseUnixRights(&messages[i])
		if err != nil {
			return nil, fmt.Errorf("parse SCM_RIGHTS: %w", err)
		}
		if len(fds) > 0 {
			unix.CloseOnExec(fds[0])
			for _, extra := range fds[1:] {
				unix.Close(extra)
			}
			return os.NewFile(uintptr(fds[0]), "waybridge-hostmem"), nil
		}
	}
	return nil, fmt.Errorf("no descriptor attached to alloc response")
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Allocator produces host-visible memory for shared-memory pools. The
// returned file is owned by the caller, who closes it once the memory
// is mapped and published to the host.
type Allocator interface {
	// Alloc returns a file of exactly size bytes that the host
	// compositor can map.
	Alloc(size int32) (*os.File, error)

	// Close releases the allocator's own resources.
	Close() error
}

// MemfdAllocator backs pools with anonymous memfds. This works for a
// host compositor on the same machine, where any mappable descriptor
// is host-visible.
type MemfdAllocator struct{}

// Alloc creates a sealable memfd grown to size bytes.
func (MemfdAllocator) Alloc(size int32) (*os.File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("transport: invalid allocation size %d", size)
	}
	fd, err := unix.MemfdCreate("waybridge-pool", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("transport: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("transport: grow pool memfd to %d bytes: %w", size, err)
	}
	return os.NewFile(uintptr(fd), "waybridge-pool"), nil
}

// Close is a no-op; memfds have no shared state.
func (MemfdAllocator) Close() error { return nil }

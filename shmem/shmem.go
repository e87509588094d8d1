// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package shmem double-maps shared-memory pools: the guest client's
// pool file and a host-visible file of equal size, both mapped
// read/write into the relay's address space. Buffers slice both
// mappings at identical offsets, and the relay copies guest bytes into
// the host mapping at surface commit.
package shmem

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapping is one generation of a pool's backing memory. A pool resize
// produces a fresh Mapping; the old one stays alive for buffers that
// were sliced from it and is unmapped at pool destroy.
type Mapping struct {
	guest []byte
	host  []byte
}

// NewMapping maps size bytes of both files read/write. Neither file is
// retained; the caller keeps the guest file for future resizes and
// closes the host file once the mapping exists.
func NewMapping(guestFile, hostFile *os.File, size int32) (*Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shmem: invalid pool size %d", size)
	}

	guest, err := unix.Mmap(int(guestFile.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shmem: map guest pool (%d bytes): %w", size, err)
	}
	host, err := unix.Mmap(int(hostFile.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Munmap(guest)
		return nil, fmt.Errorf("shmem: map host pool (%d bytes): %w", size, err)
	}
	return &Mapping{guest: guest, host: host}, nil
}

// Size returns the mapped length in bytes.
func (m *Mapping) Size() int32 { return int32(len(m.guest)) }

// Slice returns the guest and host byte ranges [offset, offset+length)
// of the mapping. The two slices have identical length and offset, the
// buffer invariant the relay maintains.
func (m *Mapping) Slice(offset, length int32) (guest, host []byte, err error) {
	if offset < 0 || length < 0 || int64(offset)+int64(length) > int64(len(m.guest)) {
		return nil, nil, fmt.Errorf("shmem: slice [%d, %d) outside pool of %d bytes", offset, int64(offset)+int64(length), len(m.guest))
	}
	return m.guest[offset : offset+length], m.host[offset : offset+length], nil
}

// Unmap releases both mappings. Slices taken from the mapping are
// invalid afterwards.
func (m *Mapping) Unmap() error {
	if m.guest == nil {
		return nil
	}
	guestErr := unix.Munmap(m.guest)
	hostErr := unix.Munmap(m.host)
	m.guest, m.host = nil, nil
	return errors.Join(guestErr, hostErr)
}

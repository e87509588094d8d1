// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"

	"github.com/bureau-foundation/waybridge/proto"
	"github.com/bureau-foundation/waybridge/shmem"
)

// wl_shm error codes, reported on pool protocol violations.
const (
	shmErrorInvalidFormat uint32 = 0
	shmErrorInvalidStride uint32 = 1
	shmErrorInvalidFD     uint32 = 2
)

func (s *Session) bindShm(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.Shm, server.Version())
	if err != nil {
		return err
	}
	// The host's format announcements pass straight through.
	host.SetHandler(s.eventForwarder(server))
	server.SetUserData(&shmPair{peer{host}})
	server.SetHandler(s.shmRequest)
	return nil
}

func (s *Session) shmRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op != proto.ShmCreatePool {
		return unhandledRequest(obj, op)
	}

	server := args.NewObject(0)
	guestFile := args.File(1)
	size := args.Int(2)
	if size <= 0 {
		guestFile.Close()
		return proto.Errorf(obj, shmErrorInvalidStride, "create_pool with size %d", size)
	}

	pool := &poolPair{hostShm: hostOf(obj), guestFile: guestFile}
	if err := s.allocateBacking(pool, size); err != nil {
		pool.release()
		return fmt.Errorf("relay: pool of %d bytes: %w", size, err)
	}
	s.pools[pool] = struct{}{}
	server.SetUserData(pool)
	server.SetHandler(s.poolRequest)
	return nil
}

// allocateBacking gives a pool a fresh backing generation: a
// host-visible file of the given size, a host pool created from it,
// and a double mapping of the guest file and the host file. The host
// file is closed once mapped; the mapping keeps the memory alive.
func (s *Session) allocateBacking(pool *poolPair, size int32) error {
	hostFile, err := s.alloc.Alloc(size)
	if err != nil {
		return fmt.Errorf("allocate host-visible memory: %w", err)
	}
	defer hostFile.Close()

	mapping, err := shmem.NewMapping(pool.guestFile, hostFile, size)
	if err != nil {
		return err
	}

	hostPool := s.host.NewObject(proto.ShmPool, 1)
	if err := s.host.SendRequest(pool.hostShm, proto.ShmCreatePool, hostPool, hostFile, size); err != nil {
		mapping.Unmap()
		return err
	}

	pool.host = hostPool
	pool.mapping = mapping
	return nil
}

func (s *Session) poolRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.ShmPoolCreateBuffer:
		return s.createBuffer(obj, args)
	case proto.ShmPoolResize:
		return s.resizePool(obj, args.Int(0))
	case proto.ShmPoolDestroy:
		return s.destroyPool(obj)
	}
	return unhandledRequest(obj, op)
}

// createBuffer slices both pool mappings at the buffer's geometry and
// creates the paired host buffer with identical geometry.
func (s *Session) createBuffer(obj *proto.Object, args *proto.Args) error {
	pool := poolData(obj)
	server := args.NewObject(0)
	offset := args.Int(1)
	width, height := args.Int(2), args.Int(3)
	stride := args.Int(4)
	format := args.Uint(5)

	if stride < 0 || height < 0 {
		return proto.Errorf(obj, shmErrorInvalidStride, "buffer %dx%d stride %d", width, height, stride)
	}
	length := height * stride
	clientMemory, hostMemory, err := pool.mapping.Slice(offset, length)
	if err != nil {
		return proto.Errorf(obj, shmErrorInvalidStride, "buffer outside pool: %v", err)
	}

	host := s.host.NewObject(proto.Buffer, 1)
	if err := s.host.SendRequest(pool.host, proto.ShmPoolCreateBuffer, host, offset, width, height, stride, format); err != nil {
		return err
	}
	// The host's release flows straight back to the guest buffer.
	host.SetHandler(s.eventForwarder(server))
	server.SetUserData(&bufferPair{peer: peer{host}, clientMemory: clientMemory, hostMemory: hostMemory})
	server.SetHandler(s.bufferRequest)
	return nil
}

func (s *Session) bufferRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.BufferDestroy {
		return s.destroyPair(obj, proto.BufferDestroy)
	}
	return unhandledRequest(obj, op)
}

// resizePool replaces the pool's backing generation. The old host
// pool is destroyed and the old mapping retired, not unmapped:
// buffers created from it keep referencing their captured slices.
// The guest side keeps its identity and its file.
func (s *Session) resizePool(obj *proto.Object, size int32) error {
	pool := poolData(obj)
	if size < pool.mapping.Size() {
		return proto.Errorf(obj, shmErrorInvalidFD, "pool shrunk from %d to %d bytes", pool.mapping.Size(), size)
	}

	if err := s.host.SendRequest(pool.host, proto.ShmPoolDestroy); err != nil {
		return err
	}
	pool.retired = append(pool.retired, pool.mapping)
	pool.mapping = nil

	if err := s.allocateBacking(pool, size); err != nil {
		return fmt.Errorf("relay: resize pool to %d bytes: %w", size, err)
	}
	return nil
}

// destroyPool closes the guest file and follows the destruction
// protocol for the host pool. Mappings drop with the pool.
func (s *Session) destroyPool(obj *proto.Object) error {
	pool := poolData(obj)
	delete(s.pools, pool)
	if err := s.destroyPair(obj, proto.ShmPoolDestroy); err != nil {
		return err
	}
	pool.release()
	return nil
}

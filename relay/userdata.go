// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/waybridge/proto"
	"github.com/bureau-foundation/waybridge/shmem"
)

// peer is the fragment every server-side pair record embeds: the host
// proxy the server object owns. The owning direction is server to
// host; host objects that need the reverse direction carry a hostRef
// instead, valid for as long as the server object lives, which the
// destruction protocol guarantees outlasts the host peer.
type peer struct {
	host *proto.Object
}

func (p *peer) hostPeer() *proto.Object { return p.host }

type paired interface {
	hostPeer() *proto.Object
}

// Pair records by role. Only surfaces and buffers carry state beyond
// the peer reference.
type (
	compositorPair    struct{ peer }
	subcompositorPair struct{ peer }
	regionPair        struct{ peer }
	shmPair           struct{ peer }
	seatPair          struct{ peer }
	pointerPair       struct{ peer }
	keyboardPair      struct{ peer }
	outputPair        struct{ peer }
	wmBasePair        struct{ peer }
	positionerPair    struct{ peer }
	xdgSurfacePair    struct{ peer }
	toplevelPair      struct{ peer }
	popupPair         struct{ peer }
	subsurfacePair    struct{ peer }
	outputManagerPair struct{ peer }
	xdgOutputPair     struct{ peer }
	ddmPair           struct{ peer }
)

// surfacePair tracks the most recent attach: identical-length slices
// of the attached buffer's guest and host memory, read only at commit.
// Both are nil while no buffer is attached.
type surfacePair struct {
	peer
	clientMemory []byte
	hostMemory   []byte
}

// bufferPair captures the buffer's slices of its pool mapping at
// creation time. A later pool resize does not move them.
type bufferPair struct {
	peer
	clientMemory []byte
	hostMemory   []byte
}

// poolPair owns a pool's backing resources: the guest's pool file
// (kept open for resize), the current mapping, and mappings retired by
// resize that buffers may still reference. hostShm is the host wl_shm
// the pool's host generations are created from.
type poolPair struct {
	peer
	hostShm   *proto.Object
	guestFile *os.File
	mapping   *shmem.Mapping
	retired   []*shmem.Mapping
}

// release drops every mapping and closes the guest file.
func (p *poolPair) release() {
	if p.mapping != nil {
		p.mapping.Unmap()
		p.mapping = nil
	}
	for _, m := range p.retired {
		m.Unmap()
	}
	p.retired = nil
	if p.guestFile != nil {
		p.guestFile.Close()
		p.guestFile = nil
	}
}

// dataDevicePair marks the no-op data device, which has no host peer.
type dataDevicePair struct{}

// hostRef is the user data on host proxies whose server peer must be
// recoverable when they appear as event arguments: surfaces (keyboard
// and pointer enter/leave) and outputs (surface enter/leave).
type hostRef struct {
	server *proto.Object
}

// hostOf returns the host peer of a server object. Unexpected user
// data is an engine bug and fails loudly.
func hostOf(server *proto.Object) *proto.Object {
	p, ok := server.UserData().(paired)
	if !ok {
		panic(fmt.Sprintf("relay: %s carries user data %T, expected a paired record", server, server.UserData()))
	}
	return p.hostPeer()
}

// maybeHostOf is hostOf for nullable arguments.
func maybeHostOf(server *proto.Object) *proto.Object {
	if server == nil {
		return nil
	}
	return hostOf(server)
}

// serverOf returns the server peer of a host object carrying a
// hostRef back-reference.
func serverOf(host *proto.Object) *proto.Object {
	ref, ok := host.UserData().(*hostRef)
	if !ok {
		panic(fmt.Sprintf("relay: %s carries user data %T, expected a server back-reference", host, host.UserData()))
	}
	return ref.server
}

// surfaceData returns the surface pair record of a server surface.
func surfaceData(server *proto.Object) *surfacePair {
	p, ok := server.UserData().(*surfacePair)
	if !ok {
		panic(fmt.Sprintf("relay: %s carries user data %T, expected a surface record", server, server.UserData()))
	}
	return p
}

// bufferData returns the buffer pair record of a server buffer.
func bufferData(server *proto.Object) *bufferPair {
	p, ok := server.UserData().(*bufferPair)
	if !ok {
		panic(fmt.Sprintf("relay: %s carries user data %T, expected a buffer record", server, server.UserData()))
	}
	return p
}

// poolData returns the pool pair record of a server pool.
func poolData(server *proto.Object) *poolPair {
	p, ok := server.UserData().(*poolPair)
	if !ok {
		panic(fmt.Sprintf("relay: %s carries user data %T, expected a pool record", server, server.UserData()))
	}
	return p
}

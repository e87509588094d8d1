// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the relay's two socket endpoints and its
// host-visible memory allocators.
//
// [ListenGuest] binds the guest-facing Unix socket and [DialHost]
// connects to the host compositor, both following the WAYLAND_DISPLAY
// and XDG_RUNTIME_DIR resolution rules: an absolute socket name is
// used as-is, anything else is joined to the runtime directory.
//
// [Allocator] produces file descriptors backed by host-visible memory
// for the shared-memory double-mapping path. [MemfdAllocator] serves
// same-machine hosts with anonymous memfds. [ControlAllocator] asks an
// external memory daemon over a Unix socket, with CBOR-framed
// request/response messages and the descriptor returned as SCM_RIGHTS
// ancillary data; this is the shape a virtualization transport takes,
// where pool memory must come from a region the host can see.
package transport

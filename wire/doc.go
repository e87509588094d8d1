// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the Wayland wire format: 8-byte message
// headers, 32-bit aligned argument payloads, and file descriptor
// passing via SCM_RIGHTS ancillary data.
//
// [Message] is one protocol message under construction or decode.
// [Conn] frames messages over a Unix domain socket. File descriptors
// received alongside message bytes are held in an ordered queue on the
// connection; the protocol layer pops them as it reaches fd-typed
// arguments, matching the delivery order the sender used.
//
// The package is role-agnostic: requests and events share the same
// framing, and the same Conn serves the relay's server side (facing a
// guest client) and its client side (facing the host compositor).
package wire

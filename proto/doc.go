// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package proto is the typed protocol layer over the Wayland wire
// format: interface descriptors with versioned request and event
// tables, per-connection object maps with user-data slots and deletion
// hooks, and signature-driven argument parsing and marshalling.
//
// A [Conn] plays one of two roles. In [RoleClient] the connection
// faces a compositor: the local side allocates object IDs, events are
// dispatched to object handlers, and wl_display.delete_id fires an
// object's deletion hooks. In [RoleServer] the connection faces a
// Wayland client: the remote side allocates IDs, requests are
// dispatched to handlers, and the local side acknowledges object
// destruction by sending delete_id.
//
// The relay package builds its paired-object engine on exactly these
// facilities; proto itself knows nothing about pairing or forwarding.
package proto

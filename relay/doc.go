// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay is the proxy engine: the per-client state machine that
// presents a Wayland compositor to a guest client while acting as a
// client to the host compositor.
//
// Each guest connection gets a [Session] with its own host connection.
// The session advertises a fixed catalog of globals and, on each bind,
// establishes a paired object: a server proxy the guest talks to and a
// host proxy bound or created on the host connection, linked through
// the server proxy's user data. Requests flow guest to host and events
// host to guest, with embedded object references rewritten to the peer
// on the other side.
//
// The shared-memory path double-maps every guest pool: the guest's
// descriptor and a host-visible descriptor from the session's
// allocator, at equal size. Buffers capture identical slices of both
// mappings, and commit copies the guest bytes into the host mapping
// before forwarding.
//
// Destruction is sequenced so the guest never observes an event on an
// object it was told is dead: a guest destroy is forwarded to the
// host, and the server proxy is deleted only once the host wire
// protocol acknowledges the host peer's deletion.
//
// A session is single-threaded: two reader goroutines feed raw
// messages into one dispatch loop, so handlers never race and pairs
// update atomically from either side's viewpoint. There is no state
// shared between sessions.
package relay

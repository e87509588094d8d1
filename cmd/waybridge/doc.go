// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command waybridge relays Wayland clients in a guest environment to
// a host compositor. It listens on a guest-facing socket and runs one
// relay session per connected client, each with its own connection to
// the host.
package main

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies connection errors for the relay's
// session teardown.
package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsExpectedClose reports whether err is a normal connection
// termination: EOF, closed connection, broken pipe, or connection
// reset. When one side of a relay session disconnects, the session
// forces the other transport closed and the surviving reader's
// in-flight read or write fails with one of these; only the first
// cause is worth logging.
func IsExpectedClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}

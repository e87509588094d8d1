// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

import "fmt"

// ProtocolError is a protocol violation by the remote client of a
// RoleServer connection: a malformed or out-of-contract message that
// should be reported with wl_display.error before the connection is
// torn down. It is not used for local engine bugs, which panic with a
// descriptive message instead.
type ProtocolError struct {
	// Object is the object the violation occurred on. May be nil when
	// the violation is not attributable (unknown sender ID).
	Object *Object

	// Code is the wl_display error code to report.
	Code uint32

	// Message describes the violation.
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Object == nil {
		return fmt.Sprintf("protocol error: %s", e.Message)
	}
	return fmt.Sprintf("protocol error on %s: %s", e.Object, e.Message)
}

// Errorf builds a *ProtocolError against obj.
func Errorf(obj *Object, code uint32, format string, args ...any) *ProtocolError {
	return &ProtocolError{Object: obj, Code: code, Message: fmt.Sprintf(format, args...)}
}

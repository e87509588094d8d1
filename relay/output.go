// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"github.com/bureau-foundation/waybridge/proto"
)

func (s *Session) bindOutput(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.Output, server.Version())
	if err != nil {
		return err
	}
	// The back-reference makes the host output translatable when it
	// appears in surface enter/leave events. geometry, mode, done and
	// scale forward verbatim.
	host.SetUserData(&hostRef{server})
	host.SetHandler(s.eventForwarder(server))
	server.SetUserData(&outputPair{peer{host}})
	return nil
}

func (s *Session) bindOutputManager(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.OutputManager, server.Version())
	if err != nil {
		return err
	}
	server.SetUserData(&outputManagerPair{peer{host}})
	server.SetHandler(s.outputManagerRequest)
	return nil
}

func (s *Session) outputManagerRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.OutputManagerDestroy:
		return s.destroyPair(obj, proto.OutputManagerDestroy)
	case proto.OutputManagerGetXdgOutput:
		server := args.NewObject(0)
		output := args.Object(1)
		host := s.host.NewObject(proto.XdgOutput, server.Version())
		if err := s.host.SendRequest(hostOf(obj), proto.OutputManagerGetXdgOutput, host, hostOf(output)); err != nil {
			return err
		}
		// logical_position, logical_size, name, description, done.
		host.SetHandler(s.eventForwarder(server))
		server.SetUserData(&xdgOutputPair{peer{host}})
		server.SetHandler(s.xdgOutputRequest)
		return nil
	}
	return unhandledRequest(obj, op)
}

func (s *Session) xdgOutputRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.XdgOutputDestroy {
		return s.destroyPair(obj, proto.XdgOutputDestroy)
	}
	return unhandledRequest(obj, op)
}

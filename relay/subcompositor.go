// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"github.com/bureau-foundation/waybridge/proto"
)

func (s *Session) bindSubcompositor(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.Subcompositor, server.Version())
	if err != nil {
		return err
	}
	server.SetUserData(&subcompositorPair{peer{host}})
	server.SetHandler(s.subcompositorRequest)
	return nil
}

func (s *Session) subcompositorRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.SubcompositorDestroy:
		return s.destroyPair(obj, proto.SubcompositorDestroy)
	case proto.SubcompositorGetSubsurface:
		server := args.NewObject(0)
		surface := args.Object(1)
		parent := args.Object(2)
		host := s.host.NewObject(proto.Subsurface, server.Version())
		if err := s.host.SendRequest(hostOf(obj), proto.SubcompositorGetSubsurface, host, hostOf(surface), hostOf(parent)); err != nil {
			return err
		}
		server.SetUserData(&subsurfacePair{peer{host}})
		server.SetHandler(s.subsurfaceRequest)
		return nil
	}
	return unhandledRequest(obj, op)
}

func (s *Session) subsurfaceRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.SubsurfaceDestroy {
		return s.destroyPair(obj, proto.SubsurfaceDestroy)
	}
	// set_position, place_above/place_below (sibling translated),
	// set_sync, set_desync.
	return s.forwardRequest(obj, op, args)
}

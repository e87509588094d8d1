// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"github.com/bureau-foundation/waybridge/proto"
)

func (s *Session) bindWmBase(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.WmBase, server.Version())
	if err != nil {
		return err
	}
	// The host's ping becomes the guest's ping; the guest's pong
	// flows back through the generic path.
	host.SetHandler(s.eventForwarder(server))
	server.SetUserData(&wmBasePair{peer{host}})
	server.SetHandler(s.wmBaseRequest)
	return nil
}

func (s *Session) wmBaseRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.WmBaseDestroy:
		return s.destroyPair(obj, proto.WmBaseDestroy)
	case proto.WmBaseCreatePositioner:
		server := args.NewObject(0)
		host := s.host.NewObject(proto.XdgPositioner, server.Version())
		if err := s.host.SendRequest(hostOf(obj), proto.WmBaseCreatePositioner, host); err != nil {
			return err
		}
		server.SetUserData(&positionerPair{peer{host}})
		server.SetHandler(s.positionerRequest)
		return nil
	case proto.WmBaseGetXdgSurface:
		server := args.NewObject(0)
		surface := args.Object(1)
		host := s.host.NewObject(proto.XdgSurface, server.Version())
		if err := s.host.SendRequest(hostOf(obj), proto.WmBaseGetXdgSurface, host, hostOf(surface)); err != nil {
			return err
		}
		host.SetHandler(s.eventForwarder(server))
		server.SetUserData(&xdgSurfacePair{peer{host}})
		server.SetHandler(s.xdgSurfaceRequest)
		return nil
	case proto.WmBasePong:
		return s.forwardRequest(obj, op, args)
	}
	return unhandledRequest(obj, op)
}

func (s *Session) positionerRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.PositionerDestroy {
		return s.destroyPair(obj, proto.PositionerDestroy)
	}
	// All setters forward verbatim.
	return s.forwardRequest(obj, op, args)
}

func (s *Session) xdgSurfaceRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.XdgSurfaceDestroy:
		return s.destroyPair(obj, proto.XdgSurfaceDestroy)
	case proto.XdgSurfaceGetToplevel:
		server := args.NewObject(0)
		host := s.host.NewObject(proto.XdgToplevel, server.Version())
		if err := s.host.SendRequest(hostOf(obj), proto.XdgSurfaceGetToplevel, host); err != nil {
			return err
		}
		host.SetHandler(s.eventForwarder(server))
		server.SetUserData(&toplevelPair{peer{host}})
		server.SetHandler(s.toplevelRequest)
		return nil
	case proto.XdgSurfaceGetPopup:
		server := args.NewObject(0)
		parent := args.Object(1)
		positioner := args.Object(2)
		host := s.host.NewObject(proto.XdgPopup, server.Version())
		if err := s.host.SendRequest(hostOf(obj), proto.XdgSurfaceGetPopup, host, maybeHostOf(parent), hostOf(positioner)); err != nil {
			return err
		}
		host.SetHandler(s.eventForwarder(server))
		server.SetUserData(&popupPair{peer{host}})
		server.SetHandler(s.popupRequest)
		return nil
	}
	// set_window_geometry, ack_configure.
	return s.forwardRequest(obj, op, args)
}

func (s *Session) toplevelRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.ToplevelDestroy:
		return s.destroyPair(obj, proto.ToplevelDestroy)
	case proto.ToplevelSetTitle:
		// The tag marks guest windows apart on the host.
		return s.host.SendRequest(hostOf(obj), op, s.tag+args.String(0))
	}
	// set_parent, set_fullscreen, and the seat-carrying requests all
	// translate their object argument through the generic path.
	return s.forwardRequest(obj, op, args)
}

func (s *Session) popupRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.PopupDestroy {
		return s.destroyPair(obj, proto.PopupDestroy)
	}
	// grab, with the seat translated.
	return s.forwardRequest(obj, op, args)
}

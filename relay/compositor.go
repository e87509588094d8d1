// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"github.com/bureau-foundation/waybridge/proto"
)

func (s *Session) bindCompositor(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.Compositor, server.Version())
	if err != nil {
		return err
	}
	server.SetUserData(&compositorPair{peer{host}})
	server.SetHandler(s.compositorRequest)
	return nil
}

func (s *Session) compositorRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.CompositorCreateSurface:
		return s.createSurface(obj, args.NewObject(0))
	case proto.CompositorCreateRegion:
		return s.createRegion(obj, args.NewObject(0))
	}
	return unhandledRequest(obj, op)
}

func (s *Session) createRegion(compositor, server *proto.Object) error {
	host := s.host.NewObject(proto.Region, server.Version())
	if err := s.host.SendRequest(hostOf(compositor), proto.CompositorCreateRegion, host); err != nil {
		return err
	}
	server.SetUserData(&regionPair{peer{host}})
	server.SetHandler(s.regionRequest)
	return nil
}

func (s *Session) regionRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.RegionDestroy {
		return s.destroyPair(obj, proto.RegionDestroy)
	}
	// add, subtract.
	return s.forwardRequest(obj, op, args)
}

func (s *Session) createSurface(compositor, server *proto.Object) error {
	host := s.host.NewObject(proto.Surface, server.Version())
	if err := s.host.SendRequest(hostOf(compositor), proto.CompositorCreateSurface, host); err != nil {
		return err
	}
	// The back-reference makes the host surface translatable when it
	// appears in input device enter/leave events.
	host.SetUserData(&hostRef{server})
	host.SetHandler(s.eventForwarder(server))
	server.SetUserData(&surfacePair{peer: peer{host}})
	server.SetHandler(s.surfaceRequest)
	return nil
}

func (s *Session) surfaceRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.SurfaceAttach:
		return s.surfaceAttach(obj, args)
	case proto.SurfaceCommit:
		surface := surfaceData(obj)
		// Publish the guest's pixels before the host sees the commit.
		copy(surface.hostMemory, surface.clientMemory)
		return s.forwardRequest(obj, op, args)
	case proto.SurfaceFrame:
		return s.surfaceFrame(obj, args.NewObject(0))
	case proto.SurfaceSetBufferTransform:
		return proto.Errorf(obj, proto.DisplayErrorInvalidMethod, "set_buffer_transform is not supported")
	case proto.SurfaceDestroy:
		return s.destroyPair(obj, proto.SurfaceDestroy)
	}
	// damage, set_opaque_region, set_input_region (region translated),
	// set_buffer_scale.
	return s.forwardRequest(obj, op, args)
}

// surfaceAttach records the attached buffer's memory slices for the
// next commit and forwards the attach with the paired host buffer.
// A null attach clears both slices.
func (s *Session) surfaceAttach(obj *proto.Object, args *proto.Args) error {
	surface := surfaceData(obj)
	buffer := args.Object(0)
	x, y := args.Int(1), args.Int(2)

	if buffer == nil {
		surface.clientMemory = nil
		surface.hostMemory = nil
		return s.host.SendRequest(surface.host, proto.SurfaceAttach, (*proto.Object)(nil), x, y)
	}

	backing := bufferData(buffer)
	surface.clientMemory = backing.clientMemory
	surface.hostMemory = backing.hostMemory
	return s.host.SendRequest(surface.host, proto.SurfaceAttach, backing.host, x, y)
}

// surfaceFrame pairs the guest's frame callback with a host frame
// callback. Both sides are single-shot: the host's done is forwarded
// and the guest callback deleted immediately after.
func (s *Session) surfaceFrame(obj, callback *proto.Object) error {
	hostCallback := s.host.NewCallback(func(data uint32) {
		if err := s.guest.SendEvent(callback, proto.CallbackDone, data); err != nil {
			s.logger.Debug("frame done delivery failed", "object", callback.String(), "error", err)
			return
		}
		if err := s.guest.DeleteObject(callback); err != nil {
			s.logger.Debug("frame callback delete failed", "object", callback.String(), "error", err)
		}
	})
	return s.host.SendRequest(hostOf(obj), proto.SurfaceFrame, hostCallback)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"github.com/bureau-foundation/waybridge/proto"
)

// capabilityMask limits what input the guest learns about. Touch is
// deliberately absent: the relay has no touch path.
const capabilityMask = proto.SeatCapabilityPointer | proto.SeatCapabilityKeyboard

func (s *Session) bindSeat(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.Seat, server.Version())
	if err != nil {
		return err
	}
	host.SetHandler(func(_ *proto.Object, op uint16, args *proto.Args) error {
		if op == proto.SeatCapabilities {
			return s.guest.SendEvent(server, op, args.Uint(0)&capabilityMask)
		}
		// name.
		return s.guest.SendEvent(server, op, args.Forward(serverOf)...)
	})
	server.SetUserData(&seatPair{peer{host}})
	server.SetHandler(s.seatRequest)
	return nil
}

func (s *Session) seatRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.SeatGetPointer:
		return s.getPointer(obj, args.NewObject(0))
	case proto.SeatGetKeyboard:
		return s.getKeyboard(obj, args.NewObject(0))
	case proto.SeatGetTouch:
		return proto.Errorf(obj, proto.DisplayErrorInvalidMethod, "touch devices are not relayed")
	case proto.SeatRelease:
		return s.destroyPair(obj, proto.SeatRelease)
	}
	return unhandledRequest(obj, op)
}

func (s *Session) getPointer(seat, server *proto.Object) error {
	host := s.host.NewObject(proto.Pointer, server.Version())
	if err := s.host.SendRequest(hostOf(seat), proto.SeatGetPointer, host); err != nil {
		return err
	}
	// enter and leave carry the surface; everything else is verbatim.
	host.SetHandler(s.eventForwarder(server))
	server.SetUserData(&pointerPair{peer{host}})
	server.SetHandler(s.pointerRequest)
	return nil
}

func (s *Session) pointerRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.PointerRelease {
		return s.destroyPair(obj, proto.PointerRelease)
	}
	// set_cursor, with the optional cursor surface translated.
	return s.forwardRequest(obj, op, args)
}

func (s *Session) getKeyboard(seat, server *proto.Object) error {
	host := s.host.NewObject(proto.Keyboard, server.Version())
	if err := s.host.SendRequest(hostOf(seat), proto.SeatGetKeyboard, host); err != nil {
		return err
	}
	host.SetHandler(func(_ *proto.Object, op uint16, args *proto.Args) error {
		if op == proto.KeyboardKeymap {
			// The descriptor's ownership transfers to the guest wire
			// with the write; close our copy right after.
			keymap := args.File(1)
			err := s.guest.SendEvent(server, op, args.Uint(0), keymap, args.Uint(2))
			keymap.Close()
			return err
		}
		return s.guest.SendEvent(server, op, args.Forward(serverOf)...)
	})
	server.SetUserData(&keyboardPair{peer{host}})
	server.SetHandler(s.keyboardRequest)
	return nil
}

func (s *Session) keyboardRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op == proto.KeyboardRelease {
		return s.destroyPair(obj, proto.KeyboardRelease)
	}
	return unhandledRequest(obj, op)
}

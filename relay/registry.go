// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"github.com/bureau-foundation/waybridge/proto"
)

// global is one catalog entry: the interface advertised to the guest,
// the highest version the relay will bind, and the binder that
// establishes the pair.
type global struct {
	iface   *proto.Interface
	version uint32
	bind    func(s *Session, server *proto.Object) error
}

// catalog is the fixed, ordered set of globals the relay advertises.
// The entry index doubles as the numeric global name.
var catalog = []global{
	{proto.Compositor, 3, (*Session).bindCompositor},
	{proto.Subcompositor, 1, (*Session).bindSubcompositor},
	{proto.Shm, 1, (*Session).bindShm},
	{proto.WmBase, 1, (*Session).bindWmBase},
	{proto.Seat, 5, (*Session).bindSeat},
	{proto.Output, 2, (*Session).bindOutput},
	{proto.DataDeviceManager, 3, (*Session).bindDataDeviceManager},
	{proto.OutputManager, 3, (*Session).bindOutputManager},
}

// displayRequest answers the guest's wl_display requests. sync is
// answered locally: the relay is the guest's compositor, so the
// roundtrip barrier is the relay's own dispatch serial.
func (s *Session) displayRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.DisplaySync:
		callback := args.NewObject(0)
		if err := s.guest.SendEvent(callback, proto.CallbackDone, s.guest.Serial()); err != nil {
			return err
		}
		return s.guest.DeleteObject(callback)
	case proto.DisplayGetRegistry:
		registry := args.NewObject(0)
		registry.SetHandler(s.registryRequest)
		for name, entry := range catalog {
			if err := s.guest.SendEvent(registry, proto.RegistryGlobal, uint32(name), entry.iface.Name, entry.version); err != nil {
				return err
			}
		}
		return nil
	}
	return unhandledRequest(obj, op)
}

// registryRequest validates a guest bind and dispatches to the
// entry's binder. No host object exists until every check passes.
func (s *Session) registryRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	if op != proto.RegistryBind {
		return unhandledRequest(obj, op)
	}

	name := args.Uint(0)
	ifaceName := args.String(1)
	version := args.Uint(2)
	id := args.NewID(3)

	if name >= uint32(len(catalog)) {
		return proto.Errorf(obj, proto.DisplayErrorInvalidObject, "bind to unknown global %d", name)
	}
	entry := catalog[name]
	if version > entry.version {
		return proto.Errorf(obj, proto.DisplayErrorInvalidObject,
			"bind to %s version %d, advertised maximum is %d", entry.iface.Name, version, entry.version)
	}
	if ifaceName != entry.iface.Name {
		return proto.Errorf(obj, proto.DisplayErrorInvalidObject,
			"global %d is %s, bind declared %s", name, entry.iface.Name, ifaceName)
	}

	server, err := s.guest.Register(id, entry.iface, version)
	if err != nil {
		return err
	}
	return entry.bind(s, server)
}

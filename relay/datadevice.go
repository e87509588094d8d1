// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"github.com/bureau-foundation/waybridge/proto"
)

// The data device path is a stub: the manager binds its host global so
// the pair exists, but no selection or drag data crosses the relay.
// Clipboard and drag-and-drop forwarding would go here.

func (s *Session) bindDataDeviceManager(server *proto.Object) error {
	host, err := s.bindHostGlobal(proto.DataDeviceManager, server.Version())
	if err != nil {
		return err
	}
	server.SetUserData(&ddmPair{peer{host}})
	server.SetHandler(s.dataDeviceManagerRequest)
	return nil
}

func (s *Session) dataDeviceManagerRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.DataDeviceManagerCreateDataSource:
		return proto.Errorf(obj, proto.DisplayErrorInvalidMethod, "data sources are not relayed")
	case proto.DataDeviceManagerGetDataDevice:
		// The device is served locally: it accepts requests and emits
		// nothing, so the guest sees an empty selection forever.
		server := args.NewObject(0)
		server.SetUserData(&dataDevicePair{})
		server.SetHandler(s.dataDeviceRequest)
		return nil
	}
	return unhandledRequest(obj, op)
}

func (s *Session) dataDeviceRequest(obj *proto.Object, op uint16, args *proto.Args) error {
	switch op {
	case proto.DataDeviceStartDrag, proto.DataDeviceSetSelection:
		return nil
	case proto.DataDeviceRelease:
		// No host peer to sequence against; the device dies locally.
		return s.guest.DeleteObject(obj)
	}
	return unhandledRequest(obj, op)
}

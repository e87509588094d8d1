// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

// xdg-shell and xdg-output interface descriptors.

// xdg_wm_base opcodes.
const (
	WmBaseDestroy          uint16 = 0
	WmBaseCreatePositioner uint16 = 1
	WmBaseGetXdgSurface    uint16 = 2
	WmBasePong             uint16 = 3

	WmBasePing uint16 = 0
)

var WmBase = &Interface{
	Name:    "xdg_wm_base",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "create_positioner", Signature: "n", Types: []*Interface{XdgPositioner}},
		{Name: "get_xdg_surface", Signature: "no", Types: []*Interface{XdgSurface, Surface}},
		{Name: "pong", Signature: "u"},
	},
	Events: []MessageDesc{
		{Name: "ping", Signature: "u"},
	},
}

// xdg_positioner opcodes.
const (
	PositionerDestroy                 uint16 = 0
	PositionerSetSize                 uint16 = 1
	PositionerSetAnchorRect           uint16 = 2
	PositionerSetAnchor               uint16 = 3
	PositionerSetGravity              uint16 = 4
	PositionerSetConstraintAdjustment uint16 = 5
	PositionerSetOffset               uint16 = 6
)

var XdgPositioner = &Interface{
	Name:    "xdg_positioner",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "set_size", Signature: "ii"},
		{Name: "set_anchor_rect", Signature: "iiii"},
		{Name: "set_anchor", Signature: "u"},
		{Name: "set_gravity", Signature: "u"},
		{Name: "set_constraint_adjustment", Signature: "u"},
		{Name: "set_offset", Signature: "ii"},
	},
}

// xdg_surface opcodes.
const (
	XdgSurfaceDestroy           uint16 = 0
	XdgSurfaceGetToplevel       uint16 = 1
	XdgSurfaceGetPopup          uint16 = 2
	XdgSurfaceSetWindowGeometry uint16 = 3
	XdgSurfaceAckConfigure      uint16 = 4

	XdgSurfaceConfigure uint16 = 0
)

var XdgSurface = &Interface{
	Name:    "xdg_surface",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "get_toplevel", Signature: "n", Types: []*Interface{XdgToplevel}},
		// The parent type is patched in by init: a self-reference here
		// would be an initialization cycle.
		{Name: "get_popup", Signature: "n?oo", Types: []*Interface{XdgPopup, nil, XdgPositioner}},
		{Name: "set_window_geometry", Signature: "iiii"},
		{Name: "ack_configure", Signature: "u"},
	},
	Events: []MessageDesc{
		{Name: "configure", Signature: "u"},
	},
}

// xdg_toplevel opcodes.
const (
	ToplevelDestroy         uint16 = 0
	ToplevelSetParent       uint16 = 1
	ToplevelSetTitle        uint16 = 2
	ToplevelSetAppID        uint16 = 3
	ToplevelShowWindowMenu  uint16 = 4
	ToplevelMove            uint16 = 5
	ToplevelResize          uint16 = 6
	ToplevelSetMaxSize      uint16 = 7
	ToplevelSetMinSize      uint16 = 8
	ToplevelSetMaximized    uint16 = 9
	ToplevelUnsetMaximized  uint16 = 10
	ToplevelSetFullscreen   uint16 = 11
	ToplevelUnsetFullscreen uint16 = 12
	ToplevelSetMinimized    uint16 = 13

	ToplevelConfigure uint16 = 0
	ToplevelClose     uint16 = 1
)

var XdgToplevel = &Interface{
	Name:    "xdg_toplevel",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		// Patched in by init, like xdg_surface.get_popup's parent.
		{Name: "set_parent", Signature: "?o", Types: []*Interface{nil}},
		{Name: "set_title", Signature: "s"},
		{Name: "set_app_id", Signature: "s"},
		{Name: "show_window_menu", Signature: "ouii", Types: []*Interface{Seat}},
		{Name: "move", Signature: "ou", Types: []*Interface{Seat}},
		{Name: "resize", Signature: "ouu", Types: []*Interface{Seat}},
		{Name: "set_max_size", Signature: "ii"},
		{Name: "set_min_size", Signature: "ii"},
		{Name: "set_maximized", Signature: ""},
		{Name: "unset_maximized", Signature: ""},
		{Name: "set_fullscreen", Signature: "?o", Types: []*Interface{Output}},
		{Name: "unset_fullscreen", Signature: ""},
		{Name: "set_minimized", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "configure", Signature: "iia"},
		{Name: "close", Signature: ""},
	},
}

// xdg_popup opcodes.
const (
	PopupDestroy uint16 = 0
	PopupGrab    uint16 = 1

	PopupConfigure uint16 = 0
	PopupDone      uint16 = 1
)

var XdgPopup = &Interface{
	Name:    "xdg_popup",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "grab", Signature: "ou", Types: []*Interface{Seat}},
	},
	Events: []MessageDesc{
		{Name: "configure", Signature: "iiii"},
		{Name: "popup_done", Signature: ""},
	},
}

func init() {
	XdgSurface.Requests[XdgSurfaceGetPopup].Types[1] = XdgSurface
	XdgToplevel.Requests[ToplevelSetParent].Types[0] = XdgToplevel
}

// zxdg_output_manager_v1 and zxdg_output_v1 opcodes.
const (
	OutputManagerDestroy      uint16 = 0
	OutputManagerGetXdgOutput uint16 = 1

	XdgOutputDestroy uint16 = 0

	XdgOutputLogicalPosition uint16 = 0
	XdgOutputLogicalSize     uint16 = 1
	XdgOutputDone            uint16 = 2
	XdgOutputName            uint16 = 3
	XdgOutputDescription     uint16 = 4
)

var OutputManager = &Interface{
	Name:    "zxdg_output_manager_v1",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "get_xdg_output", Signature: "no", Types: []*Interface{XdgOutput, Output}},
	},
}

var XdgOutput = &Interface{
	Name:    "zxdg_output_v1",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "logical_position", Signature: "ii"},
		{Name: "logical_size", Signature: "ii"},
		{Name: "done", Signature: ""},
		{Name: "name", Signature: "s"},
		{Name: "description", Signature: "s"},
	},
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package proto

// Core protocol interface descriptors. Versions are the highest this
// module understands; a connection-level object is always bound at or
// below its interface's table version.

// wl_display request and event opcodes.
const (
	DisplaySync        uint16 = 0
	DisplayGetRegistry uint16 = 1

	DisplayError    uint16 = 0
	DisplayDeleteID uint16 = 1
)

// wl_display error codes.
const (
	DisplayErrorInvalidObject  uint32 = 0 // server couldn't find object
	DisplayErrorInvalidMethod  uint32 = 1 // method doesn't exist on the specified interface
	DisplayErrorNoMemory       uint32 = 2 // server is out of memory
	DisplayErrorImplementation uint32 = 3 // implementation error in compositor
)

var Display = &Interface{
	Name:    "wl_display",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "sync", Signature: "n", Types: []*Interface{Callback}},
		{Name: "get_registry", Signature: "n", Types: []*Interface{Registry}},
	},
	Events: []MessageDesc{
		{Name: "error", Signature: "ous", Types: []*Interface{nil}},
		{Name: "delete_id", Signature: "u"},
	},
}

// wl_registry opcodes.
const (
	RegistryBind uint16 = 0

	RegistryGlobal       uint16 = 0
	RegistryGlobalRemove uint16 = 1
)

var Registry = &Interface{
	Name:    "wl_registry",
	Version: 1,
	Requests: []MessageDesc{
		// bind's new_id is untyped on the wire: the interface name and
		// version precede it as explicit arguments.
		{Name: "bind", Signature: "usun", Types: []*Interface{nil}},
	},
	Events: []MessageDesc{
		{Name: "global", Signature: "usu"},
		{Name: "global_remove", Signature: "u"},
	},
}

// wl_callback opcodes.
const (
	CallbackDone uint16 = 0
)

var Callback = &Interface{
	Name:    "wl_callback",
	Version: 1,
	Events: []MessageDesc{
		{Name: "done", Signature: "u"},
	},
}

// wl_compositor opcodes.
const (
	CompositorCreateSurface uint16 = 0
	CompositorCreateRegion  uint16 = 1
)

var Compositor = &Interface{
	Name:    "wl_compositor",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "create_surface", Signature: "n", Types: []*Interface{Surface}},
		{Name: "create_region", Signature: "n", Types: []*Interface{Region}},
	},
}

// wl_region opcodes.
const (
	RegionDestroy  uint16 = 0
	RegionAdd      uint16 = 1
	RegionSubtract uint16 = 2
)

var Region = &Interface{
	Name:    "wl_region",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "add", Signature: "iiii"},
		{Name: "subtract", Signature: "iiii"},
	},
}

// wl_surface opcodes.
const (
	SurfaceDestroy            uint16 = 0
	SurfaceAttach             uint16 = 1
	SurfaceDamage             uint16 = 2
	SurfaceFrame              uint16 = 3
	SurfaceSetOpaqueRegion    uint16 = 4
	SurfaceSetInputRegion     uint16 = 5
	SurfaceCommit             uint16 = 6
	SurfaceSetBufferTransform uint16 = 7
	SurfaceSetBufferScale     uint16 = 8
	SurfaceDamageBuffer       uint16 = 9

	SurfaceEnter uint16 = 0
	SurfaceLeave uint16 = 1
)

var Surface = &Interface{
	Name:    "wl_surface",
	Version: 4,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "attach", Signature: "?oii", Types: []*Interface{Buffer}},
		{Name: "damage", Signature: "iiii"},
		{Name: "frame", Signature: "n", Types: []*Interface{Callback}},
		{Name: "set_opaque_region", Signature: "?o", Types: []*Interface{Region}},
		{Name: "set_input_region", Signature: "?o", Types: []*Interface{Region}},
		{Name: "commit", Signature: ""},
		{Name: "set_buffer_transform", Signature: "i"},
		{Name: "set_buffer_scale", Signature: "i"},
		{Name: "damage_buffer", Signature: "iiii"},
	},
	Events: []MessageDesc{
		{Name: "enter", Signature: "o", Types: []*Interface{Output}},
		{Name: "leave", Signature: "o", Types: []*Interface{Output}},
	},
}

// wl_shm and wl_shm_pool opcodes.
const (
	ShmCreatePool uint16 = 0

	ShmFormat uint16 = 0

	ShmPoolCreateBuffer uint16 = 0
	ShmPoolDestroy      uint16 = 1
	ShmPoolResize       uint16 = 2
)

// wl_shm pixel formats the relay cares about by name. All other
// format codes pass through untouched.
const (
	ShmFormatARGB8888 uint32 = 0
	ShmFormatXRGB8888 uint32 = 1
)

var Shm = &Interface{
	Name:    "wl_shm",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "create_pool", Signature: "nhi", Types: []*Interface{ShmPool}},
	},
	Events: []MessageDesc{
		{Name: "format", Signature: "u"},
	},
}

var ShmPool = &Interface{
	Name:    "wl_shm_pool",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "create_buffer", Signature: "niiiiu", Types: []*Interface{Buffer}},
		{Name: "destroy", Signature: ""},
		{Name: "resize", Signature: "i"},
	},
}

// wl_buffer opcodes.
const (
	BufferDestroy uint16 = 0

	BufferRelease uint16 = 0
)

var Buffer = &Interface{
	Name:    "wl_buffer",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "release", Signature: ""},
	},
}

// wl_subcompositor and wl_subsurface opcodes.
const (
	SubcompositorDestroy       uint16 = 0
	SubcompositorGetSubsurface uint16 = 1

	SubsurfaceDestroy     uint16 = 0
	SubsurfaceSetPosition uint16 = 1
	SubsurfacePlaceAbove  uint16 = 2
	SubsurfacePlaceBelow  uint16 = 3
	SubsurfaceSetSync     uint16 = 4
	SubsurfaceSetDesync   uint16 = 5
)

var Subcompositor = &Interface{
	Name:    "wl_subcompositor",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "get_subsurface", Signature: "noo", Types: []*Interface{Subsurface, Surface, Surface}},
	},
}

var Subsurface = &Interface{
	Name:    "wl_subsurface",
	Version: 1,
	Requests: []MessageDesc{
		{Name: "destroy", Signature: ""},
		{Name: "set_position", Signature: "ii"},
		{Name: "place_above", Signature: "o", Types: []*Interface{Surface}},
		{Name: "place_below", Signature: "o", Types: []*Interface{Surface}},
		{Name: "set_sync", Signature: ""},
		{Name: "set_desync", Signature: ""},
	},
}

// wl_seat opcodes and capability bits.
const (
	SeatGetPointer  uint16 = 0
	SeatGetKeyboard uint16 = 1
	SeatGetTouch    uint16 = 2
	SeatRelease     uint16 = 3

	SeatCapabilities uint16 = 0
	SeatName         uint16 = 1
)

const (
	SeatCapabilityPointer  uint32 = 1
	SeatCapabilityKeyboard uint32 = 2
	SeatCapabilityTouch    uint32 = 4
)

var Seat = &Interface{
	Name:    "wl_seat",
	Version: 5,
	Requests: []MessageDesc{
		{Name: "get_pointer", Signature: "n", Types: []*Interface{Pointer}},
		{Name: "get_keyboard", Signature: "n", Types: []*Interface{Keyboard}},
		{Name: "get_touch", Signature: "n", Types: []*Interface{Touch}},
		{Name: "release", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "capabilities", Signature: "u"},
		{Name: "name", Signature: "s"},
	},
}

// wl_pointer opcodes.
const (
	PointerSetCursor uint16 = 0
	PointerRelease   uint16 = 1

	PointerEnter        uint16 = 0
	PointerLeave        uint16 = 1
	PointerMotion       uint16 = 2
	PointerButton       uint16 = 3
	PointerAxis         uint16 = 4
	PointerFrame        uint16 = 5
	PointerAxisSource   uint16 = 6
	PointerAxisStop     uint16 = 7
	PointerAxisDiscrete uint16 = 8
)

var Pointer = &Interface{
	Name:    "wl_pointer",
	Version: 5,
	Requests: []MessageDesc{
		{Name: "set_cursor", Signature: "u?oii", Types: []*Interface{Surface}},
		{Name: "release", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "enter", Signature: "uoff", Types: []*Interface{Surface}},
		{Name: "leave", Signature: "uo", Types: []*Interface{Surface}},
		{Name: "motion", Signature: "uff"},
		{Name: "button", Signature: "uuuu"},
		{Name: "axis", Signature: "uuf"},
		{Name: "frame", Signature: ""},
		{Name: "axis_source", Signature: "u"},
		{Name: "axis_stop", Signature: "uu"},
		{Name: "axis_discrete", Signature: "ui"},
	},
}

// wl_keyboard opcodes.
const (
	KeyboardRelease uint16 = 0

	KeyboardKeymap     uint16 = 0
	KeyboardEnter      uint16 = 1
	KeyboardLeave      uint16 = 2
	KeyboardKey        uint16 = 3
	KeyboardModifiers  uint16 = 4
	KeyboardRepeatInfo uint16 = 5
)

var Keyboard = &Interface{
	Name:    "wl_keyboard",
	Version: 5,
	Requests: []MessageDesc{
		{Name: "release", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "keymap", Signature: "uhu"},
		{Name: "enter", Signature: "uoa", Types: []*Interface{Surface}},
		{Name: "leave", Signature: "uo", Types: []*Interface{Surface}},
		{Name: "key", Signature: "uuuu"},
		{Name: "modifiers", Signature: "uuuuu"},
		{Name: "repeat_info", Signature: "ii"},
	},
}

// wl_touch opcodes.
const (
	TouchRelease uint16 = 0

	TouchDown   uint16 = 0
	TouchUp     uint16 = 1
	TouchMotion uint16 = 2
	TouchFrame  uint16 = 3
	TouchCancel uint16 = 4
)

var Touch = &Interface{
	Name:    "wl_touch",
	Version: 5,
	Requests: []MessageDesc{
		{Name: "release", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "down", Signature: "uuoiff", Types: []*Interface{Surface}},
		{Name: "up", Signature: "uui"},
		{Name: "motion", Signature: "uiff"},
		{Name: "frame", Signature: ""},
		{Name: "cancel", Signature: ""},
	},
}

// wl_output opcodes.
const (
	OutputGeometry uint16 = 0
	OutputMode     uint16 = 1
	OutputDone     uint16 = 2
	OutputScale    uint16 = 3
)

var Output = &Interface{
	Name:    "wl_output",
	Version: 2,
	Events: []MessageDesc{
		{Name: "geometry", Signature: "iiiiissi"},
		{Name: "mode", Signature: "uiii"},
		{Name: "done", Signature: ""},
		{Name: "scale", Signature: "i"},
	},
}

// wl_data_device_manager family opcodes.
const (
	DataDeviceManagerCreateDataSource uint16 = 0
	DataDeviceManagerGetDataDevice    uint16 = 1

	DataDeviceStartDrag    uint16 = 0
	DataDeviceSetSelection uint16 = 1
	DataDeviceRelease      uint16 = 2

	DataDeviceDataOffer uint16 = 0
	DataDeviceEnter     uint16 = 1
	DataDeviceLeave     uint16 = 2
	DataDeviceMotion    uint16 = 3
	DataDeviceDrop      uint16 = 4
	DataDeviceSelection uint16 = 5
)

var DataDeviceManager = &Interface{
	Name:    "wl_data_device_manager",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "create_data_source", Signature: "n", Types: []*Interface{DataSource}},
		{Name: "get_data_device", Signature: "no", Types: []*Interface{DataDevice, Seat}},
	},
}

var DataDevice = &Interface{
	Name:    "wl_data_device",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "start_drag", Signature: "?oo?ou", Types: []*Interface{DataSource, Surface, Surface}},
		{Name: "set_selection", Signature: "?ou", Types: []*Interface{DataSource}},
		{Name: "release", Signature: ""},
	},
	Events: []MessageDesc{
		{Name: "data_offer", Signature: "n", Types: []*Interface{DataOffer}},
		{Name: "enter", Signature: "uoff?o", Types: []*Interface{Surface, DataOffer}},
		{Name: "leave", Signature: ""},
		{Name: "motion", Signature: "uff"},
		{Name: "drop", Signature: ""},
		{Name: "selection", Signature: "?o", Types: []*Interface{DataOffer}},
	},
}

var DataSource = &Interface{
	Name:    "wl_data_source",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "offer", Signature: "s"},
		{Name: "destroy", Signature: ""},
		{Name: "set_actions", Signature: "u"},
	},
	Events: []MessageDesc{
		{Name: "target", Signature: "?s"},
		{Name: "send", Signature: "sh"},
		{Name: "cancelled", Signature: ""},
		{Name: "dnd_drop_performed", Signature: ""},
		{Name: "dnd_finished", Signature: ""},
		{Name: "action", Signature: "u"},
	},
}

var DataOffer = &Interface{
	Name:    "wl_data_offer",
	Version: 3,
	Requests: []MessageDesc{
		{Name: "accept", Signature: "u?s"},
		{Name: "receive", Signature: "sh"},
		{Name: "destroy", Signature: ""},
		{Name: "finish", Signature: ""},
		{Name: "set_actions", Signature: "uu"},
	},
	Events: []MessageDesc{
		{Name: "offer", Signature: "s"},
		{Name: "source_actions", Signature: "u"},
		{Name: "action", Signature: "u"},
	},
}

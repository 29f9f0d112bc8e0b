// Package io defines the basic interface for a memory-mapped I/O device
// on the C64 bus (VIC-II, SID, CIA, cartridge control registers). It's
// intended that implementors call through to whatever backs the device
// (a register bank, a callback into a host peripheral) and that reads
// which have side effects (CIA timer latches) perform them here.
package io

// Device defines a byte-addressable memory-mapped peripheral. Addr is
// already relative to the device's own window (the bus has stripped the
// base address before calling in).
type Device interface {
	// Read returns the value at addr. May have side effects.
	Read(addr uint16) uint8
	// Write stores val at addr. May have side effects.
	Write(addr uint16, val uint8)
	// PowerOn resets the device to its power-on state.
	PowerOn()
}

// ErrorableDevice is implemented by a Device that can surface a
// transient failure from its last Read or Write (a cartridge control
// register rejecting an invalid bank select, for instance). The bus
// checks for this optional interface after every dispatch and, when
// present, surfaces a non-nil result as errs.BusDeviceError.
type ErrorableDevice interface {
	Device
	// LastError returns and clears any error latched by the most
	// recent Read/Write, or nil if none occurred.
	LastError() error
}

// Port8 defines an 8 bit I/O port, kept for devices (joystick/keyboard
// matrix rows driven through CIA1) that only need a narrow read-only
// view rather than the full Device interface.
type Port8 interface {
	// Input will return the current value being set on the given input port.
	Input() uint8
}

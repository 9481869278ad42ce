// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

// ELCurrent is passed as the initial exception level of a Context to mean
// "read the running exception level from the architecture port during
// Init" (spec §4.1: "the current exception level (or a sentinel meaning
// 'read when initializing')"). EL0 is not a valid exception level for this
// code to run at, so it is free to use as the sentinel.
const ELCurrent = 0

// Arch is the architecture port (spec §4.7): the small set of CPU
// operations this engine relies on but does not implement itself. A
// concrete implementation for ARMv8-A AArch64 is provided by xlat/aarch64.
type Arch interface {
	// TLBIVA invalidates any cached translation for one virtual address
	// at the given exception level.
	TLBIVA(va uint64, el int)

	// TLBISync waits for prior invalidations to complete and issues the
	// barriers required to make them globally visible.
	TLBISync()

	// XNMask returns the descriptor bit (or bits) meaning "execute
	// never" for the given exception level; the bit position differs
	// between EL1/EL2/EL3 and EL0.
	XNMask(el int) uint64

	// CurrentEL returns the exception level this code is currently
	// running at.
	CurrentEL() int

	// MaxPA returns the architectural maximum physical address size
	// supported by this CPU.
	MaxPA() uint64

	// EnableMMU programs the base table register and system control
	// register to enable translation, for use by the platform after
	// Init. It is never called by this package itself.
	EnableMMU(flags uint32, baseTable uintptr, maxPA, maxVA uint64)

	// StoreBarrier issues a store barrier, invoked once after a
	// successful dynamic insertion to publish the new descriptors.
	StoreBarrier()
}

// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package aarch64

import "github.com/usbarmory/xlattables/xlat"

// MAIR_EL1 attribute indices this port installs via set_mair_el1, and
// the descriptor AttrIndx values (bits [4:2]) that select them. Index 0
// is Device-nGnRnE, index 1 is Normal Write-Back Write-Allocate, index 2
// is Normal Non-cacheable (ARM DDI 0487, D5.5).
const (
	mairDevicenGnRnE = 0x00
	mairNormalWBWA   = 0xff
	mairNormalNC     = 0x44

	attrIndexDevice       = 0
	attrIndexMemory       = 1
	attrIndexNonCacheable = 2

	mairValue = uint64(mairDevicenGnRnE)<<(8*attrIndexDevice) |
		uint64(mairNormalWBWA)<<(8*attrIndexMemory) |
		uint64(mairNormalNC)<<(8*attrIndexNonCacheable)
)

// Descriptor bit positions and values this port encodes (VMSAv8-64,
// table D5-15/D5-17). All are already shifted into their final position,
// as xlat.DescriptorBits documents.
const (
	bitAccessFlag = uint64(1) << 10
	bitNonSecure  = uint64(1) << 5

	bitAPReadOnly  = uint64(1) << 7
	bitAPReadWrite = uint64(0) << 7

	bitShareableOuter = uint64(0b10) << 8
	bitShareableInner = uint64(0b11) << 8
)

func descriptorBits() xlat.DescriptorBits {
	return xlat.DescriptorBits{
		AccessFlag:            bitAccessFlag,
		NonSecure:             bitNonSecure,
		APReadOnly:            bitAPReadOnly,
		APReadWrite:           bitAPReadWrite,
		AttrIndexDevice:       attrIndexDevice << 2,
		AttrIndexMemory:       attrIndexMemory << 2,
		AttrIndexNonCacheable: attrIndexNonCacheable << 2,
		ShareableOuter:        bitShareableOuter,
		ShareableInner:        bitShareableInner,
	}
}

// Encoder is the xlat.AttributeEncoder for ARMv8-A AArch64 stage-1.
type Encoder struct{}

// Bits returns the VMSAv8-64 stage-1 descriptor bit values.
func (Encoder) Bits() xlat.DescriptorBits {
	return descriptorBits()
}

var _ xlat.AttributeEncoder = Encoder{}

// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat_test

import "github.com/usbarmory/xlattables/xlat"

// fakeArch is a minimal xlat.Arch for tests: it records TLBI calls
// instead of trapping to real hardware, since this package never runs on
// actual ARMv8-A silicon under `go test`.
type fakeArch struct {
	invalidated []uint64
	synced      int
	barriers    int
}

func (a *fakeArch) TLBIVA(va uint64, el int) {
	a.invalidated = append(a.invalidated, va)
}

func (a *fakeArch) TLBISync() {
	a.synced++
}

func (a *fakeArch) XNMask(el int) uint64 {
	if el == 0 {
		return 1<<54 | 1<<53
	}
	return 1 << 54
}

func (a *fakeArch) CurrentEL() int {
	return 1
}

func (a *fakeArch) MaxPA() uint64 {
	return 1 << 48
}

func (a *fakeArch) EnableMMU(flags uint32, baseTable uintptr, maxPA, maxVA uint64) {}

func (a *fakeArch) StoreBarrier() {
	a.barriers++
}

var _ xlat.Arch = (*fakeArch)(nil)

// fakeEncoder supplies plausible, architecture-shaped descriptor bit
// values without depending on the real aarch64 port (and its assembly),
// so these tests build and run on any host.
type fakeEncoder struct{}

func (fakeEncoder) Bits() xlat.DescriptorBits {
	return xlat.DescriptorBits{
		AccessFlag:            1 << 10,
		NonSecure:             1 << 5,
		APReadOnly:            1 << 7,
		APReadWrite:           0,
		AttrIndexDevice:       0 << 2,
		AttrIndexMemory:       1 << 2,
		AttrIndexNonCacheable: 2 << 2,
		ShareableOuter:        0b10 << 8,
		ShareableInner:        0b11 << 8,
	}
}

var _ xlat.AttributeEncoder = fakeEncoder{}

func newTestContext() *xlat.Context {
	return xlat.NewContext(xlat.Limits{
		MaxRegions:  16,
		MaxTables:   32,
		VASpaceSize: 1 << 32,
		PASpaceSize: 1 << 32,
		EL:          1,
	}, &fakeArch{}, fakeEncoder{})
}

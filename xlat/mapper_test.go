// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usbarmory/xlattables/xlat"
)

// TestMapDeviceRegion mirrors spec scenario S1: a device region's leaf
// descriptor carries the device attribute index, outer shareability,
// AP=RW and XN set.
func TestMapDeviceRegion(t *testing.T) {
	ctx := newTestContext()

	require.NoError(t, ctx.AddRegion(xlat.Region{
		PA:          0x0900_0000,
		VA:          0x0900_0000,
		Size:        0x1_0000,
		Granularity: xlat.PageSize,
		Attr:        xlat.Attr{MemType: xlat.Device, ReadWrite: true, ExecuteNever: true},
	}))

	ctx.Init()

	desc, level, err := ctx.Descriptor(0x0900_0000)
	require.NoError(t, err)
	require.Equal(t, 3, level)

	bits := fakeEncoder{}.Bits()
	require.Equal(t, bits.AttrIndexDevice, desc&(0b111<<2))
	require.Equal(t, bits.ShareableOuter, desc&(0b11<<8))
	require.Equal(t, bits.APReadWrite, desc&(1<<7))
	require.NotZero(t, desc&(uint64(1)<<54))
}

// TestMapExecutableCodeRegion mirrors spec scenario S2: a 1 MiB
// executable, read-only region is mapped with XN clear and AP=RO. The
// region does not cover its whole 2 MiB level-2 entry, so that entry
// becomes a TABLE and the region is mapped with level-3 pages.
func TestMapExecutableCodeRegion(t *testing.T) {
	ctx := newTestContext()

	require.NoError(t, ctx.AddRegion(xlat.Region{
		PA:   0x0e10_0000,
		VA:   0x0e10_0000,
		Size: 0x10_0000,
		Attr: xlat.Attr{MemType: xlat.Memory, ReadWrite: false, ExecuteNever: false},
	}))

	ctx.Init()

	desc, _, err := ctx.Descriptor(0x0e10_0000)
	require.NoError(t, err)

	bits := fakeEncoder{}.Bits()
	require.Equal(t, bits.APReadOnly, desc&(1<<7))
	require.Zero(t, desc&(uint64(1)<<54))
}

// TestDynamicAddRemoveRoundTrip mirrors spec scenario S5.
func TestDynamicAddRemoveRoundTrip(t *testing.T) {
	ctx := newTestContext()
	ctx.Init()

	err := ctx.AddDynamicRegion(xlat.Region{
		PA:   0x8000_0000,
		VA:   0x8000_0000,
		Size: 0x1000,
		Attr: xlat.Attr{MemType: xlat.Memory, ReadWrite: true, ExecuteNever: true},
	})
	require.NoError(t, err)

	_, level, err := ctx.Descriptor(0x8000_0000)
	require.NoError(t, err)
	require.Equal(t, 3, level)

	require.NoError(t, ctx.RemoveDynamicRegion(0x8000_0000, 0x1000))

	desc, _, err := ctx.Descriptor(0x8000_0000)
	require.NoError(t, err)
	require.Zero(t, desc)
}

func TestRemoveDynamicRegionRejectsStaticRegion(t *testing.T) {
	ctx := newTestContext()

	require.NoError(t, ctx.AddRegion(xlat.Region{
		PA: 0x1000, VA: 0x1000, Size: 0x1000,
		Attr: xlat.Attr{ExecuteNever: true},
	}))

	ctx.Init()

	err := ctx.RemoveDynamicRegion(0x1000, 0x1000)
	require.ErrorIs(t, err, xlat.ErrNotPermitted)
}

func TestAddDynamicRegionBeforeInitRejected(t *testing.T) {
	ctx := newTestContext()

	err := ctx.AddDynamicRegion(xlat.Region{PA: 0x1000, VA: 0x1000, Size: 0x1000, Attr: xlat.Attr{ExecuteNever: true}})
	require.ErrorIs(t, err, xlat.ErrNotPermitted)
}

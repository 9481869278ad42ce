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

func TestAddRegionRejectsMisaligned(t *testing.T) {
	ctx := newTestContext()

	err := ctx.AddRegion(xlat.Region{
		PA:   0x1001,
		VA:   0x1000,
		Size: 0x1000,
	})

	require.ErrorIs(t, err, xlat.ErrInvalid)
}

func TestAddRegionRejectsZeroSize(t *testing.T) {
	ctx := newTestContext()

	err := ctx.AddRegion(xlat.Region{PA: 0x1000, VA: 0x1000, Size: 0})
	require.ErrorIs(t, err, xlat.ErrInvalid)
}

func TestAddRegionRejectsRWExecute(t *testing.T) {
	ctx := newTestContext()

	err := ctx.AddRegion(xlat.Region{
		PA:   0x1000,
		VA:   0x1000,
		Size: 0x1000,
		Attr: xlat.Attr{ReadWrite: true, ExecuteNever: false},
	})

	require.ErrorIs(t, err, xlat.ErrInvalid)
}

// TestNestedStaticRegionsOrdering mirrors spec scenario S3: a contained
// region must be ordered before its container so the mapper lays the
// fine-grained mapping down first: after Init the inner page is RO and
// the page next to it carries the container's RW.
func TestNestedStaticRegionsOrdering(t *testing.T) {
	ctx := newTestContext()

	outer := xlat.Region{
		PA: 0x4000_0000, VA: 0x4000_0000, Size: 0x200_0000,
		Attr: xlat.Attr{MemType: xlat.Memory, ReadWrite: true, ExecuteNever: true},
	}
	inner := xlat.Region{
		PA: 0x4010_0000, VA: 0x4010_0000, Size: 0x1000,
		Attr: xlat.Attr{MemType: xlat.Memory, ReadWrite: false, ExecuteNever: true},
	}

	require.NoError(t, ctx.AddRegion(outer))
	require.NoError(t, ctx.AddRegion(inner))

	ctx.Init()

	bits := fakeEncoder{}.Bits()

	desc, level, err := ctx.Descriptor(0x4010_0000)
	require.NoError(t, err)
	require.Equal(t, 3, level)
	require.Equal(t, bits.APReadOnly, desc&(1<<7))

	desc, _, err = ctx.Descriptor(0x4010_1000)
	require.NoError(t, err)
	require.Equal(t, bits.APReadWrite, desc&(1<<7))
}

// TestOverlapRejection mirrors spec scenario S4: a region with a
// different VA-PA offset than an existing, fully nested region is
// rejected.
func TestOverlapRejection(t *testing.T) {
	ctx := newTestContext()

	outer := xlat.Region{
		PA: 0x4000_0000, VA: 0x4000_0000, Size: 0x200_0000,
		Attr: xlat.Attr{MemType: xlat.Memory, ReadWrite: true, ExecuteNever: true},
	}
	require.NoError(t, ctx.AddRegion(outer))

	conflicting := xlat.Region{
		PA: 0x5000_0000, VA: 0x4000_1000, Size: 0x1000,
		Attr: xlat.Attr{MemType: xlat.Memory, ReadWrite: true, ExecuteNever: true},
	}

	err := ctx.AddRegion(conflicting)
	require.ErrorIs(t, err, xlat.ErrOverlap)
}

func TestAddRegionNoMemoryWhenListFull(t *testing.T) {
	ctx := xlat.NewContext(xlat.Limits{
		MaxRegions:  1,
		MaxTables:   4,
		VASpaceSize: 1 << 32,
		PASpaceSize: 1 << 32,
		EL:          1,
	}, &fakeArch{}, fakeEncoder{})

	require.NoError(t, ctx.AddRegion(xlat.Region{PA: 0x1000, VA: 0x1000, Size: 0x1000, Attr: xlat.Attr{ExecuteNever: true}}))

	err := ctx.AddRegion(xlat.Region{PA: 0x2000, VA: 0x2000, Size: 0x1000, Attr: xlat.Attr{ExecuteNever: true}})
	require.ErrorIs(t, err, xlat.ErrNoMemory)
}

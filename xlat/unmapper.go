// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

// unmapRegion mirrors mapRegion's walk (spec §4.5), used only on the
// dynamic path. It overwrites BLOCK/PAGE descriptors fully covered by r
// with INVALID, invalidating the TLB for each one, and recurses into
// TABLE descriptors that the region touches, freeing sub-tables whose
// occupancy count reaches zero on the way back up.
func (c *Context) unmapRegion(r Region, tableBaseVA uint64, t *table, entryCount int, level int) {
	shift := levelShift(level)
	size := blockSize(level)

	firstIdx := 0
	if r.VA > tableBaseVA {
		firstIdx = int((r.VA - tableBaseVA) >> shift)
	}

	for idx := firstIdx; idx < entryCount; idx++ {
		entryStart := entryVA(tableBaseVA, idx, level)
		entryEnd := entryStart + size - 1

		if entryStart > r.endVA() {
			break
		}

		covers := r.VA <= entryStart && entryEnd <= r.endVA()
		partial := !covers && !(entryEnd < r.VA || r.endVA() < entryStart)

		if !covers && !partial {
			continue
		}

		desc := t[idx]
		kind := decodeKind(desc, level)

		switch kind {
		case kindInvalid:
			// nothing mapped here

		case kindBlock, kindPage:
			if !covers {
				panic("xlat: partial overlap against terminal descriptor during unmap")
			}

			t[idx] = descInvalid
			c.arch.TLBIVA(entryStart, c.el)

		case kindTable:
			sub := tableFromAddr(desc & tableAddrMask)

			c.unmapRegion(r, entryStart, sub, TableSize, level+1)
			c.pool.decRegions(sub)

			if c.pool.isEmpty(sub) {
				t[idx] = descInvalid
				c.arch.TLBIVA(entryStart, c.el)
			}
		}
	}
}

// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

// entryVA returns the VA of the first byte covered by table entry idx at
// the given level, relative to a table whose own first entry starts at
// tableBaseVA.
func entryVA(tableBaseVA uint64, idx int, level int) uint64 {
	return tableBaseVA + uint64(idx)<<levelShift(level)
}

// mapRegion is the recursive descent of spec §4.4, walking one table and
// writing descriptors for the portion of r that falls within
// [tableBaseVA, tableBaseVA + entryCount<<levelShift(level)). It returns
// the VA of the last byte it successfully mapped; callers compare this
// against the expected window end to detect a pool-exhaustion failure
// partway through.
func (c *Context) mapRegion(r Region, tableBaseVA uint64, t *table, entryCount int, level int) uint64 {
	shift := levelShift(level)
	size := blockSize(level)

	firstIdx := 0
	if r.VA > tableBaseVA {
		firstIdx = int((r.VA - tableBaseVA) >> shift)
	}

	last := tableBaseVA - 1

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

		switch {
		case covers && kind == kindInvalid:
			pa := r.PA + (entryStart - r.VA)

			if level == maxLevel {
				t[idx] = encode(r.Attr, pa, level, c.xnMask, c.enc.Bits())
				last = entryEnd
				continue
			}

			if alignedTo(pa, size) && r.Granularity >= size && level >= minBlockLvl {
				t[idx] = encode(r.Attr, pa, level, c.xnMask, c.enc.Bits())
				last = entryEnd
				continue
			}

			sub := c.pool.getEmpty()
			if sub == nil {
				return last
			}

			c.pool.incRegions(sub)
			t[idx] = descTable | tableAddr(sub)

			subLast := c.mapRegion(r, entryStart, sub, TableSize, level+1)
			last = subLast

			if subLast != entryEnd && subLast != r.endVA() {
				return last
			}

		case covers && kind == kindTable:
			sub := tableFromAddr(desc & tableAddrMask)
			c.pool.incRegions(sub)
			subLast := c.mapRegion(r, entryStart, sub, TableSize, level+1)
			last = subLast

			if subLast != entryEnd && subLast != r.endVA() {
				return last
			}

		case covers:
			// BLOCK/PAGE already present: do not overwrite.
			last = entryEnd

		case partial && kind == kindInvalid:
			if level == maxLevel {
				panic("xlat: partial overlap at maximum table level")
			}

			sub := c.pool.getEmpty()
			if sub == nil {
				return last
			}

			c.pool.incRegions(sub)
			t[idx] = descTable | tableAddr(sub)

			subLast := c.mapRegion(r, entryStart, sub, TableSize, level+1)
			last = subLast

			if subLast != entryEnd && subLast != r.endVA() {
				return last
			}

		case partial && kind == kindTable:
			sub := tableFromAddr(desc & tableAddrMask)
			c.pool.incRegions(sub)
			subLast := c.mapRegion(r, entryStart, sub, TableSize, level+1)
			last = subLast

			if subLast != entryEnd && subLast != r.endVA() {
				return last
			}

		default:
			// partial overlap against an existing BLOCK/PAGE: the new
			// region cannot be carved out of an already-terminal
			// descriptor without splitting it, which this engine never
			// does (region-list overlap checks are meant to prevent
			// this from ever being reached).
			panic("xlat: partial overlap against terminal descriptor")
		}
	}

	return last
}

// alignedTo reports whether pa is aligned to size, size being a power of
// two.
func alignedTo(pa, size uint64) bool {
	return pa&(size-1) == 0
}

// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

// ChangeAttributes rewrites the permission and execute-never bits of an
// already page-mapped range (spec §4.6). It requires the context to be
// initialized and the range to be page-aligned and already mapped down
// to PAGE descriptors; it never splits a BLOCK to accommodate a finer
// change.
//
// The walk is two-pass: pass one (findLeaf, which only reads) validates
// every page in the range before pass two mutates anything, so a
// malformed range never leaves a partial change behind.
func (c *Context) ChangeAttributes(va, size uint64, newAttr Attr) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		panic("xlat: ChangeAttributes called before Init")
	}

	if !isPageAligned(va) || !isPageAligned(size) || size == 0 {
		return ErrInvalid
	}

	if newAttr.ReadWrite && !newAttr.ExecuteNever {
		return ErrInvalid
	}

	pages := size / PageSize

	leaves := make([]*uint64, 0, pages)

	for i := uint64(0); i < pages; i++ {
		leaf, err := c.findLeaf(va + i*PageSize)
		if err != nil {
			return err
		}

		leaves = append(leaves, leaf)
	}

	bits := c.enc.Bits()

	for i, leaf := range leaves {
		desc := *leaf

		desc &^= bits.APReadOnly | bits.APReadWrite
		if newAttr.ReadWrite {
			desc |= bits.APReadWrite
		} else {
			desc |= bits.APReadOnly
		}

		desc &^= c.xnMask
		if newAttr.ReadWrite || newAttr.ExecuteNever {
			desc |= c.xnMask
		}

		*leaf = desc

		c.arch.TLBIVA(va+uint64(i)*PageSize, c.el)
	}

	c.arch.TLBISync()

	return nil
}

// findLeaf descends the tree to the PAGE descriptor mapping va, returning
// a pointer to the live table slot so pass two can mutate it in place.
// Fails with ErrInvalid if any intermediate entry is INVALID, if the walk
// ends at a BLOCK rather than a PAGE, or if va is outside the base
// table's coverage.
func (c *Context) findLeaf(va uint64) (*uint64, error) {
	t := c.baseTable
	entryCount := c.baseCount
	tableBaseVA := uint64(0)

	for level := c.baseLevel; ; level++ {
		shift := levelShift(level)
		idx := int((va - tableBaseVA) >> shift)

		if idx < 0 || idx >= entryCount {
			return nil, ErrInvalid
		}

		desc := t[idx]
		kind := decodeKind(desc, level)

		switch kind {
		case kindInvalid:
			return nil, ErrInvalid

		case kindPage:
			if level != maxLevel {
				return nil, ErrInvalid
			}
			return &t[idx], nil

		case kindBlock:
			return nil, ErrInvalid

		case kindTable:
			t = tableFromAddr(desc & tableAddrMask)
			entryCount = TableSize
			tableBaseVA = entryVA(tableBaseVA, idx, level)
		}
	}
}

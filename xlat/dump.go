// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

import (
	"fmt"
	"io"
)

// Descriptor returns the descriptor the walk for va ends at, and the level
// it was found at, for inspection and testing: the BLOCK or PAGE
// descriptor mapping va, or, when the walk reaches an unmapped entry, that
// INVALID descriptor with a nil error. It returns ErrInvalid only when va
// lies outside the base table's coverage. It is a read-only walk, not a
// reverse mapping from VA to region (spec §1 Non-goals: "No reverse
// mapping ... beyond the leaf-descriptor walk needed to change
// attributes").
func (c *Context) Descriptor(va uint64) (desc uint64, level int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.baseTable
	entryCount := c.baseCount
	tableBaseVA := uint64(0)

	for level = c.baseLevel; ; level++ {
		shift := levelShift(level)
		idx := int((va - tableBaseVA) >> shift)

		if idx < 0 || idx >= entryCount {
			return 0, 0, ErrInvalid
		}

		d := t[idx]
		kind := decodeKind(d, level)

		switch kind {
		case kindInvalid:
			return d, level, nil

		case kindBlock, kindPage:
			return d, level, nil

		case kindTable:
			t = tableFromAddr(d & tableAddrMask)
			entryCount = TableSize
			tableBaseVA = entryVA(tableBaseVA, idx, level)
		}
	}
}

// Dump writes a human-readable rendering of the region list and table
// pool occupancy to w, for debugging (ported from xlat_tables_print /
// print_mmap; spec §5 supplements this onto the core, which has no
// logging facility of its own).
func (c *Context) Dump(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(w, "xlat: context initialized=%v maxPA=%#x maxVA=%#x\n", c.initialized, c.maxPA, c.maxVA)
	fmt.Fprintf(w, "xlat: tables used=%d/%d\n", c.pool.used(), len(c.pool.tables))

	for i, r := range c.regions {
		fmt.Fprintf(w, "  [%d] pa=%#x va=%#x size=%#x gran=%#x dynamic=%v rw=%v ns=%v xn=%v type=%v\n",
			i, r.PA, r.VA, r.Size, r.Granularity, r.Attr.Dynamic, r.Attr.ReadWrite,
			r.Attr.NonSecure, r.Attr.ExecuteNever, r.Attr.MemType)
	}
}

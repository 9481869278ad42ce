// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

import "unsafe"

// table is one 4 KiB, 512-entry translation table: the base table or a
// sub-table. Its layout must match the hardware descriptor array exactly,
// so it carries no bookkeeping fields of its own; occupancy is tracked
// out-of-line in pool.regions, mirroring xlat_tables_internal.c's parallel
// tables_mapped_regions[] array.
type table [TableSize]uint64

// pool owns a fixed set of sub-tables, allocated once up front (spec's
// Non-goal: "no allocator" refers to the absence of further runtime calls
// into a system allocator once the context is built, not to this one-time
// reservation). Tables must be page-aligned, since a TABLE descriptor's
// address field is the real address of the pointed-to table and must have
// its low 12 bits clear. Go gives no alignment guarantee for make([]table,
// n), so the backing store is over-allocated by one page and carved at the
// first aligned offset, the same padding idiom dma/region.go uses to satisfy
// a caller-requested alignment out of a first-fit free list.
type pool struct {
	tables  []*table
	regions []int // per-table count of top-level regions referencing it
}

func newPool(n int) *pool {
	p := &pool{
		tables:  make([]*table, n),
		regions: make([]int, n),
	}

	if n == 0 {
		return p
	}

	raw := make([]byte, n*PageSize+PageSize-1)
	base := uintptr(unsafe.Pointer(&raw[0]))
	pad := (PageSize - int(base%PageSize)) % PageSize

	for i := 0; i < n; i++ {
		p.tables[i] = (*table)(unsafe.Pointer(&raw[pad+i*PageSize]))
	}

	return p
}

// tableAddr returns the real address of t, as it appears in the address
// field of a TABLE descriptor pointing to it.
func tableAddr(t *table) uint64 {
	return uint64(uintptr(unsafe.Pointer(t)))
}

// tableFromAddr is the inverse of tableAddr, decoding the address field of
// an existing TABLE descriptor back into the table it points to.
func tableFromAddr(addr uint64) *table {
	return (*table)(unsafe.Pointer(uintptr(addr)))
}

// getEmpty returns an unreferenced sub-table from the pool, or nil if all
// tables are currently in use. Ported from xlat_table_get_empty.
func (p *pool) getEmpty() *table {
	for i, n := range p.regions {
		if n == 0 {
			return p.tables[i]
		}
	}

	return nil
}

func (p *pool) indexOf(t *table) int {
	for i, pt := range p.tables {
		if pt == t {
			return i
		}
	}

	// A TABLE descriptor that doesn't resolve to a pool table indicates
	// tree corruption; this can only happen if the context's own
	// bookkeeping is broken.
	panic("xlat: table not found in pool")
}

func (p *pool) incRegions(t *table) {
	p.regions[p.indexOf(t)]++
}

func (p *pool) decRegions(t *table) {
	p.regions[p.indexOf(t)]--
}

func (p *pool) isEmpty(t *table) bool {
	return p.regions[p.indexOf(t)] == 0
}

// used reports how many sub-tables are currently referenced by at least one
// region, for diagnostics (see Context.Dump).
func (p *pool) used() int {
	n := 0

	for _, r := range p.regions {
		if r != 0 {
			n++
		}
	}

	return n
}

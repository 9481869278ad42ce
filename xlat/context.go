// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

import "sync"

// Limits configures a Context's static resource bounds, supplied at
// construction the way tamago's CPU.Init takes plain arguments rather
// than parsing a config file (SPEC_FULL.md §2.3): there is no
// environment/flag parsing layer in this package, only the limits a
// caller passes in directly, since the engine runs before any such
// facility would exist.
type Limits struct {
	// MaxRegions bounds the region list (spec's MAX_MMAP_REGIONS).
	MaxRegions int

	// MaxTables bounds the sub-table pool, excluding the base table
	// (spec's MAX_XLAT_TABLES).
	MaxTables int

	// VASpaceSize and PASpaceSize are inclusive power-of-two sizes that
	// determine the base table's starting level and entry count, and
	// the ceilings regions are checked against.
	VASpaceSize uint64
	PASpaceSize uint64

	// EL pins the exception level a Context operates at. Pass
	// ELCurrent to read it from Arch.CurrentEL during Init.
	EL int
}

// Context owns one region list, one table pool and one base table (spec
// §3). Two contexts never share a pool or base table. Every public method
// serializes on one plain mutex; this mirrors the engine's own
// single-mutator assumption (spec §5) rather than protecting against
// concurrent hardware access, hence nothing atomic.
type Context struct {
	mu sync.Mutex

	limits Limits
	arch   Arch
	enc    AttributeEncoder

	regions []Region

	pool       *pool
	baseTable  *table
	baseLevel  int
	baseCount  int

	maxPACeiling uint64
	maxVACeiling uint64
	maxPA        uint64
	maxVA        uint64

	initialized bool
	el          int
	xnMask      uint64
}

// NewContext allocates a Context (the table pool and base table included)
// and leaves it in the "mutable region list, no tree" state of spec §3.
// It does not build anything; call AddRegion/AddRegions followed by Init.
func NewContext(limits Limits, arch Arch, enc AttributeEncoder) *Context {
	if limits.MaxRegions <= 0 {
		panic("xlat: MaxRegions must be positive")
	}

	if !isPageAligned(limits.VASpaceSize) || !isPageAligned(limits.PASpaceSize) {
		panic("xlat: VA/PA space size must be page-aligned")
	}

	level, entries := baseLevel(limits.VASpaceSize)

	base := newPool(1)

	c := &Context{
		limits:       limits,
		arch:         arch,
		enc:          enc,
		regions:      make([]Region, 0, limits.MaxRegions),
		pool:         newPool(limits.MaxTables),
		baseTable:    base.tables[0],
		baseLevel:    level,
		baseCount:    entries,
		maxPACeiling: limits.PASpaceSize - 1,
		maxVACeiling: limits.VASpaceSize - 1,
		el:           limits.EL,
	}

	return c
}

// AddRegion enqueues a static region. Forbidden once Init has run (spec
// §4.2: "add_region is forbidden after initialized becomes true").
func (c *Context) AddRegion(r Region) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		panic("xlat: AddRegion called after Init")
	}

	r.Attr.Dynamic = false

	_, err := c.insertRegion(r)
	return err
}

// AddRegions enqueues a slice of static regions in order, stopping at the
// first error (spec's add_regions, a supplemented convenience wrapper
// around repeated AddRegion — see SPEC_FULL.md §5).
func (c *Context) AddRegions(regions []Region) error {
	for _, r := range regions {
		if err := c.AddRegion(r); err != nil {
			return err
		}
	}

	return nil
}

// Init drains the region list into the translation tree (spec §4.1).
// Every table entry starts INVALID; the execute-never mask and exception
// level are fetched from the architecture port before mapping begins.
// Any mapping failure is a fatal misconfiguration, since the static
// region list was declared by the platform itself, so it panics rather
// than returning an error (Design Notes §9: "the static-path 'fatal'
// cases should not widen the public error surface").
func (c *Context) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		panic("xlat: Init called twice")
	}

	for i := range c.baseTable {
		if i >= c.baseCount {
			break
		}
		c.baseTable[i] = descInvalid
	}

	if c.el == ELCurrent {
		c.el = c.arch.CurrentEL()
	}

	c.xnMask = c.arch.XNMask(c.el)

	for _, r := range c.regions {
		last := c.mapRegion(r, 0, c.baseTable, c.baseCount, c.baseLevel)
		if last != r.VA+r.Size-1 {
			panic("xlat: static region failed to map: pool exhausted")
		}
	}

	if c.limits.PASpaceSize > c.arch.MaxPA() {
		panic("xlat: configured PA ceiling exceeds architectural maximum")
	}

	if c.maxVA > c.maxVACeiling || c.maxPA > c.maxPACeiling {
		panic("xlat: observed high-water mark exceeds configured ceiling")
	}

	c.initialized = true
}

// Initialized reports whether Init has completed.
func (c *Context) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.initialized
}

// BaseTable returns the real address of the root table, for use by the
// platform when calling Arch.EnableMMU. Valid only after Init.
func (c *Context) BaseTable() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		panic("xlat: BaseTable called before Init")
	}

	return uintptr(tableAddr(c.baseTable))
}

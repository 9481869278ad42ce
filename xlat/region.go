// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

// MemType is the memory type of a Region, one of the three VMSAv8-64
// stage-1 attribute classes this engine supports.
type MemType int

const (
	// Memory is normal, cacheable, inner-shareable RAM.
	Memory MemType = iota
	// NonCacheable is normal, non-cacheable, outer-shareable RAM.
	NonCacheable
	// Device is device-gathering memory, outer-shareable, never
	// executable regardless of Attr.ExecuteNever.
	Device
)

func (m MemType) String() string {
	switch m {
	case Device:
		return "Device"
	case NonCacheable:
		return "NonCacheable"
	default:
		return "Memory"
	}
}

// Attr is the abstract attribute set of a Region (spec §3): memory type,
// permission, security state and executability. The architecture-specific
// bit values these map to are supplied by an AttributeEncoder; Attr itself
// is architecture-neutral.
type Attr struct {
	MemType      MemType
	ReadWrite    bool // false = read-only
	NonSecure    bool // false = secure
	ExecuteNever bool

	// Dynamic is set only by AddDynamicRegion, never by the caller
	// directly; it marks a region as removable and as one that may not
	// be fully nested with any other region, in either direction.
	Dynamic bool
}

// Region is one {base_pa, base_va, size, attr, granularity} tuple (spec
// §3). Granularity is the coarsest block size the mapper may use for this
// region; a caller that expects to later call ChangeAttributes on part of
// the region should set Granularity to PageSize to force page-granular
// leaves.
type Region struct {
	PA          uint64
	VA          uint64
	Size        uint64
	Granularity uint64
	Attr        Attr
}

func (r Region) endVA() uint64 {
	return r.VA + r.Size - 1
}

func (r Region) endPA() uint64 {
	return r.PA + r.Size - 1
}

// overlaps reports whether r and other intersect in VA space, per the
// explicit intersection predicate of Design Notes §9 (the original's
// disjunctive test is replaced here with its logical equivalent, relying
// on the caller to have already separated out the fully-nested case).
func (r Region) overlaps(other Region) bool {
	return !(r.endVA() < other.VA || other.endVA() < r.VA)
}

// contains reports whether r fully nests other within r's VA range.
func (r Region) contains(other Region) bool {
	return r.VA <= other.VA && other.endVA() <= r.endVA()
}

func (r Region) offset() uint64 {
	return r.VA - r.PA
}

// validateRegion checks a region against the static invariants of spec §3/§4.2
// that do not depend on the rest of the region list: alignment, a
// non-zero size, the RW+Execute attribute conflict, and range against the
// context's configured ceilings.
func (c *Context) validateRegion(r Region) error {
	if !isPageAligned(r.PA) || !isPageAligned(r.VA) || !isPageAligned(r.Size) || !isPageAligned(r.Granularity) {
		return ErrInvalid
	}

	if r.Size == 0 {
		return ErrInvalid
	}

	if r.Granularity < PageSize {
		return ErrInvalid
	}

	if r.Attr.ReadWrite && !r.Attr.ExecuteNever {
		return ErrInvalid
	}

	if r.endVA() < r.VA || r.endPA() < r.PA {
		return ErrRange
	}

	if r.endVA() > c.maxVACeiling || r.endPA() > c.maxPACeiling {
		return ErrRange
	}

	return nil
}

// checkOverlap applies the overlap rules of spec §4.2 against the
// region list's current contents, returning ErrOverlap if r may not
// coexist with an existing entry.
func (c *Context) checkOverlap(r Region) error {
	for _, existing := range c.regions {
		nested := existing.contains(r) || r.contains(existing)

		if nested {
			if existing.Attr.Dynamic || r.Attr.Dynamic {
				return ErrOverlap
			}

			if existing.offset() != r.offset() {
				return ErrOverlap
			}

			if existing.VA == r.VA && existing.Size == r.Size {
				return ErrOverlap
			}

			continue
		}

		if r.overlaps(existing) {
			return ErrOverlap
		}
	}

	return nil
}

// insertionIndex finds where r belongs in the region list: past every
// entry whose end-VA is strictly lower, and past every entry with the
// same end-VA but strictly smaller size (spec §3's ordering key).
func (c *Context) insertionIndex(r Region) int {
	end := r.endVA()

	i := 0
	for i < len(c.regions) {
		e := c.regions[i]

		if e.endVA() < end {
			i++
			continue
		}

		if e.endVA() == end && e.Size < r.Size {
			i++
			continue
		}

		break
	}

	return i
}

// insertRegion validates, checks overlap against, and inserts r into the
// region list at its canonical position, updating the observed PA/VA
// high-water marks. It does not map anything; that is the caller's job
// (Init for the static path, AddDynamicRegion for the dynamic one).
func (c *Context) insertRegion(r Region) (int, error) {
	if r.Granularity == 0 {
		// Unset granularity means "no restriction": allow the mapper to
		// pick the coarsest block the region's alignment permits.
		r.Granularity = blockSize(minBlockLvl)
	}

	if err := c.validateRegion(r); err != nil {
		return 0, err
	}

	if len(c.regions) >= c.limits.MaxRegions {
		return 0, ErrNoMemory
	}

	if err := c.checkOverlap(r); err != nil {
		return 0, err
	}

	idx := c.insertionIndex(r)

	c.regions = append(c.regions, Region{})
	copy(c.regions[idx+1:], c.regions[idx:])
	c.regions[idx] = r

	if r.endPA() > c.maxPA {
		c.maxPA = r.endPA()
	}

	if r.endVA() > c.maxVA {
		c.maxVA = r.endVA()
	}

	return idx, nil
}

// removeRegionAt deletes the region at idx from the list and, if it owned
// either high-water mark, rescans the remainder to find the new one
// (spec §4.5).
func (c *Context) removeRegionAt(idx int) {
	r := c.regions[idx]
	c.regions = append(c.regions[:idx], c.regions[idx+1:]...)

	if r.endPA() == c.maxPA || r.endVA() == c.maxVA {
		c.maxPA, c.maxVA = 0, 0
		for _, e := range c.regions {
			if e.endPA() > c.maxPA {
				c.maxPA = e.endPA()
			}
			if e.endVA() > c.maxVA {
				c.maxVA = e.endVA()
			}
		}
	}
}

func (c *Context) findRegion(va, size uint64) (int, error) {
	for i, r := range c.regions {
		if r.VA == va && r.Size == size {
			return i, nil
		}
	}

	return 0, ErrInvalid
}

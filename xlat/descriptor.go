// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

import "github.com/usbarmory/xlattables/bits"

// Descriptor kinds are distinguished by the low two bits of a 64-bit
// descriptor word (VMSAv8-64, table D5-10). TABLE and PAGE share the same
// encoding; disambiguating them requires knowing the level, never the word
// alone (Design Notes §9).
const (
	descInvalid uint64 = 0b00
	descBlock   uint64 = 0b01
	descTable   uint64 = 0b11
	descPage    uint64 = 0b11
	descMask    uint64 = 0b11
)

// tableAddrMask clears the low 12 bits (page alignment) and anything above
// bit 47, the output address field width this engine targets.
const tableAddrMask uint64 = 0x0000ffffffffffff &^ (PageSize - 1)

type descKind int

const (
	kindInvalid descKind = iota
	kindBlock
	kindTable
	kindPage
)

func decodeKind(desc uint64, level int) descKind {
	switch bits.Get64(&desc, 0, int(descMask)) {
	case descInvalid:
		return kindInvalid
	case descBlock:
		return kindBlock
	default: // 0b11: TABLE below the deepest level, PAGE at the deepest level
		if level == maxLevel {
			return kindPage
		}
		return kindTable
	}
}

// DescriptorBits carries the architecture-variant-specific bit values the
// encoder ORs into a descriptor word. These are exactly the "page-size and
// descriptor-bit constants for a particular architecture variant" spec.md
// §1 calls out as external: AArch32 vs AArch64 and stage-1 vs stage-2 all
// use different values here, while the recipe combining them (encode,
// below) stays the same. All fields are already shifted into their final
// bit position.
type DescriptorBits struct {
	AccessFlag            uint64
	NonSecure             uint64
	APReadOnly            uint64
	APReadWrite           uint64
	AttrIndexDevice       uint64
	AttrIndexMemory       uint64
	AttrIndexNonCacheable uint64
	ShareableOuter        uint64
	ShareableInner        uint64
}

// AttributeEncoder is the second narrow port spec.md §1/§6 calls for: it
// supplies the raw descriptor-bit values for the concrete architecture
// variant. encode (§4.3) is pure core logic that combines them; it never
// varies across variants.
type AttributeEncoder interface {
	Bits() DescriptorBits
}

// encode implements the descriptor encoder of spec §4.3: given an abstract
// attribute set, a physical address, a table level and the execute-never
// mask for the context's exception level, produce one descriptor word.
// Ported from xlat_tables_internal.c's xlat_desc().
func encode(attr Attr, pa uint64, level int, xnMask uint64, db DescriptorBits) uint64 {
	if pa&blockMask(level) != 0 {
		panic("xlat: physical address not aligned to block size for this level")
	}

	desc := pa

	if level == maxLevel {
		desc |= descPage
	} else {
		desc |= descBlock
	}

	desc |= db.AccessFlag

	if attr.NonSecure {
		desc |= db.NonSecure
	}

	if attr.ReadWrite {
		desc |= db.APReadWrite
	} else {
		desc |= db.APReadOnly
	}

	switch attr.MemType {
	case Device:
		desc |= db.AttrIndexDevice | db.ShareableOuter
		// Device memory is never executable, forbidding speculative
		// fetch from MMIO.
		desc |= xnMask

	case NonCacheable:
		desc |= db.AttrIndexNonCacheable | db.ShareableOuter
		if attr.ReadWrite || attr.ExecuteNever {
			desc |= xnMask
		}

	default: // Memory
		desc |= db.AttrIndexMemory | db.ShareableInner
		if attr.ReadWrite || attr.ExecuteNever {
			desc |= xnMask
		}
	}

	return desc
}

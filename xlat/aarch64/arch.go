// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package aarch64 is the concrete architecture port consumed by
// xlat.Context: it implements xlat.Arch and xlat.AttributeEncoder for
// ARMv8-A AArch64, stage-1. It is the one package in this module allowed
// to know the real VMSAv8-64 descriptor bit values and to execute TLBI,
// barrier and system-register instructions; xlat itself stays
// architecture-neutral.
package aarch64

import "github.com/usbarmory/xlattables/xlat"

// Exception levels this port can run at, mirroring arm64.CPU's treatment
// of the running mode as plain integer state rather than an enum.
const (
	EL0 = 0
	EL1 = 1
	EL2 = 2
	EL3 = 3
)

// defined in asm_arm64.s
func tlbi_vae1(va uint64)
func tlbi_vae2(va uint64)
func tlbi_vae3(va uint64)
func dsb_ish()
func dsb_sy()
func isb()
func currentEL() uint64
func idAA64MMFR0EL1() uint64
func set_ttbr0_el1(baseTable uint64)
func set_tcr_el1(tcr uint64)
func set_mair_el1(mair uint64)
func mmu_on()

// CPU is the AArch64 stage-1 Arch implementation (ported from the TLB
// and barrier helpers of arm64/cache.go, generalized from a single flat
// mapping to the per-VA/per-EL operations xlat.Arch requires).
type CPU struct{}

// TLBIVA invalidates the cached translation for va at el, by exception
// level's own TLBI variant (VAE1/VAE2/VAE3 IS).
func (CPU) TLBIVA(va uint64, el int) {
	switch el {
	case EL2:
		tlbi_vae2(va)
	case EL3:
		tlbi_vae3(va)
	default:
		tlbi_vae1(va)
	}
}

// TLBISync waits for prior invalidations with a data synchronization
// barrier, then an instruction barrier so the next fetch observes them.
func (CPU) TLBISync() {
	dsb_ish()
	isb()
}

// XNMask returns the EL1/2/3 execute-never bit (UXN/XN, bit 54) for EL1
// and above, or the combined UXN|PXN mask (bits 54, 53) when the context
// runs at EL0 and distinguishes privileged vs unprivileged execute-never
// (VMSAv8-64, table D5-17).
func (CPU) XNMask(el int) uint64 {
	const (
		uxn = uint64(1) << 54
		pxn = uint64(1) << 53
	)

	if el == EL0 {
		return uxn | pxn
	}

	return uxn
}

// CurrentEL reads CurrentEL.EL via the currentEL asm stub (MRS CurrentEL,
// Xt, fields [3:2]).
func (CPU) CurrentEL() int {
	return int((currentEL() >> 2) & 0b11)
}

// MaxPA returns the architectural maximum physical address size
// supported by this core, decoded from ID_AA64MMFR0_EL1.PARange
// (VMSAv8-64, table D5-6).
func (CPU) MaxPA() uint64 {
	paRange := idAA64MMFR0EL1() & 0b1111

	switch paRange {
	case 0b0000:
		return 1 << 32
	case 0b0001:
		return 1 << 36
	case 0b0010:
		return 1 << 40
	case 0b0011:
		return 1 << 42
	case 0b0100:
		return 1 << 44
	case 0b0101:
		return 1 << 48
	case 0b0110:
		return 1 << 52
	default:
		return 1 << 48
	}
}

// TCR_EL1 field shifts/values this port programs (VMSAv8-64, TCR_EL1).
const (
	tcrT0SZShift = 0
	tcrIRGN0WBWA = 0b01 << 8
	tcrORGN0WBWA = 0b01 << 10
	tcrSH0Inner  = 0b11 << 12
	tcrTG0_4K    = 0b00 << 14
	tcrIPSShift  = 32
)

// EnableMMU programs MAIR_EL1, TCR_EL1 and TTBR0_EL1, then enables the
// MMU by setting SCTLR_EL1.M. flags is not used: no SCTLR_EL1 bit other
// than M is set or cleared by this call. Cache maintenance prior to enabling translation is
// the platform's responsibility, as it depends on what was written to
// memory before this call (spec §1's "Out of scope").
func (CPU) EnableMMU(flags uint32, baseTable uintptr, maxPA, maxVA uint64) {
	set_mair_el1(mairValue)

	t0sz := uint64(64 - bitsNeeded(maxVA))
	ips := parangeFromMaxPA(maxPA)

	tcr := t0sz<<tcrT0SZShift | tcrIRGN0WBWA | tcrORGN0WBWA | tcrSH0Inner | tcrTG0_4K | ips<<tcrIPSShift
	set_tcr_el1(tcr)

	set_ttbr0_el1(uint64(baseTable))

	isb()
	mmu_on()
	isb()
}

func bitsNeeded(size uint64) uint64 {
	n := uint64(0)
	for size > 1 {
		size >>= 1
		n++
	}
	return n
}

func parangeFromMaxPA(maxPA uint64) uint64 {
	switch maxPA {
	case 1 << 32:
		return 0b0000
	case 1 << 36:
		return 0b0001
	case 1 << 40:
		return 0b0010
	case 1 << 42:
		return 0b0011
	case 1 << 44:
		return 0b0100
	case 1 << 52:
		return 0b0110
	default:
		return 0b0101 // 1 << 48
	}
}

// StoreBarrier issues a DSB to publish new descriptors written during a
// dynamic insertion, per spec §5's ordering rule 2.
func (CPU) StoreBarrier() {
	dsb_sy()
}

var _ xlat.Arch = CPU{}

// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package xlat builds and maintains ARMv8-A AArch64 stage-1 translation
// tables: the multi-level structures an MMU walks to translate virtual
// addresses to physical addresses, with per-page permissions and memory
// type attributes.
//
// A caller declares memory regions (physical base, virtual base, size,
// attributes, granularity) through AddRegion/AddRegions before Init, then
// calls Init to build the 4 KiB translation tables realizing those
// mappings. After Init, AddDynamicRegion and RemoveDynamicRegion allow
// adding and removing regions at runtime, and ChangeAttributes allows
// changing the permission/execute-never bits of an already page-mapped
// range.
//
// This package only builds and mutates the table tree in memory. Enabling
// the MMU, programming the base table register, performing cache
// maintenance and handling translation faults are the responsibility of
// the architecture-specific Arch implementation (see xlat/aarch64) and of
// the platform that embeds this package.
package xlat

// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

// def is the process-wide default Context (Design Notes §9: "the
// singleton variant is a thin convenience" over the context-taking API).
// It is nil until SetDefault is called; every wrapper below panics on a
// nil default rather than silently allocating one, since the limits,
// Arch and AttributeEncoder are caller-supplied and have no sane
// zero-value default.
var def *Context

// SetDefault installs ctx as the default context used by the
// package-level convenience functions.
func SetDefault(ctx *Context) {
	def = ctx
}

// Default returns the current default context, or nil if none has been
// installed.
func Default() *Context {
	return def
}

func mustDefault() *Context {
	if def == nil {
		panic("xlat: no default context installed, call SetDefault first")
	}

	return def
}

// AddRegion enqueues a static region on the default context.
func AddRegion(r Region) error {
	return mustDefault().AddRegion(r)
}

// AddRegions enqueues static regions on the default context.
func AddRegions(regions []Region) error {
	return mustDefault().AddRegions(regions)
}

// Init builds the default context's translation tree.
func Init() {
	mustDefault().Init()
}

// Initialized reports whether the default context has been built.
func Initialized() bool {
	return mustDefault().Initialized()
}

// AddDynamicRegion adds r to the default context at runtime.
func AddDynamicRegion(r Region) error {
	return mustDefault().AddDynamicRegion(r)
}

// RemoveDynamicRegion removes a dynamic region from the default context.
func RemoveDynamicRegion(va, size uint64) error {
	return mustDefault().RemoveDynamicRegion(va, size)
}

// ChangeAttributes rewrites permission/XN bits on the default context.
func ChangeAttributes(va, size uint64, newAttr Attr) error {
	return mustDefault().ChangeAttributes(va, size, newAttr)
}

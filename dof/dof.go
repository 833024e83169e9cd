// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dof defines the six-component nodal degree-of-freedom space shared
// by nodes, elements and the assembler.
package dof

import "github.com/cpmech/gosl/chk"

// Kind identifies one of the six possible nodal degrees of freedom.
type Kind int

// the six in-plane/out-of-plane degrees of freedom a 2D/3D frame node may carry.
const (
	Ux Kind = iota
	Uy
	Uz
	Rx
	Ry
	Rz
	nkinds
)

// All lists every DoF kind in canonical order.
var All = [nkinds]Kind{Ux, Uy, Uz, Rx, Ry, Rz}

// String returns the conventional short name of the DoF.
func (k Kind) String() string {
	switch k {
	case Ux:
		return "ux"
	case Uy:
		return "uy"
	case Uz:
		return "uz"
	case Rx:
		return "rx"
	case Ry:
		return "ry"
	case Rz:
		return "rz"
	}
	return "?"
}

// Valid reports whether d is one of the six defined kinds.
func Valid(d int) bool {
	return d >= 0 && d < int(nkinds)
}

// InvalidDofError is returned whenever an operation is asked to act on a DoF
// index outside {0..5}.
type InvalidDofError struct {
	Dof int
}

func (e *InvalidDofError) Error() string {
	return chk.Err("invalid dof index %d: must be in {0..5}", e.Dof).Error()
}

// LoadedRestrainedDofError is returned when a DoF is found to be both fixed
// and loaded at the same time, violating Node invariant (b).
type LoadedRestrainedDofError struct {
	NodeID int
	Dof    int
}

func (e *LoadedRestrainedDofError) Error() string {
	return chk.Err("node %d: dof %d is both restrained and loaded", e.NodeID, e.Dof).Error()
}

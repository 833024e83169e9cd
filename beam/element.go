// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package beam implements the three beam element kinds (linear, nonlinear
// elastic, nonlinear plastic), sharing one active-DoF mapping scheme and
// one element contract: update state from the nodes, then emit stiffness
// and resistance triplets.
package beam

import (
	"github.com/Anwar8/Blaze/node"
	"github.com/cpmech/gosl/chk"
)

// column offsets within the 12-wide local/global vector for the in-plane
// translations and out-of-plane rotation of each node (mirrors corot's
// private column constants; kept local since Go has no cross-package
// unexported sharing).
const (
	colUx1 = 0
	colUy1 = 1
	colRz1 = 5
	colUx2 = 6
	colUy2 = 7
	colRz2 = 11
)

// Kind selects which of the three beam kernels an element uses.
type Kind int

const (
	KindLinear Kind = iota
	KindNonlinearElastic
	KindNonlinearPlastic
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "LinearElastic"
	case KindNonlinearElastic:
		return "NonlinearElastic"
	case KindNonlinearPlastic:
		return "NonlinearPlastic"
	}
	return "?"
}

// KTriplet is one (global row, global col, value) contribution to the
// assembled tangent stiffness matrix.
type KTriplet struct {
	Row, Col int
	Value    float64
}

// RTriplet is one (global row, value) contribution to the assembled
// resistance vector.
type RTriplet struct {
	Row   int
	Value float64
}

// Element is the contract every beam element kind satisfies.
type Element interface {
	ID() int
	// Initialise builds the element's stiffness map and caches its base
	// geometry; call once after the two end nodes are final (ownership,
	// nz_i) and again whenever fixity changes.
	Initialise() error
	// UpdateState pulls displacements from the nodes, recomputes strains,
	// stresses, local force and stiffness, and the element's global
	// stiffness matrix, ready for triplet emission.
	UpdateState() error
	// KTriplets returns this element's contribution to the global tangent.
	KTriplets() []KTriplet
	// RTriplets returns this element's contribution to the global
	// resistance vector.
	RTriplets() []RTriplet
}

// checkNodes validates that an element was given exactly two distinct,
// non-nil end nodes; anything else is a topology error in the model.
func checkNodes(nodes [2]*node.Node) error {
	if nodes[0] == nil || nodes[1] == nil {
		return chk.Err("element: both end nodes must be non-nil")
	}
	if nodes[0] == nodes[1] {
		return chk.Err("element: end nodes must be distinct")
	}
	return nil
}

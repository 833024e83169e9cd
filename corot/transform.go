// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package corot implements the corotational transform:
// it strips rigid-body motion from a beam element's 12-component global
// displacement vector (two nodes x six dofs each, the full nodal Dof
// space, even though a planar frame only ever drives three of them)
// down to a 3-component deformational vector d = (Δ, θ1, θ2), and supplies
// the Jacobian and second-derivative coefficients the element needs to
// build its geometric stiffness; the chord geometry is recomputed from the
// current configuration every iteration.
package corot

import "math"

// dof column offsets within the 12-wide global vector for the in-plane
// translations and the out-of-plane rotation of each node; only these six
// columns can ever be non-zero in the Jacobian/Hessians below.
const (
	colUx1 = 0
	colUy1 = 1
	colRz1 = 5
	colUx2 = 6
	colUy2 = 7
	colRz2 = 11
)

// Transform holds a beam element's base configuration and the current
// deformation state derived from it.
type Transform struct {
	X1, Y1, X2, Y2 float64 // base (initial) end coordinates
	L0             float64 // initial length
	Phi0           float64 // initial chord angle

	x21, y21 float64 // current relative position
	L        float64 // current length
	Phi      float64 // current chord angle
	Psi      float64 // rigid-body rotation, Phi - Phi0
}

// Initialise captures the base configuration from the two end nodes'
// initial coordinates.
func (t *Transform) Initialise(xa, ya, xb, yb float64) {
	t.X1, t.Y1, t.X2, t.Y2 = xa, ya, xb, yb
	dx, dy := xb-xa, yb-ya
	t.L0 = math.Hypot(dx, dy)
	t.Phi0 = math.Atan2(dy, dx)
}

// Update recomputes the current chord geometry from the element's 12-wide
// global displacement vector U: x21 = X21+U[6]-U[0],
// y21 = Y21+U[7]-U[1], L = |x21,y21|, φ = atan2(y21,x21), ψ = φ-φ0.
func (t *Transform) Update(U [12]float64) {
	X21, Y21 := t.X2-t.X1, t.Y2-t.Y1
	t.x21 = X21 + U[colUx2] - U[colUx1]
	t.y21 = Y21 + U[colUy2] - U[colUy1]
	t.L = math.Hypot(t.x21, t.y21)
	t.Phi = math.Atan2(t.y21, t.x21)
	t.Psi = t.Phi - t.Phi0
}

// DFromU returns the deformational vector d = (Δ, θ1, θ2) consistent with
// the configuration set by the most recent Update.
func (t *Transform) DFromU(U [12]float64) (d [3]float64) {
	d[0] = t.L - t.L0
	d[1] = U[colRz1] - t.Psi
	d[2] = U[colRz2] - t.Psi
	return
}

// NLT returns the 3x12 Jacobian ∂d/∂U of the current configuration (as
// opposed to the initial-configuration transform of the linear element).
// Only the six in-plane columns are ever non-zero.
func (t *Transform) NLT() (T [3][12]float64) {
	c, s, l := math.Cos(t.Phi), math.Sin(t.Phi), t.L

	// dΔ/dU: -n at node 1, +n at node 2, where n=(c,s).
	T[0][colUx1], T[0][colUy1] = -c, -s
	T[0][colUx2], T[0][colUy2] = c, s

	// dψ/dU, shared by both θ rows before the +1 on the own rotation dof.
	dpsi := [12]float64{}
	dpsi[colUx1], dpsi[colUy1] = s/l, -c/l
	dpsi[colUx2], dpsi[colUy2] = -s/l, c/l

	for k := 0; k < 12; k++ {
		T[1][k] = -dpsi[k]
		T[2][k] = -dpsi[k]
	}
	T[1][colRz1] += 1
	T[2][colRz2] += 1
	return
}

// GK returns the five closed-form trigonometric coefficients (in terms of
// sinφ, cosφ and L) that the external geometric stiffness is built from.
// Panics for k outside {1..5}, a programmer error, not a runtime condition.
func (t *Transform) GK(k int) float64 {
	c, s, l := math.Cos(t.Phi), math.Sin(t.Phi), t.L
	switch k {
	case 1:
		return s * s / l
	case 2:
		return c * c / l
	case 3:
		return s * c / l
	case 4:
		return (c*c - s*s) / (l * l)
	case 5:
		return 2 * s * c / (l * l)
	}
	panic("corot: GK coefficient index must be in {1..5}")
}

// KExt assembles the 12x12 external geometric stiffness contribution
// k_ext = N·∂²Δ/∂U² − (M1+M2)·∂²ψ/∂U², scaled by the element's local force
// components (N, M1, M2). All entries outside the four
// in-plane translational columns {0,1,6,7} are zero — including every row
// and column touching Uz, Rx, Ry. KExt vanishes identically when N=0 and
// M1+M2=0.
func (t *Transform) KExt(n, m1, m2 float64) (K [12][12]float64) {
	g1, g2, g3 := t.GK(1), t.GK(2), t.GK(3)
	g4, g5 := t.GK(4), t.GK(5)

	// H_Δ = ∂²Δ/∂U², block pattern [[H,-H],[-H,H]] with H=[[g1,-g3],[-g3,g2]].
	hD := [2][2]float64{{g1, -g3}, {-g3, g2}}
	// H_ψ = ∂²ψ/∂U², block pattern [[Hp,-Hp],[-Hp,Hp]] with Hp=[[g5,-g4],[-g4,-g5]].
	hP := [2][2]float64{{g5, -g4}, {-g4, -g5}}

	mSum := m1 + m2
	cols := [4]int{colUx1, colUy1, colUx2, colUy2}
	// sign[a][b] = +1 if a,b belong to the same node, -1 otherwise.
	sign := func(a, b int) float64 {
		sameNode := (a < 2) == (b < 2)
		if sameNode {
			return 1
		}
		return -1
	}
	for ai, a := range cols {
		for bi, b := range cols {
			sg := sign(ai, bi)
			la, lb := ai%2, bi%2 // local index within the node's (x,y) pair
			K[a][b] = n*sg*hD[la][lb] - mSum*sg*hP[la][lb]
		}
	}
	return
}

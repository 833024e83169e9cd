// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ana implements analytical solutions for beams and frames, used to
// verify the element kernels and the solution procedure.
package ana

import "math"

// CantileverEndLoad computes the linear-elastic solution of a cantilever
// with a transverse point load at its tip
//
//   |‖
//   |‖========================  ↓ P
//   |‖           L
type CantileverEndLoad struct {
	// input
	E float64 // Young's modulus
	I float64 // second moment of area
	L float64 // length
	P float64 // transverse tip load (sign carried through)
}

// TipDeflection returns the transverse tip displacement P·L³/(3·E·I).
func (o *CantileverEndLoad) TipDeflection() float64 {
	return o.P * o.L * o.L * o.L / (3.0 * o.E * o.I)
}

// Deflection returns the transverse displacement at distance x from the
// clamp, 0 ≤ x ≤ L.
func (o *CantileverEndLoad) Deflection(x float64) float64 {
	return o.P * x * x * (3.0*o.L - x) / (6.0 * o.E * o.I)
}

// SimpleBeamPointLoad computes the linear-elastic solution of a simply
// supported beam with a transverse point load at midspan
//
//            ↓ P
//   △========================◯
//               L
type SimpleBeamPointLoad struct {
	// input
	E float64 // Young's modulus
	I float64 // second moment of area
	L float64 // length
	P float64 // transverse midspan load
}

// MidDeflection returns the midspan displacement P·L³/(48·E·I).
func (o *SimpleBeamPointLoad) MidDeflection() float64 {
	return o.P * o.L * o.L * o.L / (48.0 * o.E * o.I)
}

// SimpleBeamUDL computes the linear-elastic solution of a simply supported
// beam under a uniformly distributed transverse load w (force per length)
//
//   ↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓↓
//   △========================◯
//               L
type SimpleBeamUDL struct {
	// input
	E float64 // Young's modulus
	I float64 // second moment of area
	L float64 // length
	W float64 // distributed load per unit length
}

// MidDeflection returns the midspan displacement 5·w·L⁴/(384·E·I).
func (o *SimpleBeamUDL) MidDeflection() float64 {
	l2 := o.L * o.L
	return 5.0 * o.W * l2 * l2 / (384.0 * o.E * o.I)
}

// CantileverEndMoment computes the large-displacement (elastica) solution of
// a cantilever bent by a tip moment: the beam deforms into a circular arc of
// radius E·I/M, so the tip position follows in closed form. With
// M = 2π·E·I/L the beam curls into a complete circle.
type CantileverEndMoment struct {
	// input
	E float64 // Young's modulus
	I float64 // second moment of area
	L float64 // length
	M float64 // tip moment
}

// TipDisplacement returns the axial and transverse tip displacements
// (u, v) of the curled beam.
func (o *CantileverEndMoment) TipDisplacement() (u, v float64) {
	if o.M == 0 {
		return 0, 0
	}
	r := o.E * o.I / o.M // arc radius
	θ := o.L / r         // total arc angle
	u = r*math.Sin(θ) - o.L
	v = r * (1.0 - math.Cos(θ))
	return
}

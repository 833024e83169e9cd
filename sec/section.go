// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sec implements the two Section variants: Basic, a constant-D_t
// beam/column section, and Fibre, a discretised bilinear-elastoplastic
// cross-section. Both satisfy the Section interface the beam elements
// consume.
package sec

import "github.com/Anwar8/Blaze/mat"

// Section is the capability set every section variant provides: a tangent
// constitutive matrix and generalised stress for a given generalised strain
// (axial strain, curvature), plus hooks to commit converged state.
type Section interface {
	// DT returns the current 2x2 tangent constitutive matrix
	// [[EA, −EAy],[−EAy, EI]] relating (Δε_axial, Δκ) to (ΔN, ΔM).
	DT() [2][2]float64
	// Stress returns the current generalised stress (N, M).
	Stress() (n, m float64)
	// UpdateState recomputes D_t and the generalised stress for the given
	// generalised strain (ε_axial, κ).
	UpdateState(epsAxial, kappa float64)
	// CommitState promotes the current (converged) state to the section's
	// "starting" state; invoked once a load step has converged.
	CommitState()
	// Clone returns an independent copy carrying the same committed state;
	// every Gauss point owns its own section copy.
	Clone() Section
}

// Basic is a section with a constant tangent, D_t = diag(E·A, E·I); it
// carries no internal state.
type Basic struct {
	EA, EI float64
	n, m   float64 // current generalised stress, linear in strain
}

// NewBasic builds a Basic section from elastic modulus E, area A and second
// moment of area I.
func NewBasic(e, a, i float64) *Basic {
	return &Basic{EA: e * a, EI: e * i}
}

func (s *Basic) DT() [2][2]float64 {
	return [2][2]float64{{s.EA, 0}, {0, s.EI}}
}

func (s *Basic) Stress() (n, m float64) { return s.n, s.m }

func (s *Basic) UpdateState(epsAxial, kappa float64) {
	s.n = s.EA * epsAxial
	s.m = s.EI * kappa
}

func (s *Basic) CommitState() {}

func (s *Basic) Clone() Section {
	cp := *s
	return &cp
}

// Fibre is a list of (material, area, y-offset) fibres integrated to
// produce generalised stress and tangent stiffness.
type Fibre struct {
	Mdl   []*mat.Bilinear
	Area  []float64
	Y     []float64
	state []*mat.State
	start []*mat.State
	n, m  float64
	dt    [2][2]float64
}

// NewFibre builds a fibre section from parallel slices of bilinear material,
// area and y-offset, one entry per fibre.
func NewFibre(mdl []*mat.Bilinear, area, y []float64) *Fibre {
	n := len(mdl)
	f := &Fibre{Mdl: mdl, Area: area, Y: y}
	f.state = make([]*mat.State, n)
	f.start = make([]*mat.State, n)
	for i, m := range mdl {
		f.state[i] = m.Start()
		f.start[i] = f.state[i].Copy()
	}
	f.UpdateState(0, 0)
	return f
}

func (f *Fibre) DT() [2][2]float64      { return f.dt }
func (f *Fibre) Stress() (n, m float64) { return f.n, f.m }

// UpdateState loops the fibres, calling each material's return map on
// ε_i = ε_axial − y_i·κ, then aggregates generalised stress and tangent.
func (f *Fibre) UpdateState(epsAxial, kappa float64) {
	var n, m float64
	var d11, d12, d22 float64
	for i, mdl := range f.Mdl {
		epsI := epsAxial - f.Y[i]*kappa
		mdl.Update(f.state[i], epsI)
		sig := f.state[i].Sig
		a := f.Area[i]
		y := f.Y[i]
		n += sig * a
		m += -sig * a * y
		et := f.state[i].Et
		d11 += et * a
		d12 += -et * a * y
		d22 += et * a * y * y
	}
	f.n, f.m = n, m
	f.dt = [2][2]float64{{d11, d12}, {d12, d22}}
}

// CommitState promotes every fibre's current state to its starting state
// (called only after a converged load step, plastic elements only).
func (f *Fibre) CommitState() {
	for i, s := range f.state {
		f.start[i] = s.Copy()
	}
}

// Restore resets every fibre back to its last committed ("starting") state;
// used by the element's iteration backup/restore so a rejected Newton
// iteration never leaves stale plastic strain behind.
func (f *Fibre) Restore() {
	for i, s := range f.start {
		f.state[i] = s.Copy()
	}
}

// Clone returns an independent Fibre section sharing the same material
// models but with its own state slices, as required for per-Gauss-point
// section copies.
func (f *Fibre) Clone() Section {
	cp := &Fibre{
		Mdl:  f.Mdl,
		Area: append([]float64(nil), f.Area...),
		Y:    append([]float64(nil), f.Y...),
	}
	cp.state = make([]*mat.State, len(f.state))
	cp.start = make([]*mat.State, len(f.start))
	for i := range f.state {
		cp.state[i] = f.state[i].Copy()
		cp.start[i] = f.start[i].Copy()
	}
	cp.n, cp.m, cp.dt = f.n, f.m, f.dt
	return cp
}

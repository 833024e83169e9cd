// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mat implements the bilinear elastoplastic uniaxial constitutive
// law used by fibre sections.
package mat

import "math"

// Bilinear holds the parameters of a bilinear kinematic-free elastoplastic
// uniaxial material: Young's modulus E, yield stress Fy and hardening ratio
// B ∈ [0,1] (E_t = B·E on the plastic branch).
type Bilinear struct {
	E  float64
	Fy float64
	B  float64
}

// State carries a fibre's current constitutive state: strain, stress,
// accumulated plastic strain and the current tangent modulus.
type State struct {
	Eps   float64 // total strain ε
	Sig   float64 // stress σ
	EpsP  float64 // plastic strain ε_p
	Et    float64 // tangent modulus, E or B·E
}

// Start produces the unstressed, unstrained initial state of a fibre.
func (m *Bilinear) Start() *State {
	return &State{Et: m.E}
}

// Copy returns an independent snapshot of s, used when a Section backs up a
// Gauss point's fibre states before a Newton iteration.
func (s *State) Copy() *State {
	cp := *s
	return &cp
}

// Update performs the bilinear return map:
//
//	σ_trial = E·(ε − ε_p)
//	yield surface: |σ_trial| ≤ Fy·(1 + B·|ε_p|·E/Fy)
//
// On the elastic branch σ=σ_trial and E_t=E; otherwise σ is projected back
// onto the (translated) yield surface with hardening slope B·E and ε_p is
// updated accordingly. Update is idempotent: calling it again with the same
// ε and the same starting (ε_p, pre-update) snapshot reproduces the same σ,
// ε_p, E_t — it depends only on ε and the state's ε_p field, not on any
// history beyond that.
func (m *Bilinear) Update(s *State, eps float64) {
	s.Eps = eps
	sigTrial := m.E * (eps - s.EpsP)
	yieldSurf := m.Fy * (1 + m.B*math.Abs(s.EpsP)*m.E/m.Fy)
	if math.Abs(sigTrial) <= yieldSurf {
		s.Sig = sigTrial
		s.Et = m.E
		return
	}
	// plastic branch: project onto the yield surface with hardening slope B·E.
	sign := 1.0
	if sigTrial < 0 {
		sign = -1.0
	}
	// Solve for the plastic-strain increment Δεp such that the updated
	// stress lies exactly on the (moving) yield surface:
	//   σ = E·(ε − εp_old − Δεp) = sign·Fy·(1 + B·|εp_old+Δεp|·E/Fy)
	// Since Δεp has the same sign as sigTrial on a monotonic bilinear path,
	// this reduces to a single linear equation in Δεp.
	epsPOld := s.EpsP
	num := sigTrial - sign*m.Fy*(1+m.B*math.Abs(epsPOld)*m.E/m.Fy)
	den := m.E + m.B*m.E
	deltaEpsP := num / den
	s.EpsP = epsPOld + deltaEpsP
	s.Sig = m.E * (eps - s.EpsP)
	s.Et = m.B * m.E
}

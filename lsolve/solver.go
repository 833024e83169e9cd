// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lsolve wraps github.com/cpmech/gosl/la's sparse direct solver
// behind the two operations the Newton loop needs: factorise the current
// tangent, then solve for an increment against a right-hand side.
package lsolve

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// DefaultSolverName is the la.GetSolver backend name used unless a caller
// overrides it.
const DefaultSolverName = "umfpack"

// Solver factorises a tangent stiffness matrix and solves for displacement
// increments against it, reusing the factorisation across calls until
// Factorize is invoked again (the constant-tangent iteration mode relies
// on this reuse).
type Solver struct {
	name   string
	linSol la.LinSol
	inited bool
	n      int
}

// New builds a Solver using the named gosl/la backend ("umfpack", "mumps",
// …); an empty name selects DefaultSolverName.
func New(name string) *Solver {
	if name == "" {
		name = DefaultSolverName
	}
	return &Solver{name: name, linSol: la.GetSolver(name)}
}

// FactorisationError reports that the direct solver could not factorise
// the given tangent; the error is returned, not panicked, so the caller
// can attach the matrix identity.
type FactorisationError struct {
	N   int
	Err error
}

func (e *FactorisationError) Error() string {
	return io.Sf("lsolve: factorisation of %dx%d tangent failed: %v", e.N, e.N, e.Err)
}

func (e *FactorisationError) Unwrap() error { return e.Err }

// Factorize builds (or rebuilds) the numeric factorisation of Kt, an
// n x n la.Triplet assembled by package asm. The assembler hands over a
// fresh triplet every iteration, so the previous backend state is released
// and re-initialised each call; skipping Factorize altogether (and calling
// SolveDeltaU against the last factorisation) is how the Modified-Newton
// option reuses a tangent. Symmetric is false: the corotational tangent is
// not generally symmetric once geometric stiffness is included.
func (s *Solver) Factorize(kt *la.Triplet, n int) error {
	s.n = n
	if s.inited {
		s.linSol.Free()
		s.linSol = la.GetSolver(s.name)
	}
	if err := s.linSol.InitR(kt, false, false, false); err != nil {
		return &FactorisationError{N: n, Err: err}
	}
	s.inited = true
	if err := s.linSol.Fact(); err != nil {
		return &FactorisationError{N: n, Err: err}
	}
	return nil
}

// SolveDeltaU solves Kt·δU = rhs using the last factorisation, returning
// δU. rhs is typically -G, the negated out-of-balance.
func (s *Solver) SolveDeltaU(rhs []float64) ([]float64, error) {
	out := make([]float64, len(rhs))
	if err := s.linSol.SolveR(out, rhs, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Free releases the backend solver's resources; la.LinSol holds native
// handles that must be released explicitly.
func (s *Solver) Free() {
	if s.inited {
		s.linSol.Free()
		s.inited = false
	}
}

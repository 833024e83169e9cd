// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proc implements the incremental load-factor procedure with
// Newton-Raphson iteration per step, an optional constant-tangent mode,
// divergence control with step halving, and per-iteration residual
// recording.
package proc

import (
	"math"

	"github.com/Anwar8/Blaze/asm"
	"github.com/Anwar8/Blaze/bc"
	"github.com/Anwar8/Blaze/lsolve"
	"github.com/Anwar8/Blaze/mesh"
	"github.com/Anwar8/Blaze/scribe"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Params holds the solver parameters, a flat struct of primitives with
// one derived field.
type Params struct {
	MaxLoadFactor float64
	NumSteps      int
	Tol           float64
	MaxIter       int

	// DLambda is derived by Derive: MaxLoadFactor / NumSteps.
	DLambda float64
}

// Derive validates the parameters and computes DLambda.
func (p *Params) Derive() error {
	if p.NumSteps < 1 {
		return chk.Err("proc: NumSteps must be >= 1, got %d", p.NumSteps)
	}
	if p.MaxIter < 1 {
		return chk.Err("proc: MaxIter must be >= 1, got %d", p.MaxIter)
	}
	if p.Tol <= 0 {
		return chk.Err("proc: Tol must be positive, got %g", p.Tol)
	}
	p.DLambda = p.MaxLoadFactor / float64(p.NumSteps)
	return nil
}

// ConvergenceError reports that a load step did not reach the residual
// tolerance within MaxIter iterations. It is not fatal to the caller: the
// scribe retains the history of every converged step before it.
type ConvergenceError struct {
	Lambda float64
	GMax   float64
	Step   int
}

func (e *ConvergenceError) Error() string {
	return io.Sf("proc: analysis incomplete, no convergence at step %d: λ = %g, out-of-balance = %g", e.Step, e.Lambda, e.GMax)
}

// Procedure drives the load-factor loop. The two optional switches extend
// the plain Newton scheme: ConstantTangent reuses the first iteration's
// factorisation for the rest of a step, and DivergenceControl retries a
// step with a halved Δλ when it does not converge (the residual grows
// between iterations, or MaxIter runs out), up to NdvgMax times, instead
// of failing outright.
type Procedure struct {
	Par               Params
	ConstantTangent   bool
	DivergenceControl bool
	NdvgMax           int  // max step-halving retries; 0 means the default of 5
	ShowMsg           bool // narrate progress on rank 0

	Lambda float64 // current load factor
	Step   int     // current (1-based) load step
}

type committer interface{ CommitState() }
type restorer interface{ RestoreState() }

// commitStates promotes every path-dependent element's section state after
// a converged step (plastic elements only).
func commitStates(m *mesh.GlobalMesh) {
	for _, e := range m.Elements() {
		if c, ok := e.(committer); ok {
			c.CommitState()
		}
	}
}

// restoreStates rewinds every path-dependent element to its last committed
// section state, so each iteration's return map integrates from the start
// of the step rather than from the previous trial.
func restoreStates(m *mesh.GlobalMesh) {
	for _, e := range m.Elements() {
		if r, ok := e.(restorer); ok {
			r.RestoreState()
		}
	}
}

// Run executes the load-factor loop until λ reaches MaxLoadFactor or a step
// fails to converge. Build the assembler after every restraint is applied:
// the system size is frozen there. Returns a *ConvergenceError on the
// failed step; any other error is fatal.
func (p *Procedure) Run(m *mesh.GlobalMesh, a *asm.Assembler, sol *lsolve.Solver, lm *bc.LoadManager, scr *scribe.Scribe) error {
	if err := p.Par.Derive(); err != nil {
		return err
	}
	// final fixity check: restraints and loads may be declared in any
	// order, so the conflict is only detectable here.
	for _, n := range m.OwnedNodes() {
		if err := n.CheckFixity(); err != nil {
			return err
		}
	}
	ndvgMax := p.NdvgMax
	if ndvgMax == 0 {
		ndvgMax = 5
	}
	show := p.ShowMsg && m.Rank() == 0

	dLF := p.Par.DLambda
	p.Lambda = 0
	p.Step = 1
	for p.Lambda < p.Par.MaxLoadFactor-1e-12 {
		var uBackup []float64
		if p.DivergenceControl {
			uBackup = a.BackupU()
		}
		attempt := 0
		for {
			p.Lambda += dLF
			if show {
				io.Pf("load step %d: λ = %g\n", p.Step, p.Lambda)
			}
			if err := lm.IncrementAll(dLF); err != nil {
				return err
			}
			a.AssembleLoad()

			converged, gmax, err := p.iterate(m, a, sol, scr, show)
			if err != nil {
				return err
			}
			if converged {
				break
			}
			if p.DivergenceControl && attempt < ndvgMax {
				// roll the step back and retry with half the increment.
				if err := lm.IncrementAll(-dLF); err != nil {
					return err
				}
				p.Lambda -= dLF
				if err := a.RestoreU(uBackup); err != nil {
					return err
				}
				restoreStates(m)
				dLF /= 2
				attempt++
				if show {
					io.Pfcyan("step %d diverged, retrying with Δλ = %g\n", p.Step, dLF)
				}
				continue
			}
			if show {
				io.Pfred("analysis incomplete: λ = %g, out-of-balance = %g\n", p.Lambda, gmax)
			}
			return &ConvergenceError{Lambda: p.Lambda, GMax: gmax, Step: p.Step}
		}

		commitStates(m)
		scr.WriteToRecords()
		p.Step++
	}
	if show {
		io.Pf("analysis complete: λ = %g\n", p.Lambda)
	}
	return nil
}

// iterate runs the Newton iterations of one load step: push U to the
// nodes, reassemble, check, solve, update. The residual is always
// assembled at least once before convergence is decided.
func (p *Procedure) iterate(m *mesh.GlobalMesh, a *asm.Assembler, sol *lsolve.Solver, scr *scribe.Scribe, show bool) (converged bool, gmax float64, err error) {
	factorised := false
	prevGmax := math.Inf(1)
	for it := 1; it <= p.Par.MaxIter; it++ {
		if err = a.MapUToNodes(); err != nil {
			return
		}
		restoreStates(m)
		if err = a.UpdateElements(); err != nil {
			return
		}
		a.AssembleTangent()
		a.AssembleResistance()
		a.FormOutOfBalance()
		gmax = a.GlobalGMax()
		scr.AppendResidual(it == 1, gmax)
		if math.IsNaN(gmax) {
			err = chk.Err("proc: NaN residual at step %d iteration %d", p.Step, it)
			return
		}
		if show {
			io.Pf("  iteration %d: |G|max = %g\n", it, gmax)
		}
		if gmax < p.Par.Tol {
			converged = true
			return
		}
		if p.DivergenceControl && it > 1 && gmax > prevGmax {
			return // diverging; let the caller halve the step
		}
		prevGmax = gmax
		if it == p.Par.MaxIter {
			return // failed: out of iterations with the residual still high
		}

		kt, g := a.GatherForSolve()
		if kt == nil {
			// non-root rank of a gathered solve: receive rank 0's δU.
			if err = a.ScatterDeltaU(nil); err != nil {
				return
			}
			continue
		}
		if !(p.ConstantTangent && factorised) {
			if err = sol.Factorize(kt, a.NDofs()); err != nil {
				return
			}
			factorised = true
		}
		rhs := make([]float64, len(g))
		for i, v := range g {
			rhs[i] = -v
		}
		var du []float64
		if du, err = sol.SolveDeltaU(rhs); err != nil {
			return
		}
		if err = a.ScatterDeltaU(du); err != nil {
			return
		}
	}
	return
}

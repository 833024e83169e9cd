// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements the Assembler: mapping U onto nodes, driving
// every element's state update, and gathering element/node triplets into
// the global tangent stiffness, load and resistance vectors.
package asm

import (
	"github.com/Anwar8/Blaze/beam"
	"github.com/Anwar8/Blaze/dist"
	"github.com/Anwar8/Blaze/mesh"
	"github.com/Anwar8/Blaze/node"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Assembler holds the global tangent stiffness, load and resistance
// vectors for one rank's share of the mesh.
//
// P holds the current load, already scaled by the load factor: the load
// manager increments each node's load by Δλ·magnitude every step, so the
// node triplets this gathers carry λ·P_ref and the out-of-balance is
// simply G = R − P.
type Assembler struct {
	m    *mesh.GlobalMesh
	coll dist.Collective

	ndofs     int
	kTriplets []beam.KTriplet // raw per-element contributions, kept until a solve gathers them so a distributed run can ship them to rank 0 first
	P         []float64       // current load vector (λ-scaled through the load manager's increments)
	R         []float64       // internal resistance vector
	G         []float64       // out-of-balance: G = R - P
	U         []float64       // current global displacement vector
	GMax      float64
}

// New builds an Assembler sized for m's current (global) DoF count; build it
// after every restraint has been applied, since a later fixity change
// invalidates the sizing. coll is the same collective m was built with; when
// coll.Size() > 1, GatherForSolve collects every rank's contributions onto
// rank 0 before the caller solves, and ScatterDeltaU broadcasts the solution
// back.
func New(m *mesh.GlobalMesh, coll dist.Collective) *Assembler {
	n := m.NDofs()
	a := &Assembler{m: m, coll: coll, ndofs: n}
	a.U = make([]float64, n)
	return a
}

// NDofs returns the global system size this assembler was built for.
func (a *Assembler) NDofs() int { return a.ndofs }

// MapUToNodes pushes the assembler's global U vector back onto every node
// this rank holds; call at the start of every iteration, including the
// first (where U is all zero). Interface copies are included: U is
// global-length on every rank (ScatterDeltaU broadcasts the full
// increment), and an element next to a subdomain boundary reads its halo
// node's displacement like any other.
func (a *Assembler) MapUToNodes() error {
	push := func(ns []*node.Node) error {
		for _, n := range ns {
			actives := n.ActiveDofsSorted()
			if len(actives) == 0 {
				continue
			}
			values := make([]float64, len(actives))
			for i := range actives {
				values[i] = a.U[n.NzI+i]
			}
			if err := n.PushU(values); err != nil {
				return err
			}
		}
		return nil
	}
	if err := push(a.m.OwnedNodes()); err != nil {
		return err
	}
	return push(a.m.InterfaceNodes())
}

// UpdateElements recomputes every owned element's local state (strain,
// stress, local force/stiffness) from the displacements MapUToNodes just
// pushed.
func (a *Assembler) UpdateElements() error {
	for _, e := range a.m.Elements() {
		if err := e.UpdateState(); err != nil {
			return err
		}
	}
	return nil
}

// AssembleTangent gathers every element's K triplets; kept as raw triplets
// rather than folded straight into an la.Triplet, since a distributed run
// must gather every rank's contributions (GatherForSolve) before the matrix
// is built on rank 0.
func (a *Assembler) AssembleTangent() {
	a.kTriplets = a.kTriplets[:0]
	for _, e := range a.m.Elements() {
		a.kTriplets = append(a.kTriplets, e.KTriplets()...)
	}
}

// AssembleLoad gathers every owned node's load triplets into P; the node
// loads already carry the accumulated λ·magnitude, so P needs no further
// scaling. Call once per load step, after the load manager's increment.
func (a *Assembler) AssembleLoad() {
	a.P = make([]float64, a.ndofs)
	for _, n := range a.m.OwnedNodes() {
		for _, t := range n.ComputeLoadTriplets() {
			a.P[t.Row] += t.Value
		}
	}
}

// AssembleResistance gathers every element's resistance-force triplets
// into R.
func (a *Assembler) AssembleResistance() {
	a.R = make([]float64, a.ndofs)
	for _, e := range a.m.Elements() {
		for _, t := range e.RTriplets() {
			a.R[t.Row] += t.Value
		}
	}
}

// FormOutOfBalance computes G = R - P and its largest absolute component;
// on a distributed run each rank sees only its own rows, so GMax is
// reduced across ranks in GlobalGMax, not here.
func (a *Assembler) FormOutOfBalance() {
	a.G = make([]float64, a.ndofs)
	for i := range a.G {
		a.G[i] = a.R[i] - a.P[i]
	}
	a.GMax = la.VecLargest(a.G, 1)
}

// Converged reports whether the largest out-of-balance component is below
// tol; the max-norm is deliberately used instead of the L2 norm, the more
// conservative of the two.
func (a *Assembler) Converged(tol float64) bool { return a.GMax < tol }

// IncrementU adds δU to the global displacement vector, once per
// non-converged iteration after the solve.
func (a *Assembler) IncrementU(deltaU []float64) error {
	if len(deltaU) != a.ndofs {
		return chk.Err("asm: expected deltaU of length %d, got %d", a.ndofs, len(deltaU))
	}
	for i := range a.U {
		a.U[i] += deltaU[i]
	}
	return nil
}

// BackupU snapshots the current displacement vector; the divergence-control
// retry restores it before re-attempting a halved load step.
func (a *Assembler) BackupU() []float64 {
	return append([]float64(nil), a.U...)
}

// RestoreU rewinds the displacement vector to a BackupU snapshot.
func (a *Assembler) RestoreU(u []float64) error {
	if len(u) != a.ndofs {
		return chk.Err("asm: expected U backup of length %d, got %d", a.ndofs, len(u))
	}
	copy(a.U, u)
	return nil
}

// buildTriplet folds (row, col, value) contributions into a fresh la.Triplet
// sized for an ndofs x ndofs system.
func buildTriplet(ndofs, nnz int) *la.Triplet {
	kt := new(la.Triplet)
	kt.Init(ndofs, ndofs, nnz)
	kt.Start()
	return kt
}

// GatherForSolve hands the caller the tangent and out-of-balance the solver
// needs. On a single rank this folds the local triplets directly. Across
// ranks it implements the gather-to-rank-0 reduction: every rank ships
// its raw (row, col, value) contributions and its G rows; rank 0 folds them
// all and returns the full system, every other rank gets (nil, nil) back and
// must still call ScatterDeltaU to receive rank 0's solution.
func (a *Assembler) GatherForSolve() (kt *la.Triplet, g []float64) {
	if a.coll.Size() == 1 {
		kt = buildTriplet(a.ndofs, len(a.kTriplets))
		for _, t := range a.kTriplets {
			kt.Put(t.Row, t.Col, t.Value)
		}
		return kt, a.G
	}

	flat := make([]float64, 0, 3*len(a.kTriplets))
	for _, t := range a.kTriplets {
		flat = append(flat, float64(t.Row), float64(t.Col), t.Value)
	}
	gatheredK := a.coll.GatherVarFloat(flat)
	gatheredG := a.coll.GatherVarFloat(a.G)

	if a.coll.Rank() != 0 {
		return nil, nil
	}
	nnz := 0
	for _, flatK := range gatheredK {
		nnz += len(flatK) / 3
	}
	kt = buildTriplet(a.ndofs, nnz)
	for _, flatK := range gatheredK {
		for i := 0; i+2 < len(flatK); i += 3 {
			kt.Put(int(flatK[i]), int(flatK[i+1]), flatK[i+2])
		}
	}
	g = make([]float64, a.ndofs)
	for _, rankG := range gatheredG {
		for i, v := range rankG {
			g[i] += v
		}
	}
	return kt, g
}

// GlobalGMax reduces the out-of-balance max-norm across ranks, so every rank
// decides convergence on the same number (the convergence check is one of
// the per-step collective points).
func (a *Assembler) GlobalGMax() float64 {
	if a.coll.Size() == 1 {
		return a.GMax
	}
	gathered := a.coll.GatherVarFloat([]float64{a.GMax})
	max := 0.0
	for _, vs := range gathered {
		for _, v := range vs {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// ScatterDeltaU broadcasts rank 0's solved δU to every rank and applies it
// (the other half of the gather-to-rank-0 reduction). On a single
// rank this just calls IncrementU directly.
func (a *Assembler) ScatterDeltaU(deltaU []float64) error {
	if a.coll.Size() == 1 {
		return a.IncrementU(deltaU)
	}
	if deltaU == nil {
		deltaU = make([]float64, a.ndofs)
	}
	full := a.coll.BroadcastFloat(0, deltaU)
	return a.IncrementU(full)
}

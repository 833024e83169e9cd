// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bc implements the two boundary-condition collaborators:
// NodalRestraint, a group of nodes sharing a set of fixed DoFs, and
// NodalLoad, a group of nodes sharing a reference load pattern that rides
// the load factor. Restraints resolve node ids with scope "all" — a
// restrained halo copy must also be fixed locally so its column drops out
// symmetrically — while loads resolve with scope "owned", since a load is
// only ever applied once, by the owning rank.
package bc

import (
	"github.com/Anwar8/Blaze/dof"
	"github.com/Anwar8/Blaze/mesh"
	"github.com/Anwar8/Blaze/node"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Restraint restrains a fixed set of DoFs on a fixed set of nodes.
type Restraint struct {
	nodes []*node.Node
	dofs  []int
}

// NewRestraintByIDs resolves nodeIDs against the mesh (scope "all": a node
// may need fixing on every rank that holds a copy of it, owned or
// interface, so the halo copy's column also vanishes) and restrains dofs
// on all of them. Ids living wholly on other ranks are skipped, so every
// rank of a distributed run may declare the same restraint list; ids
// unknown to the whole model are a topology error on every rank.
func NewRestraintByIDs(m *mesh.GlobalMesh, nodeIDs []int, dofs []int) (*Restraint, error) {
	dofs = expandDofs(dofs)
	for _, d := range dofs {
		if !dof.Valid(d) {
			return nil, &dof.InvalidDofError{Dof: d}
		}
	}
	r := &Restraint{dofs: append([]int(nil), dofs...)}
	for _, id := range nodeIDs {
		if !m.KnownRecordID(id) {
			return nil, chk.Err("bc: restraint references unknown node %d", id)
		}
		if n, ok := m.NodeByRecordID(id, "all"); ok {
			r.nodes = append(r.nodes, n)
		}
	}
	return r, nil
}

// Apply fixes this restraint's DoFs on every node it governs, then asks the
// mesh to recount active DoFs and row bases, as any fixity change must.
func (r *Restraint) Apply(m *mesh.GlobalMesh) error {
	for _, n := range r.nodes {
		for _, d := range r.dofs {
			if err := n.FixDof(d); err != nil {
				return err
			}
		}
	}
	return m.RecountDofs()
}

// Free restores this restraint's DoFs on every node it governs, then
// recounts DoFs.
func (r *Restraint) Free(m *mesh.GlobalMesh) error {
	for _, n := range r.nodes {
		for _, d := range r.dofs {
			if err := n.FreeDof(d); err != nil {
				return err
			}
		}
	}
	return m.RecountDofs()
}

// expandDofs maps a negative dof index to "all six".
func expandDofs(dofs []int) []int {
	for _, d := range dofs {
		if d < 0 {
			return []int{0, 1, 2, 3, 4, 5}
		}
	}
	return dofs
}

// Nodes returns the nodes this restraint governs (for tests/inspection).
func (r *Restraint) Nodes() []*node.Node { return r.nodes }

// RestraintManager owns every Restraint declared on a model and applies
// them all in one call; Restraints are built directly via
// NewRestraintByIDs and only collected here for bulk apply/free.
type RestraintManager struct {
	restraints []*Restraint
}

// Add registers r with the manager.
func (rm *RestraintManager) Add(r *Restraint) { rm.restraints = append(rm.restraints, r) }

// ApplyAll applies every registered restraint, recounting DoFs once at the
// end rather than after each one.
func (rm *RestraintManager) ApplyAll(m *mesh.GlobalMesh) error {
	for _, r := range rm.restraints {
		for _, n := range r.nodes {
			for _, d := range r.dofs {
				if err := n.FixDof(d); err != nil {
					return err
				}
			}
		}
	}
	return m.RecountDofs()
}

// Load applies a reference load pattern (fixed per-DoF magnitudes) to a
// fixed set of owned nodes, incremented by Δλ every step. Mult optionally
// maps the load factor to the pattern's multiplier; nil means proportional
// loading (multiplier = λ).
type Load struct {
	nodes     []*node.Node
	dofs      []int
	magnitude [6]float64

	Mult   fun.Func
	lambda float64 // accumulated load factor, needed to difference Mult
}

// NewLoadByIDs resolves nodeIDs against the mesh with owned scope: a load
// is only ever applied by the rank that owns the node, since
// ComputeLoadTriplets already
// ignores halo copies (node.Node.OwnerOfSelf), so requesting a non-owned id
// here would silently contribute nothing — NewLoadByIDs instead only
// resolves ids this rank owns and is a no-op (zero nodes) for the rest,
// letting every rank declare the same load pattern without special-casing
// ownership at the call site.
func NewLoadByIDs(m *mesh.GlobalMesh, nodeIDs []int, dofs []int, loads []float64) (*Load, error) {
	if len(dofs) != len(loads) {
		return nil, chk.Err("bc: load expects one magnitude per dof, got %d dofs and %d loads", len(dofs), len(loads))
	}
	l := &Load{dofs: append([]int(nil), dofs...)}
	for i, d := range dofs {
		if !dof.Valid(d) {
			return nil, &dof.InvalidDofError{Dof: d}
		}
		l.magnitude[d] = loads[i]
	}
	for _, id := range m.FilterOwnedIDs(nodeIDs) {
		n, _ := m.NodeByRecordID(id, "owned")
		l.nodes = append(l.nodes, n)
	}
	return l, nil
}

// Initialise zeroes every loaded DoF on every node this load governs, so
// incrementing never has to special-case the first step.
func (l *Load) Initialise() error {
	for _, n := range l.nodes {
		for _, d := range l.dofs {
			if err := n.LoadDof(d, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// IncrementLoads adds Δλ·magnitude to every loaded DoF, one call per load
// step. With Mult set, the increment is the difference of the multiplier
// between the old and new load factor, so rolling a step back (negative
// Δλ) stays exact.
func (l *Load) IncrementLoads(dLambda float64) error {
	factor := dLambda
	if l.Mult != nil {
		factor = l.Mult.F(l.lambda+dLambda, nil) - l.Mult.F(l.lambda, nil)
	}
	l.lambda += dLambda
	for _, n := range l.nodes {
		for _, d := range l.dofs {
			if err := n.IncrementLoad(d, l.magnitude[d]*factor); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadManager owns every Load declared on a model, the load-side
// counterpart of RestraintManager.
type LoadManager struct {
	loads []*Load
}

// Add registers l with the manager.
func (lm *LoadManager) Add(l *Load) { lm.loads = append(lm.loads, l) }

// InitialiseAll zeroes every managed load's DoFs.
func (lm *LoadManager) InitialiseAll() error {
	for _, l := range lm.loads {
		if err := l.Initialise(); err != nil {
			return err
		}
	}
	return nil
}

// IncrementAll increments every managed load by Δλ, once per load step.
func (lm *LoadManager) IncrementAll(dLambda float64) error {
	for _, l := range lm.loads {
		if err := l.IncrementLoads(dLambda); err != nil {
			return err
		}
	}
	return nil
}

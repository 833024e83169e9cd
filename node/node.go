// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node implements the mesh's Node type: nodal coordinates,
// per-DoF activity and loading, the node's global row base ("nz_i") and
// its parent (owning) rank.
package node

import (
	"sort"

	"github.com/Anwar8/Blaze/dof"
	"github.com/cpmech/gosl/chk"
)

// Node holds the geometric and DoF-bookkeeping data for one mesh vertex,
// together with the ownership/renumbering fields the distributed model
// requires.
type Node struct {
	RecordID int       // stable id assigned by the mesh-ingestion collaborator (never renumbered)
	ID       int       // distributable id assigned after partitioning/renumbering; 0 until assigned
	X        [3]float64 // coordinates

	active   map[int]bool // dof -> true if active (not restrained)
	load     [6]float64   // per-dof applied load, accumulated through IncrementLoad (carries λ·magnitude)
	loaded   map[int]bool // dof -> true if a load was ever assigned to it
	U        [6]float64   // current nodal displacement vector

	NzI        int  // first row occupied by this node's active dofs on its parent rank
	ParentRank int  // rank that owns this node's dofs
	OwnerOfSelf bool // true if this copy lives on ParentRank (false => interface/halo copy)

	Elements map[int]bool // ids of elements connected to this node (back-reference only)
}

// New allocates a Node with all six DoFs active and unloaded, matching
// invariant (a): active ∪ inactive = {0..5}, active ∩ inactive = ∅.
func New(recordID int, x, y, z float64) *Node {
	n := &Node{
		RecordID: recordID,
		X:        [3]float64{x, y, z},
		active:   make(map[int]bool, 6),
		loaded:   make(map[int]bool),
		Elements: make(map[int]bool),
	}
	for _, d := range dof.All {
		n.active[int(d)] = true
	}
	n.NzI = -1
	n.ParentRank = -1
	return n
}

// FixDof removes d from the active set. Returns *dof.InvalidDofError for
// d ∉ {0..5}.
func (n *Node) FixDof(d int) error {
	if !dof.Valid(d) {
		return &dof.InvalidDofError{Dof: d}
	}
	n.active[d] = false
	return nil
}

// FreeDof restores d to the active set.
func (n *Node) FreeDof(d int) error {
	if !dof.Valid(d) {
		return &dof.InvalidDofError{Dof: d}
	}
	n.active[d] = true
	return nil
}

// FixAll restrains every dof.
func (n *Node) FixAll() {
	for _, d := range dof.All {
		n.active[int(d)] = false
	}
}

// IsActive reports whether d is currently in the active set.
func (n *Node) IsActive(d int) bool {
	return dof.Valid(d) && n.active[d]
}

// ActiveDofsSorted returns the node's active dof indices in ascending order,
// the order that fixes a dof's local index everywhere it is mapped.
func (n *Node) ActiveDofsSorted() []int {
	out := make([]int, 0, 6)
	for _, d := range dof.All {
		if n.active[int(d)] {
			out = append(out, int(d))
		}
	}
	sort.Ints(out)
	return out
}

// LoadDof sets (overwrites) the reference load magnitude for d.
func (n *Node) LoadDof(d int, value float64) error {
	if !dof.Valid(d) {
		return &dof.InvalidDofError{Dof: d}
	}
	n.load[d] = value
	n.loaded[d] = true
	return nil
}

// IncrementLoad adds Δ to the load already applied on d; used by
// bc.Load.IncrementLoads, which calls this once per Δλ step.
func (n *Node) IncrementLoad(d int, delta float64) error {
	if !dof.Valid(d) {
		return &dof.InvalidDofError{Dof: d}
	}
	n.load[d] += delta
	n.loaded[d] = true
	return nil
}

// CheckFixity verifies invariant (b): no dof is both restrained and loaded.
// Call this after all restraints/loads of a model have been declared, since
// either can be applied in any order during model construction.
func (n *Node) CheckFixity() error {
	for d := 0; d < 6; d++ {
		if n.loaded[d] && !n.active[d] {
			return &dof.LoadedRestrainedDofError{NodeID: n.RecordID, Dof: d}
		}
	}
	return nil
}

// SetNzI records the first row this node's active dofs occupy. The dof
// count sets a rank-relative row first, then the row shifted by the
// rank's base; interface copies receive the owner's shifted row.
func (n *Node) SetNzI(i int) { n.NzI = i }

// SetParentRank records which rank owns this node's writes, and whether this
// particular Node value is that owner's copy or a read-only halo copy.
func (n *Node) SetParentRank(owner, self int) {
	n.ParentRank = owner
	n.OwnerOfSelf = owner == self
}

// PushU copies a per-active-dof displacement slice (ordered the same way as
// ActiveDofsSorted) into the node's 6-component displacement vector. Used by
// the assembler when it maps U back onto the nodes.
func (n *Node) PushU(values []float64) error {
	actives := n.ActiveDofsSorted()
	if len(values) != len(actives) {
		return chk.Err("node %d: expected %d active-dof values, got %d", n.RecordID, len(actives), len(values))
	}
	for i, d := range actives {
		n.U[d] = values[i]
	}
	return nil
}

// LoadTriplet is one (row, value) contribution to the current load vector.
type LoadTriplet struct {
	Row   int
	Value float64
}

// ComputeLoadTriplets emits (nz_i + local_index, load) pairs for every
// active, loaded dof — but only if this Node copy lives on its parent rank;
// an interface (halo) copy never contributes rows.
func (n *Node) ComputeLoadTriplets() []LoadTriplet {
	if !n.OwnerOfSelf {
		return nil
	}
	var out []LoadTriplet
	for localIdx, d := range n.ActiveDofsSorted() {
		if n.loaded[d] && n.load[d] != 0 {
			out = append(out, LoadTriplet{Row: n.NzI + localIdx, Value: n.load[d]})
		}
	}
	return out
}

// AddElement registers that element eid touches this node (back-reference
// only; never traversed on the element-update hot path).
func (n *Node) AddElement(eid int) { n.Elements[eid] = true }

// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh implements the distributed global mesh: ownership,
// interface (ghost) nodes, renumbering, and the communication of
// identifiers and DoF indices with neighbouring subdomains. Setup runs a
// fixed pipeline — partition, interface classification, neighbour sets,
// renumbering, halo id/row exchange — on every rank, built on the
// dist.Collective all-gather exchange.
package mesh

import (
	"sort"

	"github.com/Anwar8/Blaze/beam"
	"github.com/Anwar8/Blaze/dist"
	"github.com/Anwar8/Blaze/node"
	"github.com/cpmech/gosl/chk"
)

// NodeInput is one (node_id, coords) record from the mesh-ingestion
// collaborator.
type NodeInput struct {
	ID      int
	X, Y, Z float64
}

// ElemInput is one (elem_id, node_ids) record from the mesh-ingestion
// collaborator.
type ElemInput struct {
	ID      int
	NodeIDs []int
}

// ElementFactory builds one beam.Element given its id and the two end
// node pointers already resolved by the mesh (owned or interface copies).
// The same factory signature serves all three element kinds; callers close
// over the desired kind and section.
type ElementFactory func(id int, nodes [2]*node.Node) (beam.Element, error)

// GlobalMesh owns every Node and Element this rank holds, the partition
// map, and the neighbour sets driving halo exchange.
type GlobalMesh struct {
	coll dist.Collective

	nnodes, nelems int // global totals

	owned     []*node.Node // this rank's owned nodes, sorted by (renumbered) id
	interface_ []*node.Node // halo copies, sorted by (renumbered) id
	elements  []beam.Element

	byRecordOwned     map[int]*node.Node
	byRecordInterface map[int]*node.Node

	sortedIDs []int       // every record id, globally sorted; also the renumbering order
	partition map[int]int // node record-id -> owning rank, known to every rank

	wantedFrom map[int][]int // neighbour rank -> sorted record ids this rank needs from it
	wantedBy   map[int][]int // neighbour rank -> sorted record ids that neighbour needs from this rank

	rankNNodes int
	rankNDofs  int
	ranksNNodes []int // owned node count per rank, from the step-6 all-gather
	ranksNDofs  []int // owned dof count per rank, from the step-9 all-gather

	factory ElementFactory
}

// Rank returns this process's rank within the collective.
func (m *GlobalMesh) Rank() int { return m.coll.Rank() }

// NumRanks returns the collective's size.
func (m *GlobalMesh) NumRanks() int { return m.coll.Size() }

// NNodes returns the global node count.
func (m *GlobalMesh) NNodes() int { return m.nnodes }

// NDofs returns the global active-DoF count (valid only after a dof
// count; see RecountDofs).
func (m *GlobalMesh) NDofs() int {
	total := 0
	for _, n := range m.ranksNDofs {
		total += n
	}
	return total
}

// RankNNodes returns the number of nodes owned by this rank.
func (m *GlobalMesh) RankNNodes() int { return m.rankNNodes }

// RankNDofs returns the number of active DoFs owned by this rank.
func (m *GlobalMesh) RankNDofs() int { return m.rankNDofs }

// RankDofBase returns the global row at which this rank's owned DoFs
// begin (Σ_{r<self} rank_ndofs[r]).
func (m *GlobalMesh) RankDofBase() int {
	base := 0
	for r := 0; r < m.coll.Rank(); r++ {
		base += m.ranksNDofs[r]
	}
	return base
}

// OwnedNodes returns this rank's owned nodes, sorted by renumbered id.
func (m *GlobalMesh) OwnedNodes() []*node.Node { return m.owned }

// InterfaceNodes returns this rank's halo (interface) node copies.
func (m *GlobalMesh) InterfaceNodes() []*node.Node { return m.interface_ }

// Elements returns every element owned (or duplicated onto) this rank.
func (m *GlobalMesh) Elements() []beam.Element { return m.elements }

// WantedFrom returns, per neighbour rank, the sorted record ids this rank
// needs from that neighbour.
func (m *GlobalMesh) WantedFrom() map[int][]int { return m.wantedFrom }

// WantedBy returns, per neighbour rank, the sorted record ids that
// neighbour needs from this rank.
func (m *GlobalMesh) WantedBy() map[int][]int { return m.wantedBy }

// NodeByRecordID looks a node up by its original (ingestion) id, scoped
// to "owned", "interface" or "all".
func (m *GlobalMesh) NodeByRecordID(id int, scope string) (*node.Node, bool) {
	switch scope {
	case "owned":
		n, ok := m.byRecordOwned[id]
		return n, ok
	case "interface":
		n, ok := m.byRecordInterface[id]
		return n, ok
	default:
		if n, ok := m.byRecordOwned[id]; ok {
			return n, true
		}
		n, ok := m.byRecordInterface[id]
		return n, ok
	}
}

// KnownRecordID reports whether the given original id belongs to the
// global model at all (on any rank); the partition map is fully
// replicated, so this needs no communication.
func (m *GlobalMesh) KnownRecordID(id int) bool {
	_, ok := m.partition[id]
	return ok
}

// OwnsRecordID reports whether this rank owns the node with the given
// original id.
func (m *GlobalMesh) OwnsRecordID(id int) bool {
	_, ok := m.byRecordOwned[id]
	return ok
}

// FilterOwnedIDs restricts a user-supplied id list to this rank's owned
// ids (the load-manager helper).
func (m *GlobalMesh) FilterOwnedIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if m.OwnsRecordID(id) {
			out = append(out, id)
		}
	}
	return out
}

func sortedUnsignedSet(s map[int]bool) []int {
	out := make([]int, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// checkIntegrity verifies that every element's node references resolve
// against the ingested node list; called once before element creation.
func checkIntegrity(elems []ElemInput, known map[int]bool) error {
	for _, e := range elems {
		if len(e.NodeIDs) != 2 {
			return chk.Err("mesh: element %d must reference exactly 2 nodes, got %d", e.ID, len(e.NodeIDs))
		}
		for _, nid := range e.NodeIDs {
			if !known[nid] {
				return chk.Err("mesh: element %d references unknown node %d", e.ID, nid)
			}
		}
	}
	return nil
}

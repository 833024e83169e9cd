// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"github.com/Anwar8/Blaze/dof"
	"github.com/Anwar8/Blaze/node"
	"github.com/cpmech/gosl/chk"
)

// RecountDofs recomputes every owned node's row base ("nz_i") and propagates
// it, together with the node's current active-dof set, to every rank
// holding that node as an interface copy. Call once after the mesh is built
// and again whenever a restraint is applied or lifted (the node
// renumbering itself needs no repeat, since it depends only on the
// immutable partition, not on fixity).
//
// Unlike the partition (computable identically on every rank from the full
// replicated mesh, see partition.go), the active-dof set is mutated only on
// the owning rank's own Node value once restraints are declared — a halo
// copy elsewhere has no way to learn of it without communication. This is
// the one place dist.Collective's gathers correspond to a genuine
// cross-rank dependency.
func (m *GlobalMesh) RecountDofs() error {
	if err := m.exchangeActiveMasks(); err != nil {
		return err
	}
	m.countOwnedDofs()
	if err := m.exchangeRowBases(); err != nil {
		return err
	}
	m.ranksNNodes = m.coll.AllGatherInt(len(m.owned))

	for _, e := range m.elements {
		if err := e.Initialise(); err != nil {
			return err
		}
	}
	return nil
}

// activeMask packs a node's active-dof set into a 6-bit integer.
func activeMask(n *node.Node) int {
	mask := 0
	for _, d := range dof.All {
		if n.IsActive(int(d)) {
			mask |= 1 << uint(d)
		}
	}
	return mask
}

// applyMask unpacks a 6-bit mask back onto a node's active set.
func applyMask(n *node.Node, mask int) error {
	for _, d := range dof.All {
		var err error
		if mask&(1<<uint(d)) != 0 {
			err = n.FreeDof(int(d))
		} else {
			err = n.FixDof(int(d))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// exchangeActiveMasks gathers (record_id, mask) pairs for every rank's owned
// nodes and applies the result to this rank's interface copies, so a
// restraint declared on the owning rank is visible wherever the node is
// shared.
func (m *GlobalMesh) exchangeActiveMasks() error {
	local := make([]int, 0, 2*len(m.owned))
	for _, n := range m.owned {
		local = append(local, n.RecordID, activeMask(n))
	}
	gathered := m.coll.GatherVarInt(local)

	maskByID := make(map[int]int, m.nnodes)
	for _, flat := range gathered {
		for i := 0; i+1 < len(flat); i += 2 {
			maskByID[flat[i]] = flat[i+1]
		}
	}
	for id, n := range m.byRecordInterface {
		mask, ok := maskByID[id]
		if !ok {
			return chk.Err("mesh: no active-dof mask received for interface node %d", id)
		}
		if err := applyMask(n, mask); err != nil {
			return err
		}
	}
	return nil
}

// countOwnedDofs assigns each owned node its rank-relative row base (in
// renumbered-id order) and records the rank's total owned dof
// count; the global shift to an absolute row happens in exchangeRowBases.
func (m *GlobalMesh) countOwnedDofs() {
	local := 0
	for _, n := range m.owned {
		n.SetNzI(local)
		local += len(n.ActiveDofsSorted())
	}
	m.rankNDofs = local
}

// exchangeRowBases all-gathers every rank's owned dof count, shifts each
// owned node's row by the resulting prefix sum, then gathers
// (record_id, global_row) pairs so every interface copy learns the
// neighbour-owned row it must contribute columns against.
func (m *GlobalMesh) exchangeRowBases() error {
	m.ranksNDofs = m.coll.AllGatherInt(m.rankNDofs)
	base := 0
	for r := 0; r < m.coll.Rank(); r++ {
		base += m.ranksNDofs[r]
	}
	for _, n := range m.owned {
		n.SetNzI(n.NzI + base)
	}

	local := make([]int, 0, 2*len(m.owned))
	for _, n := range m.owned {
		local = append(local, n.RecordID, n.NzI)
	}
	gathered := m.coll.GatherVarInt(local)

	rowByID := make(map[int]int, m.nnodes)
	for _, flat := range gathered {
		for i := 0; i+1 < len(flat); i += 2 {
			rowByID[flat[i]] = flat[i+1]
		}
	}
	for id, n := range m.byRecordInterface {
		row, ok := rowByID[id]
		if !ok {
			return chk.Err("mesh: no row assignment received for interface node %d", id)
		}
		n.SetNzI(row)
	}
	return nil
}

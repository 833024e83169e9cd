// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scribe samples tracked degrees of freedom into in-memory
// records, one sample per converged load step, and keeps the per-iteration
// residual history of the run; writing either to a file is left to the
// caller.
package scribe

import (
	"sort"

	"github.com/Anwar8/Blaze/mesh"
	"github.com/Anwar8/Blaze/node"
	"github.com/cpmech/gosl/chk"
)

// Record holds the displacement history of one tracked node: for each
// tracked DoF, an ordered vector with one sample per converged load step.
// The record is identified by the node's original (ingestion) id, never the
// renumbered one.
type Record struct {
	NodeID int
	node   *node.Node
	dofs   []int
	Data   [6][]float64
}

// newRecord builds an empty record tracking the given DoFs on n.
func newRecord(n *node.Node, dofs []int) *Record {
	return &Record{NodeID: n.RecordID, node: n, dofs: append([]int(nil), dofs...)}
}

// TrackedDofs returns the DoF indices this record samples.
func (r *Record) TrackedDofs() []int { return r.dofs }

// write appends the node's current displacement at every tracked DoF.
func (r *Record) write() {
	for _, d := range r.dofs {
		r.Data[d] = append(r.Data[d], r.node.U[d])
	}
}

// Scribe owns the record library and the residual iteration log for one
// rank. On a distributed run each rank records only the nodes it owns;
// merging the per-rank libraries by NodeID reconstructs the full history.
type Scribe struct {
	records []*Record

	// Resids holds, per load step, the residual max-norm of every Newton
	// iteration — the post-hoc convergence history.
	Resids [][]float64
}

// TrackNodesByID creates one record per requested node this rank owns,
// tracking the given DoFs on each; ids owned by other ranks are skipped,
// so every rank may pass the same id list (filtered the way the load
// manager filters loaded ids).
func (s *Scribe) TrackNodesByID(m *mesh.GlobalMesh, nodeIDs []int, dofs []int) error {
	for _, d := range dofs {
		if d < 0 || d > 5 {
			return chk.Err("scribe: invalid tracked dof %d", d)
		}
	}
	for _, id := range m.FilterOwnedIDs(nodeIDs) {
		n, _ := m.NodeByRecordID(id, "owned")
		s.records = append(s.records, newRecord(n, dofs))
	}
	sort.Slice(s.records, func(i, j int) bool { return s.records[i].NodeID < s.records[j].NodeID })
	return nil
}

// WriteToRecords samples every tracked node once; the procedure calls it
// after each converged step.
func (s *Scribe) WriteToRecords() {
	for _, r := range s.records {
		r.write()
	}
}

// AppendResidual logs one iteration's residual max-norm; firstIt opens a
// new per-step row.
func (s *Scribe) AppendResidual(firstIt bool, gmax float64) {
	if firstIt || len(s.Resids) == 0 {
		s.Resids = append(s.Resids, nil)
	}
	last := len(s.Resids) - 1
	s.Resids[last] = append(s.Resids[last], gmax)
}

// Records returns the record library, sorted by tracked node id.
func (s *Scribe) Records() []*Record { return s.records }

// RecordFor looks a record up by the tracked node's original id.
func (s *Scribe) RecordFor(nodeID int) (*Record, bool) {
	for _, r := range s.records {
		if r.NodeID == nodeID {
			return r, true
		}
	}
	return nil, false
}

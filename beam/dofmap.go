// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package beam

import "github.com/Anwar8/Blaze/node"

// mapEntry is one (local_row, local_col, global_row, global_col) quadruple
// of the active-DoF mapping.
type mapEntry struct {
	LocalRow, LocalCol   int
	GlobalRow, GlobalCol int
}

// position pairs a local index (6*node_index + dof) with its global row or
// column.
type position struct {
	local, global int
}

// nodePositionsAllAndOwned walks both end nodes' sorted active dofs, returning every
// (local, global) position, and separately the subset that belongs to a
// node living on its parent rank (owner-only, used for rows).
func nodePositionsAllAndOwned(nodes [2]*node.Node) (all, owned []position) {
	for ni, n := range nodes {
		for li, d := range n.ActiveDofsSorted() {
			p := position{local: 6*ni + d, global: n.NzI + li}
			all = append(all, p)
			if n.OwnerOfSelf {
				owned = append(owned, p)
			}
		}
	}
	return
}

// buildStiffnessMap builds the (local_row, local_col, global_row,
// global_col) quadruples of the active-DoF mapping: rows drawn only from nodes
// this rank owns, columns drawn from both nodes (owned or halo), so that a
// halo copy's column still receives contributions headed for the
// neighbouring rank's row.
func buildStiffnessMap(nodes [2]*node.Node) []mapEntry {
	cols, rows := nodePositionsAllAndOwned(nodes)
	entries := make([]mapEntry, 0, len(rows)*len(cols))
	for _, r := range rows {
		for _, c := range cols {
			entries = append(entries, mapEntry{
				LocalRow: r.local, LocalCol: c.local,
				GlobalRow: r.global, GlobalCol: c.global,
			})
		}
	}
	return entries
}

// buildRowMap returns just the row half of buildStiffnessMap, the mapping
// R-triplet emission scans.
func buildRowMap(nodes [2]*node.Node) []position {
	_, rows := nodePositionsAllAndOwned(nodes)
	return rows
}

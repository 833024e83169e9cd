// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"sort"

	"github.com/Anwar8/Blaze/dist"
	"github.com/Anwar8/Blaze/node"
	"github.com/cpmech/gosl/chk"
)

// Build assembles this rank's GlobalMesh from a fully-replicated
// node/element list: every rank ingests the whole mesh and locally derives
// its own partition, so the rank map needs no messages. Communication (via
// coll) starts only at the dof count/exchange, where a rank's restraint
// state is a genuinely local fact the others don't have until it's
// gathered.
func Build(coll dist.Collective, nodesIn []NodeInput, elemsIn []ElemInput, factory ElementFactory) (*GlobalMesh, error) {
	if len(nodesIn) == 0 {
		return nil, chk.Err("mesh: no nodes supplied")
	}
	self := coll.Rank()
	nRanks := coll.Size()

	sortedIDs := make([]int, len(nodesIn))
	byID := make(map[int]NodeInput, len(nodesIn))
	for i, n := range nodesIn {
		if _, dup := byID[n.ID]; dup {
			return nil, chk.Err("mesh: duplicate node id %d", n.ID)
		}
		byID[n.ID] = n
		sortedIDs[i] = n.ID
	}
	sort.Ints(sortedIDs)

	// step 1-2: contiguous partition of the sorted record-id list across ranks.
	partition := contiguousPartition(sortedIDs, nRanks)

	known := make(map[int]bool, len(nodesIn))
	for id := range byID {
		known[id] = true
	}
	if err := checkIntegrity(elemsIn, known); err != nil {
		return nil, err
	}

	// step 3-5: rank element selection and the wanted-from/wanted-by
	// neighbour sets, computed in one pass since every rank holds the full
	// element list. A rank takes every element incident to one of its owned
	// nodes, so an element straddling a subdomain boundary is deliberately
	// created by each adjacent rank — both need it to emit the rows of
	// their own nodes.
	wantedFrom := map[int]map[int]bool{}
	wantedBy := map[int]map[int]bool{}
	rankElems := make(map[int]bool, len(elemsIn))
	for _, e := range elemsIn {
		mine := false
		for _, nid := range e.NodeIDs {
			if partition[nid] == self {
				mine = true
				break
			}
		}
		if !mine {
			continue
		}
		rankElems[e.ID] = true
		for _, nid := range e.NodeIDs {
			if nbr := partition[nid]; nbr != self {
				addWanted(wantedFrom, nbr, nid)
				// the neighbour instantiates this element too and will need
				// every node of it this rank owns.
				for _, own := range e.NodeIDs {
					if partition[own] == self {
						addWanted(wantedBy, nbr, own)
					}
				}
			}
		}
	}

	ownedIDs := ownedRecordIDs(sortedIDs, partition, self)
	interfaceIDs := map[int]bool{}
	for _, ids := range wantedFrom {
		for id := range ids {
			interfaceIDs[id] = true
		}
	}

	posOf := make(map[int]int, len(sortedIDs))
	for i, id := range sortedIDs {
		posOf[id] = i
	}

	m := &GlobalMesh{
		coll:              coll,
		nnodes:            len(nodesIn),
		nelems:            len(elemsIn),
		sortedIDs:         sortedIDs,
		partition:         partition,
		wantedFrom:        finalizeWanted(wantedFrom),
		wantedBy:          finalizeWanted(wantedBy),
		byRecordOwned:     make(map[int]*node.Node, len(ownedIDs)),
		byRecordInterface: make(map[int]*node.Node, len(interfaceIDs)),
		factory:           factory,
	}

	for _, id := range ownedIDs {
		in := byID[id]
		n := node.New(in.ID, in.X, in.Y, in.Z)
		n.ID = posOf[id] + 1
		n.SetParentRank(self, self)
		m.byRecordOwned[id] = n
	}
	for id := range interfaceIDs {
		in := byID[id]
		n := node.New(in.ID, in.X, in.Y, in.Z)
		n.ID = posOf[id] + 1
		n.SetParentRank(partition[id], self)
		m.byRecordInterface[id] = n
	}

	m.owned = sortedNodeValues(m.byRecordOwned)
	m.interface_ = sortedNodeValues(m.byRecordInterface)
	m.rankNNodes = len(m.owned)

	for _, e := range elemsIn {
		if !rankElems[e.ID] {
			continue
		}
		var ends [2]*node.Node
		for i, nid := range e.NodeIDs {
			n, ok := m.NodeByRecordID(nid, "all")
			if !ok {
				return nil, chk.Err("mesh: element %d: node %d not resolved on rank %d", e.ID, nid, self)
			}
			ends[i] = n
		}
		elem, err := factory(e.ID, ends)
		if err != nil {
			return nil, err
		}
		m.elements = append(m.elements, elem)
	}

	if err := m.RecountDofs(); err != nil {
		return nil, err
	}
	return m, nil
}

// contiguousPartition divides the sorted id list into nRanks contiguous
// ranges of n/nRanks ids each; the last range absorbs the remainder.
func contiguousPartition(sortedIDs []int, nRanks int) map[int]int {
	n := len(sortedIDs)
	base, rem := n/nRanks, n%nRanks
	partition := make(map[int]int, n)
	pos := 0
	for r := 0; r < nRanks; r++ {
		count := base
		if r == nRanks-1 {
			count += rem
		}
		for i := 0; i < count; i++ {
			partition[sortedIDs[pos]] = r
			pos++
		}
	}
	return partition
}

func ownedRecordIDs(sortedIDs []int, partition map[int]int, self int) []int {
	out := make([]int, 0)
	for _, id := range sortedIDs {
		if partition[id] == self {
			out = append(out, id)
		}
	}
	return out
}

func addWanted(m map[int]map[int]bool, rank, id int) {
	s, ok := m[rank]
	if !ok {
		s = map[int]bool{}
		m[rank] = s
	}
	s[id] = true
}

func finalizeWanted(m map[int]map[int]bool) map[int][]int {
	out := make(map[int][]int, len(m))
	for rank, set := range m {
		out[rank] = sortedUnsignedSet(set)
	}
	return out
}

func sortedNodeValues(m map[int]*node.Node) []*node.Node {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*node.Node, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}

// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frame generates the node/element sequences of a rectangular
// portal frame (bays x floors, with subdivided beams and columns). It is a
// mesh-ingestion collaborator: its only contract with the engine is the
// (node_id, coords) and (elem_id, node_ids) sequences it emits.
package frame

import (
	"sort"

	"github.com/Anwar8/Blaze/mesh"
	"github.com/cpmech/gosl/chk"
)

// Frame holds the frame geometry and the node-count bookkeeping derived
// from it. Node ids start at 1 and run up each column line in turn, with
// beam interior nodes filling the id gaps between successive column lines.
type Frame struct {
	NBays, NFloors             int
	BayLength, FloorHeight     float64
	BeamDivisions, ColumnDivisions int

	nodesPerColumnLine int // nodes on one column line over all floors, vertices included
	nodesPerFullBay    int // beam interior nodes of one bay over all floors
	nodesPerColumn     int // interior nodes of a single column segment
	nodesPerBeam       int // interior nodes of a single beam segment
	numNodes           int
	dx, dy             float64
}

// New validates the frame parameters and precomputes the node counts.
func New(nbays, nfloors int, bayLength, floorHeight float64, beamDivisions, columnDivisions int) (*Frame, error) {
	if nbays < 1 || nfloors < 1 {
		return nil, chk.Err("frame: need at least 1 bay and 1 floor, got %d and %d", nbays, nfloors)
	}
	if beamDivisions < 1 || columnDivisions < 1 {
		return nil, chk.Err("frame: need at least 1 division per beam and column, got %d and %d", beamDivisions, columnDivisions)
	}
	if bayLength <= 0 || floorHeight <= 0 {
		return nil, chk.Err("frame: bay length and floor height must be positive, got %g and %g", bayLength, floorHeight)
	}
	f := &Frame{
		NBays: nbays, NFloors: nfloors,
		BayLength: bayLength, FloorHeight: floorHeight,
		BeamDivisions: beamDivisions, ColumnDivisions: columnDivisions,
	}
	f.nodesPerColumnLine = nfloors*columnDivisions + 1
	f.nodesPerFullBay = nfloors * (beamDivisions - 1)
	f.nodesPerColumn = columnDivisions - 1
	f.nodesPerBeam = beamDivisions - 1
	f.dx = bayLength / float64(beamDivisions)
	f.dy = floorHeight / float64(columnDivisions)
	f.numNodes = f.nodesPerColumnLine*(nbays+1) + f.nodesPerFullBay*nbays
	return f, nil
}

// NumNodes returns the total node count of the frame.
func (f *Frame) NumNodes() int { return f.numNodes }

// VertexID returns the id of the beam-column joint at the given column line
// (0..NBays) and floor (0..NFloors).
func (f *Frame) VertexID(columnLine, floor int) int {
	return 1 + floor*f.ColumnDivisions + columnLine*(f.nodesPerColumnLine+f.nodesPerFullBay)
}

// ColumnBases returns the ids of the ground-floor joints, the nodes a frame
// model clamps.
func (f *Frame) ColumnBases() []int {
	out := make([]int, 0, f.NBays+1)
	for cl := 0; cl <= f.NBays; cl++ {
		out = append(out, f.VertexID(cl, 0))
	}
	sort.Ints(out)
	return out
}

// columnLineNodeIDs returns every node id on one column line, base to roof,
// vertices included; the numbering makes these consecutive.
func (f *Frame) columnLineNodeIDs(columnLine int) []int {
	base := columnLine * (f.nodesPerColumnLine + f.nodesPerFullBay)
	out := make([]int, f.nodesPerColumnLine)
	for i := range out {
		out[i] = base + 1 + i
	}
	return out
}

// beamNodeIDs returns one beam segment's node ids at (bay 1..NBays,
// floor 1..NFloors), optionally including its two end vertices.
func (f *Frame) beamNodeIDs(bay, floor int, includeVertices bool) []int {
	var out []int
	if includeVertices {
		out = append(out, f.VertexID(bay-1, floor))
	}
	start := bay*f.nodesPerColumnLine + (bay-1)*f.nodesPerFullBay + (floor-1)*f.nodesPerBeam
	for i := 1; i <= f.nodesPerBeam; i++ {
		out = append(out, start+i)
	}
	if includeVertices {
		out = append(out, f.VertexID(bay, floor))
	}
	sort.Ints(out)
	return out
}

// BeamLineNodeIDs returns every node id along one floor's full beam line
// (all bays), optionally including the joints.
func (f *Frame) BeamLineNodeIDs(floor int, includeVertices bool) []int {
	set := map[int]bool{}
	for bay := 1; bay <= f.NBays; bay++ {
		for _, id := range f.beamNodeIDs(bay, floor, includeVertices) {
			set[id] = true
		}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// AllBeamLineNodeIDs returns the beam-line nodes of every floor, the id
// list a gravity-load pattern targets.
func (f *Frame) AllBeamLineNodeIDs(includeVertices bool) []int {
	set := map[int]bool{}
	for floor := 1; floor <= f.NFloors; floor++ {
		for _, id := range f.BeamLineNodeIDs(floor, includeVertices) {
			set[id] = true
		}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// OutOfPlaneNodes returns every node id except the column bases — the nodes
// whose out-of-plane DoFs (Uz, Rx, Ry) a planar model restrains (the bases
// are clamped entirely, so they are excluded here).
func (f *Frame) OutOfPlaneNodes() []int {
	bases := map[int]bool{}
	for _, id := range f.ColumnBases() {
		bases[id] = true
	}
	out := make([]int, 0, f.numNodes-len(bases))
	for id := 1; id <= f.numNodes; id++ {
		if !bases[id] {
			out = append(out, id)
		}
	}
	return out
}

// NodeCoords returns the full (node_id, coords) sequence, sorted by id:
// column-line nodes climb in y at fixed
// x; beam interior nodes advance in x at fixed floor height.
func (f *Frame) NodeCoords() []mesh.NodeInput {
	out := make([]mesh.NodeInput, 0, f.numNodes)

	for cl := 0; cl <= f.NBays; cl++ {
		x := float64(cl) * f.BayLength
		y := 0.0
		for _, id := range f.columnLineNodeIDs(cl) {
			out = append(out, mesh.NodeInput{ID: id, X: x, Y: y})
			y += f.dy
		}
	}

	vertices := map[int]bool{}
	for fl := 0; fl <= f.NFloors; fl++ {
		for cl := 0; cl <= f.NBays; cl++ {
			vertices[f.VertexID(cl, fl)] = true
		}
	}
	for fl := 1; fl <= f.NFloors; fl++ {
		y := float64(fl) * f.FloorHeight
		x := 0.0
		for _, id := range f.BeamLineNodeIDs(fl, true) {
			if !vertices[id] {
				out = append(out, mesh.NodeInput{ID: id, X: x, Y: y})
			}
			x += f.dx
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Elements returns the (elem_id, node_ids) sequence: for each bay, the
// column line to its left bottom
// to top, then its beams floor by floor; the rightmost column line closes
// the walk. Every element joins two consecutive nodes of one line.
func (f *Frame) Elements() []mesh.ElemInput {
	nelems := (f.NBays+1)*f.NFloors*f.ColumnDivisions + f.NBays*f.NFloors*f.BeamDivisions
	out := make([]mesh.ElemInput, 0, nelems)
	eid := 0
	pairup := func(ids []int) {
		for i := 0; i+1 < len(ids); i++ {
			eid++
			out = append(out, mesh.ElemInput{ID: eid, NodeIDs: []int{ids[i], ids[i+1]}})
		}
	}
	for bay := 1; bay <= f.NBays; bay++ {
		pairup(f.columnLineNodeIDs(bay - 1))
		for fl := 1; fl <= f.NFloors; fl++ {
			pairup(f.beamNodeIDs(bay, fl, true))
		}
	}
	pairup(f.columnLineNodeIDs(f.NBays))
	return out
}

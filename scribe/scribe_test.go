// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scribe

import (
	"testing"

	"github.com/Anwar8/Blaze/beam"
	"github.com/Anwar8/Blaze/dist"
	"github.com/Anwar8/Blaze/mesh"
	"github.com/Anwar8/Blaze/node"
	"github.com/Anwar8/Blaze/sec"
	"github.com/cpmech/gosl/chk"
)

func twoNodeMesh(tst *testing.T) *mesh.GlobalMesh {
	factory := func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewLinearElastic(id, nodes, sec.NewBasic(1, 1, 1))
	}
	m, err := mesh.Build(dist.Serial{},
		[]mesh.NodeInput{{ID: 1}, {ID: 2, X: 1}},
		[]mesh.ElemInput{{ID: 1, NodeIDs: []int{1, 2}}},
		factory)
	if err != nil {
		tst.Fatal(err)
	}
	return m
}

func TestTrackAndWrite(tst *testing.T) {
	chk.PrintTitle("TrackAndWrite")
	m := twoNodeMesh(tst)
	var s Scribe
	if err := s.TrackNodesByID(m, []int{2, 1}, []int{0, 1}); err != nil {
		tst.Fatal(err)
	}
	if len(s.Records()) != 2 || s.Records()[0].NodeID != 1 {
		tst.Fatalf("records must be sorted by node id, got %v", s.Records())
	}

	n2, _ := m.NodeByRecordID(2, "owned")
	n2.PushU([]float64{0.5, -0.25, 0, 0, 0, 0})
	s.WriteToRecords()
	n2.PushU([]float64{1.0, -0.5, 0, 0, 0, 0})
	s.WriteToRecords()

	r, ok := s.RecordFor(2)
	if !ok {
		tst.Fatal("no record for node 2")
	}
	chk.Vector(tst, "ux history", 1e-15, r.Data[0], []float64{0.5, 1.0})
	chk.Vector(tst, "uy history", 1e-15, r.Data[1], []float64{-0.25, -0.5})
}

func TestResidualLogShape(tst *testing.T) {
	chk.PrintTitle("ResidualLogShape")
	var s Scribe
	s.AppendResidual(true, 10)
	s.AppendResidual(false, 1)
	s.AppendResidual(false, 0.1)
	s.AppendResidual(true, 20)
	s.AppendResidual(false, 2)
	if len(s.Resids) != 2 || len(s.Resids[0]) != 3 || len(s.Resids[1]) != 2 {
		tst.Fatalf("unexpected residual log shape: %v", s.Resids)
	}
}

func TestInvalidTrackedDof(tst *testing.T) {
	chk.PrintTitle("InvalidTrackedDof")
	m := twoNodeMesh(tst)
	var s Scribe
	if err := s.TrackNodesByID(m, []int{1}, []int{7}); err == nil {
		tst.Fatal("expected error for dof 7")
	}
}

// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestNodeActiveInvariant(tst *testing.T) {
	chk.PrintTitle("NodeActiveInvariant")
	n := New(1, 0, 0, 0)
	for d := 0; d < 6; d++ {
		if !n.IsActive(d) {
			tst.Errorf("dof %d should start active", d)
		}
	}
	if err := n.FixDof(2); err != nil {
		tst.Errorf("FixDof failed: %v", err)
	}
	if n.IsActive(2) {
		tst.Errorf("dof 2 should now be inactive")
	}
	got := n.ActiveDofsSorted()
	want := []int{0, 1, 3, 4, 5}
	chk.Ints(tst, "active dofs", got, want)
}

func TestNodeInvalidDof(tst *testing.T) {
	chk.PrintTitle("NodeInvalidDof")
	n := New(1, 0, 0, 0)
	if err := n.FixDof(9); err == nil {
		tst.Errorf("expected InvalidDofError")
	}
	if err := n.LoadDof(-1, 1.0); err == nil {
		tst.Errorf("expected InvalidDofError")
	}
}

func TestNodeFixityConflict(tst *testing.T) {
	chk.PrintTitle("NodeFixityConflict")
	n := New(1, 0, 0, 0)
	n.LoadDof(1, 100.0)
	n.FixDof(1)
	if err := n.CheckFixity(); err == nil {
		tst.Errorf("expected LoadedRestrainedDofError")
	}
}

func TestNodeLoadTriplets(tst *testing.T) {
	chk.PrintTitle("NodeLoadTriplets")
	n := New(1, 0, 0, 0)
	n.FixDof(2)
	n.FixDof(3)
	n.FixDof(4)
	n.FixDof(5)
	n.LoadDof(1, -1.0e5)
	n.SetNzI(10)
	n.SetParentRank(0, 0)
	trips := n.ComputeLoadTriplets()
	if len(trips) != 1 {
		tst.Fatalf("expected 1 load triplet, got %d", len(trips))
	}
	// active sorted dofs are {0,1}; uy (dof=1) is local index 1
	chk.Float64(tst, "row", 1e-15, float64(trips[0].Row), 11)
	chk.Float64(tst, "value", 1e-15, trips[0].Value, -1.0e5)
}

func TestNodeHaloEmitsNothing(tst *testing.T) {
	chk.PrintTitle("NodeHaloEmitsNothing")
	n := New(2, 1, 1, 0)
	n.LoadDof(0, 5.0)
	n.SetNzI(0)
	n.SetParentRank(1, 0) // parent is rank 1, this copy lives on rank 0
	trips := n.ComputeLoadTriplets()
	if len(trips) != 0 {
		tst.Errorf("halo copy must not emit load triplets, got %d", len(trips))
	}
}

func TestNodePushU(tst *testing.T) {
	chk.PrintTitle("NodePushU")
	n := New(1, 0, 0, 0)
	n.FixDof(2)
	n.FixDof(3)
	n.FixDof(4)
	n.FixDof(5)
	if err := n.PushU([]float64{1.5, -2.5}); err != nil {
		tst.Fatalf("PushU failed: %v", err)
	}
	chk.Float64(tst, "U[ux]", 1e-15, n.U[0], 1.5)
	chk.Float64(tst, "U[uy]", 1e-15, n.U[1], -2.5)
	if err := n.PushU([]float64{1.0}); err == nil {
		tst.Errorf("expected mismatched-length error")
	}
}

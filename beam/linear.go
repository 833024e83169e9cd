// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package beam

import (
	"math"

	"github.com/Anwar8/Blaze/node"
	"github.com/Anwar8/Blaze/sec"
)

// LinearElastic is a small-deformation beam: the standard 6x12
// small-rotation transform is built once from the base geometry and never
// updated, so the element's global K is constant and its resistance is
// K·U.
type LinearElastic struct {
	id      int
	nodes   [2]*node.Node
	section sec.Section

	l0    float64
	t6    [6][12]float64 // local (u1,v1,θ1,u2,v2,θ2) <- global, frozen at base geometry
	kGlob [12][12]float64
	kmap  []mapEntry
	rows  []position
	uElem [12]float64
}

// NewLinearElastic builds a linear beam element between the two given
// nodes with the given section.
func NewLinearElastic(id int, nodes [2]*node.Node, section sec.Section) (*LinearElastic, error) {
	if err := checkNodes(nodes); err != nil {
		return nil, err
	}
	e := &LinearElastic{id: id, nodes: nodes, section: section}
	nodes[0].AddElement(id)
	nodes[1].AddElement(id)
	return e, nil
}

func (e *LinearElastic) ID() int { return e.id }

// Initialise caches the base length, builds the (constant) 6x12
// small-rotation transform, and assembles the constant global stiffness.
func (e *LinearElastic) Initialise() error {
	dx := e.nodes[1].X[0] - e.nodes[0].X[0]
	dy := e.nodes[1].X[1] - e.nodes[0].X[1]
	e.l0 = math.Hypot(dx, dy)
	c, s := dx/e.l0, dy/e.l0

	e.t6[0][colUx1], e.t6[0][colUy1] = c, s
	e.t6[1][colUx1], e.t6[1][colUy1] = -s, c
	e.t6[2][colRz1] = 1
	e.t6[3][colUx2], e.t6[3][colUy2] = c, s
	e.t6[4][colUx2], e.t6[4][colUy2] = -s, c
	e.t6[5][colRz2] = 1

	e.kmap = buildStiffnessMap(e.nodes)
	e.rows = buildRowMap(e.nodes)
	e.recomputeK()
	return nil
}

// localStiffness6 is the classic Euler-Bernoulli 2D beam local stiffness,
// ordered (u1,v1,θ1,u2,v2,θ2).
func localStiffness6(ea, ei, l float64) (k [6][6]float64) {
	l2, l3 := l*l, l*l*l
	k[0][0], k[3][3] = ea/l, ea/l
	k[0][3], k[3][0] = -ea/l, -ea/l

	k[1][1], k[4][4] = 12*ei/l3, 12*ei/l3
	k[1][4], k[4][1] = -12*ei/l3, -12*ei/l3
	k[1][2], k[2][1] = 6*ei/l2, 6*ei/l2
	k[1][5], k[5][1] = 6*ei/l2, 6*ei/l2
	k[4][2], k[2][4] = -6*ei/l2, -6*ei/l2
	k[4][5], k[5][4] = -6*ei/l2, -6*ei/l2

	k[2][2], k[5][5] = 4*ei/l, 4*ei/l
	k[2][5], k[5][2] = 2*ei/l, 2*ei/l
	return
}

func (e *LinearElastic) recomputeK() {
	dt := e.section.DT()
	kl := localStiffness6(dt[0][0], dt[1][1], e.l0)

	var tmp [6][12]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 12; j++ {
			var sum float64
			for m := 0; m < 6; m++ {
				sum += kl[i][m] * e.t6[m][j]
			}
			tmp[i][j] = sum
		}
	}
	for i := 0; i < 12; i++ {
		for j := 0; j < 12; j++ {
			var sum float64
			for m := 0; m < 6; m++ {
				sum += e.t6[m][i] * tmp[m][j]
			}
			e.kGlob[i][j] = sum
		}
	}
}

// UpdateState pulls U from the nodes; the stiffness is constant once
// Initialise has run, under the small-deformation assumption.
func (e *LinearElastic) UpdateState() error {
	for ni, n := range e.nodes {
		for d := 0; d < 6; d++ {
			e.uElem[6*ni+d] = n.U[d]
		}
	}
	return nil
}

func (e *LinearElastic) KTriplets() []KTriplet {
	out := make([]KTriplet, 0, len(e.kmap))
	for _, q := range e.kmap {
		out = append(out, KTriplet{Row: q.GlobalRow, Col: q.GlobalCol, Value: e.kGlob[q.LocalRow][q.LocalCol]})
	}
	return out
}

func (e *LinearElastic) RTriplets() []RTriplet {
	var f [12]float64
	for i := 0; i < 12; i++ {
		var s float64
		for j := 0; j < 12; j++ {
			s += e.kGlob[i][j] * e.uElem[j]
		}
		f[i] = s
	}
	out := make([]RTriplet, 0, len(e.rows))
	for _, r := range e.rows {
		out = append(out, RTriplet{Row: r.global, Value: f[r.local]})
	}
	return out
}

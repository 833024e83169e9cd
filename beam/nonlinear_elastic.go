// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package beam

import (
	"github.com/Anwar8/Blaze/corot"
	"github.com/Anwar8/Blaze/node"
	"github.com/Anwar8/Blaze/sec"
)

// NonlinearElastic is a corotational beam whose section has a constant
// tangent (no path dependence), so its local force and material stiffness
// reduce to closed form: f = k_m·d, no Gauss loop needed.
type NonlinearElastic struct {
	id      int
	nodes   [2]*node.Node
	section sec.Section

	t      corot.Transform
	kmap   []mapEntry
	rows   []position
	uElem  [12]float64
	dLocal [3]float64
	fLocal [3]float64
	kGlob  [12][12]float64
	fGlob  [12]float64
}

func NewNonlinearElastic(id int, nodes [2]*node.Node, section sec.Section) (*NonlinearElastic, error) {
	if err := checkNodes(nodes); err != nil {
		return nil, err
	}
	e := &NonlinearElastic{id: id, nodes: nodes, section: section}
	nodes[0].AddElement(id)
	nodes[1].AddElement(id)
	return e, nil
}

func (e *NonlinearElastic) ID() int { return e.id }

func (e *NonlinearElastic) Initialise() error {
	e.t.Initialise(e.nodes[0].X[0], e.nodes[0].X[1], e.nodes[1].X[0], e.nodes[1].X[1])
	e.kmap = buildStiffnessMap(e.nodes)
	e.rows = buildRowMap(e.nodes)
	return nil
}

// UpdateState runs the full corotational update: pull U,
// update the transform, get d, evaluate the section at midspan (ε_axial,
// κ constant and linear-in-d respectively, so d alone fixes both exactly),
// compute f and k_m in closed form, add k_g and k_ext, lift to global.
func (e *NonlinearElastic) UpdateState() error {
	for ni, n := range e.nodes {
		for d := 0; d < 6; d++ {
			e.uElem[6*ni+d] = n.U[d]
		}
	}
	e.t.Update(e.uElem)
	d := e.t.DFromU(e.uElem)

	epsAxial := d[0] / e.t.L0
	kappa := (d[2] - d[1]) / e.t.L0 // midspan curvature of the natural mode
	e.section.UpdateState(epsAxial, kappa)
	n, _ := e.section.Stress()

	km := matStiffness3(e.section.DT(), e.t.L0)
	f := localForceFromK(km, d)
	e.dLocal, e.fLocal = d, f
	kg := geomStiffness3(n, e.t.L)
	kt := addLocal3(km, kg)

	tJ := e.t.NLT()
	e.fGlob = globalForceFromLocal3(tJ, f)
	kExt := e.t.KExt(f[0], f[1], f[2])
	e.kGlob = add12(globalFromLocal3(tJ, kt), kExt)
	return nil
}

func (e *NonlinearElastic) KTriplets() []KTriplet {
	out := make([]KTriplet, 0, len(e.kmap))
	for _, q := range e.kmap {
		out = append(out, KTriplet{Row: q.GlobalRow, Col: q.GlobalCol, Value: e.kGlob[q.LocalRow][q.LocalCol]})
	}
	return out
}

func (e *NonlinearElastic) RTriplets() []RTriplet {
	out := make([]RTriplet, 0, len(e.rows))
	for _, r := range e.rows {
		out = append(out, RTriplet{Row: r.global, Value: e.fGlob[r.local]})
	}
	return out
}

func addLocal3(a, b [3][3]float64) (out [3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return
}

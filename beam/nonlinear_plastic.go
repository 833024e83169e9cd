// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package beam

import (
	"github.com/Anwar8/Blaze/corot"
	"github.com/Anwar8/Blaze/node"
	"github.com/Anwar8/Blaze/sec"
)

// NonlinearPlastic is a corotational beam with a path-dependent (fibre)
// section sampled at two Gauss points: f = Σw·Bᵀ·σ_gen, k_m = Σw·Bᵀ·D_t·B.
type NonlinearPlastic struct {
	id    int
	nodes [2]*node.Node

	t      corot.Transform
	gauss  [2]sec.Section // one section copy per Gauss point
	kmap   []mapEntry
	rows   []position
	uElem  [12]float64
	fLocal [3]float64
	kGlob  [12][12]float64
	fGlob  [12]float64
}

// NewNonlinearPlastic builds a plastic beam element; template is cloned
// once per Gauss point so each integration point carries independent
// plastic history.
func NewNonlinearPlastic(id int, nodes [2]*node.Node, template sec.Section) (*NonlinearPlastic, error) {
	if err := checkNodes(nodes); err != nil {
		return nil, err
	}
	e := &NonlinearPlastic{id: id, nodes: nodes}
	e.gauss[0] = template.Clone()
	e.gauss[1] = template.Clone()
	nodes[0].AddElement(id)
	nodes[1].AddElement(id)
	return e, nil
}

func (e *NonlinearPlastic) ID() int { return e.id }

func (e *NonlinearPlastic) Initialise() error {
	e.t.Initialise(e.nodes[0].X[0], e.nodes[0].X[1], e.nodes[1].X[0], e.nodes[1].X[1])
	e.kmap = buildStiffnessMap(e.nodes)
	e.rows = buildRowMap(e.nodes)
	return nil
}

// UpdateState runs the full state-update cycle, sampling the two Gauss
// points: pull
// U, update the transform, get d, evaluate ε_gen at each point (axial
// strain uniform, curvature from bRow), update each fibre section, then
// integrate f and k_m by quadrature before adding k_g and k_ext.
func (e *NonlinearPlastic) UpdateState() error {
	for ni, n := range e.nodes {
		for d := 0; d < 6; d++ {
			e.uElem[6*ni+d] = n.U[d]
		}
	}
	e.t.Update(e.uElem)
	d := e.t.DFromU(e.uElem)
	epsAxial := d[0] / e.t.L0

	gps := twoPointGauss(e.t.L0)
	var f [3]float64
	var km [3][3]float64
	var axialForce float64
	for g, gp := range gps {
		b := bRow(gp.Xi, e.t.L0)
		kappa := b[1][1]*d[1] + b[1][2]*d[2]
		e.gauss[g].UpdateState(epsAxial, kappa)
		n, m := e.gauss[g].Stress()
		fg := bTSigma(n, m, b)
		kg := bTDB(e.gauss[g].DT(), b)
		for i := 0; i < 3; i++ {
			f[i] += gp.W * fg[i]
			for j := 0; j < 3; j++ {
				km[i][j] += gp.W * kg[i][j]
			}
		}
		axialForce += gp.W * n / e.t.L0 // average N across the integration rule
	}

	kg3 := geomStiffness3(axialForce, e.t.L)
	kt := addLocal3(km, kg3)
	e.fLocal = f

	tJ := e.t.NLT()
	e.fGlob = globalForceFromLocal3(tJ, f)
	kExt := e.t.KExt(f[0], f[1], f[2])
	e.kGlob = add12(globalFromLocal3(tJ, kt), kExt)
	return nil
}

// CommitState promotes every Gauss-point section's converged state to its
// starting state; called once per converged load step.
func (e *NonlinearPlastic) CommitState() {
	for _, s := range e.gauss {
		s.CommitState()
	}
}

// RestoreState rewinds every Gauss-point section back to its last committed
// state; used when an iteration is abandoned. Only meaningful for a Fibre
// section, which implements Restore itself.
func (e *NonlinearPlastic) RestoreState() {
	for _, s := range e.gauss {
		if r, ok := s.(interface{ Restore() }); ok {
			r.Restore()
		}
	}
}

func (e *NonlinearPlastic) KTriplets() []KTriplet {
	out := make([]KTriplet, 0, len(e.kmap))
	for _, q := range e.kmap {
		out = append(out, KTriplet{Row: q.GlobalRow, Col: q.GlobalCol, Value: e.kGlob[q.LocalRow][q.LocalCol]})
	}
	return out
}

func (e *NonlinearPlastic) RTriplets() []RTriplet {
	out := make([]RTriplet, 0, len(e.rows))
	for _, r := range e.rows {
		out = append(out, RTriplet{Row: r.global, Value: e.fGlob[r.local]})
	}
	return out
}

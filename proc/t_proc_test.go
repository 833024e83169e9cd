// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proc

import (
	"math"
	"testing"

	"github.com/Anwar8/Blaze/ana"
	"github.com/Anwar8/Blaze/asm"
	"github.com/Anwar8/Blaze/bc"
	"github.com/Anwar8/Blaze/beam"
	"github.com/Anwar8/Blaze/dist"
	"github.com/Anwar8/Blaze/dof"
	"github.com/Anwar8/Blaze/lsolve"
	"github.com/Anwar8/Blaze/mat"
	"github.com/Anwar8/Blaze/mesh"
	"github.com/Anwar8/Blaze/node"
	"github.com/Anwar8/Blaze/scribe"
	"github.com/Anwar8/Blaze/sec"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// lineInputs builds the node/element sequences of a straight beam line of
// nelems equal elements along x.
func lineInputs(nelems int, length float64) ([]mesh.NodeInput, []mesh.ElemInput) {
	dx := length / float64(nelems)
	nodes := make([]mesh.NodeInput, nelems+1)
	for i := range nodes {
		nodes[i] = mesh.NodeInput{ID: i + 1, X: float64(i) * dx}
	}
	elems := make([]mesh.ElemInput, nelems)
	for i := range elems {
		elems[i] = mesh.ElemInput{ID: i + 1, NodeIDs: []int{i + 1, i + 2}}
	}
	return nodes, elems
}

var outOfPlane = []int{int(dof.Uz), int(dof.Rx), int(dof.Ry)}

// planarise restrains the out-of-plane DoFs of every node in ids.
func planarise(tst *testing.T, rm *bc.RestraintManager, m *mesh.GlobalMesh, ids []int) {
	r, err := bc.NewRestraintByIDs(m, ids, outOfPlane)
	if err != nil {
		tst.Fatal(err)
	}
	rm.Add(r)
}

func restrain(tst *testing.T, rm *bc.RestraintManager, m *mesh.GlobalMesh, ids, dofs []int) {
	r, err := bc.NewRestraintByIDs(m, ids, dofs)
	if err != nil {
		tst.Fatal(err)
	}
	rm.Add(r)
}

func intRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// runCantilever builds and solves a 10-element cantilever with a
// transverse tip load and returns the tip record plus the procedure's
// error.
func runCantilever(tst *testing.T, par Params) (*scribe.Record, error) {
	e0, a0, i0 := 2.06e11, 0.0125, 4.57e-4
	nodesIn, elemsIn := lineInputs(10, 10)
	factory := func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewLinearElastic(id, nodes, sec.NewBasic(e0, a0, i0))
	}
	m, err := mesh.Build(dist.Serial{}, nodesIn, elemsIn, factory)
	if err != nil {
		tst.Fatal(err)
	}
	var rm bc.RestraintManager
	restrain(tst, &rm, m, []int{1}, []int{-1})
	planarise(tst, &rm, m, intRange(2, 11))
	if err := rm.ApplyAll(m); err != nil {
		tst.Fatal(err)
	}

	a := asm.New(m, dist.Serial{})
	var lm bc.LoadManager
	load, err := bc.NewLoadByIDs(m, []int{11}, []int{int(dof.Uy)}, []float64{-1e5})
	if err != nil {
		tst.Fatal(err)
	}
	lm.Add(load)
	if err := lm.InitialiseAll(); err != nil {
		tst.Fatal(err)
	}

	var scr scribe.Scribe
	if err := scr.TrackNodesByID(m, []int{11}, []int{int(dof.Uy)}); err != nil {
		tst.Fatal(err)
	}

	sol := lsolve.New("")
	defer sol.Free()
	p := Procedure{Par: par}
	runErr := p.Run(m, a, sol, &lm, &scr)
	rec, _ := scr.RecordFor(11)
	return rec, runErr
}

func TestCantileverTipLoad(tst *testing.T) {
	chk.PrintTitle("CantileverTipLoad")
	rec, err := runCantilever(tst, Params{MaxLoadFactor: 1, NumSteps: 1, Tol: 1e-2, MaxIter: 10})
	if err != nil {
		tst.Fatal(err)
	}
	exact := ana.CantileverEndLoad{E: 2.06e11, I: 4.57e-4, L: 10, P: -1e5}
	got := rec.Data[int(dof.Uy)][0]
	want := exact.TipDeflection()
	if math.Abs((got-want)/want) > 0.02 {
		tst.Errorf("tip deflection = %v, want ~%v", got, want)
	}
}

func TestLoadFactorFunction(tst *testing.T) {
	chk.PrintTitle("LoadFactorFunction")
	// a piecewise-linear multiplier riding the load factor: only 20% of the
	// pattern is applied by λ=0.5, the rest by λ=1 — the end state matches
	// proportional loading, the path does not.
	e0, a0, i0 := 2.06e11, 0.0125, 4.57e-4
	nodesIn, elemsIn := lineInputs(10, 10)
	factory := func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewLinearElastic(id, nodes, sec.NewBasic(e0, a0, i0))
	}
	m, err := mesh.Build(dist.Serial{}, nodesIn, elemsIn, factory)
	if err != nil {
		tst.Fatal(err)
	}
	var rm bc.RestraintManager
	restrain(tst, &rm, m, []int{1}, []int{-1})
	planarise(tst, &rm, m, intRange(2, 11))
	if err := rm.ApplyAll(m); err != nil {
		tst.Fatal(err)
	}

	a := asm.New(m, dist.Serial{})
	var lm bc.LoadManager
	load, err := bc.NewLoadByIDs(m, []int{11}, []int{int(dof.Uy)}, []float64{-1e5})
	if err != nil {
		tst.Fatal(err)
	}
	var mult fun.Pts
	mult.Init(fun.Prms{
		&fun.Prm{N: "t0", V: 0.0}, {N: "y0", V: 0.0},
		&fun.Prm{N: "t1", V: 0.5}, {N: "y1", V: 0.2},
		&fun.Prm{N: "t2", V: 1.0}, {N: "y2", V: 1.0},
	})
	load.Mult = &mult
	lm.Add(load)
	lm.InitialiseAll()

	var scr scribe.Scribe
	scr.TrackNodesByID(m, []int{11}, []int{int(dof.Uy)})
	sol := lsolve.New("")
	defer sol.Free()
	p := Procedure{Par: Params{MaxLoadFactor: 1, NumSteps: 4, Tol: 1e-2, MaxIter: 10}}
	if err := p.Run(m, a, sol, &lm, &scr); err != nil {
		tst.Fatal(err)
	}

	rec, _ := scr.RecordFor(11)
	uy := rec.Data[int(dof.Uy)]
	if len(uy) != 4 {
		tst.Fatalf("expected 4 samples, got %d", len(uy))
	}
	full := (&ana.CantileverEndLoad{E: e0, I: i0, L: 10, P: -1e5}).TipDeflection()
	chk.Float64(tst, "tip at λ=0.5", 1e-6, uy[1], 0.2*full)
	chk.Float64(tst, "tip at λ=1", 1e-6, uy[3], full)
}

func TestAssemblyIdempotence(tst *testing.T) {
	chk.PrintTitle("AssemblyIdempotence")
	par := Params{MaxLoadFactor: 1, NumSteps: 1, Tol: 1e-2, MaxIter: 10}
	rec1, err1 := runCantilever(tst, par)
	rec2, err2 := runCantilever(tst, par)
	if err1 != nil || err2 != nil {
		tst.Fatal(err1, err2)
	}
	chk.Vector(tst, "repeated solve", 1e-12, rec1.Data[int(dof.Uy)], rec2.Data[int(dof.Uy)])
}

func TestSimplySupportedPointLoad(tst *testing.T) {
	chk.PrintTitle("SimplySupportedPointLoad")
	e0, a0, i0 := 2.06e11, 0.0125, 4.57e-4
	nodesIn, elemsIn := lineInputs(10, 10)
	factory := func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewLinearElastic(id, nodes, sec.NewBasic(e0, a0, i0))
	}
	m, err := mesh.Build(dist.Serial{}, nodesIn, elemsIn, factory)
	if err != nil {
		tst.Fatal(err)
	}
	var rm bc.RestraintManager
	restrain(tst, &rm, m, []int{1}, []int{int(dof.Ux), int(dof.Uy)}) // pin
	restrain(tst, &rm, m, []int{11}, []int{int(dof.Uy)})            // roller
	planarise(tst, &rm, m, intRange(1, 11))
	if err := rm.ApplyAll(m); err != nil {
		tst.Fatal(err)
	}

	a := asm.New(m, dist.Serial{})
	var lm bc.LoadManager
	load, err := bc.NewLoadByIDs(m, []int{6}, []int{int(dof.Uy)}, []float64{-1e5})
	if err != nil {
		tst.Fatal(err)
	}
	lm.Add(load)
	lm.InitialiseAll()

	var scr scribe.Scribe
	scr.TrackNodesByID(m, []int{6}, []int{int(dof.Uy)})
	sol := lsolve.New("")
	defer sol.Free()
	p := Procedure{Par: Params{MaxLoadFactor: 1, NumSteps: 1, Tol: 1e-2, MaxIter: 10}}
	if err := p.Run(m, a, sol, &lm, &scr); err != nil {
		tst.Fatal(err)
	}

	exact := ana.SimpleBeamPointLoad{E: e0, I: i0, L: 10, P: -1e5}
	rec, _ := scr.RecordFor(6)
	got := rec.Data[int(dof.Uy)][0]
	want := exact.MidDeflection()
	if math.Abs((got-want)/want) > 0.02 {
		tst.Errorf("midspan deflection = %v, want ~%v", got, want)
	}
}

func TestSimplySupportedUDL(tst *testing.T) {
	chk.PrintTitle("SimplySupportedUDL")
	e0, a0, i0 := 2.06e11, 0.0125, 4.57e-4
	ndiv, length, w := 100, 5.0, -1e4
	nodesIn, elemsIn := lineInputs(ndiv, length)
	factory := func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewLinearElastic(id, nodes, sec.NewBasic(e0, a0, i0))
	}
	m, err := mesh.Build(dist.Serial{}, nodesIn, elemsIn, factory)
	if err != nil {
		tst.Fatal(err)
	}
	var rm bc.RestraintManager
	restrain(tst, &rm, m, []int{1}, []int{int(dof.Ux), int(dof.Uy)})
	restrain(tst, &rm, m, []int{ndiv + 1}, []int{int(dof.Uy)})
	planarise(tst, &rm, m, intRange(1, ndiv+1))
	if err := rm.ApplyAll(m); err != nil {
		tst.Fatal(err)
	}

	a := asm.New(m, dist.Serial{})
	var lm bc.LoadManager
	// the distributed load lumped onto the interior nodes.
	nodal := w * length / float64(ndiv)
	load, err := bc.NewLoadByIDs(m, intRange(2, ndiv), []int{int(dof.Uy)}, []float64{nodal})
	if err != nil {
		tst.Fatal(err)
	}
	lm.Add(load)
	lm.InitialiseAll()

	mid := ndiv/2 + 1
	var scr scribe.Scribe
	scr.TrackNodesByID(m, []int{mid}, []int{int(dof.Uy)})
	sol := lsolve.New("")
	defer sol.Free()
	p := Procedure{Par: Params{MaxLoadFactor: 1, NumSteps: 1, Tol: 1e-3, MaxIter: 10}}
	if err := p.Run(m, a, sol, &lm, &scr); err != nil {
		tst.Fatal(err)
	}

	exact := ana.SimpleBeamUDL{E: e0, I: i0, L: length, W: w}
	rec, _ := scr.RecordFor(mid)
	got := rec.Data[int(dof.Uy)][0]
	want := exact.MidDeflection()
	if math.Abs((got-want)/want) > 0.02 {
		tst.Errorf("midspan deflection = %v, want ~%v", got, want)
	}
}

func TestMacNealSlenderBeamEndMoment(tst *testing.T) {
	chk.PrintTitle("MacNealSlenderBeamEndMoment")
	var cs ana.CrossSection
	cs.Init("rectangle", 1, 0.1, 0, 0, 0)
	e0 := 1.2e6
	ndiv := 200
	nodesIn, elemsIn := lineInputs(ndiv, 10)
	factory := func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewNonlinearElastic(id, nodes, sec.NewBasic(e0, cs.A, cs.Irr))
	}
	m, err := mesh.Build(dist.Serial{}, nodesIn, elemsIn, factory)
	if err != nil {
		tst.Fatal(err)
	}
	var rm bc.RestraintManager
	restrain(tst, &rm, m, []int{1}, []int{-1})
	planarise(tst, &rm, m, intRange(2, ndiv+1))
	if err := rm.ApplyAll(m); err != nil {
		tst.Fatal(err)
	}

	a := asm.New(m, dist.Serial{})
	var lm bc.LoadManager
	load, err := bc.NewLoadByIDs(m, []int{ndiv + 1}, []int{int(dof.Rz)}, []float64{-20 * math.Pi})
	if err != nil {
		tst.Fatal(err)
	}
	lm.Add(load)
	lm.InitialiseAll()

	var scr scribe.Scribe
	scr.TrackNodesByID(m, []int{ndiv + 1}, []int{int(dof.Uy)})
	sol := lsolve.New("")
	defer sol.Free()
	// 50 equal steps reach λ=0.25 at step 25 and λ=0.5 at step 50.
	p := Procedure{Par: Params{MaxLoadFactor: 0.5, NumSteps: 50, Tol: 1e-4, MaxIter: 100}}
	if err := p.Run(m, a, sol, &lm, &scr); err != nil {
		tst.Fatal(err)
	}

	rec, _ := scr.RecordFor(ndiv + 1)
	uy := rec.Data[int(dof.Uy)]
	if len(uy) != 50 {
		tst.Fatalf("expected 50 samples, got %d", len(uy))
	}
	vQuarter, vHalf := uy[24], uy[49]
	if vQuarter <= -7 || vQuarter >= -6 {
		tst.Errorf("tip displacement at 0.25 reference moment = %v, want in (-7, -6)", vQuarter)
	}
	if vHalf <= -7 || vHalf >= -6 {
		tst.Errorf("tip displacement at 0.5 reference moment = %v, want in (-7, -6)", vHalf)
	}
}

func TestModifiedNewtonMatchesFullNewton(tst *testing.T) {
	chk.PrintTitle("ModifiedNewtonMatchesFullNewton")
	// a moderately nonlinear cantilever: the constant-tangent option must
	// reach the same equilibrium, just along a different iteration path.
	build := func(cteTg bool) float64 {
		e0, a0, i0 := 2.06e11, 0.0125, 4.57e-4
		nodesIn, elemsIn := lineInputs(10, 10)
		factory := func(id int, nodes [2]*node.Node) (beam.Element, error) {
			return beam.NewNonlinearElastic(id, nodes, sec.NewBasic(e0, a0, i0))
		}
		m, err := mesh.Build(dist.Serial{}, nodesIn, elemsIn, factory)
		if err != nil {
			tst.Fatal(err)
		}
		var rm bc.RestraintManager
		restrain(tst, &rm, m, []int{1}, []int{-1})
		planarise(tst, &rm, m, intRange(2, 11))
		if err := rm.ApplyAll(m); err != nil {
			tst.Fatal(err)
		}
		a := asm.New(m, dist.Serial{})
		var lm bc.LoadManager
		load, err := bc.NewLoadByIDs(m, []int{11}, []int{int(dof.Uy)}, []float64{-5e5})
		if err != nil {
			tst.Fatal(err)
		}
		lm.Add(load)
		lm.InitialiseAll()
		var scr scribe.Scribe
		scr.TrackNodesByID(m, []int{11}, []int{int(dof.Uy)})
		sol := lsolve.New("")
		defer sol.Free()
		p := Procedure{
			Par:             Params{MaxLoadFactor: 1, NumSteps: 5, Tol: 1e-2, MaxIter: 50},
			ConstantTangent: cteTg,
		}
		if err := p.Run(m, a, sol, &lm, &scr); err != nil {
			tst.Fatal(err)
		}
		rec, _ := scr.RecordFor(11)
		return rec.Data[int(dof.Uy)][4]
	}
	full := build(false)
	modified := build(true)
	if math.Abs((full-modified)/full) > 1e-3 {
		tst.Errorf("modified Newton tip = %v, full Newton tip = %v", modified, full)
	}
}

// rectangleFibres discretises a b x h rectangle into nf equal bilinear
// fibre layers.
func rectangleFibres(e0, fy, hard, b, h float64, nf int) *sec.Fibre {
	dh := h / float64(nf)
	mdls := make([]*mat.Bilinear, nf)
	areas := make([]float64, nf)
	ys := make([]float64, nf)
	for i := 0; i < nf; i++ {
		mdls[i] = &mat.Bilinear{E: e0, Fy: fy, B: hard}
		areas[i] = b * dh
		ys[i] = -h/2 + (float64(i)+0.5)*dh
	}
	return sec.NewFibre(mdls, areas, ys)
}

func TestPlasticCantilever(tst *testing.T) {
	chk.PrintTitle("PlasticCantilever")
	e0, fy, hard := 200e9, 250e6, 0.02
	b, h := 0.1, 0.2
	var cs ana.CrossSection
	cs.Init("rectangle", b, h, 0, 0, 0)

	// clamp moment at full load: 2.2e5, between first yield (fy·I/(h/2) =
	// 1.67e5) and the fully-plastic moment (fy·b·h²/4 = 2.5e5), so the
	// clamp region plastifies without exhausting the section.
	pref := -2.2e4

	run := func(factory mesh.ElementFactory) []float64 {
		nodesIn, elemsIn := lineInputs(10, 10)
		m, err := mesh.Build(dist.Serial{}, nodesIn, elemsIn, factory)
		if err != nil {
			tst.Fatal(err)
		}
		var rm bc.RestraintManager
		restrain(tst, &rm, m, []int{1}, []int{-1})
		planarise(tst, &rm, m, intRange(2, 11))
		if err := rm.ApplyAll(m); err != nil {
			tst.Fatal(err)
		}
		a := asm.New(m, dist.Serial{})
		var lm bc.LoadManager
		load, err := bc.NewLoadByIDs(m, []int{11}, []int{int(dof.Uy)}, []float64{pref})
		if err != nil {
			tst.Fatal(err)
		}
		lm.Add(load)
		lm.InitialiseAll()
		var scr scribe.Scribe
		scr.TrackNodesByID(m, []int{11}, []int{int(dof.Uy)})
		sol := lsolve.New("")
		defer sol.Free()
		p := Procedure{Par: Params{MaxLoadFactor: 1, NumSteps: 20, Tol: 1e-2, MaxIter: 30}}
		if err := p.Run(m, a, sol, &lm, &scr); err != nil {
			tst.Fatal(err)
		}
		rec, _ := scr.RecordFor(11)
		return rec.Data[int(dof.Uy)]
	}

	template := rectangleFibres(e0, fy, hard, b, h, 10)
	plastic := run(func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewNonlinearPlastic(id, nodes, template)
	})
	// the elastic reference carries the fibre layers' own second moment of
	// area, Σ A·y² (1% below b·h³/12 for 10 midpoint layers), so both models
	// describe the same section before yield.
	var iFibre float64
	for k, y := range template.Y {
		iFibre += template.Area[k] * y * y
	}
	elastic := run(func(id int, nodes [2]*node.Node) (beam.Element, error) {
		return beam.NewNonlinearElastic(id, nodes, sec.NewBasic(e0, cs.A, iFibre))
	})

	if len(plastic) != 20 {
		tst.Fatalf("expected 20 samples, got %d", len(plastic))
	}
	for k := 1; k < len(plastic); k++ {
		if plastic[k] >= plastic[k-1] {
			tst.Fatalf("tip deflection must grow monotonically: step %d: %v -> %v", k, plastic[k-1], plastic[k])
		}
	}
	// before first yield the two models agree; after it the fibre model is
	// softer.
	chk.Float64(tst, "pre-yield step", 2e-3*math.Abs(elastic[4]), plastic[4], elastic[4])
	if plastic[19] > 1.02*elastic[19] {
		tst.Errorf("plastic tip %v must exceed the elastic tip %v", plastic[19], elastic[19])
	}
}

func TestNonConvergenceGuard(tst *testing.T) {
	chk.PrintTitle("NonConvergenceGuard")
	rec, err := runCantilever(tst, Params{MaxLoadFactor: 1, NumSteps: 1, Tol: 1e-30, MaxIter: 3})
	if err == nil {
		tst.Fatal("expected a convergence error")
	}
	ce, ok := err.(*ConvergenceError)
	if !ok {
		tst.Fatalf("expected *ConvergenceError, got %T: %v", err, err)
	}
	chk.Float64(tst, "λ at failure", 1e-15, ce.Lambda, 1)
	if !(ce.GMax > 0) {
		tst.Errorf("diagnostic must carry the residual, got %v", ce.GMax)
	}
	// the record exists but holds no converged samples.
	if rec == nil || len(rec.Data[int(dof.Uy)]) != 0 {
		tst.Errorf("no converged step must have been recorded")
	}
}

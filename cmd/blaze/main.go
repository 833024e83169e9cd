// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Blaze solves a gravity-loaded portal frame with the nonlinear
// finite-element engine; it is wiring only — every parameter of the run is
// a flag, and the model is the built-in frame generator's.
package main

import (
	"flag"
	"math"

	"github.com/Anwar8/Blaze/asm"
	"github.com/Anwar8/Blaze/bc"
	"github.com/Anwar8/Blaze/beam"
	"github.com/Anwar8/Blaze/dist"
	"github.com/Anwar8/Blaze/dof"
	"github.com/Anwar8/Blaze/frame"
	"github.com/Anwar8/Blaze/lsolve"
	"github.com/Anwar8/Blaze/mat"
	"github.com/Anwar8/Blaze/mesh"
	"github.com/Anwar8/Blaze/node"
	"github.com/Anwar8/Blaze/proc"
	"github.com/Anwar8/Blaze/scribe"
	"github.com/Anwar8/Blaze/sec"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
)

func main() {

	// model geometry
	nbays := flag.Int("bays", 3, "number of bays")
	nfloors := flag.Int("floors", 2, "number of floors")
	bayLen := flag.Float64("baylen", 6, "bay length")
	floorHeight := flag.Float64("floorheight", 4, "floor height")
	beamDiv := flag.Int("beamdiv", 3, "elements per beam")
	colDiv := flag.Int("coldiv", 2, "elements per column")

	// element/section
	kind := flag.String("elem", "nonlinear", "element kind: linear, nonlinear or plastic")
	young := flag.Float64("E", 2.06e11, "Young's modulus")
	area := flag.Float64("A", 0.0125, "section area")
	inertia := flag.Float64("I", 4.57e-4, "second moment of area")
	fy := flag.Float64("fy", 4.55e8, "yield stress (plastic sections)")
	hard := flag.Float64("b", 0.02, "hardening ratio (plastic sections)")

	// loading and stepping
	pload := flag.Float64("P", -1e4, "vertical reference load per beam-line node")
	maxLF := flag.Float64("maxlf", 1, "maximum load factor")
	nsteps := flag.Int("steps", 10, "number of load steps")
	tol := flag.Float64("tol", 1e-3, "residual tolerance")
	maxIter := flag.Int("maxit", 20, "maximum Newton iterations per step")
	verbose := flag.Bool("verbose", true, "narrate progress on rank 0")
	flag.Parse()

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	var coll dist.Collective = dist.Serial{}
	if mpi.IsOn() {
		coll = dist.MPI{}
	}

	if coll.Rank() == 0 {
		io.PfWhite("\nBlaze -- nonlinear frame analysis\n\n")
	}

	// frame model
	f, err := frame.New(*nbays, *nfloors, *bayLen, *floorHeight, *beamDiv, *colDiv)
	if err != nil {
		chk.Panic("cannot build frame: %v", err)
	}

	factory := elementFactory(*kind, *young, *area, *inertia, *fy, *hard)
	m, err := mesh.Build(coll, f.NodeCoords(), f.Elements(), factory)
	if err != nil {
		chk.Panic("cannot build mesh: %v", err)
	}

	// boundary conditions: clamped bases, planar frame
	var rm bc.RestraintManager
	clamp, err := bc.NewRestraintByIDs(m, f.ColumnBases(), []int{-1})
	if err != nil {
		chk.Panic("%v", err)
	}
	rm.Add(clamp)
	oop, err := bc.NewRestraintByIDs(m, f.OutOfPlaneNodes(), []int{int(dof.Uz), int(dof.Rx), int(dof.Ry)})
	if err != nil {
		chk.Panic("%v", err)
	}
	rm.Add(oop)
	if err := rm.ApplyAll(m); err != nil {
		chk.Panic("cannot apply restraints: %v", err)
	}

	// gravity load pattern on every beam-line node
	a := asm.New(m, coll)
	var lm bc.LoadManager
	load, err := bc.NewLoadByIDs(m, f.AllBeamLineNodeIDs(true), []int{int(dof.Uy)}, []float64{*pload})
	if err != nil {
		chk.Panic("%v", err)
	}
	lm.Add(load)
	if err := lm.InitialiseAll(); err != nil {
		chk.Panic("%v", err)
	}

	// track the roof joints' vertical displacement
	var scr scribe.Scribe
	roof := make([]int, 0, *nbays+1)
	for cl := 0; cl <= *nbays; cl++ {
		roof = append(roof, f.VertexID(cl, *nfloors))
	}
	if err := scr.TrackNodesByID(m, roof, []int{int(dof.Uy)}); err != nil {
		chk.Panic("%v", err)
	}

	sol := lsolve.New("")
	defer sol.Free()
	p := proc.Procedure{
		Par:     proc.Params{MaxLoadFactor: *maxLF, NumSteps: *nsteps, Tol: *tol, MaxIter: *maxIter},
		ShowMsg: *verbose,
	}
	if err := p.Run(m, a, sol, &lm, &scr); err != nil {
		if ce, ok := err.(*proc.ConvergenceError); ok {
			if coll.Rank() == 0 {
				io.Pfred("%v\n", ce)
			}
		} else {
			chk.Panic("run failed: %v", err)
		}
	}

	// report the tracked history
	if coll.Size() == 1 || coll.Rank() == 0 {
		for _, rec := range scr.Records() {
			io.Pf("node %d uy history: %v\n", rec.NodeID, rec.Data[int(dof.Uy)])
		}
	}
}

// elementFactory selects the element kind and closes over a section
// template for it.
func elementFactory(kind string, young, area, inertia, fy, hard float64) mesh.ElementFactory {
	kinds := map[string]beam.Kind{
		"linear":    beam.KindLinear,
		"nonlinear": beam.KindNonlinearElastic,
		"plastic":   beam.KindNonlinearPlastic,
	}
	k, ok := kinds[kind]
	if !ok {
		chk.Panic("unknown element kind %q", kind)
	}
	switch k {
	case beam.KindLinear:
		return func(id int, nodes [2]*node.Node) (beam.Element, error) {
			return beam.NewLinearElastic(id, nodes, sec.NewBasic(young, area, inertia))
		}
	case beam.KindNonlinearElastic:
		return func(id int, nodes [2]*node.Node) (beam.Element, error) {
			return beam.NewNonlinearElastic(id, nodes, sec.NewBasic(young, area, inertia))
		}
	default:
		template := rectangularFibreSection(young, area, inertia, fy, hard)
		return func(id int, nodes [2]*node.Node) (beam.Element, error) {
			return beam.NewNonlinearPlastic(id, nodes, template)
		}
	}
}

// rectangularFibreSection discretises the rectangle matching (area,
// inertia) into equal-thickness bilinear fibres.
func rectangularFibreSection(young, area, inertia, fy, hard float64) *sec.Fibre {
	// b·h = area, b·h³/12 = inertia
	h := math.Sqrt(12 * inertia / area)
	b := area / h
	const nf = 10
	dh := h / nf
	mdls := make([]*mat.Bilinear, nf)
	areas := make([]float64, nf)
	ys := make([]float64, nf)
	for i := 0; i < nf; i++ {
		mdls[i] = &mat.Bilinear{E: young, Fy: fy, B: hard}
		areas[i] = b * dh
		ys[i] = -h/2 + (float64(i)+0.5)*dh
	}
	return sec.NewFibre(mdls, areas, ys)
}

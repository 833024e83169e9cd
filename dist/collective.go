// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dist wraps the collective-communication primitives the
// distributed mesh and assembler need around github.com/cpmech/gosl/mpi.
// That layer exposes mpi.Start/Stop/IsOn/Rank/Size, mpi.AllReduceSum and
// mpi.IntAllReduceMax — no point-to-point send/recv — so every exchange in
// this package is built on the two reductions:
//
//   - a non-negative int is all-gathered by placing it at this rank's slot
//     of a zero vector and taking an element-wise max across ranks;
//   - a variable-length payload is all-gathered by padding every rank's
//     contribution into a disjoint block of a flat buffer (zeros
//     elsewhere) and reducing with max (ints) or sum (floats) — since the
//     blocks never overlap, the reduction reconstructs each rank's data
//     exactly;
//   - a broadcast from one rank is an all-reduce sum of a vector that is
//     all-zero on every rank except the source.
//
// This trades O(neighbours) traffic for O(ranks) traffic on every halo
// exchange, a deliberate simplification recorded in DESIGN.md.
package dist

import "github.com/cpmech/gosl/mpi"

// Collective is the capability set the mesh/assembler need from the
// process group. Serial satisfies it trivially (no collective layer means
// num_ranks = 1); MPI wraps the real primitives;
// Group runs n ranks as goroutines of one process for tests.
type Collective interface {
	Rank() int
	Size() int
	// AllGatherInt all-gathers one non-negative int per rank.
	AllGatherInt(local int) []int
	// GatherVarInt all-gathers a variable-length non-negative-int payload
	// per rank; result[r] is rank r's contribution.
	GatherVarInt(local []int) [][]int
	// GatherVarFloat is GatherVarInt's float counterpart (any sign).
	GatherVarFloat(local []float64) [][]float64
	// BroadcastFloat distributes vec (only meaningful on rank `from`) to
	// every rank.
	BroadcastFloat(from int, vec []float64) []float64
}

// Serial is the num_ranks=1 reduction of Collective: every operation is
// the identity, no communication occurs.
type Serial struct{}

func (Serial) Rank() int { return 0 }
func (Serial) Size() int { return 1 }

func (Serial) AllGatherInt(local int) []int { return []int{local} }

func (Serial) GatherVarInt(local []int) [][]int {
	cp := append([]int(nil), local...)
	return [][]int{cp}
}

func (Serial) GatherVarFloat(local []float64) [][]float64 {
	cp := append([]float64(nil), local...)
	return [][]float64{cp}
}

func (Serial) BroadcastFloat(from int, vec []float64) []float64 {
	return append([]float64(nil), vec...)
}

// MPI wraps gosl/mpi's collectives to satisfy Collective across real
// processes.
type MPI struct{}

func (MPI) Rank() int { return mpi.Rank() }
func (MPI) Size() int { return mpi.Size() }

// AllGatherInt places local at this rank's slot of a zero vector and
// max-reduces: since every other slot stays zero, the max reproduces each
// rank's value exactly (requires local >= 0, true of every quantity this
// package gathers: ids, dof counts, nz_i).
func (c MPI) AllGatherInt(local int) []int {
	n := c.Size()
	buf := make([]int, n)
	buf[c.Rank()] = local
	out := make([]int, n)
	mpi.IntAllReduceMax(out, buf)
	return out
}

// GatherVarInt pads every rank's payload into its own disjoint block of a
// flat buffer (sized by the longest payload) and max-reduces; since blocks
// never overlap between ranks, each rank's block is untouched by anyone
// else's contribution (which is zero there) and the max reproduces it.
func (c MPI) GatherVarInt(local []int) [][]int {
	lens := c.AllGatherInt(len(local))
	n := c.Size()
	maxLen := 0
	for _, l := range lens {
		if l > maxLen {
			maxLen = l
		}
	}
	flat := make([]int, n*maxLen)
	base := c.Rank() * maxLen
	copy(flat[base:base+len(local)], local)
	out := make([]int, n*maxLen)
	mpi.IntAllReduceMax(out, flat)
	result := make([][]int, n)
	for r := 0; r < n; r++ {
		result[r] = append([]int(nil), out[r*maxLen:r*maxLen+lens[r]]...)
	}
	return result
}

// GatherVarFloat is GatherVarInt's sum-reduced float counterpart: a
// disjoint-block sum reconstructs each rank's values regardless of sign,
// since every non-owning rank contributes exactly zero in that block.
func (c MPI) GatherVarFloat(local []float64) [][]float64 {
	lens := c.AllGatherInt(len(local))
	n := c.Size()
	maxLen := 0
	for _, l := range lens {
		if l > maxLen {
			maxLen = l
		}
	}
	flat := make([]float64, n*maxLen)
	base := c.Rank() * maxLen
	copy(flat[base:base+len(local)], local)
	out := make([]float64, n*maxLen)
	mpi.AllReduceSum(out, flat)
	result := make([][]float64, n)
	for r := 0; r < n; r++ {
		result[r] = append([]float64(nil), out[r*maxLen:r*maxLen+lens[r]]...)
	}
	return result
}

// BroadcastFloat sum-reduces a vector that is all-zero on every rank
// except `from`, which reproduces that rank's vector everywhere else.
func (c MPI) BroadcastFloat(from int, vec []float64) []float64 {
	n := len(vec)
	src := vec
	if c.Rank() != from {
		src = make([]float64, n)
	}
	out := make([]float64, n)
	mpi.AllReduceSum(out, src)
	return out
}

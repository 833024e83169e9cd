// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package beam

// bMatrix returns the strain-displacement row at natural coordinate xi in
// [0,1] along the element, relating the local deformational vector
// d = (Δ, θ1, θ2) to the generalised strain (ε_axial, κ): axial strain is
// uniform (B0 = 1/L), curvature follows the standard two-node Hermitian
// natural-mode field (B1, B2), derived so that ∫ Bᵀ·D·B dx with constant D
// reproduces the classic 2x2 rotational stiffness block EI/L·[[4,2],[2,4]].
func bMatrix(xi, l float64) (b0, b1, b2 float64) {
	b0 = 1 / l
	b1 = (6*xi - 4) / l
	b2 = (6*xi - 2) / l
	return
}

// gaussPoint2 holds a single two-point Gauss-Legendre abscissa/weight pair
// mapped onto xi in [0,1] with weight scaled by the current length l.
type gaussPoint2 struct {
	Xi, W float64
}

// twoPointGauss returns the standard two-point rule on [0,1], weights
// scaled so that Σw = l (plastic element force/stiffness integration).
func twoPointGauss(l float64) [2]gaussPoint2 {
	const half = 0.5 / 1.7320508075688772 // 1/(2*sqrt(3))
	return [2]gaussPoint2{
		{Xi: 0.5 - half, W: 0.5 * l},
		{Xi: 0.5 + half, W: 0.5 * l},
	}
}

// geomStiffness3 returns the closed-form 3x3 geometric stiffness template
// for the local (Δ, θ1, θ2) dofs: zero on the row/column of Δ, and
// 4·n·l/30 on the rotational diagonal, −n·l/30 off it; l is the current
// length, not the initial one.
func geomStiffness3(n, l float64) (k [3][3]float64) {
	diag := 4 * n * l / 30
	off := -n * l / 30
	k[1][1], k[2][2] = diag, diag
	k[1][2], k[2][1] = off, off
	return
}

// matStiffness3 returns the closed-form local material stiffness for a
// constant generalised tangent d = [[D11,D12],[D12,D22]] (exact whenever
// D_t does not vary along the element, i.e. a Basic section or a single
// Gauss-point evaluation held fixed): k = L·∫0^1 Bᵀ·D·B dξ worked out in
// closed form from bMatrix's B0, B1, B2.
func matStiffness3(d [2][2]float64, l float64) (k [3][3]float64) {
	k[0][0] = d[0][0] / l
	k[0][1] = -d[0][1] / l
	k[1][0] = k[0][1]
	k[0][2] = d[0][1] / l
	k[2][0] = k[0][2]
	k[1][1] = 4 * d[1][1] / l
	k[2][2] = 4 * d[1][1] / l
	k[1][2] = 2 * d[1][1] / l
	k[2][1] = k[1][2]
	return
}

// localForceFromK computes f = K·d for a 3x3 local matrix, used wherever
// the generalised stress is linear in d and a closed-form shortcut avoids
// an explicit Gauss loop (nonlinear elastic element).
func localForceFromK(k [3][3]float64, d [3]float64) (f [3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			f[i] += k[i][j] * d[j]
		}
	}
	return
}

// globalFromLocal3 lifts a 3x3 local tangent through a 3x12 Jacobian T,
// K_global = Tᵀ·k_t·T (the corotational path, before k_ext is added).
func globalFromLocal3(t [3][12]float64, k [3][3]float64) (k12 [12][12]float64) {
	var tmp [3][12]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 12; j++ {
			var s float64
			for m := 0; m < 3; m++ {
				s += k[i][m] * t[m][j]
			}
			tmp[i][j] = s
		}
	}
	for i := 0; i < 12; i++ {
		for j := 0; j < 12; j++ {
			var s float64
			for m := 0; m < 3; m++ {
				s += t[m][i] * tmp[m][j]
			}
			k12[i][j] = s
		}
	}
	return
}

// globalForceFromLocal3 lifts a 3-component local force through Tᵀ into
// the element's 12-wide global resistance vector.
func globalForceFromLocal3(t [3][12]float64, f [3]float64) (f12 [12]float64) {
	for j := 0; j < 12; j++ {
		var s float64
		for m := 0; m < 3; m++ {
			s += t[m][j] * f[m]
		}
		f12[j] = s
	}
	return
}

// bRow returns the full 2x3 strain-displacement matrix at xi, used by the
// plastic element's per-Gauss-point integration (D_t varies along the
// element, so the matStiffness3 closed form no longer applies).
func bRow(xi, l float64) (b [2][3]float64) {
	b0, b1, b2 := bMatrix(xi, l)
	b[0][0] = b0
	b[1][1], b[1][2] = b1, b2
	return
}

func bTDB(d [2][2]float64, b [2][3]float64) (k [3][3]float64) {
	var db [2][3]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for m := 0; m < 2; m++ {
				s += d[i][m] * b[m][j]
			}
			db[i][j] = s
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for m := 0; m < 2; m++ {
				s += b[m][i] * db[m][j]
			}
			k[i][j] = s
		}
	}
	return
}

func bTSigma(n, m float64, b [2][3]float64) (f [3]float64) {
	for j := 0; j < 3; j++ {
		f[j] = b[0][j]*n + b[1][j]*m
	}
	return
}

func add12(a, b [12][12]float64) (out [12][12]float64) {
	for i := 0; i < 12; i++ {
		for j := 0; j < 12; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return
}

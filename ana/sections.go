// Copyright 2026 The Blaze Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import "math"

// CrossSection computes the area and moments of inertia of the shapes a
// frame model is usually built from
//
//   typ : rectangle
//         circle                             tw
//         I-beam                         -->| |<--
//                                    ___    | |     ___
//   ^ s       +-------+            tf |   ########   |
//   |         |       |              ---  ########   |
//   |         |       |                      ##      |
//   +----> r  |       | h = hei              ##      | h = hei
//             |       |                      ##      |
//             |       |              ---  ########   |
//             +-------+            tf_|_  ########  ---
//              b = wid                    b = wid
type CrossSection struct {

	// input
	Type string  // "rectangle", "I-beam" or "circle"
	Wid  float64 // width (b) if not circular
	Hei  float64 // height (h) if not circular
	Tf   float64 // flange thickness if I-beam
	Tw   float64 // web thickness if I-beam
	R    float64 // radius if circular

	// derived
	A   float64 // cross-sectional area
	Irr float64 // major moment of inertia (about r-axis, the bending axis of a planar frame)
	Iss float64 // minor moment of inertia (about s-axis)
}

// Init initialises the structure and computes the section properties.
func (o *CrossSection) Init(typ string, wid, hei, tf, tw, rad float64) {

	o.Type, o.Wid, o.Hei, o.Tf, o.Tw, o.R = typ, wid, hei, tf, tw, rad

	switch typ {
	case "rectangle":
		b, h := wid, hei
		o.A = b * h
		o.Irr = b * h * h * h / 12.0
		o.Iss = b * b * b * h / 12.0

	case "I-beam":
		b, h := wid, hei
		l := h - 2.0*tf
		o.A = b*h - l*(b-tw)
		o.Irr = b*h*h*h/12.0 - (b-tw)*l*l*l/12.0
		o.Iss = 2.0*tf*b*b*b/12.0 + l*tw*tw*tw/12.0

	case "circle":
		r2 := rad * rad
		o.A = math.Pi * r2
		o.Irr = math.Pi * r2 * r2 / 4.0
		o.Iss = o.Irr
	}
}

// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sound

import (
	"github.com/chewxy/math32"
)

// Peak returns the largest absolute sample value
func Peak(x []float32) float32 {
	var pk float32
	for _, v := range x {
		pk = math32.Max(pk, math32.Abs(v))
	}
	return pk
}

// PeakNormalize divides x in place by its peak when force is set or when
// the peak is above 1. Silence is left alone.
func PeakNormalize(x []float32, force bool) {
	pk := Peak(x)
	if pk == 0 || !(force || pk > 1) {
		return
	}
	for i := range x {
		x[i] /= pk
	}
}

// EncodeMuLaw maps -1..1 samples onto mu classes 0..mu-1 with mu-law companding
func EncodeMuLaw(x []float32, mu int) []int64 {
	m := float32(mu - 1)
	den := math32.Log(1 + m)
	out := make([]int64, len(x))
	for i, v := range x {
		fx := math32.Copysign(math32.Log(1+m*math32.Abs(v))/den, v)
		out[i] = int64(math32.Floor((fx+1)/2*m + 0.5))
	}
	return out
}

// FloatToLabel maps -1..1 samples linearly onto 0..2^bits-1
func FloatToLabel(x []float32, bits int) []int64 {
	top := float32(int64(1)<<uint(bits) - 1)
	out := make([]int64, len(x))
	for i, v := range x {
		l := (v + 1) * top / 2
		out[i] = int64(math32.Min(math32.Max(l, 0), top))
	}
	return out
}

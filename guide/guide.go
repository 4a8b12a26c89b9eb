// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package guide builds attention guide matrices for sequence to sequence
// TTS training: a hard 0/1 frame-to-phone assignment from known durations,
// and the soft diagonal penalty of guided attention (DCTTS).
package guide

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// DefaultG is the width of the diagonal band
const DefaultG = 0.2

var (
	// ErrEmpty is returned when a guide would have no rows or columns
	ErrEmpty = errors.New("guide: empty matrix")
	// ErrZeroDuration is returned under ZeroError for a phone with no frames
	ErrZeroDuration = errors.New("guide: zero duration phone")
)

// ZeroPolicy says what to do with a phone that has no frames and therefore
// an all zero column
type ZeroPolicy string

const (
	ZeroAccept ZeroPolicy = "accept"
	ZeroWarn   ZeroPolicy = "warn"
	ZeroError  ZeroPolicy = "error"
)

// ParseZeroPolicy validates a policy name
func ParseZeroPolicy(s string) (ZeroPolicy, error) {
	switch p := ZeroPolicy(s); p {
	case ZeroAccept, ZeroWarn, ZeroError:
		return p, nil
	}
	return "", fmt.Errorf("guide: unknown zero duration policy %q", s)
}

// Hard returns a sum(durs) x len(durs) matrix where phone i owns the frame
// rows [start, start+durs[i]) of column i. Every row has exactly one 1.
func Hard(durs []int, policy ZeroPolicy, log logrus.FieldLogger) (*mat.Dense, error) {
	nframes := 0
	for i, d := range durs {
		if d < 0 {
			return nil, fmt.Errorf("guide: negative duration %d at %d", d, i)
		}
		if d == 0 {
			switch policy {
			case ZeroError:
				return nil, fmt.Errorf("%w at %d", ErrZeroDuration, i)
			case ZeroWarn:
				if log != nil {
					log.WithField("phone", i).Warn("zero duration phone gives an empty guide column")
				}
			}
		}
		nframes += d
	}
	if nframes == 0 || len(durs) == 0 {
		return nil, ErrEmpty
	}

	a := mat.NewDense(nframes, len(durs), nil)
	start := 0
	for i, d := range durs {
		for f := start; f < start+d; f++ {
			a.Set(f, i, 1)
		}
		start += d
	}
	return a, nil
}

// Diagonal returns the rows x cols guided attention penalty
//
//	W[n][t] = 1 - exp(-(t/cols - n/rows)^2 / (2 g^2))
//
// which is 0 where t/cols == n/rows and rises toward 1 away from the diagonal.
func Diagonal(rows, cols int, g float64) (*mat.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %d x %d", ErrEmpty, rows, cols)
	}
	if g <= 0 {
		return nil, fmt.Errorf("guide: g must be positive, got %v", g)
	}
	w := mat.NewDense(rows, cols, nil)
	den := 2 * g * g
	for n := 0; n < rows; n++ {
		for t := 0; t < cols; t++ {
			x := float64(t)/float64(cols) - float64(n)/float64(rows)
			w.Set(n, t, 1-math.Exp(-x*x/den))
		}
	}
	return w, nil
}

// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package align carries phone durations from a forced alignment onto the
// phone sequence of a transcript.
//
// The two sequences disagree about silence: the aligner writes explicit
// silence phones (pau, sil, skip), while the transcript writes boundary
// markers such as <_START_> or <_END_>, and may have boundaries the
// aligner never saw. Every aligner silence must face a transcript
// boundary; extra transcript boundaries get zero duration.
package align

import (
	"fmt"
	"strings"

	"github.com/emer/ttsprep/speech"
)

// Duration is any numeric duration type
type Duration interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// MismatchError is returned when an aligner silence faces a transcript phone
type MismatchError struct {
	SourcePos int
	Source    string
	TargetPos int
	Target    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("align: silence %q at %d faces non-boundary %q at %d", e.Source, e.SourcePos, e.Target, e.TargetPos)
}

// LeftoverError is returned when the transcript runs out before the alignment
type LeftoverError struct {
	Consumed int
	Total    int
}

func (e *LeftoverError) Error() string {
	return fmt.Sprintf("align: %d of %d aligned phones left unconsumed", e.Total-e.Consumed, e.Total)
}

// Aligner matches forced alignment phones to transcript phones
type Aligner struct {
	Silence        map[string]bool `desc:"forced alignment labels that mark silence"`
	BoundaryPrefix string          `desc:"transcript phones starting with this prefix are boundary markers"`
}

// Defaults sets the silence symbols and the "<" boundary prefix
func (al *Aligner) Defaults() {
	al.SetSilence(speech.SilenceSymbols)
	al.BoundaryPrefix = "<"
}

// SetSilence replaces the silence symbols
func (al *Aligner) SetSilence(syms []string) {
	al.Silence = make(map[string]bool, len(syms))
	for _, s := range syms {
		al.Silence[s] = true
	}
}

// IsBoundary reports whether a transcript phone is a boundary marker
func (al *Aligner) IsBoundary(tok string) bool {
	return strings.HasPrefix(tok, al.BoundaryPrefix)
}

// Align returns one duration per dst phone. src and durs are the parallel
// forced alignment phones and durations.
func Align[D Duration](al *Aligner, src []string, durs []D, dst []string) ([]D, error) {
	if len(src) != len(durs) {
		return nil, fmt.Errorf("align: %d phones but %d durations", len(src), len(durs))
	}
	out := make([]D, 0, len(dst))
	m, d := 0, 0
	for m < len(src) && d < len(dst) {
		switch {
		case al.Silence[src[m]]:
			if !al.IsBoundary(dst[d]) {
				return nil, &MismatchError{SourcePos: m, Source: src[m], TargetPos: d, Target: dst[d]}
			}
			out = append(out, durs[m])
			m++
			d++
		case al.IsBoundary(dst[d]):
			out = append(out, 0)
			d++
		default:
			out = append(out, durs[m])
			m++
			d++
		}
	}
	if m != len(src) {
		return nil, &LeftoverError{Consumed: m, Total: len(src)}
	}
	// trailing punctuation and end markers
	for ; d < len(dst); d++ {
		out = append(out, 0)
	}
	return out, nil
}

// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package speech holds phone level timing data for one utterance
package speech

import "github.com/emer/ttsprep/timing"

// SilenceSymbols are the forced alignment labels that mark silence
var SilenceSymbols = []string{"pau", "sil", "skip"}

// Unit is one phone of an utterance
type Unit struct {
	Name  string      `desc:"the monophone, e.g. k, ae, pau"`
	Start timing.Tick `desc:"start time of this unit in 100ns ticks"`
	End   timing.Tick `desc:"end time of this unit in 100ns ticks"`
}

// Dur returns the length of the unit
func (u Unit) Dur() timing.Tick {
	return u.End - u.Start
}

// Sequence is the sequence of phones of one utterance
type Sequence struct {
	ID    string `desc:"utterance id, the label file name without extension"`
	Units []Unit `desc:"the units of the sequence"`
}

// Names returns the phone names in order
func (seq *Sequence) Names() []string {
	names := make([]string, len(seq.Units))
	for i, u := range seq.Units {
		names[i] = u.Name
	}
	return names
}

// Durations returns the phone durations in order
func (seq *Sequence) Durations() []timing.Tick {
	durs := make([]timing.Tick, len(seq.Units))
	for i, u := range seq.Units {
		durs[i] = u.Dur()
	}
	return durs
}

// Total returns the time from the start of the first unit to the end of the last
func (seq *Sequence) Total() timing.Tick {
	if len(seq.Units) == 0 {
		return 0
	}
	return seq.Units[len(seq.Units)-1].End - seq.Units[0].Start
}

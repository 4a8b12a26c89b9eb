// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timing rescales phone durations between frame rates.
//
// All times are integer Ticks of 100 ns, the unit HTK style label files are
// written in. Label steps (5 ms = 50000), mel frame shifts (12.5 ms = 125000)
// and coarse frame shifts (50 ms = 500000) are all whole numbers of ticks,
// so every divisibility check is exact.
package timing

import (
	"errors"
	"fmt"
	"math"
)

// Tick is a time in units of 100 ns
type Tick int64

// TicksPerMs is the number of ticks in one millisecond
const TicksPerMs = 10000

var (
	// ErrEmpty is returned for an empty duration sequence
	ErrEmpty = errors.New("timing: empty duration sequence")
	// ErrInvalid is returned for non-positive rates or negative durations
	ErrInvalid = errors.New("timing: invalid rate or duration")
	// ErrNotDivisible means an input value is not a multiple of its rate.
	// Callers skip the utterance.
	ErrNotDivisible = errors.New("timing: duration not divisible by rate")
	// ErrTotalExceeded means the converted durations already run past the target total
	ErrTotalExceeded = errors.New("timing: converted total exceeds target total")
	// ErrTotalRemainder means the shortfall to the target is not a multiple of the output rate
	ErrTotalRemainder = errors.New("timing: target shortfall not divisible by output rate")
)

// FromMs converts milliseconds to ticks. The value must be a whole number of ticks.
func FromMs(ms float64) (Tick, error) {
	t := ms * TicksPerMs
	r := math.Round(t)
	if math.Abs(t-r) > 1e-6 {
		return 0, fmt.Errorf("%w: %v ms is not a whole number of 100ns ticks", ErrNotDivisible, ms)
	}
	return Tick(r), nil
}

// Ms returns the tick value in milliseconds
func (t Tick) Ms() float64 {
	return float64(t) / TicksPerMs
}

// Sum returns the total of durs
func Sum(durs []Tick) Tick {
	var s Tick
	for _, d := range durs {
		s += d
	}
	return s
}

// IsPrecondition reports whether err is one of the target total failures,
// which indicate bad configuration or data rather than a bad utterance.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrTotalExceeded) || errors.Is(err, ErrTotalRemainder)
}

// ToFrames divides every duration by frame, which must divide each exactly
func ToFrames(durs []Tick, frame Tick) ([]int, error) {
	if frame <= 0 {
		return nil, ErrInvalid
	}
	frames := make([]int, len(durs))
	for i, d := range durs {
		if d%frame != 0 {
			return nil, fmt.Errorf("%w: duration %d at %d by frame %d", ErrNotDivisible, d, i, frame)
		}
		frames[i] = int(d / frame)
	}
	return frames, nil
}

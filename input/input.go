// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package input relates the sample based framing of the audio to the
// millisecond based framing of the labels.
package input

import (
	"fmt"
	"math"
)

// Params describes how the waveform is cut into mel frames
type Params struct {
	SampleRate int `desc:"rate of sampling in the sound input (e.g., 22050)"`
	HopLength  int `desc:"number of samples to step input by"`
	WinLength  int `desc:"number of samples in each analysis window"`
}

// HopMs is the frame shift in milliseconds
func (in *Params) HopMs() float32 {
	return SamplesToMSec(in.HopLength, in.SampleRate)
}

// WinMs is the analysis window in milliseconds
func (in *Params) WinMs() float32 {
	return SamplesToMSec(in.WinLength, in.SampleRate)
}

// CheckFrameShift returns an error if frameShiftMs is more than one sample
// away from the hop length
func (in *Params) CheckFrameShift(frameShiftMs float32) error {
	if in.SampleRate <= 0 {
		return fmt.Errorf("input: sample rate must be positive, got %d", in.SampleRate)
	}
	shift := MSecToSamples(frameShiftMs, in.SampleRate)
	if d := shift - in.HopLength; d > 1 || d < -1 {
		return fmt.Errorf("input: frame shift %vms is not the hop of %d samples (%vms) at %d Hz",
			frameShiftMs, in.HopLength, in.HopMs(), in.SampleRate)
	}
	return nil
}

// MSecToSamples converts milliseconds to samples, in terms of sample_rate
func MSecToSamples(ms float32, rate int) int {
	return int(math.Round(float64(ms) * 0.001 * float64(rate)))
}

// SamplesToMSec converts samples to milliseconds, in terms of sample_rate
func SamplesToMSec(samples int, rate int) float32 {
	return 1000.0 * float32(samples) / float32(rate)
}

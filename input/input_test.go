// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package input

import "testing"

func TestConversions(t *testing.T) {
	if n := MSecToSamples(12.5, 16000); n != 200 {
		t.Errorf("MSecToSamples = %d want 200", n)
	}
	if ms := SamplesToMSec(200, 16000); ms != 12.5 {
		t.Errorf("SamplesToMSec = %v want 12.5", ms)
	}
}

func TestCheckFrameShift(t *testing.T) {
	cases := []struct {
		in    Params
		shift float32
		ok    bool
	}{
		{Params{SampleRate: 22050, HopLength: 275, WinLength: 1100}, 12.5, true},
		{Params{SampleRate: 16000, HopLength: 200, WinLength: 400}, 12.5, true},
		{Params{SampleRate: 16000, HopLength: 160, WinLength: 400}, 12.5, false},
		{Params{SampleRate: 0, HopLength: 160}, 10, false},
	}
	for i, c := range cases {
		err := c.in.CheckFrameShift(c.shift)
		if (err == nil) != c.ok {
			t.Errorf("case %d: got %v want ok=%v", i, err, c.ok)
		}
	}
	in := Params{SampleRate: 16000, HopLength: 200, WinLength: 400}
	if in.WinMs() != 25 {
		t.Errorf("WinMs = %v", in.WinMs())
	}
}

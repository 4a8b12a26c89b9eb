// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sound

import (
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
)

func TestWaveRoundTrip(t *testing.T) {
	src := &Wave{Buf: &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 16000},
		SourceBitDepth: 16,
		Data:           []int{0, 100, 16383, -200, -32767, 300, 32767, 0},
	}}
	fn := filepath.Join(t.TempDir(), "a.wav")
	if err := src.WriteWave(fn); err != nil {
		t.Fatal(err)
	}

	var snd Wave
	if err := snd.Load(fn); err != nil {
		t.Fatal(err)
	}
	if snd.SampleRate() != 16000 || snd.Channels() != 2 || snd.Frames() != 4 {
		t.Fatalf("rate %d channels %d frames %d", snd.SampleRate(), snd.Channels(), snd.Frames())
	}
	left, err := snd.Floats(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{0, 16383.0 / 32767, -1, 1}
	for i, v := range want {
		if d := left[i] - v; d > 1e-6 || d < -1e-6 {
			t.Errorf("left[%d] = %v want %v", i, left[i], v)
		}
	}
	if _, err := snd.Floats(2); err == nil {
		t.Error("expected error for channel out of range")
	}
}

func TestWaveNotLoaded(t *testing.T) {
	var snd Wave
	if snd.SampleRate() != 0 || snd.Channels() != 0 {
		t.Error("empty wave should report zero rate and channels")
	}
	if _, err := snd.Floats(0); err != ErrNoSound {
		t.Errorf("got %v want ErrNoSound", err)
	}
	if err := snd.Load(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPeakNormalize(t *testing.T) {
	x := []float32{0.25, -0.5}
	PeakNormalize(x, false)
	if x[1] != -0.5 {
		t.Errorf("normalized without force or clipping: %v", x)
	}
	PeakNormalize(x, true)
	if x[0] != 0.5 || x[1] != -1 {
		t.Errorf("got %v", x)
	}
	y := []float32{2, -1}
	PeakNormalize(y, false)
	if y[0] != 1 || y[1] != -0.5 {
		t.Errorf("peak above 1 not normalized: %v", y)
	}
	z := []float32{0, 0}
	PeakNormalize(z, true)
	if z[0] != 0 {
		t.Errorf("silence changed: %v", z)
	}
}

func TestEncodeMuLaw(t *testing.T) {
	got := EncodeMuLaw([]float32{-1, 0, 1}, 512)
	if got[0] != 0 || got[1] != 256 || got[2] != 511 {
		t.Errorf("got %v", got)
	}
	x := []float32{-0.9, -0.3, -0.01, 0.01, 0.3, 0.9}
	enc := EncodeMuLaw(x, 256)
	for i := 1; i < len(enc); i++ {
		if enc[i] < enc[i-1] {
			t.Errorf("not monotonic at %d: %v", i, enc)
		}
	}
}

func TestFloatToLabel(t *testing.T) {
	got := FloatToLabel([]float32{-1, 0, 1, 1.5}, 9)
	if got[0] != 0 || got[1] != 255 || got[2] != 511 || got[3] != 511 {
		t.Errorf("got %v", got)
	}
}

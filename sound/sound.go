// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sound

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNoSound is returned by accessors of a Wave that has not been loaded
var ErrNoSound = errors.New("sound: no sound loaded")

// Wave is a decoded PCM wav file
type Wave struct {
	Buf *audio.IntBuffer `inactive:"+"`
}

// Load loads the sound file and decodes it
func (snd *Wave) Load(fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return fmt.Errorf("sound: %s is not a valid wav file", fn)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("sound: decoding %s: %w", fn, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return fmt.Errorf("sound: %s has no channels", fn)
	}
	snd.Buf = buf
	return nil
}

// WriteWave encodes the signal data and writes it to file using the sample
// rate and bit depth of the buffer
func (snd *Wave) WriteWave(fn string) error {
	if snd.Buf == nil {
		return ErrNoSound
	}
	out, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer out.Close()

	PCM := 1
	e := wav.NewEncoder(out, snd.SampleRate(), snd.Buf.SourceBitDepth, snd.Channels(), PCM)
	if err = e.Write(snd.Buf); err != nil {
		return fmt.Errorf("sound: encoding %s: %w", fn, err)
	}
	return e.Close()
}

// SampleRate returns the sample rate of the sound or 0 if nothing is loaded
func (snd *Wave) SampleRate() int {
	if snd == nil || snd.Buf == nil {
		return 0
	}
	return snd.Buf.Format.SampleRate
}

// Channels returns the number of channels in the wav data or 0 if nothing is loaded
func (snd *Wave) Channels() int {
	if snd == nil || snd.Buf == nil {
		return 0
	}
	return snd.Buf.Format.NumChannels
}

// Frames returns the number of samples per channel
func (snd *Wave) Frames() int {
	if snd == nil || snd.Buf == nil {
		return 0
	}
	return snd.Buf.NumFrames()
}

// Floats returns one channel as floats normalized to -1..1
func (snd *Wave) Floats(channel int) ([]float32, error) {
	if snd == nil || snd.Buf == nil {
		return nil, ErrNoSound
	}
	nch := snd.Channels()
	if channel < 0 || channel >= nch {
		return nil, fmt.Errorf("sound: channel %d out of range, have %d", channel, nch)
	}
	n := snd.Frames()
	out := make([]float32, n)
	for i, idx := 0, channel; i < n; i, idx = i+1, idx+nch {
		out[i] = snd.FloatAtIdx(idx)
	}
	return out, nil
}

// FloatAtIdx returns the sample at interleaved index idx scaled by the bit depth
func (snd *Wave) FloatAtIdx(idx int) float32 {
	v := float32(snd.Buf.Data[idx])
	switch snd.Buf.SourceBitDepth {
	case 32:
		return v / float32(0x7FFFFFFF)
	case 24:
		return v / float32(0x7FFFFF)
	case 16:
		return v / float32(0x7FFF)
	case 8:
		// 8 bit wav is unsigned around 128
		return (v - 128) / float32(0x7F)
	}
	return 0
}

// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mel

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"

	"github.com/emer/ttsprep/dft"
)

// FilterBank contains mel frequency feature bank sampling parameters
type FilterBank struct {
	NFilters int     `def:"80" desc:"number of Mel frequency filters to compute"`
	LoHz     float64 `def:"40" desc:"low frequency end of mel frequency spectrum"`
	HiHz     float64 `def:"11025" desc:"high frequency end of mel frequency spectrum -- must be <= sample_rate / 2 (i.e., less than the Nyquist frequency)"`
	LogMin   float64 `def:"-11.5" desc:"minimum value a log can produce -- puts a lower limit on log output"`
}

// Defaults initializes FBank values
func (mfb *FilterBank) Defaults() {
	mfb.NFilters = 80
	mfb.LoHz = 40
	mfb.HiHz = 11025
	mfb.LogMin = -11.5
}

// Params
type Params struct {
	FBank      FilterBank      `view:"inline"`
	HopLength  int             `desc:"frame shift in samples"`
	SampleRate int             `desc:"sample rate the filters were built for"`
	Dft        dft.Params      `view:"no-inline"`
	BinPts     []int           `view:"-" desc:" mel scale points in fft bins"`
	HzPts      []float64       `view:"-" desc:" mel scale points in hz"`
	Filters    etensor.Float64 `view:"no-inline" desc:" [NFilters][width] filter weights, starting at BinPts[f]"`
}

// Defaults
func (mel *Params) Defaults() {
	mel.FBank.Defaults()
	mel.HopLength = 275
	mel.SampleRate = 22050
}

// Init sets up the dft and computes the filters. Call after non-default values are set.
func (mel *Params) Init(nfft, winLength int) error {
	if mel.HopLength <= 0 || mel.SampleRate <= 0 || mel.FBank.NFilters <= 0 {
		return errors.New("mel: hop length, sample rate and filter count must be positive")
	}
	if mel.FBank.HiHz > float64(mel.SampleRate)/2 || mel.FBank.LoHz >= mel.FBank.HiHz {
		return fmt.Errorf("mel: frequency range %v..%v invalid for rate %d", mel.FBank.LoHz, mel.FBank.HiHz, mel.SampleRate)
	}
	if err := mel.Dft.Initialize(nfft, winLength); err != nil {
		return err
	}
	mel.InitFilters(nfft, mel.SampleRate)
	return nil
}

// InitFilters computes the triangular filter weights
func (mel *Params) InitFilters(dftSize int, sampleRate int) {
	nf := mel.FBank.NFilters
	mel.BinPts = make([]int, nf+2) // plus 2 because we need end points to create the right number of bins
	mel.HzPts = make([]float64, nf+2)

	hiMel := FreqToMel(mel.FBank.HiHz)
	loMel := FreqToMel(mel.FBank.LoHz)
	incr := (hiMel - loMel) / float64(nf+1)
	for i := range mel.BinPts {
		hz := MelToFreq(loMel + float64(i)*incr)
		mel.HzPts[i] = hz
		mel.BinPts[i] = FreqToBin(hz, float64(dftSize), float64(sampleRate))
	}

	width := 1
	for f := 0; f < nf; f++ {
		if w := mel.BinPts[f+2] - mel.BinPts[f] + 1; w > width {
			width = w
		}
	}
	mel.Filters.SetShape([]int{nf, width}, nil, []string{"filter", "bin"})
	mel.Filters.SetZeros()

	for f := 0; f < nf; f++ {
		binMin, binCtr, binMax := mel.BinPts[f], mel.BinPts[f+1], mel.BinPts[f+2]
		for bin := binMin; bin <= binMax; bin++ {
			var fval float64
			switch {
			case bin == binCtr:
				fval = 1
			case bin < binCtr:
				fval = float64(bin-binMin) / float64(binCtr-binMin)
			default:
				fval = float64(binMax-bin) / float64(binMax-binCtr)
			}
			mel.Filters.Set([]int{f, bin - binMin}, fval)
		}
	}
}

// Frames returns the number of frames Spectrogram produces for n samples
func (mel *Params) Frames(n int) int {
	return n/mel.HopLength + 1
}

// Spectrogram returns the log mel energies of signal as a [frames][NFilters]
// tensor. Frame i is centered on sample i*HopLength; the signal is zero
// padded by NFFT/2 on both sides.
func (mel *Params) Spectrogram(signal []float32) *etensor.Float32 {
	nfft := mel.Dft.NFFT
	half := nfft / 2
	padded := make([]float32, len(signal)+nfft)
	copy(padded[half:], signal)

	nframes := mel.Frames(len(signal))
	out := etensor.NewFloat32([]int{nframes, mel.FBank.NFilters}, nil, []string{"frame", "mel"})
	power := make([]float64, mel.Dft.SizeHalf)
	for i := 0; i < nframes; i++ {
		start := i * mel.HopLength
		mel.Dft.Power(padded[start:start+nfft], power)
		mel.FilterDft(i, power, out)
	}
	return out
}

// FilterDft applies the mel filters to the power of one frame and stores
// the log energies in row step of out
func (mel *Params) FilterDft(step int, power []float64, out *etensor.Float32) {
	for flt := 0; flt < mel.FBank.NFilters; flt++ {
		minBin, maxBin := mel.BinPts[flt], mel.BinPts[flt+2]
		sum := 0.0
		for bin := minBin; bin <= maxBin && bin < len(power); bin++ {
			sum += mel.Filters.Value([]int{flt, bin - minBin}) * power[bin]
		}
		val := mel.FBank.LogMin
		if sum > 0 {
			val = math.Max(math.Log(sum), mel.FBank.LogMin)
		}
		out.Set([]int{step, flt}, float32(val))
	}
}

// ToDense copies a 2D tensor into a gonum matrix
func ToDense(tsr *etensor.Float32) *mat.Dense {
	rows, cols := tsr.Dim(0), tsr.Dim(1)
	data := make([]float64, len(tsr.Values))
	for i, v := range tsr.Values {
		data[i] = float64(v)
	}
	return mat.NewDense(rows, cols, data)
}

// FreqToMel converts frequency to mel scale
func FreqToMel(freq float64) float64 {
	return 1127.0 * math.Log(1.0+freq/700.0) // 1127 because we are using natural log
}

// MelToFreq converts mel scale to frequency
func MelToFreq(mel float64) float64 {
	return 700.0 * (math.Exp(mel/1127.0) - 1.0)
}

// FreqToBin converts frequency into FFT bin number, using parameters of number of FFT bins and sample rate
func FreqToBin(freq, nFft, sampleRate float64) int {
	return int(math.Floor(((nFft + 1) * freq) / sampleRate))
}

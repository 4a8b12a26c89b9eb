// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dft

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Params holds the windowed fourier transform of one analysis frame
type Params struct {
	NFFT      int          `desc:"fft size in samples"`
	WinLength int          `desc:"hann window length in samples, centered in the fft frame"`
	SizeHalf  int          `inactive:"+" desc:"number of power bins, NFFT/2 + 1"`
	Window    []float64    `inactive:"+" desc:"window weights, NFFT long, zero outside the hann window"`
	Fft       []complex128 `inactive:"+" desc:"fft output of the last frame"`
	fft       *fourier.FFT
	frame     []float64
}

// Initialize allocates buffers and computes the window
func (dft *Params) Initialize(nfft, winLength int) error {
	if nfft <= 0 || winLength <= 0 || winLength > nfft {
		return fmt.Errorf("dft: bad sizes nfft %d window %d", nfft, winLength)
	}
	dft.NFFT = nfft
	dft.WinLength = winLength
	dft.SizeHalf = nfft/2 + 1
	dft.Window = make([]float64, nfft)
	off := (nfft - winLength) / 2
	for i := 0; i < winLength; i++ {
		// periodic hann, as used for spectral analysis
		dft.Window[off+i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(winLength))
	}
	dft.fft = fourier.NewFFT(nfft)
	dft.frame = make([]float64, nfft)
	dft.Fft = make([]complex128, dft.SizeHalf)
	return nil
}

// Power windows the NFFT samples of frame and writes the power of each
// bin up to the nyquist frequency into power, which must hold SizeHalf values
func (dft *Params) Power(frame []float32, power []float64) {
	for i := range dft.frame {
		dft.frame[i] = float64(frame[i]) * dft.Window[i]
	}
	dft.Fft = dft.fft.Coefficients(dft.Fft, dft.frame)
	for k := 0; k < dft.SizeHalf; k++ {
		rl := real(dft.Fft[k])
		im := imag(dft.Fft[k])
		power[k] = rl*rl + im*im
	}
}

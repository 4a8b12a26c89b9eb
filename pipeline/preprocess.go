// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline runs the preparation steps over a whole corpus:
// feature extraction, durations with hard attention guides, and diagonal
// attention guides. A failing utterance is logged and skipped; only
// configuration and precondition errors stop a run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/emer/etable/etensor"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/emer/ttsprep/config"
	"github.com/emer/ttsprep/dataset"
	"github.com/emer/ttsprep/input"
	"github.com/emer/ttsprep/mel"
	"github.com/emer/ttsprep/sound"
)

// Output directories inside the data path
const (
	MelDir   = "mel"
	QuantDir = "quant"
)

// Extractor computes the features of one wav file
type Extractor struct {
	Audio config.Audio
	Mel   mel.Params
}

// NewExtractor sets up the mel filters for p
func NewExtractor(p *config.Params) (*Extractor, error) {
	ex := &Extractor{Audio: p.Audio}
	ex.Mel.Defaults()
	ex.Mel.SampleRate = p.Audio.SampleRate
	ex.Mel.HopLength = p.Mel.HopLength
	ex.Mel.FBank.NFilters = p.Mel.NMels
	ex.Mel.FBank.LoHz = p.Mel.FMin
	ex.Mel.FBank.HiHz = p.Mel.FMax
	ex.Mel.FBank.LogMin = p.Mel.LogMin
	if err := ex.Mel.Init(p.Mel.NFFT, p.Mel.WinLength); err != nil {
		return nil, err
	}
	return ex, nil
}

// Clone returns a copy that shares the filters but owns its fft buffers,
// for use from another goroutine
func (ex *Extractor) Clone() (*Extractor, error) {
	c := *ex
	if err := c.Mel.Dft.Initialize(ex.Mel.Dft.NFFT, ex.Mel.Dft.WinLength); err != nil {
		return nil, err
	}
	return &c, nil
}

// Convert loads fn and returns its [frames][mels] spectrogram and quantized waveform
func (ex *Extractor) Convert(fn string) (*etensor.Float32, []int64, error) {
	var snd sound.Wave
	if err := snd.Load(fn); err != nil {
		return nil, nil, err
	}
	if snd.SampleRate() != ex.Audio.SampleRate {
		return nil, nil, fmt.Errorf("sample rate %d, want %d", snd.SampleRate(), ex.Audio.SampleRate)
	}
	y, err := snd.Floats(0)
	if err != nil {
		return nil, nil, err
	}
	sound.PeakNormalize(y, ex.Audio.PeakNorm)

	var quant []int64
	switch ex.Audio.VocMode {
	case "RAW":
		if ex.Audio.MuLaw {
			quant = sound.EncodeMuLaw(y, 1<<uint(ex.Audio.Bits))
		} else {
			quant = sound.FloatToLabel(y, ex.Audio.Bits)
		}
	case "MOL":
		quant = sound.FloatToLabel(y, 16)
	default:
		return nil, nil, fmt.Errorf("unknown voc mode %q", ex.Audio.VocMode)
	}
	return ex.Mel.Spectrogram(y), quant, nil
}

// Process converts fn and saves mel/<id>.npy and quant/<id>.npy under
// dataPath. It returns the number of mel frames.
func (ex *Extractor) Process(dataPath, fn string) (int, error) {
	id := dataset.ID(fn)
	spec, quant, err := ex.Convert(fn)
	if err != nil {
		return 0, err
	}
	if err := dataset.SaveDense(dataset.NpyPath(filepath.Join(dataPath, MelDir), id), mel.ToDense(spec)); err != nil {
		return 0, err
	}
	if err := dataset.SaveInt64s(dataset.NpyPath(filepath.Join(dataPath, QuantDir), id), quant); err != nil {
		return 0, err
	}
	return spec.Dim(0), nil
}

// Preprocess extracts features from every ext file under wavPath in
// parallel and writes the manifest. Files that fail are logged and left
// out of the manifest.
func Preprocess(ctx context.Context, p *config.Params, wavPath, ext string, log logrus.FieldLogger) (*dataset.Manifest, error) {
	files, err := dataset.Files(wavPath, ext)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %q: point wav_path at your dataset or use --path", ext, wavPath)
	}
	ex, err := NewExtractor(p)
	if err != nil {
		return nil, err
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	framing := input.Params{SampleRate: p.Audio.SampleRate, HopLength: p.Mel.HopLength, WinLength: p.Mel.WinLength}
	log.WithFields(logrus.Fields{
		"files":       len(files),
		"sample_rate": p.Audio.SampleRate,
		"bits":        p.Audio.Bits,
		"mu_law":      p.Audio.MuLaw,
		"hop_ms":      framing.HopMs(),
		"win_ms":      framing.WinMs(),
		"workers":     workers,
	}).Info("preprocessing")

	mf := &dataset.Manifest{}
	var mu sync.Mutex
	done := 0

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, fn := range files {
		if ctx.Err() != nil {
			break
		}
		fn := fn
		g.Go(func() error {
			wex, err := ex.Clone()
			if err != nil {
				return err
			}
			frames, err := wex.Process(p.DataPath, fn)
			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				log.WithField("file", fn).WithError(err).Warn("skipping file")
				return nil
			}
			mf.Add(dataset.ID(fn), frames)
			log.WithFields(logrus.Fields{"file": fn, "frames": frames}).Debugf("%d/%d", done, len(files))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mf.Sort()
	if err := os.MkdirAll(p.DataPath, 0o755); err != nil {
		return nil, err
	}
	if err := mf.Save(p.Path(dataset.ManifestFile)); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"written": len(mf.Entries), "failed": len(files) - len(mf.Entries)}).Info("preprocessing done")
	return mf, nil
}

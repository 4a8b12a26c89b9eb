// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/emer/ttsprep/align"
	"github.com/emer/ttsprep/config"
	"github.com/emer/ttsprep/dataset"
	"github.com/emer/ttsprep/guide"
	"github.com/emer/ttsprep/input"
	"github.com/emer/ttsprep/speech/label"
	"github.com/emer/ttsprep/timing"
	"github.com/emer/ttsprep/transcript"
)

// DurationsReport is the report file name inside the data path
const DurationsReport = "durations_report.tsv"

// durationStep holds what every utterance of a Durations run shares
type durationStep struct {
	labelFormat    label.Format
	statesPerPhone int
	melDir         string
	guideDir       string
	labelRate      timing.Tick
	frameShift     timing.Tick
	policy         guide.ZeroPolicy
	aligner        *align.Aligner
}

func newDurationStep(p *config.Params) (*durationStep, error) {
	ds := &durationStep{
		labelFormat:    label.Format(p.Durations.LabelFormat),
		statesPerPhone: p.Durations.StatesPerPhone,
		melDir:         p.Path(p.Durations.MelDir),
		guideDir:       p.Path(p.Durations.GuideDir),
		aligner:        &align.Aligner{BoundaryPrefix: p.Durations.BoundaryPrefix},
	}
	ds.aligner.SetSilence(p.Durations.SilenceSymbols)
	var err error
	if ds.labelRate, err = p.LabelRate(); err != nil {
		return nil, err
	}
	if ds.frameShift, err = p.FrameShift(); err != nil {
		return nil, err
	}
	if ds.policy, err = guide.ParseZeroPolicy(p.Durations.ZeroDuration); err != nil {
		return nil, err
	}
	return ds, nil
}

// utterance computes the frame durations of the transcript phones of one
// label file and saves its hard guide. It returns the mel frame count.
func (ds *durationStep) utterance(fn string, recs map[string]*transcript.Record, log logrus.FieldLogger) (*transcript.Record, int, error) {
	seq, err := label.LoadSequence(fn, ds.labelFormat, ds.statesPerPhone)
	if err != nil {
		return nil, 0, err
	}
	rec, ok := recs[seq.ID]
	if !ok {
		return nil, 0, fmt.Errorf("no transcript entry for %s", seq.ID)
	}
	melFeat, err := dataset.LoadDense(dataset.NpyPath(ds.melDir, seq.ID))
	if err != nil {
		return rec, 0, err
	}
	nframes, _ := melFeat.Dims()
	target := timing.Tick(nframes) * ds.frameShift
	log.WithFields(logrus.Fields{"label_ms": seq.Total().Ms(), "mel_ms": target.Ms()}).Debug("utterance length")

	ticks, err := timing.ConvertTo(seq.Durations(), ds.labelRate, ds.frameShift, target)
	if err != nil {
		return rec, nframes, err
	}
	frames, err := timing.ToFrames(ticks, ds.frameShift)
	if err != nil {
		return rec, nframes, err
	}
	durs, err := align.Align(ds.aligner, seq.Names(), frames, rec.Phones)
	if err != nil {
		return rec, nframes, err
	}
	a, err := guide.Hard(durs, ds.policy, log)
	if err != nil {
		return rec, nframes, err
	}
	if err := dataset.SaveDense(dataset.NpyPath(ds.guideDir, seq.ID), a); err != nil {
		return rec, nframes, err
	}
	rec.Durations = durs
	return rec, nframes, nil
}

// Durations converts the forced alignment of every label file to mel frame
// durations per transcript phone, saves a hard attention guide per
// utterance and writes the transcript with durations. Utterances that fail
// are logged, reported and left without durations. A converted total that
// cannot meet the mel length stops the run.
func Durations(ctx context.Context, p *config.Params, log logrus.FieldLogger) (*dataset.Report, error) {
	labelDir := p.Path(p.Durations.LabelDir)
	for _, dir := range []string{labelDir, p.Path(p.Durations.MelDir)} {
		if err := dataset.RequireDir(dir); err != nil {
			return nil, err
		}
	}
	ds, err := newDurationStep(p)
	if err != nil {
		return nil, err
	}
	framing := input.Params{SampleRate: p.Audio.SampleRate, HopLength: p.Mel.HopLength, WinLength: p.Mel.WinLength}
	if err := framing.CheckFrameShift(float32(p.Durations.FrameShiftMs)); err != nil {
		log.WithError(err).Warn("label frames and mel frames drift apart")
	}
	recs, err := transcript.ReadFile(p.Path(p.Durations.TranscriptIn))
	if err != nil {
		return nil, err
	}
	// only durations computed in this run are written out
	for _, rec := range recs {
		rec.Durations = nil
	}
	ents, err := os.ReadDir(labelDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(ds.guideDir, 0o755); err != nil {
		return nil, err
	}

	rp := dataset.NewReport()
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fn := filepath.Join(labelDir, ent.Name())
		id := dataset.ID(fn)
		ulog := log.WithField("utterance", id)
		ulog.Debug("processing")

		rec, nframes, err := ds.utterance(fn, recs, ulog)
		nphones := 0
		if rec != nil {
			nphones = len(rec.Phones)
		}
		if err != nil {
			if timing.IsPrecondition(err) {
				return nil, fmt.Errorf("%s: %w", id, err)
			}
			logSkip(ulog, err)
			rp.Add(id, nphones, nframes, dataset.Skipped, err.Error())
			continue
		}
		ulog.WithField("frames", nframes).Debug("created attention guide")
		rp.Add(id, nphones, nframes, dataset.OK, "")
	}

	out := p.Path(p.Durations.TranscriptOut)
	n, err := transcript.WriteFile(out, recs, true, log)
	if err != nil {
		return rp, err
	}
	log.WithFields(logrus.Fields{"file": out, "records": n, "skipped": rp.Count(dataset.Skipped)}).Info("wrote transcript")
	return rp, rp.SaveTSV(p.Path(DurationsReport))
}

// logSkip logs why an utterance was skipped, with the conflicting tokens
// for alignment mismatches
func logSkip(log logrus.FieldLogger, err error) {
	var me *align.MismatchError
	if errors.As(err, &me) {
		log = log.WithFields(logrus.Fields{"label": me.Source, "phone": me.Target})
	}
	log.WithError(err).Warn("skipping utterance")
}

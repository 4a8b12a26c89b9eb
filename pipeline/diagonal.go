// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/emer/ttsprep/config"
	"github.com/emer/ttsprep/dataset"
	"github.com/emer/ttsprep/guide"
	"github.com/emer/ttsprep/transcript"
)

// DiagonalReport is the report file name inside the data path
const DiagonalReport = "diagonal_report.tsv"

// DiagonalGuides writes a phones x mel frames diagonal guide for every
// utterance found both in the manifest and in the transcript. Utterances
// are matched by id.
func DiagonalGuides(ctx context.Context, p *config.Params, log logrus.FieldLogger) (*dataset.Report, error) {
	mf, err := dataset.LoadManifest(p.Path(dataset.ManifestFile))
	if err != nil {
		return nil, err
	}
	recs, err := transcript.ReadFile(p.Path(p.Durations.TranscriptIn))
	if err != nil {
		return nil, err
	}
	utts, missing := dataset.Join(mf, recs)
	for _, id := range missing {
		log.WithField("utterance", id).Warn("not in both manifest and transcript")
	}
	if len(utts) == 0 {
		return nil, errors.New("no utterance is in both the manifest and the transcript")
	}
	dir := p.Path(p.Diagonal.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	rp := dataset.NewReport()
	for _, id := range dataset.SortedIDs(utts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := utts[id]
		nphones := len(u.Record.Phones)
		ulog := log.WithField("utterance", id)
		w, err := guide.Diagonal(nphones, u.MelFrames, p.Diagonal.G)
		if err == nil {
			err = dataset.SaveDense(dataset.NpyPath(dir, id), w)
		}
		if err != nil {
			ulog.WithError(err).Warn("skipping utterance")
			rp.Add(id, nphones, u.MelFrames, dataset.Skipped, err.Error())
			continue
		}
		rp.Add(id, nphones, u.MelFrames, dataset.OK, "")
	}
	log.WithFields(logrus.Fields{"dir": dir, "written": rp.Count(dataset.OK)}).Info("created diagonal guides")
	return rp, rp.SaveTSV(p.Path(DiagonalReport))
}

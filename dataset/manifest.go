// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/emer/ttsprep/transcript"
)

// ManifestFile is the manifest name inside the data path
const ManifestFile = "dataset.yaml"

// Entry is one preprocessed utterance
type Entry struct {
	ID     string `yaml:"id"`
	Frames int    `yaml:"frames"`
}

// Manifest lists the utterances written by preprocessing
type Manifest struct {
	Entries []Entry `yaml:"entries"`
}

// Add appends an entry
func (mf *Manifest) Add(id string, frames int) {
	mf.Entries = append(mf.Entries, Entry{ID: id, Frames: frames})
}

// Sort orders the entries by id
func (mf *Manifest) Sort() {
	sort.Slice(mf.Entries, func(i, j int) bool { return mf.Entries[i].ID < mf.Entries[j].ID })
}

// Frames maps id to mel frame count
func (mf *Manifest) Frames() map[string]int {
	fr := make(map[string]int, len(mf.Entries))
	for _, e := range mf.Entries {
		fr[e.ID] = e.Frames
	}
	return fr
}

// Save writes the manifest as YAML
func (mf *Manifest) Save(fn string) error {
	b, err := yaml.Marshal(mf)
	if err != nil {
		return err
	}
	return os.WriteFile(fn, b, 0o644)
}

// LoadManifest reads a manifest written by Save
func LoadManifest(fn string) (*Manifest, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	mf := &Manifest{}
	if err := yaml.Unmarshal(b, mf); err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", fn, err)
	}
	return mf, nil
}

// Utterance joins everything known about one utterance
type Utterance struct {
	ID        string
	MelFrames int
	Record    *transcript.Record
}

// Join matches manifest entries and transcript records by id. Ids found on
// only one side are returned sorted in missing.
func Join(mf *Manifest, recs map[string]*transcript.Record) (utts map[string]*Utterance, missing []string) {
	utts = make(map[string]*Utterance)
	frames := mf.Frames()
	for id, n := range frames {
		rec, ok := recs[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		utts[id] = &Utterance{ID: id, MelFrames: n, Record: rec}
	}
	for id := range recs {
		if _, ok := frames[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return utts, missing
}

// SortedIDs returns the keys of utts in order
func SortedIDs(utts map[string]*Utterance) []string {
	ids := make([]string, 0, len(utts))
	for id := range utts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

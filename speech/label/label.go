// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package label reads forced alignment label files. Each row is
// "start end label" with times in 100ns ticks.
//
// Plain phone labels carry one row per phone. State aligned labels carry
// several rows per phone (one per HMM state) with a full context label of
// the form "x^y-PHONE+z=...", from which the monophone is extracted.
package label

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emer/ttsprep/speech"
	"github.com/emer/ttsprep/timing"
)

// DefaultStatesPerPhone is the number of state rows per phone in state aligned labels
const DefaultStatesPerPhone = 5

type row struct {
	start, end timing.Tick
	label      string
}

func readRows(r io.Reader, comments bool) ([]row, error) {
	var rows []row
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	ln := 0
	for scanner.Scan() {
		ln++
		t := strings.TrimSpace(scanner.Text())
		if t == "" {
			continue
		}
		if comments && strings.HasPrefix(t, "#") {
			continue
		}
		fs := strings.Fields(t)
		if len(fs) < 3 {
			return nil, fmt.Errorf("label: line %d: want start end label, got %q", ln, t)
		}
		start, err := strconv.ParseInt(fs[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("label: line %d: bad start: %w", ln, err)
		}
		end, err := strconv.ParseInt(fs[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("label: line %d: bad end: %w", ln, err)
		}
		if end < start {
			return nil, fmt.Errorf("label: line %d: end %d before start %d", ln, end, start)
		}
		rows = append(rows, row{timing.Tick(start), timing.Tick(end), fs[2]})
	}
	return rows, scanner.Err()
}

// ReadPlain reads one phone per row. Lines starting with # are comments.
func ReadPlain(r io.Reader) ([]speech.Unit, error) {
	rows, err := readRows(r, true)
	if err != nil {
		return nil, err
	}
	units := make([]speech.Unit, len(rows))
	for i, rw := range rows {
		units[i] = speech.Unit{Name: rw.label, Start: rw.start, End: rw.end}
	}
	return units, nil
}

// ReadState reads state aligned rows, statesPerPhone rows to a phone. The
// phone starts at the first state's start and ends at the last state's end.
func ReadState(r io.Reader, statesPerPhone int) ([]speech.Unit, error) {
	if statesPerPhone <= 0 {
		return nil, fmt.Errorf("label: states per phone must be positive, got %d", statesPerPhone)
	}
	// '#' is a valid context symbol in full context labels, so no comments here
	rows, err := readRows(r, false)
	if err != nil {
		return nil, err
	}
	if len(rows)%statesPerPhone != 0 {
		return nil, fmt.Errorf("label: %d state rows is not a multiple of %d", len(rows), statesPerPhone)
	}
	units := make([]speech.Unit, 0, len(rows)/statesPerPhone)
	for i := 0; i < len(rows); i += statesPerPhone {
		first, last := rows[i], rows[i+statesPerPhone-1]
		mono, err := Monophone(first.label)
		if err != nil {
			return nil, fmt.Errorf("label: row %d: %w", i+1, err)
		}
		units = append(units, speech.Unit{Name: mono, Start: first.start, End: last.end})
	}
	return units, nil
}

// Monophone extracts PHONE from a full context label "...-PHONE+..."
func Monophone(fc string) (string, error) {
	parts := strings.Split(fc, "-")
	if len(parts) < 2 {
		return "", fmt.Errorf("no '-' in full context label %q", fc)
	}
	mono := strings.Split(parts[1], "+")[0]
	if mono == "" {
		return "", fmt.Errorf("empty phone in full context label %q", fc)
	}
	return mono, nil
}

// Format selects a label file layout
type Format string

const (
	Plain Format = "plain"
	State Format = "state"
)

// LoadSequence reads a label file in the given format. The sequence id is
// the file name without its extension.
func LoadSequence(fn string, format Format, statesPerPhone int) (*speech.Sequence, error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	var units []speech.Unit
	switch format {
	case Plain:
		units, err = ReadPlain(fp)
	case State:
		units, err = ReadState(fp, statesPerPhone)
	default:
		return nil, fmt.Errorf("label: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	base := filepath.Base(fn)
	return &speech.Sequence{ID: strings.TrimSuffix(base, filepath.Ext(base)), Units: units}, nil
}

// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transcript reads and writes pipe delimited transcript files, one
// utterance per line:
//
//	id|raw text|normalized text|phones[|speaker|durations]
//
// The writer leaves the raw text and speaker fields empty. Phones and
// durations are space separated.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sep is the field separator
const Sep = "|"

// MinFields is the smallest field count of a valid line: id, raw text, normalized text, phones
const MinFields = 4

const durationsField = 5

// Record is one utterance of a transcript
type Record struct {
	ID        string   `desc:"utterance id"`
	Text      string   `desc:"normalized text"`
	Phones    []string `desc:"phone sequence, including boundary markers"`
	Durations []int    `desc:"frames per phone, nil when not known"`
}

// MalformedError reports a line that does not fit the file
type MalformedError struct {
	Line   int
	Fields int
	Want   int
	Msg    string
}

func (e *MalformedError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("transcript: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("transcript: line %d has %d fields, want %d", e.Line, e.Fields, e.Want)
}

// Write writes recs sorted by id. With durations, records that have none
// are skipped with a warning. It returns the number of lines written.
func Write(w io.Writer, recs map[string]*Record, durations bool, log logrus.FieldLogger) (int, error) {
	ids := make([]string, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	bw := bufio.NewWriter(w)
	n := 0
	for _, id := range ids {
		rec := recs[id]
		if len(rec.Phones) == 0 {
			return n, fmt.Errorf("transcript: %s has no phones", id)
		}
		if durations && len(rec.Durations) == 0 {
			if log != nil {
				log.WithField("utterance", id).Warn("skipping transcript record without durations")
			}
			continue
		}
		fields := []string{id, "", rec.Text, strings.Join(rec.Phones, " ")}
		if durations {
			ds := make([]string, len(rec.Durations))
			for i, d := range rec.Durations {
				ds[i] = strconv.Itoa(d)
			}
			fields = append(fields, "", strings.Join(ds, " "))
		}
		for _, f := range fields {
			if strings.ContainsAny(f, "|\n\r") {
				return n, fmt.Errorf("transcript: %s: field %q contains a separator or newline", id, f)
			}
		}
		if _, err := bw.WriteString(strings.Join(fields, Sep) + "\n"); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// Read parses a transcript. All lines must have the same number of fields,
// at least MinFields. The raw text field is dropped.
func Read(r io.Reader) (map[string]*Record, error) {
	recs := make(map[string]*Record)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	want := 0
	ln := 0
	for scanner.Scan() {
		ln++
		t := strings.Trim(scanner.Text(), "\n\r |")
		if t == "" {
			continue
		}
		fs := strings.Split(t, Sep)
		if want == 0 {
			want = len(fs)
		}
		if len(fs) != want {
			return nil, &MalformedError{Line: ln, Fields: len(fs), Want: want}
		}
		if len(fs) < MinFields {
			return nil, &MalformedError{Line: ln, Fields: len(fs), Want: MinFields}
		}
		rec := &Record{
			ID:     strings.TrimSpace(fs[0]),
			Text:   fs[2],
			Phones: strings.Fields(fs[3]),
		}
		if len(fs) > durationsField && strings.TrimSpace(fs[durationsField]) != "" {
			for _, s := range strings.Fields(fs[durationsField]) {
				d, err := strconv.Atoi(s)
				if err != nil {
					return nil, &MalformedError{Line: ln, Msg: fmt.Sprintf("bad duration %q", s)}
				}
				rec.Durations = append(rec.Durations, d)
			}
		}
		if _, dup := recs[rec.ID]; dup {
			return nil, &MalformedError{Line: ln, Msg: fmt.Sprintf("duplicate id %q", rec.ID)}
		}
		recs[rec.ID] = rec
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// ReadFile reads the transcript file fn
func ReadFile(fn string) (map[string]*Record, error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	recs, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return recs, nil
}

// WriteFile writes recs to fn
func WriteFile(fn string, recs map[string]*Record, durations bool, log logrus.FieldLogger) (int, error) {
	fp, err := os.Create(fn)
	if err != nil {
		return 0, err
	}
	n, err := Write(fp, recs, durations, log)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/emer/ttsprep/transcript"
)

func touch(t *testing.T, fn string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fn, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"b/b1.wav", "a.wav", "a.txt", "c/d/c1.WAV"} {
		touch(t, filepath.Join(root, f))
	}
	files, err := Files(root, ".wav")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "a.wav"), filepath.Join(root, "b/b1.wav"), filepath.Join(root, "c/d/c1.WAV")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("got %v want %v", files, want)
	}
	if id := ID(files[2]); id != "c1" {
		t.Errorf("ID = %q", id)
	}
	if _, err := Files(filepath.Join(root, "missing"), ".wav"); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestRequireDir(t *testing.T) {
	root := t.TempDir()
	if err := RequireDir(filepath.Join(root, "none")); err == nil {
		t.Error("expected error for missing dir")
	}
	if err := RequireDir(root); err == nil {
		t.Error("expected error for empty dir")
	}
	touch(t, filepath.Join(root, "x"))
	if err := RequireDir(root); err != nil {
		t.Error(err)
	}
}

func TestNpy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "guides")
	m := mat.NewDense(2, 3, []float64{1, 0, 0, 0, 0.5, 1})
	fn := NpyPath(dir, "a0001")
	if err := SaveDense(fn, m); err != nil {
		t.Fatal(err)
	}
	got, err := LoadDense(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(got, m) {
		t.Errorf("got %v", mat.Formatted(got))
	}

	q := []int64{0, 255, 511}
	qfn := NpyPath(dir, "q")
	if err := SaveInt64s(qfn, q); err != nil {
		t.Fatal(err)
	}
	gq, err := LoadInt64s(qfn)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gq, q) {
		t.Errorf("got %v", gq)
	}
}

func TestManifest(t *testing.T) {
	mf := &Manifest{}
	mf.Add("b", 20)
	mf.Add("a", 10)
	mf.Sort()
	fn := filepath.Join(t.TempDir(), ManifestFile)
	if err := mf.Save(fn); err != nil {
		t.Fatal(err)
	}
	got, err := LoadManifest(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Entries, []Entry{{"a", 10}, {"b", 20}}) {
		t.Errorf("entries %v", got.Entries)
	}
	if got.Frames()["b"] != 20 {
		t.Errorf("frames %v", got.Frames())
	}
}

func TestJoin(t *testing.T) {
	mf := &Manifest{}
	mf.Add("a", 10)
	mf.Add("b", 20)
	mf.Add("c", 30)
	recs := map[string]*transcript.Record{
		"c": {ID: "c", Phones: []string{"x"}},
		"a": {ID: "a", Phones: []string{"y", "z"}},
		"d": {ID: "d"},
	}
	utts, missing := Join(mf, recs)
	if !reflect.DeepEqual(SortedIDs(utts), []string{"a", "c"}) {
		t.Errorf("joined %v", SortedIDs(utts))
	}
	if utts["c"].MelFrames != 30 || utts["c"].Record != recs["c"] {
		t.Errorf("c joined wrong: %+v", utts["c"])
	}
	if !reflect.DeepEqual(missing, []string{"b", "d"}) {
		t.Errorf("missing %v", missing)
	}
}

func TestReport(t *testing.T) {
	rp := NewReport()
	rp.Add("a", 4, 12, OK, "")
	rp.Add("b", 3, 0, Skipped, "not divisible")
	if rp.Rows() != 2 || rp.Count(OK) != 1 || rp.Count(Skipped) != 1 {
		t.Fatalf("rows %d ok %d skipped %d", rp.Rows(), rp.Count(OK), rp.Count(Skipped))
	}
	var buf bytes.Buffer
	if err := rp.WriteTSV(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "not divisible") || !strings.Contains(lines[2], "skipped") {
		t.Errorf("row b: %q", lines[2])
	}
}

// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package guide

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/mat"
)

func TestHard(t *testing.T) {
	a, err := Hard([]int{3, 0, 1, 2}, ZeroAccept, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(6, 4, []float64{
		1, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
		0, 0, 0, 1,
	})
	if !mat.Equal(a, want) {
		t.Fatalf("got\n%v\nwant\n%v", mat.Formatted(a), mat.Formatted(want))
	}
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		if s := mat.Sum(a.RowView(i)); s != 1 {
			t.Errorf("row %d sums to %v", i, s)
		}
	}
	for j, d := range []int{3, 0, 1, 2} {
		if s := mat.Sum(a.ColView(j)); s != float64(d) {
			t.Errorf("column %d sums to %v want %d", j, s, d)
		}
	}
	if c != 4 {
		t.Errorf("cols %d", c)
	}
}

func TestHardZeroPolicy(t *testing.T) {
	durs := []int{2, 0, 1}
	if _, err := Hard(durs, ZeroError, nil); !errors.Is(err, ErrZeroDuration) {
		t.Errorf("ZeroError: got %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log)
	if _, err := Hard(durs, ZeroWarn, log); err != nil {
		t.Fatal(err)
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Errorf("want one warning, got %d entries", len(hook.Entries))
	}
	hook.Reset()
	if _, err := Hard(durs, ZeroAccept, log); err != nil {
		t.Fatal(err)
	}
	if len(hook.Entries) != 0 {
		t.Errorf("ZeroAccept logged %d entries", len(hook.Entries))
	}
}

func TestHardInvalid(t *testing.T) {
	if _, err := Hard(nil, ZeroAccept, nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("nil: got %v", err)
	}
	if _, err := Hard([]int{0, 0}, ZeroAccept, nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("all zero: got %v", err)
	}
	if _, err := Hard([]int{1, -1}, ZeroAccept, nil); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestDiagonal(t *testing.T) {
	w, err := Diagonal(4, 6, DefaultG)
	if err != nil {
		t.Fatal(err)
	}
	r, c := w.Dims()
	if r != 4 || c != 6 {
		t.Fatalf("dims %d x %d", r, c)
	}
	// t/6 == n/4 exactly at (0,0) and (2,3)
	for _, p := range [][2]int{{0, 0}, {2, 3}} {
		if v := w.At(p[0], p[1]); v != 0 {
			t.Errorf("W[%d][%d] = %v want 0", p[0], p[1], v)
		}
	}
	for n := 0; n < r; n++ {
		for tt := 0; tt < c; tt++ {
			v := w.At(n, tt)
			if v < 0 || v >= 1 {
				t.Errorf("W[%d][%d] = %v out of [0,1)", n, tt, v)
			}
		}
	}
	// rising away from the diagonal along a row
	for tt := 4; tt < c; tt++ {
		if w.At(2, tt) <= w.At(2, tt-1) {
			t.Errorf("row 2 not increasing at %d", tt)
		}
	}
	for tt := 2; tt >= 0; tt-- {
		if w.At(2, tt) <= w.At(2, tt+1) {
			t.Errorf("row 2 not increasing toward %d", tt)
		}
	}
	// and along a column
	for n := 1; n < r; n++ {
		if w.At(n, 0) <= w.At(n-1, 0) {
			t.Errorf("column 0 not increasing at %d", n)
		}
	}
}

func TestDiagonalInvalid(t *testing.T) {
	if _, err := Diagonal(0, 3, DefaultG); !errors.Is(err, ErrEmpty) {
		t.Errorf("zero rows: got %v", err)
	}
	if _, err := Diagonal(3, 3, 0); err == nil {
		t.Error("expected error for g == 0")
	}
}

func TestParseZeroPolicy(t *testing.T) {
	for _, s := range []string{"accept", "warn", "error"} {
		if p, err := ParseZeroPolicy(s); err != nil || string(p) != s {
			t.Errorf("ParseZeroPolicy(%q) = %q, %v", s, p, err)
		}
	}
	if _, err := ParseZeroPolicy("ignore"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

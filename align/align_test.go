// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"errors"
	"reflect"
	"testing"
)

func newAligner() *Aligner {
	al := &Aligner{}
	al.Defaults()
	return al
}

func TestAlign(t *testing.T) {
	al := newAligner()
	cases := []struct {
		name string
		src  []string
		durs []int
		dst  []string
		want []int
	}{
		{"one to one", []string{"sil", "k", "a", "sil"}, []int{10, 20, 30, 10},
			[]string{"<s>", "k", "a", "<e>"}, []int{10, 20, 30, 10}},
		{"inserted boundary", []string{"pau", "k", "a", "t", "pau"}, []int{3, 1, 4, 1, 5},
			[]string{"<_START_>", "k", "a", "<_>", "t", "<_END_>"}, []int{3, 1, 4, 0, 1, 5}},
		{"trailing tokens", []string{"k", "a"}, []int{2, 7},
			[]string{"k", "a", ".", "<_END_>"}, []int{2, 7, 0, 0}},
		{"skip symbol", []string{"skip", "a"}, []int{0, 9},
			[]string{"<_START_>", "a"}, []int{0, 9}},
	}
	for _, c := range cases {
		got, err := Align(al, c.src, c.durs, c.dst)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
		if len(got) != len(c.dst) {
			t.Errorf("%s: length %d want %d", c.name, len(got), len(c.dst))
		}
	}
}

func TestAlignFloat(t *testing.T) {
	got, err := Align(newAligner(), []string{"sil", "a"}, []float64{12.5, 25}, []string{"<s>", "a", "<e>"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []float64{12.5, 25, 0}) {
		t.Errorf("got %v", got)
	}
}

func TestAlignMismatch(t *testing.T) {
	_, err := Align(newAligner(), []string{"k", "sil"}, []int{1, 2}, []string{"k", "a"})
	var me *MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("got %v want MismatchError", err)
	}
	if me.Source != "sil" || me.Target != "a" || me.SourcePos != 1 || me.TargetPos != 1 {
		t.Errorf("mismatch %+v", me)
	}
}

func TestAlignLeftover(t *testing.T) {
	_, err := Align(newAligner(), []string{"k", "a", "t"}, []int{1, 2, 3}, []string{"k", "a"})
	var le *LeftoverError
	if !errors.As(err, &le) {
		t.Fatalf("got %v want LeftoverError", err)
	}
	if le.Consumed != 2 || le.Total != 3 {
		t.Errorf("leftover %+v", le)
	}
}

func TestAlignLengthMismatch(t *testing.T) {
	if _, err := Align(newAligner(), []string{"k"}, []int{1, 2}, []string{"k"}); err == nil {
		t.Fatal("expected error for unequal phones and durations")
	}
}

func TestCustomSymbols(t *testing.T) {
	al := &Aligner{BoundaryPrefix: "#"}
	al.SetSilence([]string{"h#"})
	got, err := Align(al, []string{"h#", "a"}, []int{4, 5}, []string{"#b", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{4, 5}) {
		t.Errorf("got %v", got)
	}
	if al.IsBoundary("<s>") {
		t.Error("'<s>' should not be a boundary with prefix '#'")
	}
}

// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// NpyPath is dir/id.npy
func NpyPath(dir, id string) string {
	return filepath.Join(dir, id+".npy")
}

// SaveDense writes m as a 2D .npy array, creating the directory if needed
func SaveDense(fn string, m *mat.Dense) error {
	return save(fn, m)
}

// SaveInt64s writes x as a 1D .npy array
func SaveInt64s(fn string, x []int64) error {
	return save(fn, x)
}

func save(fn string, val interface{}) error {
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return err
	}
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := npyio.Write(f, val); err != nil {
		f.Close()
		return fmt.Errorf("dataset: writing %s: %w", fn, err)
	}
	return f.Close()
}

// LoadDense reads a 2D .npy array
func LoadDense(fn string) (*mat.Dense, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", fn, err)
	}
	return &m, nil
}

// LoadInt64s reads a 1D .npy array
func LoadInt64s(fn string) ([]int64, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var x []int64
	if err := npyio.Read(f, &x); err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", fn, err)
	}
	return x, nil
}

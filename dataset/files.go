// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset finds, names and stores the per-utterance files of a
// corpus: audio and label inputs, .npy feature arrays, the manifest of
// preprocessed utterances and per-run report tables.
package dataset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Files returns every file under root with extension ext, sorted
func Files(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ID is the utterance id of a file: its base name without extension
func ID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RequireDir checks that dir exists and has at least one entry
func RequireDir(dir string) error {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no %s directory found", dir)
		}
		return err
	}
	if len(ents) == 0 {
		return fmt.Errorf("%s is empty", dir)
	}
	return nil
}

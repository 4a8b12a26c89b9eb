// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"io"
	"os"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// Status of one utterance in a run
type Status string

const (
	OK      Status = "ok"
	Skipped Status = "skipped"
)

// Report is a table of per-utterance outcomes of one run
type Report struct {
	Table *etable.Table
}

// NewReport returns an empty report
func NewReport() *Report {
	dt := &etable.Table{}
	dt.SetFromSchema(etable.Schema{
		{Name: "ID", Type: etensor.STRING},
		{Name: "Phones", Type: etensor.INT64},
		{Name: "Frames", Type: etensor.INT64},
		{Name: "Status", Type: etensor.STRING},
		{Name: "Detail", Type: etensor.STRING},
	}, 0)
	return &Report{Table: dt}
}

// Add appends a row
func (rp *Report) Add(id string, phones, frames int, st Status, detail string) {
	dt := rp.Table
	row := dt.Rows
	dt.AddRows(1)
	dt.SetCellString("ID", row, id)
	dt.SetCellFloat("Phones", row, float64(phones))
	dt.SetCellFloat("Frames", row, float64(frames))
	dt.SetCellString("Status", row, string(st))
	dt.SetCellString("Detail", row, detail)
}

// Rows returns the number of rows
func (rp *Report) Rows() int {
	return rp.Table.Rows
}

// Count returns the number of rows with status st
func (rp *Report) Count(st Status) int {
	n := 0
	for row := 0; row < rp.Table.Rows; row++ {
		if rp.Table.CellString("Status", row) == string(st) {
			n++
		}
	}
	return n
}

// WriteTSV writes the report as tab separated values with a header
func (rp *Report) WriteTSV(w io.Writer) error {
	return rp.Table.WriteCSV(w, etable.Tab, etable.Headers)
}

// SaveTSV writes the report to fn
func (rp *Report) SaveTSV(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := rp.WriteTSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

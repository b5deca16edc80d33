/*
Copyright © 2024 the drift authors.
This file is part of drift.

drift is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

drift is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with drift.  If not, see <http://www.gnu.org/licenses/>.
*/

package nc

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/drift"
)

// RaggedSchema describes a contiguous ragged array container.
type RaggedSchema struct {
	// InstanceDim is the name of the unbounded dimension with one
	// element per row. SampleDim is the name of the fixed dimension
	// holding the packed sequences of all rows.
	InstanceDim, SampleDim string

	// Index is the dense zero-based row index, stored in a variable
	// named after InstanceDim. ID holds the row identifier and RowSize
	// the length of each row's sequences. All three must be of type Int.
	Index, ID, RowSize Variable

	// Instance holds the per-row scalars and Sample the per-observation
	// sequences. Both must be of type Double.
	Instance, Sample []Variable

	Global []Attribute
}

func (s *RaggedSchema) check() error {
	for _, v := range []Variable{s.Index, s.ID, s.RowSize} {
		if v.Type != Int {
			return fmt.Errorf("nc: ragged variable %s must be int but is %v", v.Name, v.Type)
		}
	}
	if s.Index.Name != s.InstanceDim {
		return fmt.Errorf("nc: index variable %s must be named after dimension %s", s.Index.Name, s.InstanceDim)
	}
	for _, vs := range [][]Variable{s.Instance, s.Sample} {
		for _, v := range vs {
			if v.Type != Double {
				return fmt.Errorf("nc: ragged variable %s must be double but is %v", v.Name, v.Type)
			}
		}
	}
	return nil
}

// Row is one instance to be appended to a ragged container.
type Row struct {
	ID int64

	// Samples holds one sequence per RaggedSchema.Sample variable,
	// all of equal length.
	Samples [][]drift.Float

	// Scalars holds one value per RaggedSchema.Instance variable.
	Scalars []drift.Float
}

// Len returns the number of observations in r.
func (r Row) Len() int {
	if len(r.Samples) == 0 {
		return 0
	}
	return len(r.Samples[0])
}

// RaggedWriter appends rows to a contiguous ragged array container.
type RaggedWriter struct {
	s    *RaggedSchema
	ff   *os.File
	f    *cdf.File
	nobs int

	rows, next int
}

// CreateRagged creates a new ragged container at path with room for nobs
// observations in total. An existing file at path is overwritten.
func CreateRagged(path string, s *RaggedSchema, nobs int) (*RaggedWriter, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if nobs < 0 {
		return nil, fmt.Errorf("nc: negative observation count %d", nobs)
	}
	// A sample dimension of length zero would be a second record dimension.
	n := nobs
	if n == 0 {
		n = 1
	}
	h := cdf.NewHeader([]string{s.InstanceDim, s.SampleDim}, []int{0, n})
	for _, v := range s.Sample {
		declare(h, []string{s.SampleDim}, v)
	}
	rowsize := s.RowSize
	rowsize.Attributes = append([]Attribute{{Name: "sample_dimension", Value: s.SampleDim}}, rowsize.Attributes...)
	for _, v := range []Variable{s.Index, s.ID, rowsize} {
		declare(h, []string{s.InstanceDim}, v)
	}
	for _, v := range s.Instance {
		declare(h, []string{s.InstanceDim}, v)
	}
	ff, f, err := create(path, h, s.Global)
	if err != nil {
		return nil, err
	}
	// Extend the file over the whole sample region so that it is valid
	// even if fewer observations than declared are written.
	for _, v := range s.Sample {
		if err := write(f, v.Name, n-1, 1, []float64{FillDouble}); err != nil {
			ff.Close()
			return nil, err
		}
	}
	return &RaggedWriter{s: s, ff: ff, f: f, nobs: nobs}, nil
}

// Append writes r as the next row and returns its dense index. The row
// only counts as written once its instance record is complete, which
// happens after all of its observations have been written.
func (w *RaggedWriter) Append(r Row) (int, error) {
	if len(r.Samples) != len(w.s.Sample) {
		return -1, fmt.Errorf("nc: row %d has %d sequences but %d are declared", r.ID, len(r.Samples), len(w.s.Sample))
	}
	if len(r.Scalars) != len(w.s.Instance) {
		return -1, fmt.Errorf("nc: row %d has %d scalars but %d are declared", r.ID, len(r.Scalars), len(w.s.Instance))
	}
	k := r.Len()
	for i, seq := range r.Samples {
		if len(seq) != k {
			return -1, fmt.Errorf("nc: row %d: sequence %s has length %d but %s has length %d",
				r.ID, w.s.Sample[i].Name, len(seq), w.s.Sample[0].Name, k)
		}
	}
	if r.ID < math.MinInt32 || r.ID > math.MaxInt32 {
		return -1, fmt.Errorf("nc: row identifier %d does not fit in %s", r.ID, w.s.ID.Name)
	}
	if w.next+k > w.nobs {
		return -1, fmt.Errorf("nc: row %d needs observations [%d,%d) but only %d are declared", r.ID, w.next, w.next+k, w.nobs)
	}

	if k > 0 {
		buf := make([]float64, k)
		for i, seq := range r.Samples {
			for j, x := range seq {
				buf[j] = x.Or(FillDouble)
			}
			if err := write(w.f, w.s.Sample[i].Name, w.next, k, buf); err != nil {
				return -1, err
			}
		}
	}

	n := w.rows
	ints := []struct {
		name string
		val  int32
	}{
		{w.s.Index.Name, int32(n)},
		{w.s.ID.Name, int32(r.ID)},
		{w.s.RowSize.Name, int32(k)},
	}
	for _, iv := range ints {
		if err := write(w.f, iv.name, n, 1, []int32{iv.val}); err != nil {
			return -1, err
		}
	}
	for i, x := range r.Scalars {
		if err := write(w.f, w.s.Instance[i].Name, n, 1, []float64{x.Or(FillDouble)}); err != nil {
			return -1, err
		}
	}
	w.rows++
	w.next += k
	return n, nil
}

// Rows returns the number of rows appended so far.
func (w *RaggedWriter) Rows() int { return w.rows }

// Observations returns the number of observations appended so far.
func (w *RaggedWriter) Observations() int { return w.next }

// Close records the number of rows in the header and closes the file.
func (w *RaggedWriter) Close() error {
	return finish(w.ff)
}

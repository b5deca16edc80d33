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
	"os"
	"reflect"

	"github.com/ctessum/cdf"
)

// TableSchema describes a container with one value per row and column
// along a single dimension.
type TableSchema struct {
	Dim string

	// Index holds the one-based row number and is stored in a variable
	// named after Dim. It must be of type Int.
	Index Variable

	Columns []Variable
	Global  []Attribute
}

// TableWriter writes a table container in chunks of rows.
type TableWriter struct {
	s  *TableSchema
	ff *os.File
	f  *cdf.File
	n  int
}

// CreateTable creates a new table container at path holding n rows.
// An existing file at path is overwritten. When n is zero the row
// dimension is the record dimension, which holds zero records.
func CreateTable(path string, s *TableSchema, n int) (*TableWriter, error) {
	if s.Index.Type != Int || s.Index.Name != s.Dim {
		return nil, fmt.Errorf("nc: table index %s must be an int variable named %s", s.Index.Name, s.Dim)
	}
	if n < 0 {
		return nil, fmt.Errorf("nc: negative row count %d", n)
	}
	h := cdf.NewHeader([]string{s.Dim}, []int{n})
	declare(h, []string{s.Dim}, s.Index)
	for _, v := range s.Columns {
		declare(h, []string{s.Dim}, v)
	}
	ff, f, err := create(path, h, s.Global)
	if err != nil {
		return nil, err
	}
	return &TableWriter{s: s, ff: ff, f: f, n: n}, nil
}

// WriteChunk writes rows [begin, begin+len) of every column, where cols
// holds one slice per column in schema order, typed to match the column:
// []uint8, []int32, []float32 or []float64. The index variable is written
// along with the chunk.
func (w *TableWriter) WriteChunk(begin int, cols []interface{}) error {
	if len(cols) != len(w.s.Columns) {
		return fmt.Errorf("nc: chunk has %d columns but %d are declared", len(cols), len(w.s.Columns))
	}
	if len(cols) == 0 {
		return nil
	}
	n := reflect.ValueOf(cols[0]).Len()
	for i, c := range cols {
		if l := reflect.ValueOf(c).Len(); l != n {
			return fmt.Errorf("nc: column %s has %d rows in a chunk of %d", w.s.Columns[i].Name, l, n)
		}
	}
	if n == 0 {
		return nil
	}
	if begin < 0 || begin+n > w.n {
		return fmt.Errorf("nc: chunk [%d,%d) is outside the %d declared rows", begin, begin+n, w.n)
	}
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(begin + i + 1)
	}
	if err := write(w.f, w.s.Index.Name, begin, n, idx); err != nil {
		return err
	}
	for i, c := range cols {
		if err := write(w.f, w.s.Columns[i].Name, begin, n, c); err != nil {
			return err
		}
	}
	return nil
}

// Close records the number of rows in the header and closes the file.
func (w *TableWriter) Close() error {
	return finish(w.ff)
}

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

	"github.com/ctessum/cdf"
)

// Reader reads one-dimensional variables from a container written by
// this package.
type Reader struct {
	ff      *os.File
	f       *cdf.File
	numRecs int
}

// Open opens the container at path for reading.
func Open(path string) (*Reader, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nc: %v", err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("nc: reading header of %s: %v", path, err)
	}
	fi, err := ff.Stat()
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("nc: %v", err)
	}
	return &Reader{ff: ff, f: f, numRecs: int(f.Header.NumRecs(fi.Size()))}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.ff.Close() }

// Variables lists the variable names in header order.
func (r *Reader) Variables() []string { return r.f.Header.Variables() }

// Len returns the number of elements of variable v.
func (r *Reader) Len(v string) (int, error) {
	l := r.f.Header.Lengths(v)
	if len(l) == 0 {
		return 0, fmt.Errorf("nc: no variable %s", v)
	}
	if len(l) != 1 {
		return 0, fmt.Errorf("nc: variable %s has %d dimensions", v, len(l))
	}
	if r.f.Header.IsRecordVariable(v) {
		return r.numRecs, nil
	}
	return l[0], nil
}

// Attribute returns the value of attribute a of variable v, or of the
// global attribute a if v is empty. It returns nil if there is no such
// attribute.
func (r *Reader) Attribute(v, a string) interface{} {
	return r.f.Header.GetAttribute(v, a)
}

// read reads all elements of v into a new slice of the variable's type.
func (r *Reader) read(v string) (interface{}, error) {
	n, err := r.Len(v)
	if err != nil {
		return nil, err
	}
	buf := r.f.Header.ZeroValue(v, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := r.f.Reader(v, []int{0}, []int{n}).Read(buf); err != nil {
		return nil, fmt.Errorf("nc: reading %s: %v", v, err)
	}
	return buf, nil
}

// Float64s reads double variable v.
func (r *Reader) Float64s(v string) ([]float64, error) {
	d, err := r.read(v)
	if err != nil {
		return nil, err
	}
	o, ok := d.([]float64)
	if !ok {
		return nil, fmt.Errorf("nc: variable %s is %T, not []float64", v, d)
	}
	return o, nil
}

// Float32s reads float variable v.
func (r *Reader) Float32s(v string) ([]float32, error) {
	d, err := r.read(v)
	if err != nil {
		return nil, err
	}
	o, ok := d.([]float32)
	if !ok {
		return nil, fmt.Errorf("nc: variable %s is %T, not []float32", v, d)
	}
	return o, nil
}

// Int32s reads int variable v.
func (r *Reader) Int32s(v string) ([]int32, error) {
	d, err := r.read(v)
	if err != nil {
		return nil, err
	}
	o, ok := d.([]int32)
	if !ok {
		return nil, fmt.Errorf("nc: variable %s is %T, not []int32", v, d)
	}
	return o, nil
}

// Bytes reads byte variable v.
func (r *Reader) Bytes(v string) ([]uint8, error) {
	d, err := r.read(v)
	if err != nil {
		return nil, err
	}
	o, ok := d.([]uint8)
	if !ok {
		return nil, fmt.Errorf("nc: variable %s is %T, not []uint8", v, d)
	}
	return o, nil
}

// RowRanges converts the row sizes stored in variable rowsize into
// [start, end) offsets along the sample dimension.
func (r *Reader) RowRanges(rowsize string) ([][2]int, error) {
	sizes, err := r.Int32s(rowsize)
	if err != nil {
		return nil, err
	}
	o := make([][2]int, len(sizes))
	start := 0
	for i, s := range sizes {
		o[i] = [2]int{start, start + int(s)}
		start += int(s)
	}
	return o, nil
}

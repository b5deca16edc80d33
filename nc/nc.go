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

// Package nc writes and reads the NetCDF classic containers produced by
// the drift conversions.
//
// Two layouts are supported. A ragged container (RaggedWriter) stores one
// variable-length sequence per instance using the CF contiguous ragged array
// representation: instance variables live on the record dimension and
// observations are packed along a fixed sample dimension, with a rowsize
// variable giving each instance's sequence length. A table container
// (TableWriter) stores one scalar per row and column along a single
// dimension and is filled in chunks.
package nc

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// Type is a NetCDF classic external data type.
type Type int

// These are the supported variable types.
const (
	Byte Type = iota + 1
	Int
	Float
	Double
)

// Default NetCDF fill values. Null values are written as the fill value
// of the variable type, which is also declared as the variable's
// _FillValue attribute.
const (
	FillByte   = uint8(0x81) // int8(-127)
	FillInt    = int32(-2147483647)
	FillFloat  = float32(9.9692099683868690e+36)
	FillDouble = 9.9692099683868690e+36
)

func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// zero returns a value whose dynamic type declares t to cdf.Header.AddVariable.
func (t Type) zero() interface{} {
	switch t {
	case Byte:
		return []uint8{0}
	case Int:
		return []int32{0}
	case Float:
		return []float32{0}
	case Double:
		return []float64{0}
	}
	panic(fmt.Errorf("nc: invalid variable type %v", t))
}

func (t Type) fill() interface{} {
	switch t {
	case Byte:
		return []uint8{FillByte}
	case Int:
		return []int32{FillInt}
	case Float:
		return []float32{FillFloat}
	case Double:
		return []float64{FillDouble}
	}
	panic(fmt.Errorf("nc: invalid variable type %v", t))
}

// Attribute is a named attribute value. Value must be a string or one of
// []uint8, []int16, []int32, []float32 or []float64.
type Attribute struct {
	Name  string
	Value interface{}
}

// Variable describes an output variable.
type Variable struct {
	Name     string
	LongName string
	Units    string
	Type     Type

	// Nullable variables get a _FillValue attribute, and null values
	// are written as the fill value.
	Nullable bool

	// Attributes are added after long_name, units and _FillValue.
	Attributes []Attribute
}

// declare adds v with the given dimensions and its attributes to h.
func declare(h *cdf.Header, dims []string, v Variable) {
	h.AddVariable(v.Name, dims, v.Type.zero())
	if v.LongName != "" {
		h.AddAttribute(v.Name, "long_name", v.LongName)
	}
	if v.Units != "" {
		h.AddAttribute(v.Name, "units", v.Units)
	}
	if v.Nullable {
		h.AddAttribute(v.Name, "_FillValue", v.Type.fill())
	}
	for _, a := range v.Attributes {
		h.AddAttribute(v.Name, a.Name, a.Value)
	}
}

// create defines h and writes it to a new file at path.
func create(path string, h *cdf.Header, global []Attribute) (*os.File, *cdf.File, error) {
	for _, a := range global {
		h.AddAttribute("", a.Name, a.Value)
	}
	h.Define()
	for _, err := range h.Check() {
		return nil, nil, fmt.Errorf("nc: creating %s: %v", path, err)
	}
	ff, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("nc: creating %s: %v", path, err)
	}
	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		ff.Close()
		return nil, nil, fmt.Errorf("nc: writing header of %s: %v", path, err)
	}
	return ff, f, nil
}

// write writes vals, a slice matching the type of variable v, starting at
// index begin of its outermost dimension.
func write(f *cdf.File, v string, begin, n int, vals interface{}) error {
	w := f.Writer(v, []int{begin}, []int{begin + n})
	if w == nil {
		return fmt.Errorf("nc: no variable %s", v)
	}
	if _, err := w.Write(vals); err != nil {
		return fmt.Errorf("nc: writing %s[%d:%d]: %v", v, begin, begin+n, err)
	}
	return nil
}

// finish writes the record count into the header and closes ff.
func finish(ff *os.File) error {
	if err := cdf.UpdateNumRecs(ff); err != nil {
		ff.Close()
		return fmt.Errorf("nc: finalizing %s: %v", ff.Name(), err)
	}
	return ff.Close()
}

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

package yomaha

import (
	"fmt"
	"strconv"

	"github.com/spatialmodel/drift/nc"
)

// columnBuffer accumulates the values of one column. Tokens equal to the
// column's missing literal are recorded in a mask, which is applied when
// the buffer is flushed.
type columnBuffer interface {
	// add parses tok and appends it.
	add(tok string) error

	// masked returns the buffered values with missing values replaced by
	// the column's fill value, as a slice typed for the container.
	masked() interface{}

	reset()
}

func newBuffer(c Column, size int) columnBuffer {
	m := mask{missing: c.Missing, isMissing: make([]bool, 0, size)}
	switch c.Type {
	case nc.Float:
		return &float32Buffer{mask: m, vals: make([]float32, 0, size)}
	case nc.Int:
		return &int32Buffer{mask: m, vals: make([]int32, 0, size)}
	case nc.Byte:
		return &byteBuffer{mask: m, vals: make([]uint8, 0, size)}
	}
	panic(fmt.Errorf("yomaha: column %s has unsupported type %v", c.Name, c.Type))
}

type mask struct {
	missing   string
	isMissing []bool
}

// check records whether tok is missing.
func (m *mask) check(tok string) bool {
	miss := tok == m.missing
	m.isMissing = append(m.isMissing, miss)
	return miss
}

type float32Buffer struct {
	mask
	vals []float32
}

func (b *float32Buffer) add(tok string) error {
	if b.check(tok) {
		b.vals = append(b.vals, 0)
		return nil
	}
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return err
	}
	b.vals = append(b.vals, float32(v))
	return nil
}

func (b *float32Buffer) masked() interface{} {
	for i, m := range b.isMissing {
		if m {
			b.vals[i] = nc.FillFloat
		}
	}
	return b.vals
}

func (b *float32Buffer) reset() {
	b.vals, b.isMissing = b.vals[:0], b.isMissing[:0]
}

type int32Buffer struct {
	mask
	vals []int32
}

func (b *int32Buffer) add(tok string) error {
	if b.check(tok) {
		b.vals = append(b.vals, 0)
		return nil
	}
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return err
	}
	b.vals = append(b.vals, int32(v))
	return nil
}

func (b *int32Buffer) masked() interface{} {
	for i, m := range b.isMissing {
		if m {
			b.vals[i] = nc.FillInt
		}
	}
	return b.vals
}

func (b *int32Buffer) reset() {
	b.vals, b.isMissing = b.vals[:0], b.isMissing[:0]
}

// byteBuffer holds signed bytes in their two's complement form.
type byteBuffer struct {
	mask
	vals []uint8
}

func (b *byteBuffer) add(tok string) error {
	if b.check(tok) {
		b.vals = append(b.vals, 0)
		return nil
	}
	v, err := strconv.ParseInt(tok, 10, 8)
	if err != nil {
		return err
	}
	b.vals = append(b.vals, uint8(int8(v)))
	return nil
}

func (b *byteBuffer) masked() interface{} {
	for i, m := range b.isMissing {
		if m {
			b.vals[i] = nc.FillByte
		}
	}
	return b.vals
}

func (b *byteBuffer) reset() {
	b.vals, b.isMissing = b.vals[:0], b.isMissing[:0]
}

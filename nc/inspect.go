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
	"io"
	"sort"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"gonum.org/v1/gonum/floats"
)

// VariableSummary describes one variable of a container.
type VariableSummary struct {
	Name       string
	Type       string
	Dimensions []string
	Len        int64
	Attributes map[string]interface{}

	// Valid is the number of numeric values that differ from the
	// variable's _FillValue. Min and Max are taken over those values.
	Valid    int
	Min, Max float64
}

// Summary describes a container.
type Summary struct {
	Global    map[string]interface{}
	Variables []VariableSummary
}

// Inspect summarizes the container at path. The file is read with a NetCDF
// implementation independent of the one used for writing, so Inspect also
// serves as a check that the output is readable by other software.
func Inspect(path string) (*Summary, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nc: inspecting %s: %v", path, err)
	}
	defer g.Close()

	s := &Summary{Global: attributes(g.Attributes())}
	for _, name := range g.ListVariables() {
		vg, err := g.GetVarGetter(name)
		if err != nil {
			return nil, fmt.Errorf("nc: inspecting %s: variable %s: %v", path, name, err)
		}
		vs := VariableSummary{
			Name:       name,
			Type:       vg.Type(),
			Dimensions: vg.Dimensions(),
			Len:        vg.Len(),
			Attributes: attributes(vg.Attributes()),
		}
		if vs.Len == 0 {
			s.Variables = append(s.Variables, vs)
			continue
		}
		vals, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("nc: inspecting %s: variable %s: %v", path, name, err)
		}
		if x, ok := toFloat64s(vals); ok {
			var fill []float64
			if fv, ok := vs.Attributes["_FillValue"]; ok {
				fill, _ = toFloat64s(fv)
			}
			valid := x[:0:0]
			for _, v := range x {
				if len(fill) == 1 && v == fill[0] {
					continue
				}
				valid = append(valid, v)
			}
			vs.Valid = len(valid)
			if len(valid) > 0 {
				vs.Min = floats.Min(valid)
				vs.Max = floats.Max(valid)
			}
		}
		s.Variables = append(s.Variables, vs)
	}
	return s, nil
}

// Variable returns the summary of the named variable.
func (s *Summary) Variable(name string) (VariableSummary, bool) {
	for _, v := range s.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return VariableSummary{}, false
}

// Fprint writes a human-readable listing of s to w.
func (s *Summary) Fprint(w io.Writer) error {
	var b strings.Builder
	for _, k := range sortedKeys(s.Global) {
		fmt.Fprintf(&b, ":%s = %v\n", k, s.Global[k])
	}
	for _, v := range s.Variables {
		fmt.Fprintf(&b, "%s %s(%s) len=%d", v.Type, v.Name, strings.Join(v.Dimensions, ", "), v.Len)
		if v.Valid > 0 {
			fmt.Fprintf(&b, " valid=%d min=%g max=%g", v.Valid, v.Min, v.Max)
		}
		b.WriteString("\n")
		for _, k := range sortedKeys(v.Attributes) {
			fmt.Fprintf(&b, "\t%s:%s = %v\n", v.Name, k, v.Attributes[k])
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func attributes(am api.AttributeMap) map[string]interface{} {
	o := make(map[string]interface{})
	if am == nil {
		return o
	}
	for _, k := range am.Keys() {
		if v, ok := am.Get(k); ok {
			o[k] = v
		}
	}
	return o
}

func sortedKeys(m map[string]interface{}) []string {
	k := make([]string, 0, len(m))
	for s := range m {
		k = append(k, s)
	}
	sort.Strings(k)
	return k
}

// toFloat64s converts a numeric scalar or slice to []float64.
func toFloat64s(v interface{}) ([]float64, bool) {
	switch x := v.(type) {
	case []float64:
		return x, true
	case []float32:
		o := make([]float64, len(x))
		for i, e := range x {
			o[i] = float64(e)
		}
		return o, true
	case []int32:
		o := make([]float64, len(x))
		for i, e := range x {
			o[i] = float64(e)
		}
		return o, true
	case []int16:
		o := make([]float64, len(x))
		for i, e := range x {
			o[i] = float64(e)
		}
		return o, true
	case []int8:
		o := make([]float64, len(x))
		for i, e := range x {
			o[i] = float64(e)
		}
		return o, true
	case []uint8:
		o := make([]float64, len(x))
		for i, e := range x {
			o[i] = float64(int8(e))
		}
		return o, true
	case float64:
		return []float64{x}, true
	case float32:
		return []float64{float64(x)}, true
	case int32:
		return []float64{float64(x)}, true
	case int16:
		return []float64{float64(x)}, true
	case int8:
		return []float64{float64(x)}, true
	case uint8:
		return []float64{float64(int8(x))}, true
	}
	return nil, false
}

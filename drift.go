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

// Package drift holds the primitives shared by the drifter and float
// conversion pipelines: nullable values, time offsets from fixed epochs
// and missing-value sentinels.
//
// The conversions themselves live in the gdp (Global Drifter Program
// trajectories) and yomaha (YoMaHa'07 Argo float velocities) packages, and
// the output containers in package nc.
package drift

import (
	"math"
	"strconv"
	"time"
)

// Version gives the version number.
const Version = "0.1.0"

// Float is a float64 that may be null. The zero value is null.
type Float struct {
	Value float64
	Valid bool
}

// Null is a null Float.
var Null = Float{}

// Some returns a valid Float holding v.
func Some(v float64) Float { return Float{Value: v, Valid: true} }

// Or returns the value of f, or fill if f is null.
func (f Float) Or(fill float64) float64 {
	if !f.Valid {
		return fill
	}
	return f.Value
}

func (f Float) String() string {
	if !f.Valid {
		return "null"
	}
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

// Floats wraps every element of v as a valid Float.
func Floats(v []float64) []Float {
	o := make([]Float, len(v))
	for i, x := range v {
		o[i] = Some(x)
	}
	return o
}

// MissingValue is the literal the Global Drifter Program uses for
// science fields that were not observed.
const MissingValue = 999.999

// MaskSentinel returns vals as nullable values, where every element
// exactly equal to sentinel is null.
func MaskSentinel(vals []float64, sentinel float64) []Float {
	o := make([]Float, len(vals))
	for i, v := range vals {
		if v != sentinel {
			o[i] = Some(v)
		}
	}
	return o
}

// Reference times for stored offsets.
var (
	Epoch1980 = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	Epoch2000 = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
)

const secondsPerDay = 86400

// DaysSince returns the number of days from epoch to t.
func DaysSince(epoch, t time.Time) float64 {
	return t.Sub(epoch).Seconds() / secondsPerDay
}

// TimeAt is the inverse of DaysSince, rounded to the nearest second.
func TimeAt(epoch time.Time, days float64) time.Time {
	s := math.Round(days * secondsPerDay)
	return epoch.Add(time.Duration(s) * time.Second)
}

// DaysUnits returns the CF units attribute for day offsets from epoch,
// e.g. "days since 1980-01-01 00:00:00".
func DaysUnits(epoch time.Time) string {
	return "days since " + epoch.Format("2006-01-02 15:04:05")
}

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

package gdp

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spatialmodel/drift"
)

// SpeedSource selects where the speed of a drifter comes from.
type SpeedSource int

const (
	// SpeedFromV stores the northward velocity as the speed. This is what
	// earlier conversions of the Global Drifter Program files produced.
	SpeedFromV SpeedSource = iota

	// SpeedFromColumn stores the speed column of the observation file.
	SpeedFromColumn
)

func (s SpeedSource) String() string {
	switch s {
	case SpeedFromV:
		return "v"
	case SpeedFromColumn:
		return "column"
	}
	return fmt.Sprintf("SpeedSource(%d)", int(s))
}

// ParseSpeedSource parses the names returned by SpeedSource.String.
func ParseSpeedSource(s string) (SpeedSource, error) {
	switch s {
	case "v":
		return SpeedFromV, nil
	case "column":
		return SpeedFromColumn, nil
	}
	return 0, fmt.Errorf("gdp: invalid speed source %q (must be v or column)", s)
}

// Column positions in an observation line.
const (
	obsID = iota
	obsMonth
	obsDay
	obsYear
	obsLat
	obsLon
	obsTemp
	obsU
	obsV
	obsSpeed
	obsVarLat
	obsVarLon
	obsVarTemp
	obsColumns
)

// Trajectory is the transformed observations of one drifter. Time is in
// days since drift.Epoch1980. All fields have the same length.
type Trajectory struct {
	ID int64

	Time, Lat, Lon []float64

	Temp, U, V, Speed       []drift.Float
	VarLat, VarLon, VarTemp []drift.Float
}

// Len returns the number of observations.
func (t *Trajectory) Len() int { return len(t.Time) }

// Samples returns the sequences in the order of the container's
// observation variables.
func (t *Trajectory) Samples() [][]drift.Float {
	return [][]drift.Float{
		drift.Floats(t.Time), drift.Floats(t.Lat), drift.Floats(t.Lon),
		t.Temp, t.U, t.V, t.Speed,
		t.VarLat, t.VarLon, t.VarTemp,
	}
}

// Transform converts the lines of run into a trajectory. Values equal to
// drift.MissingValue in the temperature, velocity, speed and variance
// fields become null. file is used in error messages.
func Transform(run Run, speed SpeedSource, file string) (*Trajectory, error) {
	n := len(run.Lines)
	t := &Trajectory{
		ID:   run.ID,
		Time: make([]float64, n),
		Lat:  make([]float64, n),
		Lon:  make([]float64, n),
	}
	var raw [obsColumns][]float64
	masked := []int{obsTemp, obsU, obsV, obsSpeed, obsVarLat, obsVarLon, obsVarTemp}
	for _, c := range masked {
		raw[c] = make([]float64, n)
	}
	for i, f := range run.Lines {
		line := run.FirstLine + i
		if len(f) < obsColumns {
			return nil, &ParseError{File: file, Line: line,
				Err: fmt.Errorf("have %d columns but need at least %d", len(f), obsColumns)}
		}
		var err error
		if t.Time[i], err = observationTime(f[obsYear], f[obsMonth], f[obsDay]); err != nil {
			return nil, &ParseError{File: file, Line: line, Err: err}
		}
		var vals [obsColumns]float64
		for c := obsLat; c < obsColumns; c++ {
			v, err := strconv.ParseFloat(f[c], 64)
			if err != nil {
				return nil, &ParseError{File: file, Line: line, Err: fmt.Errorf("column %d: %v", c+1, err)}
			}
			vals[c] = v
		}
		t.Lat[i], t.Lon[i] = vals[obsLat], vals[obsLon]
		for _, c := range masked {
			raw[c][i] = vals[c]
		}
		if speed == SpeedFromV {
			raw[obsSpeed][i] = vals[obsV]
		}
	}
	mask := func(c int) []drift.Float { return drift.MaskSentinel(raw[c], drift.MissingValue) }
	t.Temp, t.U, t.V, t.Speed = mask(obsTemp), mask(obsU), mask(obsV), mask(obsSpeed)
	t.VarLat, t.VarLon, t.VarTemp = mask(obsVarLat), mask(obsVarLon), mask(obsVarTemp)
	return t, nil
}

// observationTime returns the days since drift.Epoch1980 of an
// observation. day is a fractional day of the month starting at 1.
func observationTime(year, month, day string) (float64, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, fmt.Errorf("year: %v", err)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return 0, fmt.Errorf("month: %v", err)
	}
	if m < 1 || m > 12 {
		return 0, fmt.Errorf("month %d out of range", m)
	}
	d, err := strconv.ParseFloat(day, 64)
	if err != nil {
		return 0, fmt.Errorf("day: %v", err)
	}
	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	return drift.DaysSince(drift.Epoch1980, first) + d - 1, nil
}

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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spatialmodel/drift"
)

var (
	// ErrNoMetadata is returned when a trajectory has no deployment record.
	ErrNoMetadata = errors.New("gdp: no metadata for identifier")

	// ErrAmbiguousMetadata is returned when a trajectory has more than one
	// deployment record.
	ErrAmbiguousMetadata = errors.New("gdp: more than one metadata record for identifier")
)

// ParseError reports a malformed input line.
type ParseError struct {
	File string
	Line int // 1-based
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gdp: %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// dateLayout is the layout of a date token and a time token joined by a space.
const dateLayout = "2006/01/02 15:04"

// neverDate marks a drogue that was never lost.
const neverDate = "0000/00/00"

// Column positions in a metadata line.
const (
	metaID = iota
	metaWMO
	metaExperiment
	metaBuoyType
	metaDeployDate
	metaDeployTime
	metaDeployLat
	metaDeployLon
	metaEndDate
	metaEndTime
	metaEndLat
	metaEndLon
	metaDrogueDate
	metaDrogueTime
	metaColumns
)

// Deployment is the metadata of one drifter. Times are days since
// drift.Epoch1980.
type Deployment struct {
	ID int64

	// Extra holds the WMO number, the experiment number and the buoy
	// type as given in the file.
	Extra [3]string

	DeployTime, DeployLat, DeployLon drift.Float
	EndTime, EndLat, EndLon          drift.Float

	// DrogueLost is null if the drogue was never lost.
	DrogueLost drift.Float

	Line int
}

// Scalars returns the per-row metadata values in the order of the
// container's instance variables.
func (d Deployment) Scalars() []drift.Float {
	return []drift.Float{d.DeployTime, d.DeployLat, d.DeployLon,
		d.EndTime, d.EndLat, d.EndLon, d.DrogueLost}
}

// Metadata holds the deployment records of a metadata file.
type Metadata struct {
	Rows  []Deployment
	index map[int64][]int
}

// ReadMetadata reads every line of r. name is used in error messages.
// Blank lines are skipped.
func ReadMetadata(r io.Reader, name string) (*Metadata, error) {
	m := &Metadata{index: make(map[int64][]int)}
	buf := bufio.NewScanner(r)
	line := 0
	for buf.Scan() {
		line++
		fields := strings.Fields(buf.Text())
		if len(fields) == 0 {
			continue
		}
		d, err := parseDeployment(fields)
		if err != nil {
			return nil, &ParseError{File: name, Line: line, Err: err}
		}
		d.Line = line
		m.index[d.ID] = append(m.index[d.ID], len(m.Rows))
		m.Rows = append(m.Rows, d)
	}
	if err := buf.Err(); err != nil {
		return nil, fmt.Errorf("gdp: reading %s: %w", name, err)
	}
	return m, nil
}

func parseDeployment(f []string) (Deployment, error) {
	var d Deployment
	if len(f) < metaColumns {
		return d, fmt.Errorf("have %d columns but need at least %d", len(f), metaColumns)
	}
	var err error
	if d.ID, err = strconv.ParseInt(f[metaID], 10, 64); err != nil {
		return d, fmt.Errorf("identifier: %v", err)
	}
	copy(d.Extra[:], f[metaWMO:metaDeployDate])

	if d.DeployTime, err = parseDate(f[metaDeployDate], f[metaDeployTime], false); err != nil {
		return d, fmt.Errorf("deployment time: %v", err)
	}
	if d.EndTime, err = parseDate(f[metaEndDate], f[metaEndTime], false); err != nil {
		return d, fmt.Errorf("end time: %v", err)
	}
	if d.DrogueLost, err = parseDate(f[metaDrogueDate], f[metaDrogueTime], true); err != nil {
		return d, fmt.Errorf("drogue loss time: %v", err)
	}
	for _, c := range []struct {
		dst  *drift.Float
		col  int
		name string
	}{
		{&d.DeployLat, metaDeployLat, "deployment latitude"},
		{&d.DeployLon, metaDeployLon, "deployment longitude"},
		{&d.EndLat, metaEndLat, "end latitude"},
		{&d.EndLon, metaEndLon, "end longitude"},
	} {
		v, err := strconv.ParseFloat(f[c.col], 64)
		if err != nil {
			return d, fmt.Errorf("%s: %v", c.name, err)
		}
		*c.dst = drift.Some(v)
	}
	return d, nil
}

// parseDate converts a date and a time token to days since
// drift.Epoch1980.
func parseDate(date, clock string, nullable bool) (drift.Float, error) {
	if nullable && date == neverDate {
		return drift.Null, nil
	}
	t, err := time.ParseInLocation(dateLayout, date+" "+clock, time.UTC)
	if err != nil {
		return drift.Null, err
	}
	return drift.Some(drift.DaysSince(drift.Epoch1980, t)), nil
}

// Lookup returns the single deployment record of drifter id.
func (m *Metadata) Lookup(id int64) (Deployment, error) {
	idx := m.index[id]
	switch len(idx) {
	case 0:
		return Deployment{}, fmt.Errorf("%w %d", ErrNoMetadata, id)
	case 1:
		return m.Rows[idx[0]], nil
	}
	lines := make([]string, len(idx))
	for i, j := range idx {
		lines[i] = strconv.Itoa(m.Rows[j].Line)
	}
	return Deployment{}, fmt.Errorf("%w %d (lines %s)", ErrAmbiguousMetadata, id, strings.Join(lines, ", "))
}

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
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/drift"
	"github.com/spatialmodel/drift/nc"
)

const testMeta = `1001 44001 5 SVP 1990/01/01 00:00 10.0 -50.0 1990/02/01 00:00 11.0 -51.0 0000/00/00 00:00 1
1002 44002 5 SVP 1991/03/15 06:30 12.5 -40.0 1992/07/04 18:45 13.0 -41.5 1991/06/01 12:00 3

1003 44003 5 SVP 1979/12/31 18:00 0.0 0.0 1980/01/01 06:00 0.5 0.5 0000/00/00 00:00 1
`

const testTraj = `1001 1 1.000 1990 10.1 -50.1 20.5 10.0 5.0 11.2 0.00001 0.00002 0.001
1001 1 1.250 1990 10.2 -50.2 999.999 12.0 6.0 13.4 0.00001 0.00002 999.999
`

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadMetadata(t *testing.T) {
	m, err := ReadMetadata(strings.NewReader(testMeta), "meta")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Rows) != 3 {
		t.Fatalf("have %d rows", len(m.Rows))
	}
	d, err := m.Lookup(1001)
	if err != nil {
		t.Fatal(err)
	}
	want := Deployment{
		ID:         1001,
		Extra:      [3]string{"44001", "5", "SVP"},
		DeployTime: drift.Some(3653),
		DeployLat:  drift.Some(10),
		DeployLon:  drift.Some(-50),
		EndTime:    drift.Some(3684),
		EndLat:     drift.Some(11),
		EndLon:     drift.Some(-51),
		DrogueLost: drift.Null,
		Line:       1,
	}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("1001: %v", pretty.Diff(d, want))
	}
	d, err = m.Lookup(1003)
	if err != nil {
		t.Fatal(err)
	}
	if d.Line != 4 || d.DeployTime != drift.Some(-0.25) || d.EndTime != drift.Some(0.25) {
		t.Errorf("1003: %# v", pretty.Formatter(d))
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	m, err := ReadMetadata(strings.NewReader(testMeta), "meta")
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range m.Rows {
		f := strings.Fields(strings.Split(testMeta, "\n")[d.Line-1])
		for _, c := range []struct {
			v          drift.Float
			date, time string
		}{
			{d.DeployTime, f[metaDeployDate], f[metaDeployTime]},
			{d.EndTime, f[metaEndDate], f[metaEndTime]},
			{d.DrogueLost, f[metaDrogueDate], f[metaDrogueTime]},
		} {
			if !c.v.Valid {
				if c.date != neverDate {
					t.Errorf("%d: %s is null", d.ID, c.date)
				}
				continue
			}
			have := drift.TimeAt(drift.Epoch1980, c.v.Value).Format(dateLayout)
			if want := c.date + " " + c.time; have != want {
				t.Errorf("%d: want %s but have %s", d.ID, want, have)
			}
		}
	}
}

func TestReadMetadataErrors(t *testing.T) {
	for _, test := range []struct {
		name, input string
	}{
		{"short", "1001 44001 5 SVP 1990/01/01 00:00 10.0 -50.0 1990/02/01 00:00 11.0 -51.0 0000/00/00\n"},
		{"date", "1001 44001 5 SVP 1990/13/01 00:00 10.0 -50.0 1990/02/01 00:00 11.0 -51.0 0000/00/00 00:00\n"},
		{"never deployed", "1001 44001 5 SVP 0000/00/00 00:00 10.0 -50.0 1990/02/01 00:00 11.0 -51.0 0000/00/00 00:00\n"},
		{"latitude", "1001 44001 5 SVP 1990/01/01 00:00 north -50.0 1990/02/01 00:00 11.0 -51.0 0000/00/00 00:00\n"},
		{"identifier", "x1001 44001 5 SVP 1990/01/01 00:00 10.0 -50.0 1990/02/01 00:00 11.0 -51.0 0000/00/00 00:00\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadMetadata(strings.NewReader("\n"+test.input), "meta")
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("want a ParseError but have %v", err)
			}
			if pe.Line != 2 || pe.File != "meta" {
				t.Errorf("wrong position in %v", pe)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	m, err := ReadMetadata(strings.NewReader(testMeta+strings.SplitN(testMeta, "\n", 2)[0]+"\n"), "meta")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Lookup(1001); !errors.Is(err, ErrAmbiguousMetadata) {
		t.Errorf("duplicate: have %v", err)
	}
	if _, err := m.Lookup(9999); !errors.Is(err, ErrNoMetadata) {
		t.Errorf("missing: have %v", err)
	}
	if _, err := m.Lookup(1002); err != nil {
		t.Errorf("unique: have %v", err)
	}
}

func scanAll(t *testing.T, input string) ([]Run, error) {
	t.Helper()
	sc := NewScanner(strings.NewReader(input), "traj")
	var runs []Run
	for sc.Scan() {
		runs = append(runs, sc.Run())
	}
	return runs, sc.Err()
}

func TestScanner(t *testing.T) {
	runs, err := scanAll(t, "1 a\n1 b\n2 c\n\n3 d\n3 e\n4 f")
	if err != nil {
		t.Fatal(err)
	}
	want := []Run{
		{ID: 1, FirstLine: 1, Lines: [][]string{{"1", "a"}, {"1", "b"}}},
		{ID: 2, FirstLine: 3, Lines: [][]string{{"2", "c"}}},
		{ID: 3, FirstLine: 5, Lines: [][]string{{"3", "d"}, {"3", "e"}}},
		{ID: 4, FirstLine: 7, Lines: [][]string{{"4", "f"}}},
	}
	if !reflect.DeepEqual(runs, want) {
		t.Errorf("runs: %v", pretty.Diff(runs, want))
	}
}

func TestScannerEmpty(t *testing.T) {
	for _, input := range []string{"", "\n", "  \n\n"} {
		runs, err := scanAll(t, input)
		if err != nil || len(runs) != 0 {
			t.Errorf("%q: have %d runs, %v", input, len(runs), err)
		}
	}
}

func TestScannerSingleRun(t *testing.T) {
	runs, err := scanAll(t, "7 a\n7 b\n7 c\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != 7 || len(runs[0].Lines) != 3 {
		t.Errorf("runs: %# v", pretty.Formatter(runs))
	}
}

func TestScannerInterleaved(t *testing.T) {
	for _, input := range []string{"1 a\n2 b\n1 c\n", "1 a\n\n1 b\n"} {
		runs, err := scanAll(t, input)
		if !errors.Is(err, ErrInterleaved) {
			t.Errorf("%q: want ErrInterleaved but have %v", input, err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Line != 3 {
			t.Errorf("%q: wrong position in %v", input, err)
		}
		if len(runs) == 0 || runs[0].ID != 1 {
			t.Errorf("%q: first run should be returned", input)
		}
	}
}

func TestScannerBadID(t *testing.T) {
	_, err := scanAll(t, "1 a\nx b\n")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 2 {
		t.Errorf("want a ParseError on line 2 but have %v", err)
	}
}

func TestTransform(t *testing.T) {
	runs, err := scanAll(t, testTraj)
	if err != nil {
		t.Fatal(err)
	}
	traj, err := Transform(runs[0], SpeedFromV, "traj")
	if err != nil {
		t.Fatal(err)
	}
	want := &Trajectory{
		ID:      1001,
		Time:    []float64{3653, 3653.25},
		Lat:     []float64{10.1, 10.2},
		Lon:     []float64{-50.1, -50.2},
		Temp:    []drift.Float{drift.Some(20.5), drift.Null},
		U:       []drift.Float{drift.Some(10), drift.Some(12)},
		V:       []drift.Float{drift.Some(5), drift.Some(6)},
		Speed:   []drift.Float{drift.Some(5), drift.Some(6)},
		VarLat:  []drift.Float{drift.Some(0.00001), drift.Some(0.00001)},
		VarLon:  []drift.Float{drift.Some(0.00002), drift.Some(0.00002)},
		VarTemp: []drift.Float{drift.Some(0.001), drift.Null},
	}
	if !reflect.DeepEqual(traj, want) {
		t.Errorf("trajectory: %v", pretty.Diff(traj, want))
	}

	traj, err = Transform(runs[0], SpeedFromColumn, "traj")
	if err != nil {
		t.Fatal(err)
	}
	if s := []drift.Float{drift.Some(11.2), drift.Some(13.4)}; !reflect.DeepEqual(traj.Speed, s) {
		t.Errorf("speed from column: want %v but have %v", s, traj.Speed)
	}
}

func TestTransformSentinelEverywhere(t *testing.T) {
	run := Run{ID: 5, FirstLine: 1, Lines: [][]string{
		strings.Fields("5 2 3.5 2000 1 2 999.999 999.999 999.999 999.999 999.999 999.999 999.999"),
	}}
	traj, err := Transform(run, SpeedFromColumn, "traj")
	if err != nil {
		t.Fatal(err)
	}
	for i, seq := range traj.Samples()[3:] {
		if seq[0].Valid {
			t.Errorf("field %d: sentinel was kept as %v", i+3, seq[0])
		}
	}
	// 2000-02-01 is 7336 days after 1980-01-01.
	if traj.Time[0] != 7336+2.5 {
		t.Errorf("time: %g", traj.Time[0])
	}
}

func TestTransformErrors(t *testing.T) {
	for _, line := range []string{
		"5 2 3.5 2000 1 2 3 4 5 6 7 8",
		"5 13 3.5 2000 1 2 3 4 5 6 7 8 9",
		"5 2 x 2000 1 2 3 4 5 6 7 8 9",
		"5 2 3.5 2000 1 2 3 4 5 6 7 8 nine",
	} {
		run := Run{ID: 5, FirstLine: 10, Lines: [][]string{strings.Fields(line)}}
		_, err := Transform(run, SpeedFromV, "traj")
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Line != 10 {
			t.Errorf("%q: want a ParseError on line 10 but have %v", line, err)
		}
	}
}

func TestParseSpeedSource(t *testing.T) {
	for _, s := range []SpeedSource{SpeedFromV, SpeedFromColumn} {
		have, err := ParseSpeedSource(s.String())
		if err != nil || have != s {
			t.Errorf("%v: have %v, %v", s, have, err)
		}
	}
	if _, err := ParseSpeedSource("magnitude"); err == nil {
		t.Error("magnitude should not be accepted")
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.dat", testMeta)
	traj := writeFile(t, dir, "traj.dat", testTraj)
	out := filepath.Join(dir, "out.nc")

	stats, err := Convert(traj, meta, out, Config{Log: testLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 1 || stats.Observations != 2 {
		t.Errorf("stats: %+v", stats)
	}

	r, err := nc.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	ints := map[string][]int32{
		RowDim:    {0},
		"aomlid":  {1001},
		"rowsize": {2},
	}
	for name, want := range ints {
		have, err := r.Int32s(name)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%s: want %v but have %v", name, want, have)
		}
	}
	doubles := map[string][]float64{
		"time":    {3653, 3653.25},
		"lat":     {10.1, 10.2},
		"temp":    {20.5, nc.FillDouble},
		"speed":   {5, 6},
		"vartemp": {0.001, nc.FillDouble},
		"deptime": {3653},
		"deplat":  {10},
		"deplon":  {-50},
		"endtime": {3684},
		"endlat":  {11},
		"endlon":  {-51},
		"dltime":  {nc.FillDouble},
	}
	for name, want := range doubles {
		have, err := r.Float64s(name)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%s: want %v but have %v", name, want, have)
		}
	}
	if u := r.Attribute("time", "units"); u != "days since 1980-01-01 00:00:00" {
		t.Errorf("time units: %v", u)
	}
	if s := r.Attribute("", "source"); s != "from "+traj+" and "+meta {
		t.Errorf("source: %v", s)
	}
	if h, ok := r.Attribute("", "history").(string); !ok || !strings.HasPrefix(h, "created by drift gdp on ") {
		t.Errorf("history: %v", h)
	}

	s, err := nc.Inspect(out)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := s.Variable("temp"); !ok || v.Valid != 1 || v.Max != 20.5 {
		t.Errorf("inspect temp: %# v", pretty.Formatter(v))
	}
}

func TestConvertDenseIndex(t *testing.T) {
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.dat", testMeta)
	traj := writeFile(t, dir, "traj.dat", `1003 1 1 1980 0 0 1 1 1 1 1 1 1
1001 1 1 1990 0 0 1 1 1 1 1 1 1
1001 1 2 1990 0 0 1 1 1 1 1 1 1
1001 1 3 1990 0 0 1 1 1 1 1 1 1

1002 4 1 1991 0 0 1 1 1 1 1 1 1
1002 4 2 1991 0 0 1 1 1 1 1 1 1
`)
	out := filepath.Join(dir, "out.nc")
	stats, err := Convert(traj, meta, out, Config{Log: testLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 3 || stats.Observations != 6 {
		t.Errorf("stats: %+v", stats)
	}
	r, err := nc.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for name, want := range map[string][]int32{
		RowDim:    {0, 1, 2},
		"aomlid":  {1003, 1001, 1002},
		"rowsize": {1, 3, 2},
	} {
		have, err := r.Int32s(name)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%s: want %v but have %v", name, want, have)
		}
	}
	ranges, err := r.RowRanges("rowsize")
	if err != nil {
		t.Fatal(err)
	}
	tm, err := r.Float64s("time")
	if err != nil {
		t.Fatal(err)
	}
	if got := tm[ranges[1][0]:ranges[1][1]]; !reflect.DeepEqual(got, []float64{3653, 3654, 3655}) {
		t.Errorf("time of 1001: %v", got)
	}
}

func TestConvertEmpty(t *testing.T) {
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.dat", testMeta)
	traj := writeFile(t, dir, "traj.dat", "")
	out := filepath.Join(dir, "out.nc")
	stats, err := Convert(traj, meta, out, Config{Log: testLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 0 {
		t.Errorf("rows: %d", stats.Rows)
	}
	r, err := nc.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if n, err := r.Len("aomlid"); err != nil || n != 0 {
		t.Errorf("rows: have %d, %v", n, err)
	}
}

func TestConvertMissingMetadata(t *testing.T) {
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.dat", testMeta)
	traj := writeFile(t, dir, "traj.dat", testTraj+"2001 1 1 1990 0 0 1 1 1 1 1 1 1\n")
	out := filepath.Join(dir, "out.nc")

	stats, err := Convert(traj, meta, out, Config{Log: testLogger()})
	if !errors.Is(err, ErrNoMetadata) {
		t.Fatalf("want ErrNoMetadata but have %v", err)
	}
	if stats == nil || stats.Rows != 1 {
		t.Fatalf("the first drifter should have been committed: %+v", stats)
	}
	r, err := nc.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Len("aomlid"); n != 1 {
		t.Errorf("committed rows: %d", n)
	}
	r.Close()

	stats, err = Convert(traj, meta, out, Config{Log: testLogger(), AllowMissingMetadata: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 2 {
		t.Errorf("rows: %d", stats.Rows)
	}
	r, err = nc.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	dep, err := r.Float64s("deplat")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dep, []float64{10, nc.FillDouble}) {
		t.Errorf("deplat: %v", dep)
	}
}

func TestConvertBadMetadata(t *testing.T) {
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.dat", "1001 too short\n")
	traj := writeFile(t, dir, "traj.dat", testTraj)
	out := filepath.Join(dir, "out.nc")
	_, err := Convert(traj, meta, out, Config{Log: testLogger()})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want a ParseError but have %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output should not be created: %v", err)
	}
}

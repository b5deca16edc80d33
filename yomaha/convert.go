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

// Package yomaha converts the YoMaHa'07 dataset of deep and surface
// velocities estimated from Argo float trajectories into a table
// container with one row per line of the input.
//
// See http://apdrc.soest.hawaii.edu/projects/yomaha/ for a description
// of the dataset.
package yomaha

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/drift/nc"
)

// DefaultLineBuffer is the default number of rows held in memory.
const DefaultLineBuffer = 100000

// Dim is the name of the row dimension.
const Dim = "id"

// ParseError reports a malformed input line.
type ParseError struct {
	File string
	Line int // 1-based
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("yomaha: %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ChunkWriter receives consecutive chunks of rows. cols holds one slice
// per entry of Columns; the slices are reused after WriteChunk returns.
type ChunkWriter interface {
	WriteChunk(begin int, cols []interface{}) error
}

// Converter converts YoMaHa'07 files.
type Converter struct {
	// LineBuffer is the number of rows held in memory before they are
	// written out. It must be at least 1.
	LineBuffer int

	// Log receives progress messages. It defaults to the standard logger.
	Log logrus.FieldLogger
}

// Stats summarizes a conversion.
type Stats struct {
	Rows, Flushes int
	Elapsed       time.Duration
}

func (c *Converter) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Schema returns the layout of a YoMaHa'07 container.
func Schema(history, source, id string) *nc.TableSchema {
	s := &nc.TableSchema{
		Dim:   Dim,
		Index: nc.Variable{Name: Dim, LongName: "line number in the input file", Type: nc.Int},
		Global: []nc.Attribute{
			{Name: "history", Value: history},
			{Name: "source", Value: source},
			{Name: "id", Value: id},
		},
	}
	for _, col := range Columns {
		s.Columns = append(s.Columns, col.Variable())
	}
	return s
}

// CountLines returns the number of lines in r.
func CountLines(r io.Reader) (int, error) {
	buf := bufio.NewScanner(r)
	n := 0
	for buf.Scan() {
		n++
	}
	return n, buf.Err()
}

// Transfer reads every line of r into buffers of c.LineBuffer rows and
// writes each full buffer, and the final partial one, to w. name is used
// in error messages.
func (c *Converter) Transfer(r io.Reader, name string, w ChunkWriter) (Stats, error) {
	var stats Stats
	if c.LineBuffer < 1 {
		return stats, fmt.Errorf("yomaha: line buffer must be at least 1 but is %d", c.LineBuffer)
	}
	bufs := make([]columnBuffer, len(Columns))
	for i, col := range Columns {
		bufs[i] = newBuffer(col, c.LineBuffer)
	}
	held, begin := 0, 0
	flush := func() error {
		cols := make([]interface{}, len(bufs))
		for i, b := range bufs {
			cols[i] = b.masked()
		}
		if err := w.WriteChunk(begin, cols); err != nil {
			return err
		}
		for _, b := range bufs {
			b.reset()
		}
		stats.Flushes++
		begin += held
		held = 0
		c.log().WithFields(logrus.Fields{
			"rows": humanize.Comma(int64(begin)),
		}).Debug("yomaha flushed rows")
		return nil
	}

	buf := bufio.NewScanner(r)
	line := 0
	for buf.Scan() {
		line++
		tokens := strings.Fields(buf.Text())
		if len(tokens) != len(Columns) {
			return stats, &ParseError{File: name, Line: line,
				Err: fmt.Errorf("have %d columns but need %d", len(tokens), len(Columns))}
		}
		for i, tok := range tokens {
			if err := bufs[i].add(tok); err != nil {
				return stats, &ParseError{File: name, Line: line,
					Err: fmt.Errorf("column %s: %v", Columns[i].Name, err)}
			}
		}
		held++
		stats.Rows++
		if held == c.LineBuffer {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := buf.Err(); err != nil {
		return stats, fmt.Errorf("yomaha: reading %s: %w", name, err)
	}
	if held > 0 {
		if err := flush(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// ConvertFile converts the file at in into a new container at out. If
// zlib is true the container is gzip compressed.
func (c *Converter) ConvertFile(in, out string, zlib bool) (*Stats, error) {
	start := time.Now()
	id := uuid.New().String()
	log := c.log().WithField("conversion", id)
	log.WithFields(logrus.Fields{
		"input":  in,
		"output": out,
		"zlib":   zlib,
	}).Info("yomaha converting")

	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("yomaha: %w", err)
	}
	defer f.Close()
	n, err := CountLines(f)
	if err != nil {
		return nil, fmt.Errorf("yomaha: reading %s: %w", in, err)
	}
	// rewind the file
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("yomaha: %w", err)
	}

	schema := Schema("created by drift yomaha on "+start.Format(time.ANSIC), "from "+in, id)
	cc := *c
	cc.Log = log
	var stats Stats
	write := func(path string) error {
		w, err := nc.CreateTable(path, schema, n)
		if err != nil {
			return err
		}
		stats, err = cc.Transfer(f, in, w)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		return err
	}
	if zlib {
		err = nc.WithGzip(out, write)
	} else {
		err = write(out)
	}
	stats.Elapsed = time.Since(start)
	if err != nil {
		return &stats, err
	}
	log.WithFields(logrus.Fields{
		"rows":    humanize.Comma(int64(stats.Rows)),
		"flushes": stats.Flushes,
	}).Infof("yomaha done after %.6f seconds", stats.Elapsed.Seconds())
	return &stats, nil
}

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
)

// ErrInterleaved is returned when the observations of a drifter do not
// form one contiguous run, i.e. the input is not grouped by identifier.
var ErrInterleaved = errors.New("gdp: observations are not grouped by identifier")

// Run is the observation lines of one drifter, split into tokens.
type Run struct {
	ID        int64
	FirstLine int // 1-based
	Lines     [][]string
}

// Scanner splits an observation file into runs of consecutive lines
// sharing the same identifier. A run ends at a change of identifier,
// at a blank line or at the end of the input. The input must be grouped
// by identifier: an identifier appearing again after its run ended is
// an error.
type Scanner struct {
	buf  *bufio.Scanner
	name string
	line int

	// look-ahead line starting the next run
	pending     []string
	pendingLine int

	seen map[int64]struct{}
	run  Run
	err  error
}

// NewScanner returns a Scanner reading from r. name is used in error
// messages.
func NewScanner(r io.Reader, name string) *Scanner {
	return &Scanner{
		buf:  bufio.NewScanner(r),
		name: name,
		seen: make(map[int64]struct{}),
	}
}

// next returns the tokens of the next line. ok is false at the end of
// the input or on a read error.
func (s *Scanner) next() (tokens []string, ok bool) {
	if !s.buf.Scan() {
		if err := s.buf.Err(); err != nil {
			s.err = fmt.Errorf("gdp: reading %s: %w", s.name, err)
		}
		return nil, false
	}
	s.line++
	return strings.Fields(s.buf.Text()), true
}

func (s *Scanner) parseID(tok string, line int) (int64, bool) {
	id, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		s.err = &ParseError{File: s.name, Line: line, Err: fmt.Errorf("identifier: %v", err)}
		return 0, false
	}
	return id, true
}

// Scan advances to the next run, which is then available through Run.
// It returns false at the end of the input or on an error, which is then
// available through Err.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	first, firstLine := s.pending, s.pendingLine
	s.pending = nil
	for first == nil {
		tokens, ok := s.next()
		if !ok {
			return false
		}
		if len(tokens) > 0 {
			first, firstLine = tokens, s.line
		}
	}
	id, ok := s.parseID(first[0], firstLine)
	if !ok {
		return false
	}
	if _, dup := s.seen[id]; dup {
		s.err = &ParseError{File: s.name, Line: firstLine,
			Err: fmt.Errorf("%w: identifier %d appears again after its run ended", ErrInterleaved, id)}
		return false
	}
	s.seen[id] = struct{}{}

	run := Run{ID: id, FirstLine: firstLine, Lines: [][]string{first}}
	for {
		tokens, ok := s.next()
		if !ok {
			if s.err != nil {
				return false
			}
			break
		}
		if len(tokens) == 0 {
			break
		}
		next, ok := s.parseID(tokens[0], s.line)
		if !ok {
			return false
		}
		if next != id {
			s.pending, s.pendingLine = tokens, s.line
			break
		}
		run.Lines = append(run.Lines, tokens)
	}
	s.run = run
	return true
}

// Run returns the run found by the last call to Scan.
func (s *Scanner) Run() Run { return s.run }

// Err returns the first error encountered by Scan.
func (s *Scanner) Err() error { return s.err }

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

// Package gdp converts Global Drifter Program trajectory files and their
// deployment metadata into trajectory containers.
//
// The observation file must be grouped by drifter: all observations of a
// drifter form one contiguous run of lines. Each run is joined with the
// single metadata record of its drifter and written as one row of a
// contiguous ragged array container (see package nc), with rows numbered
// densely from zero in file order.
package gdp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/drift"
	"github.com/spatialmodel/drift/internal/hash"
	"github.com/spatialmodel/drift/nc"
)

// Config holds the options of a conversion.
type Config struct {
	Speed SpeedSource

	// AllowMissingMetadata writes null metadata for drifters without a
	// metadata record instead of failing.
	AllowMissingMetadata bool

	// Log receives progress messages. It defaults to the standard logger.
	Log logrus.FieldLogger
}

// Stats summarizes a conversion.
type Stats struct {
	Rows, Observations int
	Elapsed            time.Duration
}

// progressInterval is the number of rows between progress messages.
const progressInterval = 1000

// Convert converts the observation file trajPath joined with the metadata
// file metaPath into a new container at outPath. Both inputs are read
// before the output is created. If the conversion fails after that, the
// rows written so far remain readable in the output.
func Convert(trajPath, metaPath, outPath string, cfg Config) (*Stats, error) {
	start := time.Now()
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	id := uuid.New().String()
	log := cfg.Log.WithField("conversion", id)

	mf, err := os.Open(metaPath)
	if err != nil {
		return nil, fmt.Errorf("gdp: %w", err)
	}
	meta, err := ReadMetadata(mf, metaPath)
	mf.Close()
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"file":    metaPath,
		"records": humanize.Comma(int64(len(meta.Rows))),
	}).Info("gdp read metadata")

	tf, err := os.Open(trajPath)
	if err != nil {
		return nil, fmt.Errorf("gdp: %w", err)
	}
	defer tf.Close()
	nobs, err := countObservations(tf)
	if err != nil {
		return nil, fmt.Errorf("gdp: reading %s: %w", trajPath, err)
	}
	// rewind the file
	if _, err = tf.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("gdp: %w", err)
	}

	schema := Schema(Provenance{
		History:        "created by drift gdp on " + start.Format(time.ANSIC),
		Source:         "from " + trajPath + " and " + metaPath,
		ID:             id,
		MetadataDigest: hash.Digest(meta.Rows),
		SpeedSource:    cfg.Speed,
	})
	w, err := nc.CreateRagged(outPath, schema, nobs)
	if err != nil {
		return nil, err
	}
	cfg.Log = log
	stats, err := convert(NewScanner(tf, trajPath), meta, w, cfg, trajPath)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	stats.Elapsed = time.Since(start)
	if err != nil {
		return &stats, err
	}
	log.WithFields(logrus.Fields{
		"rows":         humanize.Comma(int64(stats.Rows)),
		"observations": humanize.Comma(int64(stats.Observations)),
		"output":       outPath,
	}).Infof("gdp done after %.6f seconds", stats.Elapsed.Seconds())
	return &stats, nil
}

// rowWriter is the destination of converted rows.
type rowWriter interface {
	Append(nc.Row) (int, error)
}

func convert(sc *Scanner, meta *Metadata, w rowWriter, cfg Config, file string) (Stats, error) {
	var stats Stats
	nullMeta := make([]drift.Float, len(deploymentVars))
	for sc.Scan() {
		run := sc.Run()
		traj, err := Transform(run, cfg.Speed, file)
		if err != nil {
			return stats, err
		}
		row := nc.Row{ID: run.ID, Samples: traj.Samples()}
		d, err := meta.Lookup(run.ID)
		switch {
		case err == nil:
			row.Scalars = d.Scalars()
		case errors.Is(err, ErrNoMetadata) && cfg.AllowMissingMetadata:
			cfg.Log.WithFields(logrus.Fields{
				"id":   run.ID,
				"line": run.FirstLine,
			}).Warn("gdp writing null metadata")
			row.Scalars = nullMeta
		default:
			return stats, fmt.Errorf("%w (observations from %s:%d)", err, file, run.FirstLine)
		}
		n, err := w.Append(row)
		if err != nil {
			return stats, err
		}
		if n != stats.Rows {
			return stats, fmt.Errorf("gdp: drifter %d was written at row %d instead of %d", run.ID, n, stats.Rows)
		}
		stats.Rows++
		stats.Observations += traj.Len()
		cfg.Log.WithFields(logrus.Fields{
			"row":          n,
			"id":           run.ID,
			"observations": traj.Len(),
		}).Debug("gdp wrote drifter")
		if stats.Rows%progressInterval == 0 {
			cfg.Log.WithFields(logrus.Fields{
				"rows":         humanize.Comma(int64(stats.Rows)),
				"observations": humanize.Comma(int64(stats.Observations)),
			}).Info("gdp progress")
		}
	}
	return stats, sc.Err()
}

// countObservations returns the number of non-blank lines in r.
func countObservations(r io.Reader) (int, error) {
	buf := bufio.NewScanner(r)
	n := 0
	for buf.Scan() {
		if strings.TrimSpace(buf.Text()) != "" {
			n++
		}
	}
	return n, buf.Err()
}

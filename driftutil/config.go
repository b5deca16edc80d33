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

package driftutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// logger receives the messages of all commands.
var logger = logrus.StandardLogger()

// setLogger configures logger from the log_level option.
func setLogger() error {
	level, err := logrus.ParseLevel(Cfg.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("drift: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return nil
}

// checkInputFile makes sure that the input file exists, and expands any
// environment variables.
func checkInputFile(f string) (string, error) {
	f = os.ExpandEnv(f)
	fi, err := os.Stat(f)
	if err != nil {
		return f, fmt.Errorf("drift: the input file doesn't exist: %v", err)
	}
	if fi.IsDir() {
		return f, fmt.Errorf("drift: the input file %s is a directory", f)
	}
	return f, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("drift: you need to specify an output file")
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("drift: the output file directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLineBuffer converts the line_buffer option, which may come from a
// flag, a configuration file or an environment variable, to a positive
// integer.
func checkLineBuffer(v interface{}) (int, error) {
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("drift: line buffer must be an integer: %v", err)
	}
	if n < 1 {
		return 0, fmt.Errorf("drift: line buffer must be at least 1 but is %d", n)
	}
	return n, nil
}

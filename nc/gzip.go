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
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// GzipFile compresses the file at src into a new file at dst.
func GzipFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("nc: %v", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("nc: %v", err)
	}
	zw, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		out.Close()
		return fmt.Errorf("nc: %v", err)
	}
	zw.Name = filepath.Base(src)
	if _, err := io.Copy(zw, in); err != nil {
		out.Close()
		return fmt.Errorf("nc: compressing %s: %v", src, err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("nc: compressing %s: %v", src, err)
	}
	return out.Close()
}

// WithGzip calls write with the path of a temporary file in the directory
// of dst and then compresses that file into dst. The temporary file is
// removed in any case.
func WithGzip(dst string, write func(tmp string) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.nc")
	if err != nil {
		return fmt.Errorf("nc: %v", err)
	}
	name := tmp.Name()
	tmp.Close()
	defer os.Remove(name)
	if err := write(name); err != nil {
		return err
	}
	return GzipFile(dst, name)
}

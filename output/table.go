// Copyright 2024 Quasar Labs
// This file is part of the Quasar uncertainty quantification toolkit.
//
// Quasar is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quasar is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Quasar. If not, see <http://www.gnu.org/licenses/>.

// Package output writes sample and stratum tables as whitespace
// separated text, optionally gzip compressed.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// NewTableWriter creates a new TableWriter that writes to a file using a
// buffer. A ".gz" suffix selects gzip compression. The written layout is
// the one the stratum design loader reads back.
func NewTableWriter(path string) (TableWriter, error) {
	_, err := os.Stat(path)
	if err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".gz") {
		gzipWriter := gzip.NewWriter(file)
		return &tableWriter{
			buffer:  bufio.NewWriter(gzipWriter),
			closers: []io.Closer{gzipWriter, file},
		}, nil
	}
	return &tableWriter{
		buffer:  bufio.NewWriter(file),
		closers: []io.Closer{file},
	}, nil
}

//go:generate mockgen -source table.go -destination table_mock.go -package output

type TableWriter interface {
	// WriteComment writes a '#' prefixed line skipped by the table readers.
	WriteComment(text string) error
	// WriteRow writes one whitespace separated row of values.
	WriteRow(values ...float64) error
	// WriteTable writes all rows in order.
	WriteTable(rows [][]float64) error
	Close() error
}

// WriteBuffer is a wrapper around necessary interfaces for writing rows to a file for mocking purposes.
type WriteBuffer interface {
	io.Writer
	io.StringWriter
	Flush() error
}

type tableWriter struct {
	buffer  WriteBuffer
	closers []io.Closer
}

func (w *tableWriter) WriteComment(text string) error {
	if _, err := w.buffer.WriteString("# " + text + "\n"); err != nil {
		return fmt.Errorf("error writing comment to buffer: %w", err)
	}
	return nil
}

func (w *tableWriter) WriteRow(values ...float64) error {
	if len(values) == 0 {
		return errors.New("a table row needs at least one value")
	}
	var sb strings.Builder
	for k, v := range values {
		if k > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	sb.WriteByte('\n')
	if _, err := w.buffer.WriteString(sb.String()); err != nil {
		return fmt.Errorf("error writing row to buffer: %w", err)
	}
	return nil
}

func (w *tableWriter) WriteTable(rows [][]float64) error {
	for _, row := range rows {
		if err := w.WriteRow(row...); err != nil {
			return err
		}
	}
	return nil
}

func (w *tableWriter) Close() error {
	// Flush the buffer to ensure all rows reach the file, then close
	// the gzip stream before the file beneath it.
	err := w.buffer.Flush()
	for _, closer := range w.closers {
		err = errors.Join(err, closer.Close())
	}
	return err
}

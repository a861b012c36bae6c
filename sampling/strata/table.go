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

package strata

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

// Load reads a persisted stratum design from a text table. Each row
// holds one stratum: d origin columns followed by d width columns. A
// ".gz" suffix selects gzip decompression. The loaded design must be
// space-filling within SpaceFillTolerance.
func Load(path string) (*Partition, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not stat design file: %s, does it exist? %w", path, err)
	}
	if stat.IsDir() {
		return nil, errors.New("given path to a stratum design is a directory")
	}
	if stat.Size() == 0 {
		return nil, errors.New("given stratum design file is empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open design file: %s, %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("could not create gzip reader for design file: %s, %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return Read(r)
}

// Read parses a stratum design table and validates the space-filling
// invariant. Blank lines and lines starting with '#' are skipped.
func Read(r io.Reader) (*Partition, error) {
	var (
		origins [][]float64
		widths  [][]float64
		d       int
		line    int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if d == 0 {
			if len(fields)%2 != 0 {
				return nil, fmt.Errorf("Read: row %d has %d columns; origins and widths require an even count", line, len(fields))
			}
			d = len(fields) / 2
		}
		if len(fields) != 2*d {
			return nil, fmt.Errorf("Read: row %d has %d columns; expected %d", line, len(fields), 2*d)
		}
		row := make([]float64, 2*d)
		for k, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("Read: row %d column %d is not a number: %w", line, k+1, err)
			}
			row[k] = v
		}
		origins = append(origins, row[:d])
		widths = append(widths, row[d:])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("Read: cannot scan design table; %v", err)
	}
	if len(origins) == 0 {
		return nil, errors.New("stratum design table holds no rows")
	}

	p, err := NewExplicit(origins, widths)
	if err != nil {
		return nil, err
	}
	if err := p.checkSpaceFill(); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteTable writes the design in the layout accepted by Read.
func (p *Partition) WriteTable(w io.Writer) error {
	var sb strings.Builder
	for i := range p.weights {
		sb.Reset()
		for k := range p.origins[i] {
			if k > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(p.origins[i][k], 'g', -1, 64))
		}
		for k := range p.widths[i] {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(p.widths[i][k], 'g', -1, 64))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return fmt.Errorf("WriteTable: cannot write stratum %d; %v", i, err)
		}
	}
	return nil
}

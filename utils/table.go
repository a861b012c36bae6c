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

package utils

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

// LoadTable reads a whitespace separated numeric table. Blank lines and
// lines starting with '#' are skipped; a ".gz" suffix selects gzip
// decompression. All rows must share the column count of the first row.
func LoadTable(path string) ([][]float64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not stat table file: %s, does it exist? %w", path, err)
	}
	if stat.IsDir() {
		return nil, errors.New("given path to a table is a directory")
	}
	if stat.Size() == 0 {
		return nil, errors.New("given table file is empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open table file: %s, %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("could not create gzip reader for table file: %s, %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return readTable(r)
}

func readTable(r io.Reader) ([][]float64, error) {
	var (
		rows [][]float64
		line int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(rows) > 0 && len(fields) != len(rows[0]) {
			return nil, fmt.Errorf("LoadTable: row %d has %d columns; expected %d", line, len(fields), len(rows[0]))
		}
		row := make([]float64, len(fields))
		for k, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("LoadTable: row %d column %d is not a number: %w", line, k+1, err)
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("LoadTable: cannot scan table; %v", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("table holds no rows")
	}
	return rows, nil
}

// SplitResponses splits table rows into leading site columns and m
// trailing response columns, as laid out in a surrogate design file.
func SplitResponses(rows [][]float64, m int) (sites, values [][]float64, err error) {
	if m <= 0 {
		return nil, nil, fmt.Errorf("SplitResponses: response count must be positive; got %d", m)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("SplitResponses: no rows to split")
	}
	if len(rows[0]) <= m {
		return nil, nil, fmt.Errorf("SplitResponses: rows hold %d column(s); need at least %d for %d response(s)", len(rows[0]), m+1, m)
	}
	d := len(rows[0]) - m
	sites = make([][]float64, len(rows))
	values = make([][]float64, len(rows))
	for i, row := range rows {
		sites[i] = row[:d]
		values[i] = row[d:]
	}
	return sites, values, nil
}

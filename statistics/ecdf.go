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

package statistics

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// NumECDFPoints sets the number of points a compressed empirical
// cumulative distribution function keeps.
const NumECDFPoints = 300

// CompressedCDF is a piecewise linear empirical cumulative
// distribution function over the unit square. Points start at (0,0)
// and end at (1,1); Lo and Hi map the unit interval back onto the
// value range.
type CompressedCDF struct {
	Points [][2]float64
	Lo, Hi float64
}

// Compress builds a compressed empirical cdf from weighted values.
// Nil weights count every value once; weights must not be negative and
// their total must be positive. Equal values merge into one point. The
// curve is reduced to NumECDFPoints points with the Visvalingam-Whyatt
// algorithm.
func Compress(values, weights []float64) (*CompressedCDF, error) {
	n := len(values)
	if n == 0 {
		return nil, fmt.Errorf("Compress: at least one value is required")
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("Compress: got %d weights for %d values", len(weights), n)
	}

	type pair struct{ value, weight float64 }
	pairs := make([]pair, n)
	total, comp := 0.0, 0.0
	for i, v := range values {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w < 0 {
			return nil, fmt.Errorf("Compress: weight %d is negative", i)
		}
		pairs[i] = pair{value: v, weight: w}

		y := w - comp
		t := total + y
		comp = (t - total) - y
		total = t
	}
	if total <= 0 {
		return nil, fmt.Errorf("Compress: total weight must be positive")
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

	// Tied values carry their combined mass at a single point, so the
	// curve never gets a vertical segment in its interior.
	merged := pairs[:1]
	for _, p := range pairs[1:] {
		if p.value == merged[len(merged)-1].value {
			merged[len(merged)-1].weight += p.weight
			continue
		}
		merged = append(merged, p)
	}

	lo := merged[0].value
	hi := merged[len(merged)-1].value
	if lo == hi {
		return nil, fmt.Errorf("Compress: all values coincide at %v", lo)
	}

	ls := orb.LineString{{0, 0}}
	cum, comp := 0.0, 0.0
	for _, p := range merged {
		// Kahan summation keeps the accumulated mass exact even when
		// single weights are tiny.
		y := p.weight/total - comp
		t := cum + y
		comp = (t - cum) - y
		cum = t
		ls = append(ls, orb.Point{(p.value - lo) / (hi - lo), cum})
	}
	// The last value sits at x=1 and carries the full mass up to Kahan
	// drift; snap it onto the (1,1) anchor.
	ls[len(ls)-1][1] = 1

	simplifier := simplify.VisvalingamKeep(NumECDFPoints)
	compressed := simplifier.Simplify(ls).(orb.LineString)
	points := make([][2]float64, len(compressed))
	for i := range compressed {
		points[i] = [2]float64(compressed[i])
	}
	if err := Check(points); err != nil {
		return nil, fmt.Errorf("Compress: %v", err)
	}
	return &CompressedCDF{Points: points, Lo: lo, Hi: hi}, nil
}

// Check reports whether a piecewise linear function is valid as a cdf:
// it must start at (0,0), end at (1,1) and its points must increase
// monotonically.
func Check(f [][2]float64) error {
	if len(f) < 2 {
		return fmt.Errorf("a cdf needs at least a start and an end point")
	}
	if f[0] != [2]float64{0, 0} {
		return fmt.Errorf("a cdf must start at (0,0), but starts at (%v,%v)", f[0][0], f[0][1])
	}
	last := len(f) - 1
	if f[last] != [2]float64{1, 1} {
		return fmt.Errorf("a cdf must end at (1,1), but ends at (%v,%v)", f[last][0], f[last][1])
	}
	for i := range len(f) - 1 {
		if f[i][0] >= f[i+1][0] && f[i][1] >= f[i+1][1] {
			return fmt.Errorf("cdf points must increase monotonically, but point %d (%v,%v) is not smaller than point %d (%v,%v)",
				i, f[i][0], f[i][1], i+1, f[i+1][0], f[i+1][1])
		}
	}
	return nil
}

// CDF evaluates the cumulative probability at x in value space.
func (c *CompressedCDF) CDF(x float64) float64 {
	u := (x - c.Lo) / (c.Hi - c.Lo)
	if u <= 0 {
		return 0
	}
	f := c.Points
	for i := range len(f) - 1 {
		if f[i+1][0] >= u {
			scale := (u - f[i][0]) / (f[i+1][0] - f[i][0])
			return f[i][1] + scale*(f[i+1][1]-f[i][1])
		}
	}
	return 1
}

// Quantile evaluates the inverse cumulative probability at u and
// returns a point in value space.
func (c *CompressedCDF) Quantile(u float64) float64 {
	if u <= 0 {
		return c.Lo
	}
	f := c.Points
	for i := range len(f) - 1 {
		if f[i+1][1] >= u {
			scale := (u - f[i][1]) / (f[i+1][1] - f[i][1])
			x := f[i][0] + scale*(f[i+1][0]-f[i][0])
			return c.Lo + x*(c.Hi-c.Lo)
		}
	}
	return c.Hi
}

// Sample draws one value by inverse transform sampling.
func (c *CompressedCDF) Sample(rg *rand.Rand) float64 {
	return c.Quantile(rg.Float64())
}

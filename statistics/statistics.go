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

// Package statistics summarizes sample streams: running moment
// accumulators for run diagnostics and compressed empirical
// distribution functions for archival.
package statistics

import (
	"fmt"
	"math"

	"github.com/quasar-uq/quasar/distribution"
)

// Accumulator folds a stream of observations into count, extrema, a
// compensated total and the first four central moment aggregates. The
// zero value is an empty accumulator ready for use.
type Accumulator struct {
	count    int
	min, max float64

	// Kahan compensated running total.
	sum, comp float64

	mean       float64
	m2, m3, m4 float64
}

// Add folds one observation into the summary.
func (a *Accumulator) Add(x float64) {
	if a.count == 0 {
		a.min, a.max = x, x
	} else {
		if x < a.min {
			a.min = x
		}
		if x > a.max {
			a.max = x
		}
	}

	y := x - a.comp
	t := a.sum + y
	a.comp = (t - a.sum) - y
	a.sum = t

	n1 := float64(a.count)
	a.count++
	n := float64(a.count)
	delta := x - a.mean
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term := delta * deltaN * n1
	a.mean += deltaN
	a.m4 += term*deltaN2*(n*n-3*n+3) + 6*deltaN2*a.m2 - 4*deltaN*a.m3
	a.m3 += term*deltaN*(n-2) - 3*deltaN*a.m2
	a.m2 += term
}

// AddAll folds a batch of observations into the summary.
func (a *Accumulator) AddAll(xs []float64) {
	for _, x := range xs {
		a.Add(x)
	}
}

// Count returns the number of observations.
func (a *Accumulator) Count() int { return a.count }

// Min returns the smallest observation, NaN when empty.
func (a *Accumulator) Min() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.min
}

// Max returns the largest observation, NaN when empty.
func (a *Accumulator) Max() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.max
}

// Sum returns the compensated total of all observations.
func (a *Accumulator) Sum() float64 { return a.sum }

// Mean returns the running mean, NaN when empty.
func (a *Accumulator) Mean() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.mean
}

// Variance returns the population variance, NaN when empty.
func (a *Accumulator) Variance() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.m2 / float64(a.count)
}

// Skewness returns the standardized third moment. Constant streams
// yield NaN.
func (a *Accumulator) Skewness() float64 {
	return math.Sqrt(float64(a.count)) * a.m3 / math.Pow(a.m2, 1.5)
}

// ExKurtosis returns the standardized fourth moment less 3. Constant
// streams yield NaN.
func (a *Accumulator) ExKurtosis() float64 {
	return float64(a.count)*a.m4/(a.m2*a.m2) - 3
}

// Moments bundles the summary in distribution form.
func (a *Accumulator) Moments() distribution.Moments {
	return distribution.Moments{
		Mean:       a.Mean(),
		Variance:   a.Variance(),
		Skewness:   a.Skewness(),
		ExKurtosis: a.ExKurtosis(),
	}
}

// Vector accumulates per-axis summaries of sample rows.
type Vector struct {
	axes []Accumulator
}

// NewVector returns a vector accumulator for rows of the given
// dimension.
func NewVector(dim int) (*Vector, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("NewVector: dimension must be positive; got %d", dim)
	}
	return &Vector{axes: make([]Accumulator, dim)}, nil
}

// Dimension returns the row dimension.
func (v *Vector) Dimension() int { return len(v.axes) }

// Add folds one sample row into the per-axis summaries.
func (v *Vector) Add(row []float64) error {
	if len(row) != len(v.axes) {
		return fmt.Errorf("Add: row has dimension %d; want %d", len(row), len(v.axes))
	}
	for j, x := range row {
		v.axes[j].Add(x)
	}
	return nil
}

// AddAll folds a batch of sample rows into the per-axis summaries.
func (v *Vector) AddAll(rows [][]float64) error {
	for _, row := range rows {
		if err := v.Add(row); err != nil {
			return err
		}
	}
	return nil
}

// Axis returns the accumulator of axis j.
func (v *Vector) Axis(j int) *Accumulator { return &v.axes[j] }

// RawMoments returns the per-axis means and raw second moments as two
// rows, the moment layout a reduced order model fit consumes.
func (v *Vector) RawMoments() [][]float64 {
	means := make([]float64, len(v.axes))
	seconds := make([]float64, len(v.axes))
	for j := range v.axes {
		a := &v.axes[j]
		means[j] = a.Mean()
		seconds[j] = a.Variance() + a.mean*a.mean
	}
	return [][]float64{means, seconds}
}

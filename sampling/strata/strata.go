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

// Package strata maintains rectilinear, space-filling partitions of the
// unit hypercube for stratified sampling designs.
package strata

import (
	"fmt"
	"math"
)

// SpaceFillTolerance bounds the deviation of the total stratum volume
// from one when a persisted design is loaded.
const SpaceFillTolerance = 1e-5

// Partition is a set of axis-aligned boxes tiling the unit hypercube.
// Each stratum has a lower-corner origin, a strictly positive width per
// axis, and a weight equal to its volume. Strata are only ever split,
// never merged or removed.
type Partition struct {
	dimension int
	origins   [][]float64
	widths    [][]float64
	weights   []float64
}

// NewFullFactorial builds the regular grid design with the given number
// of strata per axis. The first axis level varies fastest in the stratum
// enumeration.
func NewFullFactorial(counts []int) (*Partition, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("NewFullFactorial: at least one axis is required")
	}
	total := 1
	for k, c := range counts {
		if c < 1 {
			return nil, fmt.Errorf("NewFullFactorial: stratum count of axis %d must be positive; got %d", k, c)
		}
		total *= c
	}

	d := len(counts)
	p := &Partition{
		dimension: d,
		origins:   make([][]float64, total),
		widths:    make([][]float64, total),
		weights:   make([]float64, total),
	}
	for i := 0; i < total; i++ {
		p.origins[i] = make([]float64, d)
		p.widths[i] = make([]float64, d)
	}

	levelRepeat := 1
	rangeRepeat := total
	for k, c := range counts {
		rangeRepeat /= c
		i := 0
		for r := 0; r < rangeRepeat; r++ {
			for level := 0; level < c; level++ {
				for rep := 0; rep < levelRepeat; rep++ {
					p.origins[i][k] = float64(level) / float64(c)
					p.widths[i][k] = 1 / float64(c)
					i++
				}
			}
		}
		levelRepeat *= c
	}

	for i := 0; i < total; i++ {
		p.weights[i] = volume(p.widths[i])
	}
	return p, nil
}

// NewExplicit wraps caller-supplied origins and widths. Shapes are
// validated; the space-filling property is the caller's responsibility.
func NewExplicit(origins, widths [][]float64) (*Partition, error) {
	if len(origins) == 0 {
		return nil, fmt.Errorf("NewExplicit: at least one stratum is required")
	}
	if len(origins) != len(widths) {
		return nil, fmt.Errorf("NewExplicit: %d origins but %d widths", len(origins), len(widths))
	}
	d := len(origins[0])
	p := &Partition{
		dimension: d,
		origins:   make([][]float64, len(origins)),
		widths:    make([][]float64, len(widths)),
		weights:   make([]float64, len(origins)),
	}
	for i := range origins {
		if len(origins[i]) != d || len(widths[i]) != d {
			return nil, fmt.Errorf("NewExplicit: stratum %d does not have dimension %d", i, d)
		}
		for k := range widths[i] {
			if widths[i][k] <= 0 {
				return nil, fmt.Errorf("NewExplicit: width of stratum %d along axis %d must be positive; got %v", i, k, widths[i][k])
			}
		}
		p.origins[i] = append([]float64(nil), origins[i]...)
		p.widths[i] = append([]float64(nil), widths[i]...)
		p.weights[i] = volume(widths[i])
	}
	return p, nil
}

// Dimension returns the dimension of the partitioned hypercube.
func (p *Partition) Dimension() int { return p.dimension }

// Size returns the number of strata.
func (p *Partition) Size() int { return len(p.weights) }

// Origin returns the lower corner of stratum i.
func (p *Partition) Origin(i int) []float64 { return p.origins[i] }

// Width returns the per-axis widths of stratum i.
func (p *Partition) Width(i int) []float64 { return p.widths[i] }

// Weight returns the volume of stratum i.
func (p *Partition) Weight(i int) float64 { return p.weights[i] }

// Weights returns the volumes of all strata.
func (p *Partition) Weights() []float64 { return p.weights }

// SpaceFill returns the total volume of the partition.
func (p *Partition) SpaceFill() float64 {
	sum := 0.0
	for _, w := range p.weights {
		sum += w
	}
	return sum
}

// Split halves stratum i along the given axis and appends the far half
// as a new stratum. The two halves exactly tile the original box. The
// index of the new stratum is returned.
func (p *Partition) Split(i, axis int) (int, error) {
	if i < 0 || i >= len(p.weights) {
		return 0, fmt.Errorf("Split: stratum index %d out of range [0,%d)", i, len(p.weights))
	}
	if axis < 0 || axis >= p.dimension {
		return 0, fmt.Errorf("Split: axis %d out of range [0,%d)", axis, p.dimension)
	}

	p.widths[i][axis] /= 2
	p.weights[i] /= 2

	origin := append([]float64(nil), p.origins[i]...)
	origin[axis] += p.widths[i][axis]
	width := append([]float64(nil), p.widths[i]...)

	p.origins = append(p.origins, origin)
	p.widths = append(p.widths, width)
	p.weights = append(p.weights, p.weights[i])
	return len(p.weights) - 1, nil
}

// SplitAround halves stratum i along the given axis so that the half
// holding x stays with stratum i and the empty half is appended as a
// new stratum. A point exactly on the midpoint counts as the upper
// half. The index of the new stratum is returned.
func (p *Partition) SplitAround(i, axis int, x []float64) (int, error) {
	if i < 0 || i >= len(p.weights) {
		return 0, fmt.Errorf("SplitAround: stratum index %d out of range [0,%d)", i, len(p.weights))
	}
	if axis < 0 || axis >= p.dimension {
		return 0, fmt.Errorf("SplitAround: axis %d out of range [0,%d)", axis, p.dimension)
	}

	p.widths[i][axis] /= 2
	p.weights[i] /= 2
	half := p.widths[i][axis]

	origin := append([]float64(nil), p.origins[i]...)
	if x[axis] < p.origins[i][axis]+half {
		origin[axis] += half
	} else {
		p.origins[i][axis] += half
	}
	width := append([]float64(nil), p.widths[i]...)

	p.origins = append(p.origins, origin)
	p.widths = append(p.widths, width)
	p.weights = append(p.weights, p.weights[i])
	return len(p.weights) - 1, nil
}

// Contains reports whether point x lies in stratum i. Points on the
// lower face belong to the stratum, points on the upper face do not.
func (p *Partition) Contains(i int, x []float64) bool {
	for k := range p.origins[i] {
		if x[k] < p.origins[i][k] || x[k] >= p.origins[i][k]+p.widths[i][k] {
			return false
		}
	}
	return true
}

// checkSpaceFill validates the space-filling invariant of a loaded
// design within SpaceFillTolerance.
func (p *Partition) checkSpaceFill() error {
	sum := p.SpaceFill()
	if math.Abs(sum-1) <= SpaceFillTolerance {
		return nil
	}
	if sum < 1 {
		return fmt.Errorf("stratum design is not space-filling; total volume %v", sum)
	}
	return fmt.Errorf("stratum design is over-filling; total volume %v", sum)
}

func volume(widths []float64) float64 {
	v := 1.0
	for _, w := range widths {
		v *= w
	}
	return v
}

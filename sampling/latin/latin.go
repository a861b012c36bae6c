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

// Package latin implements Latin hypercube sampling with several design
// selection criteria.
package latin

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/quasar-uq/quasar/distribution"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Design selection criteria.
const (
	// CriterionRandom shuffles one uniform draw per bin and axis.
	CriterionRandom = "random"
	// CriterionCentered places points at the bin midpoints.
	CriterionCentered = "centered"
	// CriterionMaximin keeps the candidate design with the largest
	// minimal pairwise distance.
	CriterionMaximin = "maximin"
	// CriterionCorrelate keeps the candidate design with the smallest
	// off-diagonal correlation.
	CriterionCorrelate = "correlate"
)

// defaultIterations is the number of candidate designs scored by the
// maximin and correlate criteria when none is configured.
const defaultIterations = 100

// Sampler produces Latin hypercube designs over the marginals of a
// joint distribution.
type Sampler struct {
	marginals  []distribution.Univariate
	criterion  string
	iterations int
	rg         *rand.Rand
}

// New validates the criterion and creates the sampler. iterations
// applies to the maximin and correlate criteria; zero selects the
// default.
func New(marginals []distribution.Univariate, criterion string, iterations int, rg *rand.Rand) (*Sampler, error) {
	if len(marginals) == 0 {
		return nil, fmt.Errorf("New: at least one marginal is required")
	}
	switch criterion {
	case CriterionRandom, CriterionCentered, CriterionMaximin, CriterionCorrelate:
	default:
		return nil, fmt.Errorf("New: unknown latin hypercube criterion %q", criterion)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("New: iterations must not be negative; got %d", iterations)
	}
	if iterations == 0 {
		iterations = defaultIterations
	}
	return &Sampler{
		marginals:  marginals,
		criterion:  criterion,
		iterations: iterations,
		rg:         rg,
	}, nil
}

// Run draws an n-point design. It returns the unit-hypercube design and
// the physical samples obtained by mapping each axis through its
// marginal inverse cdf.
func (s *Sampler) Run(n int) (unit, samples [][]float64, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("Run: sample count must be positive; got %d", n)
	}

	criterion := s.criterion
	if n < 2 && (criterion == CriterionMaximin || criterion == CriterionCorrelate) {
		// a single point has no pairwise score
		criterion = CriterionRandom
	}

	switch criterion {
	case CriterionRandom:
		unit = s.randomDesign(n)
	case CriterionCentered:
		unit = s.centeredDesign(n)
	case CriterionMaximin:
		best := math.Inf(-1)
		for range s.iterations {
			candidate := s.randomDesign(n)
			if d := minDistance(candidate); d > best {
				best = d
				unit = candidate
			}
		}
	case CriterionCorrelate:
		best := math.Inf(1)
		for range s.iterations {
			candidate := s.randomDesign(n)
			if r := offDiagonalNorm(candidate); r < best {
				best = r
				unit = candidate
			}
		}
	}

	samples = make([][]float64, n)
	for i := range n {
		samples[i] = make([]float64, len(s.marginals))
		for k, m := range s.marginals {
			samples[i][k] = m.ICDF(unit[i][k])
		}
	}
	return unit, samples, nil
}

// randomDesign draws one point uniformly inside each of the n equal
// probability bins of every axis and shuffles each axis independently.
func (s *Sampler) randomDesign(n int) [][]float64 {
	d := len(s.marginals)
	design := make([][]float64, n)
	for i := range n {
		design[i] = make([]float64, d)
		for k := range d {
			design[i][k] = (float64(i) + s.rg.Float64()) / float64(n)
		}
	}
	s.shuffleColumns(design)
	return design
}

// centeredDesign places each axis at its bin midpoints before
// shuffling.
func (s *Sampler) centeredDesign(n int) [][]float64 {
	d := len(s.marginals)
	design := make([][]float64, n)
	for i := range n {
		design[i] = make([]float64, d)
		for k := range d {
			design[i][k] = (float64(i) + 0.5) / float64(n)
		}
	}
	s.shuffleColumns(design)
	return design
}

func (s *Sampler) shuffleColumns(design [][]float64) {
	n := len(design)
	for k := range len(s.marginals) {
		order := s.rg.Perm(n)
		column := make([]float64, n)
		for i := range n {
			column[i] = design[order[i]][k]
		}
		for i := range n {
			design[i][k] = column[i]
		}
	}
}

// minDistance returns the smallest pairwise Euclidean distance of a
// design.
func minDistance(design [][]float64) float64 {
	min := math.Inf(1)
	for i := range design {
		for j := i + 1; j < len(design); j++ {
			if d := floats.Distance(design[i], design[j], 2); d < min {
				min = d
			}
		}
	}
	return min
}

// offDiagonalNorm returns the Frobenius norm of the strictly upper
// triangle of the design's correlation matrix.
func offDiagonalNorm(design [][]float64) float64 {
	n, d := len(design), len(design[0])
	data := mat.NewDense(n, d, nil)
	for i := range design {
		data.SetRow(i, design[i])
	}
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)

	sum := 0.0
	for i := range d {
		for j := i + 1; j < d; j++ {
			v := corr.At(i, j)
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

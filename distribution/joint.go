// Copyright 2025 Quasar Labs
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

package distribution

import (
	"fmt"
	"math/rand"
)

// Joint is an independent product of univariate marginals, optionally
// coupled by a bivariate copula.
type Joint struct {
	marginals []Univariate
	copula    Copula
}

// NewJoint builds a multivariate distribution from its marginals. A
// copula, when given, requires exactly two marginals.
func NewJoint(marginals []Univariate, copula Copula) (*Joint, error) {
	if len(marginals) == 0 {
		return nil, fmt.Errorf("NewJoint: at least one marginal is required")
	}
	for k, m := range marginals {
		if m == nil {
			return nil, fmt.Errorf("NewJoint: marginal %d is nil", k)
		}
	}
	if copula != nil && len(marginals) != 2 {
		return nil, fmt.Errorf("NewJoint: a copula requires exactly two marginals; got %d", len(marginals))
	}
	return &Joint{marginals: marginals, copula: copula}, nil
}

// Dimension returns the number of marginals.
func (j *Joint) Dimension() int { return len(j.marginals) }

// Marginals returns the per-axis distributions.
func (j *Joint) Marginals() []Univariate { return j.marginals }

// Coupled reports whether a copula couples the marginals.
func (j *Joint) Coupled() bool { return j.copula != nil }

func (j *Joint) checkDimension(x []float64) {
	if len(x) != len(j.marginals) {
		panic(fmt.Sprintf("distribution: point has dimension %d, joint has %d", len(x), len(j.marginals)))
	}
}

// PDF evaluates the joint density at x.
func (j *Joint) PDF(x []float64) float64 {
	j.checkDimension(x)
	p := 1.0
	for k, m := range j.marginals {
		p *= m.PDF(x[k])
	}
	if j.copula != nil {
		u := j.marginals[0].CDF(x[0])
		v := j.marginals[1].CDF(x[1])
		p *= j.copula.Density(u, v)
	}
	return p
}

// LogPDF evaluates the joint log density at x as the sum of the marginal
// log densities plus the floored log copula density.
func (j *Joint) LogPDF(x []float64) float64 {
	j.checkDimension(x)
	sum := 0.0
	for k, m := range j.marginals {
		sum += m.LogPDF(x[k])
	}
	if j.copula != nil {
		u := j.marginals[0].CDF(x[0])
		v := j.marginals[1].CDF(x[1])
		sum += FloorLog(j.copula.Density(u, v))
	}
	return sum
}

// CDF evaluates the joint cumulative probability at x.
func (j *Joint) CDF(x []float64) float64 {
	j.checkDimension(x)
	if j.copula != nil {
		u := j.marginals[0].CDF(x[0])
		v := j.marginals[1].CDF(x[1])
		return j.copula.CDF(u, v)
	}
	p := 1.0
	for k, m := range j.marginals {
		p *= m.CDF(x[k])
	}
	return p
}

// ICDF is defined for univariate distributions only and always fails for
// a joint.
func (j *Joint) ICDF(u []float64) ([]float64, error) {
	return nil, fmt.Errorf("ICDF: inverse cdf is defined for univariate distributions only; joint has dimension %d", len(j.marginals))
}

// Sample draws n points by per-axis inverse transform. Drawing from a
// copula-coupled joint is not supported.
func (j *Joint) Sample(rg *rand.Rand, n int) ([][]float64, error) {
	if j.copula != nil {
		return nil, fmt.Errorf("Sample: drawing from a copula-coupled distribution is not supported")
	}
	if n < 0 {
		return nil, fmt.Errorf("Sample: sample count must not be negative; got %d", n)
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		x := make([]float64, len(j.marginals))
		for k, m := range j.marginals {
			x[k] = m.Sample(rg)
		}
		out[i] = x
	}
	return out, nil
}

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

// Package distribution provides the probability distributions consumed by
// the samplers: built-in univariate families, independent products with an
// optional copula, and the reduction of user-supplied densities to a
// uniform log-density contract.
package distribution

import (
	"math"
	"math/rand"
)

// DensityFloor is the smallest density value used when converting a
// density to log form. Densities below the floor are clamped so that the
// logarithm stays finite.
const DensityFloor = 1e-320

// FloorLog returns log(max(p, DensityFloor)).
func FloorLog(p float64) float64 {
	return math.Log(math.Max(p, DensityFloor))
}

// Moments holds the first four moments of a distribution. Higher moments
// are NaN where the family does not define them.
type Moments struct {
	Mean       float64
	Variance   float64
	Skewness   float64
	ExKurtosis float64
}

// Univariate is the contract of a one dimensional distribution. Built-in
// families satisfy it; user-defined distributions may plug in their own
// implementation wherever a Univariate is accepted.
type Univariate interface {
	// PDF evaluates the probability density (or mass) at x.
	PDF(x float64) float64
	// LogPDF evaluates the log density at x.
	LogPDF(x float64) float64
	// CDF evaluates the cumulative probability at x.
	CDF(x float64) float64
	// ICDF evaluates the inverse cumulative probability at u in [0,1].
	ICDF(u float64) float64
	// Sample draws one realization using the given random generator.
	Sample(rg *rand.Rand) float64
	// Moments reports mean, variance, skewness and excess kurtosis.
	Moments() Moments
}

// Target is a (possibly unnormalized) target density handed to a sampler,
// resolved at construction into log form. A target built from per-axis
// marginals additionally keeps the individual axis densities so that
// component-wise samplers can run in marginal mode.
type Target struct {
	logJoint func(x []float64) float64
	axes     []func(x float64) float64
}

// NewTargetFromLog wraps a joint log-density callable.
func NewTargetFromLog(f func(x []float64) float64) Target {
	return Target{logJoint: f}
}

// NewTargetFromPDF wraps a joint density callable, flooring near-zero
// values before taking the logarithm.
func NewTargetFromPDF(f func(x []float64) float64) Target {
	return Target{logJoint: func(x []float64) float64 {
		return FloorLog(f(x))
	}}
}

// NewTargetFromJoint wraps a joint distribution, flooring near-zero
// density values before taking the logarithm.
func NewTargetFromJoint(j *Joint) Target {
	return Target{logJoint: func(x []float64) float64 {
		return FloorLog(j.PDF(x))
	}}
}

// NewTargetFromMarginals builds a target from independent per-axis
// densities. The joint log density is the sum of the axis log densities;
// component-wise samplers may instead address each axis on its own.
func NewTargetFromMarginals(marginals ...Univariate) Target {
	axes := make([]func(x float64) float64, len(marginals))
	for k, m := range marginals {
		axes[k] = func(x float64) float64 {
			return FloorLog(m.PDF(x))
		}
	}
	return Target{
		logJoint: func(x []float64) float64 {
			sum := 0.0
			for k := range axes {
				sum += axes[k](x[k])
			}
			return sum
		},
		axes: axes,
	}
}

// IsZero reports whether no target density has been supplied.
func (t Target) IsZero() bool {
	return t.logJoint == nil && t.axes == nil
}

// LogJoint returns the joint log density callable.
func (t Target) LogJoint() func(x []float64) float64 {
	return t.logJoint
}

// Axes returns the per-axis log densities and whether the target was
// built from marginals.
func (t Target) Axes() ([]func(x float64) float64, bool) {
	return t.axes, t.axes != nil
}

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
	"math"
	"math/rand"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat/distuv"
)

// New resolves a family name and its parameter vector into a Univariate.
// The lookup happens once here; samplers afterwards work with the
// resolved value only. Parameter conventions per family:
//
//	normal, gaussian: mean, stddev
//	uniform:          min, max
//	beta:             alpha, beta
//	gamma:            shape, rate
//	exponential:      rate
//	laplace:          location, scale
//	lognormal:        log-mean, log-stddev
//	pareto:           scale, shape
//	rayleigh:         scale
//	weibull:          shape, scale
//	chisquare:        degrees of freedom
//	gumbel:           location, scale
//	student:          location, scale, degrees of freedom
//	triangular:       min, max, mode
//	binomial:         trials, success probability
//	poisson:          rate
func New(name string, params ...float64) (Univariate, error) {
	b, ok := builders[strings.ToLower(name)]
	if !ok {
		known := maps.Keys(builders)
		slices.Sort(known)
		return nil, fmt.Errorf("New: unknown distribution family %q (known: %v)", name, known)
	}
	if len(params) != b.arity {
		return nil, fmt.Errorf("New: family %q requires %d parameter(s); got %d", name, b.arity, len(params))
	}
	return b.build(params)
}

// NewList builds one Univariate per family name, drawing each family's
// parameters from the front of the shared flat params slice. The slice
// must hold exactly the parameters of all named families back to back,
// which is how they arrive from a repeated command line flag.
func NewList(names []string, params []float64) ([]Univariate, error) {
	dists := make([]Univariate, 0, len(names))
	for _, name := range names {
		b, ok := builders[strings.ToLower(name)]
		if !ok {
			known := maps.Keys(builders)
			slices.Sort(known)
			return nil, fmt.Errorf("NewList: unknown distribution family %q (known: %v)", name, known)
		}
		if len(params) < b.arity {
			return nil, fmt.Errorf("NewList: family %q requires %d parameter(s); only %d left", name, b.arity, len(params))
		}
		d, err := b.build(params[:b.arity])
		if err != nil {
			return nil, err
		}
		dists = append(dists, d)
		params = params[b.arity:]
	}
	if len(params) != 0 {
		return nil, fmt.Errorf("NewList: %d parameter(s) left over after building %d marginal(s)", len(params), len(names))
	}
	return dists, nil
}

type builder struct {
	arity int
	build func(p []float64) (Univariate, error)
}

var builders = map[string]builder{
	"normal":      {2, buildNormal},
	"gaussian":    {2, buildNormal},
	"uniform":     {2, buildUniform},
	"beta":        {2, buildBeta},
	"gamma":       {2, buildGamma},
	"exponential": {1, buildExponential},
	"laplace":     {2, buildLaplace},
	"lognormal":   {2, buildLogNormal},
	"pareto":      {2, buildPareto},
	"rayleigh":    {1, buildRayleigh},
	"weibull":     {2, buildWeibull},
	"chisquare":   {1, buildChiSquare},
	"gumbel":      {2, buildGumbel},
	"student":     {3, buildStudent},
	"triangular":  {3, buildTriangular},
	"binomial":    {2, buildBinomial},
	"poisson":     {1, buildPoisson},
}

// baseDist is the method set shared by every wrapped gonum distribution.
type baseDist interface {
	Prob(x float64) float64
	LogProb(x float64) float64
	CDF(x float64) float64
	Mean() float64
	Variance() float64
}

// family adapts one concrete gonum distribution to the Univariate API.
// Draws use inverse-transform sampling so that one draw consumes exactly
// one position of the injected random stream.
type family struct {
	name     string
	dist     baseDist
	quantile func(u float64) float64
}

func newFamily(name string, d baseDist, discrete bool) *family {
	f := &family{name: name, dist: d}
	switch q := d.(type) {
	case interface{ Quantile(p float64) float64 }:
		f.quantile = q.Quantile
	default:
		if discrete {
			f.quantile = discreteQuantile(d.CDF)
		} else {
			f.quantile = bisectQuantile(d.CDF)
		}
	}
	return f
}

func (f *family) PDF(x float64) float64    { return f.dist.Prob(x) }
func (f *family) LogPDF(x float64) float64 { return f.dist.LogProb(x) }
func (f *family) CDF(x float64) float64    { return f.dist.CDF(x) }
func (f *family) ICDF(u float64) float64   { return f.quantile(u) }
func (f *family) String() string           { return f.name }

func (f *family) Sample(rg *rand.Rand) float64 { return f.quantile(rg.Float64()) }

func (f *family) Moments() Moments {
	m := Moments{
		Mean:       f.dist.Mean(),
		Variance:   f.dist.Variance(),
		Skewness:   math.NaN(),
		ExKurtosis: math.NaN(),
	}
	if s, ok := f.dist.(interface{ Skewness() float64 }); ok {
		m.Skewness = s.Skewness()
	}
	if k, ok := f.dist.(interface{ ExKurtosis() float64 }); ok {
		m.ExKurtosis = k.ExKurtosis()
	}
	return m
}

func buildNormal(p []float64) (Univariate, error) {
	if p[1] <= 0 {
		return nil, fmt.Errorf("normal: stddev must be positive; got %v", p[1])
	}
	return newFamily("normal", distuv.Normal{Mu: p[0], Sigma: p[1]}, false), nil
}

func buildUniform(p []float64) (Univariate, error) {
	if p[0] >= p[1] {
		return nil, fmt.Errorf("uniform: min must be below max; got [%v,%v]", p[0], p[1])
	}
	return newFamily("uniform", distuv.Uniform{Min: p[0], Max: p[1]}, false), nil
}

func buildBeta(p []float64) (Univariate, error) {
	if p[0] <= 0 || p[1] <= 0 {
		return nil, fmt.Errorf("beta: shape parameters must be positive; got [%v,%v]", p[0], p[1])
	}
	return newFamily("beta", distuv.Beta{Alpha: p[0], Beta: p[1]}, false), nil
}

func buildGamma(p []float64) (Univariate, error) {
	if p[0] <= 0 || p[1] <= 0 {
		return nil, fmt.Errorf("gamma: shape and rate must be positive; got [%v,%v]", p[0], p[1])
	}
	return newFamily("gamma", distuv.Gamma{Alpha: p[0], Beta: p[1]}, false), nil
}

func buildExponential(p []float64) (Univariate, error) {
	if p[0] <= 0 {
		return nil, fmt.Errorf("exponential: rate must be positive; got %v", p[0])
	}
	return newFamily("exponential", distuv.Exponential{Rate: p[0]}, false), nil
}

func buildLaplace(p []float64) (Univariate, error) {
	if p[1] <= 0 {
		return nil, fmt.Errorf("laplace: scale must be positive; got %v", p[1])
	}
	return newFamily("laplace", distuv.Laplace{Mu: p[0], Scale: p[1]}, false), nil
}

func buildLogNormal(p []float64) (Univariate, error) {
	if p[1] <= 0 {
		return nil, fmt.Errorf("lognormal: log-stddev must be positive; got %v", p[1])
	}
	return newFamily("lognormal", distuv.LogNormal{Mu: p[0], Sigma: p[1]}, false), nil
}

func buildPareto(p []float64) (Univariate, error) {
	if p[0] <= 0 || p[1] <= 0 {
		return nil, fmt.Errorf("pareto: scale and shape must be positive; got [%v,%v]", p[0], p[1])
	}
	return newFamily("pareto", distuv.Pareto{Xm: p[0], Alpha: p[1]}, false), nil
}

func buildRayleigh(p []float64) (Univariate, error) {
	if p[0] <= 0 {
		return nil, fmt.Errorf("rayleigh: scale must be positive; got %v", p[0])
	}
	return newFamily("rayleigh", distuv.Rayleigh{Sigma: p[0]}, false), nil
}

func buildWeibull(p []float64) (Univariate, error) {
	if p[0] <= 0 || p[1] <= 0 {
		return nil, fmt.Errorf("weibull: shape and scale must be positive; got [%v,%v]", p[0], p[1])
	}
	return newFamily("weibull", distuv.Weibull{K: p[0], Lambda: p[1]}, false), nil
}

func buildChiSquare(p []float64) (Univariate, error) {
	if p[0] <= 0 {
		return nil, fmt.Errorf("chisquare: degrees of freedom must be positive; got %v", p[0])
	}
	return newFamily("chisquare", distuv.ChiSquared{K: p[0]}, false), nil
}

func buildGumbel(p []float64) (Univariate, error) {
	if p[1] <= 0 {
		return nil, fmt.Errorf("gumbel: scale must be positive; got %v", p[1])
	}
	return newFamily("gumbel", distuv.GumbelRight{Mu: p[0], Beta: p[1]}, false), nil
}

func buildStudent(p []float64) (Univariate, error) {
	if p[1] <= 0 {
		return nil, fmt.Errorf("student: scale must be positive; got %v", p[1])
	}
	if p[2] <= 0 {
		return nil, fmt.Errorf("student: degrees of freedom must be positive; got %v", p[2])
	}
	return newFamily("student", distuv.StudentsT{Mu: p[0], Sigma: p[1], Nu: p[2]}, false), nil
}

func buildTriangular(p []float64) (Univariate, error) {
	a, b, c := p[0], p[1], p[2]
	if a >= b {
		return nil, fmt.Errorf("triangular: min must be below max; got [%v,%v]", a, b)
	}
	if c < a || c > b {
		return nil, fmt.Errorf("triangular: mode must lie within [min,max]; got %v", c)
	}
	return newFamily("triangular", distuv.NewTriangle(a, b, c), false), nil
}

func buildBinomial(p []float64) (Univariate, error) {
	if p[0] < 0 || p[0] != math.Trunc(p[0]) {
		return nil, fmt.Errorf("binomial: trial count must be a non-negative integer; got %v", p[0])
	}
	if p[1] < 0 || p[1] > 1 {
		return nil, fmt.Errorf("binomial: success probability must lie in [0,1]; got %v", p[1])
	}
	return newFamily("binomial", distuv.Binomial{N: p[0], P: p[1]}, true), nil
}

func buildPoisson(p []float64) (Univariate, error) {
	if p[0] <= 0 {
		return nil, fmt.Errorf("poisson: rate must be positive; got %v", p[0])
	}
	return newFamily("poisson", distuv.Poisson{Lambda: p[0]}, true), nil
}

// discreteQuantile inverts the CDF of an integer-supported distribution
// by a galloping search followed by a binary search.
func discreteQuantile(cdf func(x float64) float64) func(u float64) float64 {
	return func(u float64) float64 {
		if u <= cdf(0) {
			return 0
		}
		lo, hi := 0.0, 1.0
		for cdf(hi) < u {
			lo = hi
			hi *= 2
			if hi > 1<<52 {
				return hi
			}
		}
		for hi-lo > 1 {
			mid := math.Floor((lo + hi) / 2)
			if cdf(mid) < u {
				lo = mid
			} else {
				hi = mid
			}
		}
		return hi
	}
}

// bisectQuantile inverts a continuous CDF numerically. It is the fallback
// for wrapped distributions that do not provide their own quantile.
func bisectQuantile(cdf func(x float64) float64) func(u float64) float64 {
	return func(u float64) float64 {
		lo, hi := -1.0, 1.0
		for cdf(lo) > u {
			lo *= 2
			if math.IsInf(lo, -1) {
				return lo
			}
		}
		for cdf(hi) < u {
			hi *= 2
			if math.IsInf(hi, 1) {
				return hi
			}
		}
		for iter := 0; iter < 200; iter++ {
			mid := (lo + hi) / 2
			if mid == lo || mid == hi {
				break
			}
			if cdf(mid) < u {
				lo = mid
			} else {
				hi = mid
			}
		}
		return (lo + hi) / 2
	}
}

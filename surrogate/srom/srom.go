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

// Package srom fits stochastic reduced order models: probability
// weights over a fixed sample set that approximate a continuous random
// vector by matching its marginal distributions, raw moments and
// correlation.
package srom

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/quasar-uq/quasar/distribution"
)

// Config bundles the inputs of a model fit.
type Config struct {
	// Samples holds the support points, one row per point. Required.
	Samples [][]float64

	// Marginals are the target distributions, one per axis. A single
	// entry applies to every axis.
	Marginals []distribution.Univariate

	// Moments holds the target raw moments, one row of means and
	// optionally a second row of raw second moments. Required whenever
	// moments or correlation are matched. A single row counts as the
	// second-moment row when only second moments are matched.
	Moments [][]float64

	// Properties flags which errors enter the objective: marginal
	// cdfs, first moments, second moments, correlation. Defaults to
	// all but correlation.
	Properties []bool

	// ErrorWeights scale the cdf, moment and correlation errors.
	// Defaults to 1, 0.2 and 0.
	ErrorWeights []float64

	// DistributionWeights weight the cdf error per ascending rank
	// within each axis. A single row applies to every rank. Defaults
	// to ones.
	DistributionWeights [][]float64

	// MomentWeights weight the moment errors, one row per moment
	// order. A single row applies to both orders. Defaults to the
	// reciprocal squared target moments.
	MomentWeights [][]float64

	// CorrelationWeights weight the pairwise correlation errors.
	// Defaults to ones.
	CorrelationWeights [][]float64

	// Correlation is the target correlation matrix. Defaults to the
	// identity.
	Correlation [][]float64
}

// Model holds a validated fit problem over a fixed support.
type Model struct {
	samples [][]float64
	n, dim  int
	props   []bool

	errWeights  []float64
	distWeights [][]float64
	momWeights  [][]float64
	corrWeights [][]float64
	moments     [][]float64

	// order lists sample indices by ascending coordinate per axis,
	// cdfs the target marginal cdf at the sorted coordinates, and
	// targets the correlation-implied cross moments.
	order   [][]int
	cdfs    [][]float64
	targets [][]float64
}

// New validates the configuration and precomputes the fixed parts of
// the objective.
func New(cfg Config) (*Model, error) {
	if len(cfg.Samples) == 0 {
		return nil, fmt.Errorf("New: a sample set is required")
	}
	n := len(cfg.Samples)
	dim := len(cfg.Samples[0])
	if dim == 0 {
		return nil, fmt.Errorf("New: samples need at least one coordinate")
	}
	for i, row := range cfg.Samples {
		if len(row) != dim {
			return nil, fmt.Errorf("New: sample %d has dimension %d; want %d", i, len(row), dim)
		}
	}

	marginals := cfg.Marginals
	switch {
	case len(marginals) == 0:
		return nil, fmt.Errorf("New: target marginals are required")
	case len(marginals) == 1:
		shared := marginals[0]
		marginals = make([]distribution.Univariate, dim)
		for j := range marginals {
			marginals[j] = shared
		}
	case len(marginals) != dim:
		return nil, fmt.Errorf("New: got %d marginals for dimension %d", len(marginals), dim)
	}

	props := cfg.Properties
	if len(props) == 0 {
		props = []bool{true, true, true, false}
	}
	if len(props) != 4 {
		return nil, fmt.Errorf("New: got %d matching flags; want 4", len(props))
	}

	moments := cfg.Moments
	if props[1] || props[2] || props[3] {
		if len(moments) == 0 {
			return nil, fmt.Errorf("New: target moments are required to match moments or correlation")
		}
	}
	if len(moments) > 2 {
		return nil, fmt.Errorf("New: got %d moment rows; want 1 or 2", len(moments))
	}
	for i, row := range moments {
		if len(row) != dim {
			return nil, fmt.Errorf("New: moment row %d has dimension %d; want %d", i, len(row), dim)
		}
	}
	if props[1] && props[2] && len(moments) != 2 {
		return nil, fmt.Errorf("New: matching both moment orders needs 2 moment rows")
	}
	if props[3] && len(moments) != 2 {
		return nil, fmt.Errorf("New: matching correlation needs 2 moment rows")
	}
	if len(moments) == 1 {
		// A single row is the second-moment row when only second
		// moments are matched, the mean row otherwise.
		ones := make([]float64, dim)
		for j := range ones {
			ones[j] = 1
		}
		if !props[1] && props[2] {
			moments = [][]float64{ones, moments[0]}
		} else {
			moments = [][]float64{moments[0], ones}
		}
	}

	errWeights := cfg.ErrorWeights
	if errWeights == nil {
		errWeights = []float64{1, 0.2, 0}
	}
	if len(errWeights) != 3 {
		return nil, fmt.Errorf("New: got %d error weights; want 3", len(errWeights))
	}

	distWeights := cfg.DistributionWeights
	switch {
	case distWeights == nil:
		distWeights = constantRows(n, dim, 1)
	case len(distWeights) == 1 && len(distWeights[0]) == dim:
		row := distWeights[0]
		distWeights = make([][]float64, n)
		for i := range distWeights {
			distWeights[i] = append([]float64(nil), row...)
		}
	default:
		if err := checkShape("distribution weight matrix", distWeights, n, dim); err != nil {
			return nil, err
		}
	}

	momWeights := cfg.MomentWeights
	switch {
	case momWeights == nil:
		if len(moments) == 2 {
			momWeights = make([][]float64, 2)
			for i := range momWeights {
				momWeights[i] = make([]float64, dim)
				for j, mm := range moments[i] {
					momWeights[i][j] = 1 / (mm * mm)
				}
			}
		}
	case len(momWeights) == 1 && len(momWeights[0]) == dim:
		row := momWeights[0]
		momWeights = [][]float64{
			append([]float64(nil), row...),
			append([]float64(nil), row...),
		}
	default:
		if err := checkShape("moment weight matrix", momWeights, 2, dim); err != nil {
			return nil, err
		}
	}

	corrWeights := cfg.CorrelationWeights
	if corrWeights == nil {
		corrWeights = constantRows(dim, dim, 1)
	} else if err := checkShape("correlation weight matrix", corrWeights, dim, dim); err != nil {
		return nil, err
	}

	correlation := cfg.Correlation
	if correlation == nil {
		correlation = constantRows(dim, dim, 0)
		for j := range correlation {
			correlation[j][j] = 1
		}
	} else if err := checkShape("correlation matrix", correlation, dim, dim); err != nil {
		return nil, err
	}

	samples := make([][]float64, n)
	for i, row := range cfg.Samples {
		samples[i] = append([]float64(nil), row...)
	}

	m := &Model{
		samples:     samples,
		n:           n,
		dim:         dim,
		props:       props,
		errWeights:  errWeights,
		distWeights: distWeights,
		momWeights:  momWeights,
		corrWeights: corrWeights,
		moments:     moments,
	}

	// The support never moves, so the sort order, the target cdf at
	// the sorted coordinates and the correlation-implied cross moments
	// are fixed for the whole fit.
	m.order = make([][]int, dim)
	m.cdfs = make([][]float64, dim)
	for j := range m.order {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return samples[order[a]][j] < samples[order[b]][j]
		})
		m.order[j] = order
		m.cdfs[j] = make([]float64, n)
		for rank, idx := range order {
			m.cdfs[j][rank] = marginals[j].CDF(samples[idx][j])
		}
	}
	if props[3] {
		m.targets = make([][]float64, dim)
		for j := range m.targets {
			m.targets[j] = make([]float64, dim)
			for k := j + 1; k < dim; k++ {
				varJ := moments[1][j] - moments[0][j]*moments[0][j]
				varK := moments[1][k] - moments[0][k]*moments[0][k]
				m.targets[j][k] = correlation[j][k]*math.Sqrt(varJ*varK) + moments[0][j]*moments[0][k]
			}
		}
	}
	return m, nil
}

func constantRows(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = v
		}
	}
	return out
}

func checkShape(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("New: the %s has %d rows; want %d", name, len(m), rows)
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("New: %s row %d has dimension %d; want %d", name, i, len(row), cols)
		}
	}
	return nil
}

// Run minimizes the weighted error over the probability simplex and
// returns the fitted weights, one per support point. The simplex
// constraint holds exactly through a softmax reparameterization, so
// the returned weights are positive and sum to one.
func (m *Model) Run() []float64 {
	z0 := make([]float64, m.n)
	best := softmax(z0)
	bestCost := m.objective(best)

	cost := func(z []float64) float64 {
		return m.objective(softmax(z))
	}
	problem := optimize.Problem{
		Func: cost,
		Grad: func(grad, z []float64) {
			fd.Gradient(grad, cost, z, nil)
		},
	}
	// Optimizer failures leave the uniform weights in place.
	res, _ := optimize.Minimize(problem, z0, &optimize.Settings{MajorIterations: 500}, &optimize.LBFGS{})
	if res != nil && len(res.X) == m.n {
		cand := softmax(res.X)
		if c := m.objective(cand); c <= bestCost {
			best = cand
		}
	}
	return best
}

// objective is the weighted squared error of the discrete model with
// weights p against the target marginals, moments and correlation.
func (m *Model) objective(p []float64) float64 {
	var e1, e2, e22, e3 float64
	for j := 0; j < m.dim; j++ {
		if m.props[0] {
			cum := 0.0
			for rank, idx := range m.order[j] {
				cum += p[idx]
				diff := cum - m.cdfs[j][rank]
				e1 += m.distWeights[rank][j] * diff * diff
			}
		}
		if m.props[1] {
			mean := 0.0
			for i, row := range m.samples {
				mean += p[i] * row[j]
			}
			diff := mean - m.moments[0][j]
			e2 += m.momWeights[0][j] * diff * diff
		}
		if m.props[2] {
			second := 0.0
			for i, row := range m.samples {
				second += p[i] * row[j] * row[j]
			}
			diff := second - m.moments[1][j]
			e22 += m.momWeights[1][j] * diff * diff
		}
		if m.props[3] {
			for k := j + 1; k < m.dim; k++ {
				cross := 0.0
				for i, row := range m.samples {
					cross += p[i] * row[j] * row[k]
				}
				diff := cross - m.targets[j][k]
				e3 += m.corrWeights[k][j] * diff * diff
			}
		}
	}
	return m.errWeights[0]*e1 + m.errWeights[1]*(e2+e22) + m.errWeights[2]*e3
}

func softmax(z []float64) []float64 {
	top := z[0]
	for _, v := range z[1:] {
		if v > top {
			top = v
		}
	}
	out := make([]float64, len(z))
	sum := 0.0
	for i, v := range z {
		out[i] = math.Exp(v - top)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

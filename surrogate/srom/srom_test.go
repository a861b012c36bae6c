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

package srom

import (
	"testing"

	"github.com/quasar-uq/quasar/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformOn(t *testing.T, lo, width float64) distribution.Univariate {
	t.Helper()
	u, err := distribution.New("uniform", lo, width)
	require.NoError(t, err)
	return u
}

func TestNew_Validates(t *testing.T) {
	base := Config{
		Samples:   [][]float64{{0, 0}, {1, 0.5}, {2, 1}, {3, 1.5}},
		Marginals: []distribution.Univariate{uniformOn(t, 0, 3), uniformOn(t, 0, 2)},
		Moments:   [][]float64{{1.5, 0.75}, {3.5, 0.9}},
	}

	tests := []struct {
		name   string
		mutate func(cfg *Config)
		want   string
	}{
		{"missing samples", func(cfg *Config) { cfg.Samples = nil },
			"a sample set is required"},
		{"ragged sample", func(cfg *Config) { cfg.Samples = [][]float64{{0, 0}, {1}} },
			"sample 1 has dimension 1; want 2"},
		{"missing marginals", func(cfg *Config) { cfg.Marginals = nil },
			"target marginals are required"},
		{"single marginal broadcasts", func(cfg *Config) { cfg.Marginals = cfg.Marginals[:1] },
			""},
		{"too many marginals", func(cfg *Config) {
			cfg.Marginals = append(cfg.Marginals, cfg.Marginals[0])
		}, "got 3 marginals for dimension 2"},
		{"bad flag count", func(cfg *Config) { cfg.Properties = []bool{true, true} },
			"got 2 matching flags; want 4"},
		{"missing moments", func(cfg *Config) { cfg.Moments = nil },
			"target moments are required"},
		{"too many moment rows", func(cfg *Config) {
			cfg.Moments = [][]float64{{1, 1}, {2, 2}, {3, 3}}
		}, "got 3 moment rows; want 1 or 2"},
		{"ragged moment row", func(cfg *Config) { cfg.Moments = [][]float64{{1}, {2, 2}} },
			"moment row 0 has dimension 1; want 2"},
		{"both moment orders need two rows", func(cfg *Config) {
			cfg.Moments = [][]float64{{1, 1}}
		}, "matching both moment orders needs 2 moment rows"},
		{"correlation needs two rows", func(cfg *Config) {
			cfg.Properties = []bool{false, false, false, true}
			cfg.Moments = [][]float64{{1, 1}}
		}, "matching correlation needs 2 moment rows"},
		{"bad error weight count", func(cfg *Config) { cfg.ErrorWeights = []float64{1, 1} },
			"got 2 error weights; want 3"},
		{"bad distribution weight shape", func(cfg *Config) {
			cfg.DistributionWeights = [][]float64{{1, 1}, {1, 1}}
		}, "distribution weight matrix has 2 rows; want 4"},
		{"bad moment weight shape", func(cfg *Config) {
			cfg.MomentWeights = [][]float64{{1, 1}, {1, 1}, {1, 1}}
		}, "moment weight matrix has 3 rows; want 2"},
		{"bad correlation weight shape", func(cfg *Config) {
			cfg.CorrelationWeights = [][]float64{{1, 1}}
		}, "correlation weight matrix has 1 rows; want 2"},
		{"bad correlation shape", func(cfg *Config) {
			cfg.Correlation = [][]float64{{1, 0.5}}
		}, "correlation matrix has 1 rows; want 2"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := base
			test.mutate(&cfg)
			_, err := New(cfg)
			if test.want == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, test.want)
		})
	}
}

func TestObjective_HandComputedCase(t *testing.T) {
	m, err := New(Config{
		Samples:   [][]float64{{0}, {1}},
		Marginals: []distribution.Univariate{uniformOn(t, 0, 1)},
		Moments:   [][]float64{{0.5}, {0.5}},
	})
	require.NoError(t, err)

	// e1 = (0.3-0)^2 + (1-1)^2, both moment terms 4*(0.7-0.5)^2,
	// total 0.09 + 0.2*(0.16+0.16)
	assert.InDelta(t, 0.154, m.objective([]float64{0.3, 0.7}), 1e-12)
}

func TestRun_WeightsFormSimplex(t *testing.T) {
	m, err := New(Config{
		Samples:   [][]float64{{0, 0}, {1, 0.5}, {2, 1}, {3, 1.5}},
		Marginals: []distribution.Univariate{uniformOn(t, 0, 3)},
		Moments:   [][]float64{{1.5, 0.75}, {3.5, 0.9}},
	})
	require.NoError(t, err)

	weights := m.Run()
	require.Len(t, weights, 4)
	sum := 0.0
	for _, w := range weights {
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1, sum, 1e-12)
}

func TestRun_ImprovesCDFMatch(t *testing.T) {
	n, err := distribution.New("normal", 0, 1)
	require.NoError(t, err)

	count := 10
	samples := make([][]float64, count)
	for i := range samples {
		samples[i] = []float64{n.ICDF((float64(i) + 0.5) / float64(count))}
	}
	m, err := New(Config{
		Samples:    samples,
		Marginals:  []distribution.Univariate{n},
		Properties: []bool{true, false, false, false},
	})
	require.NoError(t, err)

	weights := m.Run()
	fitted := m.objective(weights)

	uniform := make([]float64, count)
	for i := range uniform {
		uniform[i] = 1 / float64(count)
	}
	assert.LessOrEqual(t, fitted, m.objective(uniform))
	assert.Less(t, fitted, 0.01)

	// piling the mass onto one end is strictly worse
	skewed := make([]float64, count)
	skewed[0] = 1
	assert.Less(t, fitted, m.objective(skewed))
}

func TestRun_MatchesAchievableMoments(t *testing.T) {
	m, err := New(Config{
		Samples:    [][]float64{{1}, {2}, {3}, {4}},
		Marginals:  []distribution.Univariate{uniformOn(t, 1, 3)},
		Properties: []bool{false, true, true, false},
		Moments:    [][]float64{{2.8}, {9.0}},
	})
	require.NoError(t, err)

	weights := m.Run()
	mean, second := 0.0, 0.0
	for i, w := range weights {
		x := float64(i + 1)
		mean += w * x
		second += w * x * x
	}
	assert.InDelta(t, 2.8, mean, 0.05)
	assert.InDelta(t, 9.0, second, 0.2)
}

func TestRun_MatchesCorrelation(t *testing.T) {
	m, err := New(Config{
		Samples:      [][]float64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}},
		Marginals:    []distribution.Univariate{uniformOn(t, -1, 2), uniformOn(t, -1, 2)},
		Properties:   []bool{false, false, false, true},
		ErrorWeights: []float64{0, 0, 1},
		Moments:      [][]float64{{0, 0}, {1, 1}},
		Correlation:  [][]float64{{1, 0.5}, {0.5, 1}},
	})
	require.NoError(t, err)

	weights := m.Run()
	cross := 0.0
	for i, w := range weights {
		cross += w * m.samples[i][0] * m.samples[i][1]
	}
	assert.InDelta(t, 0.5, cross, 0.05)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := Config{
		Samples:   [][]float64{{0}, {1}, {2}, {3}},
		Marginals: []distribution.Univariate{uniformOn(t, 0, 3)},
		Moments:   [][]float64{{1.5}, {3.5}},
	}
	a, err := New(cfg)
	require.NoError(t, err)
	b, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Run(), b.Run())
}

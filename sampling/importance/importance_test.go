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

package importance

import (
	"math"
	"math/rand"
	"testing"

	"github.com/quasar-uq/quasar/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalJoint(t *testing.T, params ...float64) *distribution.Joint {
	t.Helper()
	marginals := make([]distribution.Univariate, 0, len(params)/2)
	for i := 0; i < len(params); i += 2 {
		m, err := distribution.New("normal", params[i], params[i+1])
		require.NoError(t, err)
		marginals = append(marginals, m)
	}
	joint, err := distribution.NewJoint(marginals, nil)
	require.NoError(t, err)
	return joint
}

func TestNew_Validates(t *testing.T) {
	rg := rand.New(rand.NewSource(999))
	proposal := normalJoint(t, 0, 1)
	target := distribution.NewTargetFromLog(func(x []float64) float64 { return 0 })

	_, err := New(nil, target, rg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "a proposal distribution is required")

	_, err = New(proposal, distribution.Target{}, rg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "a target density is required")

	copula, err := distribution.NewGumbelCopula(1.5)
	require.NoError(t, err)
	first, err := distribution.New("normal", 0, 1)
	require.NoError(t, err)
	second, err := distribution.New("normal", 0, 1)
	require.NoError(t, err)
	coupled, err := distribution.NewJoint([]distribution.Univariate{first, second}, copula)
	require.NoError(t, err)
	_, err = New(coupled, target, rg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "copula-coupled proposal cannot be sampled")
}

func TestRun_RejectsNonPositiveCount(t *testing.T) {
	s, err := New(normalJoint(t, 0, 1),
		distribution.NewTargetFromLog(func(x []float64) float64 { return 0 }),
		rand.New(rand.NewSource(999)))
	require.NoError(t, err)
	assert.ErrorContains(t, s.Run(0), "sample count must be positive")
	assert.ErrorContains(t, s.Run(-3), "sample count must be positive")
}

func TestRun_MatchedProposalGivesUniformWeights(t *testing.T) {
	proposal := normalJoint(t, 0, 1, 0, 1)
	target := distribution.NewTargetFromLog(proposal.LogPDF)
	s, err := New(proposal, target, rand.New(rand.NewSource(999)))
	require.NoError(t, err)
	require.NoError(t, s.Run(100))

	for _, lw := range s.LogWeights() {
		assert.Zero(t, lw)
	}
	for _, w := range s.Weights() {
		assert.InDelta(t, 0.01, w, 1e-15)
	}
	require.Len(t, s.Samples(), 100)
	for _, row := range s.Samples() {
		require.Len(t, row, 2)
	}
}

func TestRun_WeightedMeanRecoversTargetMean(t *testing.T) {
	// Proposal much wider than the unnormalized target around 3.
	proposal := normalJoint(t, 0, 3)
	target := distribution.NewTargetFromLog(func(x []float64) float64 {
		return -(x[0] - 3) * (x[0] - 3) / 2
	})
	s, err := New(proposal, target, rand.New(rand.NewSource(999)))
	require.NoError(t, err)
	require.NoError(t, s.Run(20000))

	samples := s.Samples()
	weights := s.Weights()
	sum, mean := 0.0, 0.0
	for i, w := range weights {
		require.GreaterOrEqual(t, w, 0.0)
		sum += w
		mean += w * samples[i][0]
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 3.0, mean, 0.2)
}

func TestRun_EvaluatesCopulaTarget(t *testing.T) {
	copula, err := distribution.NewGumbelCopula(2)
	require.NoError(t, err)
	first, err := distribution.New("normal", 0, 1)
	require.NoError(t, err)
	second, err := distribution.New("normal", 0, 1)
	require.NoError(t, err)
	coupled, err := distribution.NewJoint([]distribution.Univariate{first, second}, copula)
	require.NoError(t, err)

	s, err := New(normalJoint(t, 0, 1, 0, 1), distribution.NewTargetFromJoint(coupled),
		rand.New(rand.NewSource(999)))
	require.NoError(t, err)
	require.NoError(t, s.Run(500))

	sum := 0.0
	for _, w := range s.Weights() {
		require.False(t, math.IsNaN(w))
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestResample_MultiplicityFollowsWeights(t *testing.T) {
	s := &Sampler{
		samples: [][]float64{{1}, {2}},
		weights: []float64{0.9, 0.1},
		rg:      rand.New(rand.NewSource(999)),
	}
	out, err := s.Resample(1000)
	require.NoError(t, err)
	require.Len(t, out, 1000)

	ones := 0
	for _, row := range out {
		if row[0] == 1 {
			ones++
		}
	}
	assert.Greater(t, ones, 850)
	assert.Less(t, ones, 950)

	// rows come out grouped in ascending sample order
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1][0], out[i][0])
	}
}

func TestResample_DefaultSizeMatchesEnsemble(t *testing.T) {
	proposal := normalJoint(t, 0, 1)
	s, err := New(proposal, distribution.NewTargetFromLog(proposal.LogPDF),
		rand.New(rand.NewSource(999)))
	require.NoError(t, err)
	require.NoError(t, s.Run(50))

	out, err := s.Resample(0)
	require.NoError(t, err)
	assert.Len(t, out, 50)
}

func TestResample_Validates(t *testing.T) {
	proposal := normalJoint(t, 0, 1)
	s, err := New(proposal, distribution.NewTargetFromLog(proposal.LogPDF),
		rand.New(rand.NewSource(999)))
	require.NoError(t, err)

	_, err = s.Resample(10)
	require.Error(t, err)
	assert.ErrorContains(t, err, "call Run first")

	require.NoError(t, s.Run(10))
	_, err = s.Resample(-1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "must not be negative")
}

func TestRun_Deterministic(t *testing.T) {
	target := distribution.NewTargetFromLog(func(x []float64) float64 {
		return -x[0] * x[0]
	})
	first, err := New(normalJoint(t, 0, 1), target, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	second, err := New(normalJoint(t, 0, 1), target, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	require.NoError(t, first.Run(200))
	require.NoError(t, second.Run(200))
	assert.Equal(t, first.Samples(), second.Samples())
	assert.Equal(t, first.Weights(), second.Weights())
	assert.Equal(t, first.LogWeights(), second.LogWeights())
}

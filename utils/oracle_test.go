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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtilsOracle_TargetMarginals(t *testing.T) {
	cfg := &Config{
		Target:       []string{"normal", "exponential"},
		TargetParams: []float64{0, 1, 2},
	}
	marginals, err := TargetMarginals(cfg)
	require.NoError(t, err)
	require.Len(t, marginals, 2)
	assert.InDelta(t, 0.0, marginals[0].Moments().Mean, 1e-12)
	assert.InDelta(t, 0.5, marginals[1].Moments().Mean, 1e-12)

	_, err = TargetMarginals(&Config{})
	assert.ErrorContains(t, err, "use --target")

	_, err = TargetMarginals(&Config{Target: []string{"normal"}})
	assert.ErrorContains(t, err, "invalid target distribution")
}

func TestUtilsOracle_TargetJoint(t *testing.T) {
	cfg := &Config{
		Target:       []string{"uniform", "uniform"},
		TargetParams: []float64{0, 1, 0, 1},
	}
	joint, err := TargetJoint(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, joint.Dimension())
	assert.False(t, joint.Coupled())

	cfg.CopulaKind = "gumbel"
	cfg.CopulaParam = 1.5
	joint, err = TargetJoint(cfg)
	require.NoError(t, err)
	assert.True(t, joint.Coupled())

	cfg.CopulaKind = "clayton"
	_, err = TargetJoint(cfg)
	assert.ErrorContains(t, err, "unknown copula family")

	cfg.CopulaKind = "gumbel"
	cfg.CopulaParam = 0.5
	_, err = TargetJoint(cfg)
	assert.Error(t, err)
}

func TestUtilsOracle_ProposalJoint(t *testing.T) {
	cfg := &Config{
		Proposal:       []string{"normal"},
		ProposalParams: []float64{0, 3},
	}
	joint, err := ProposalJoint(cfg)
	require.NoError(t, err)
	require.Equal(t, 1, joint.Dimension())
	assert.InDelta(t, 9.0, joint.Marginals()[0].Moments().Variance, 1e-12)

	_, err = ProposalJoint(&Config{})
	assert.ErrorContains(t, err, "use --proposal")

	_, err = ProposalJoint(&Config{Proposal: []string{"normal"}, ProposalParams: []float64{1}})
	assert.ErrorContains(t, err, "invalid proposal distribution")
}

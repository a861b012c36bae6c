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

package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator_Empty(t *testing.T) {
	var a Accumulator
	assert.Equal(t, 0, a.Count())
	assert.True(t, math.IsNaN(a.Min()))
	assert.True(t, math.IsNaN(a.Max()))
	assert.True(t, math.IsNaN(a.Mean()))
	assert.True(t, math.IsNaN(a.Variance()))
	assert.Zero(t, a.Sum())
}

func TestAccumulator_TracksCountMinMaxSum(t *testing.T) {
	var a Accumulator
	a.AddAll([]float64{3, 1, 4, 1, 5})
	assert.Equal(t, 5, a.Count())
	assert.Equal(t, 1.0, a.Min())
	assert.Equal(t, 5.0, a.Max())
	assert.InDelta(t, 14, a.Sum(), 1e-15)
	assert.InDelta(t, 2.8, a.Mean(), 1e-15)
}

func TestAccumulator_SingleValue(t *testing.T) {
	var a Accumulator
	a.Add(100)
	assert.Equal(t, 100.0, a.Min())
	assert.Equal(t, 100.0, a.Max())
	assert.Equal(t, 100.0, a.Mean())
	assert.Zero(t, a.Variance())
	assert.True(t, math.IsNaN(a.Skewness()))
	assert.True(t, math.IsNaN(a.ExKurtosis()))
}

func TestAccumulator_PairVariance(t *testing.T) {
	var a Accumulator
	a.Add(100)
	a.Add(200)
	// ((100-150)^2 + (200-150)^2) / 2
	assert.InDelta(t, 2500, a.Variance(), 1e-9)
}

func TestAccumulator_MatchesDirectMoments(t *testing.T) {
	values := []float64{0.5, 1.5, 2.0, 4.0, 7.5, -3.0, 0.25}
	var a Accumulator
	a.AddAll(values)

	n := float64(len(values))
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= n
	var m2, m3, m4 float64
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	variance := m2 / n
	skewness := (m3 / n) / math.Pow(variance, 1.5)
	kurtosis := (m4/n)/(variance*variance) - 3

	assert.InDelta(t, mean, a.Mean(), 1e-12)
	assert.InDelta(t, variance, a.Variance(), 1e-12)
	assert.InDelta(t, skewness, a.Skewness(), 1e-12)
	assert.InDelta(t, kurtosis, a.ExKurtosis(), 1e-12)

	m := a.Moments()
	assert.Equal(t, a.Mean(), m.Mean)
	assert.Equal(t, a.Variance(), m.Variance)
	assert.Equal(t, a.Skewness(), m.Skewness)
	assert.Equal(t, a.ExKurtosis(), m.ExKurtosis)
}

func TestVector_Validates(t *testing.T) {
	_, err := NewVector(0)
	require.ErrorContains(t, err, "dimension must be positive")

	v, err := NewVector(2)
	require.NoError(t, err)
	require.ErrorContains(t, v.Add([]float64{1}), "row has dimension 1; want 2")
	require.ErrorContains(t, v.AddAll([][]float64{{1, 2}, {3}}), "row has dimension 1; want 2")
}

func TestVector_RawMomentRows(t *testing.T) {
	v, err := NewVector(2)
	require.NoError(t, err)
	require.NoError(t, v.AddAll([][]float64{{1, 2}, {3, 4}}))

	rows := v.RawMoments()
	require.Len(t, rows, 2)
	assert.InDeltaSlice(t, []float64{2, 3}, rows[0], 1e-12)
	assert.InDeltaSlice(t, []float64{5, 10}, rows[1], 1e-12)

	assert.Equal(t, 2, v.Axis(0).Count())
	assert.Equal(t, 3.0, v.Axis(0).Max())
}

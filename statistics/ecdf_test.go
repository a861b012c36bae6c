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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_Validates(t *testing.T) {
	_, err := Compress(nil, nil)
	require.ErrorContains(t, err, "at least one value is required")

	_, err = Compress([]float64{1, 2}, []float64{1})
	require.ErrorContains(t, err, "got 1 weights for 2 values")

	_, err = Compress([]float64{1, 2}, []float64{1, -1})
	require.ErrorContains(t, err, "weight 1 is negative")

	_, err = Compress([]float64{1, 2}, []float64{0, 0})
	require.ErrorContains(t, err, "total weight must be positive")

	_, err = Compress([]float64{3, 3, 3}, nil)
	require.ErrorContains(t, err, "all values coincide at 3")
}

func TestCompress_UnweightedRange(t *testing.T) {
	rg := rand.New(rand.NewSource(999))
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	rg.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	c, err := Compress(values, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Lo)
	assert.Equal(t, 100.0, c.Hi)
	require.NoError(t, Check(c.Points))

	assert.Zero(t, c.CDF(0.5))
	assert.Equal(t, 1.0, c.CDF(101))
	assert.InDelta(t, 0.5, c.CDF(50.5), 0.02)
	assert.InDelta(t, 25, c.Quantile(0.25), 2)
	assert.InDelta(t, 75, c.Quantile(0.75), 2)
}

func TestCompress_WeightedMassShifts(t *testing.T) {
	c, err := Compress([]float64{0, 1}, []float64{0.3, 0.7})
	require.NoError(t, err)

	// segment from (0, 0.3) to (1, 1)
	assert.InDelta(t, 0.65, c.CDF(0.5), 1e-12)
	assert.InDelta(t, 0.0, c.Quantile(0.3), 1e-12)
	assert.InDelta(t, 1.0, c.Quantile(1), 1e-12)
}

func TestCompress_MergesTiedValues(t *testing.T) {
	c, err := Compress([]float64{1, 1, 2}, nil)
	require.NoError(t, err)

	require.Len(t, c.Points, 3)
	assert.Equal(t, [2]float64{0, 0}, c.Points[0])
	assert.InDelta(t, 2.0/3, c.Points[1][1], 1e-12)
	assert.Equal(t, [2]float64{1, 1}, c.Points[2])
	assert.InDelta(t, 5.0/6, c.CDF(1.5), 1e-12)
}

func TestCompress_ReducesLargeInputs(t *testing.T) {
	rg := rand.New(rand.NewSource(999))
	values := make([]float64, 10000)
	for i := range values {
		values[i] = rg.NormFloat64()
	}

	c, err := Compress(values, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(c.Points), NumECDFPoints)
	require.NoError(t, Check(c.Points))
	assert.Less(t, c.Quantile(0.1), c.Quantile(0.9))
	// the bulk of a standard normal sample sits near the origin
	assert.InDelta(t, 0, c.Quantile(0.5), 0.1)
}

func TestCompressedCDF_QuantileInvertsCDF(t *testing.T) {
	rg := rand.New(rand.NewSource(42))
	values := make([]float64, 500)
	for i := range values {
		values[i] = rg.NormFloat64()
	}
	c, err := Compress(values, nil)
	require.NoError(t, err)

	for _, u := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		assert.InDelta(t, u, c.CDF(c.Quantile(u)), 1e-9)
	}
}

func TestCompressedCDF_SampleStaysInRange(t *testing.T) {
	c, err := Compress([]float64{2, 3, 5, 8}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	rg := rand.New(rand.NewSource(999))
	for range 100 {
		x := c.Sample(rg)
		assert.GreaterOrEqual(t, x, 2.0)
		assert.LessOrEqual(t, x, 8.0)
	}
}

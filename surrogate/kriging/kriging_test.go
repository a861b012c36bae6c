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

package kriging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineFit(t *testing.T, opt *Options) *Surrogate {
	t.Helper()
	sites := [][]float64{{0}, {0.25}, {0.5}, {0.75}, {1}}
	values := make([][]float64, len(sites))
	for i, s := range sites {
		values[i] = []float64{math.Sin(2 * math.Pi * s[0])}
	}
	model, err := Fit(sites, values, BasisLinear, KernelGaussian, opt)
	require.NoError(t, err)
	return model
}

func TestFit_Validates(t *testing.T) {
	good := [][]float64{{0.1, 0.2}, {0.5, 0.9}, {0.8, 0.4}, {0.3, 0.6}}
	goodY := [][]float64{{1}, {2}, {3}, {4}}

	tests := []struct {
		name        string
		sites       [][]float64
		values      [][]float64
		regression  string
		correlation string
		opt         *Options
		want        string
	}{
		{"no sites", nil, nil, BasisLinear, KernelGaussian, nil, "at least one training site"},
		{"ragged sites", [][]float64{{1, 2}, {3}}, goodY[:2], BasisLinear, KernelGaussian, nil, "coordinates"},
		{"value count", good, goodY[:2], BasisLinear, KernelGaussian, nil, "responses for"},
		{"ragged values", good, [][]float64{{1}, {2}, {3}, {4, 5}}, BasisLinear, KernelGaussian, nil, "columns"},
		{"empty values", good, [][]float64{{}, {}, {}, {}}, BasisLinear, KernelGaussian, nil, "response column"},
		{"bad trend", good, goodY, "cubic-spline", KernelGaussian, nil, "unknown regression trend"},
		{"bad kernel", good, goodY, BasisLinear, "matern", nil, "unknown correlation family"},
		{"underdetermined", good, goodY, BasisQuadratic, KernelGaussian, nil, "cannot identify"},
		{"scale count", good, goodY, BasisLinear, KernelGaussian, &Options{Theta: []float64{1}}, "initial scales for dimension"},
		{"scale sign", good, goodY, BasisLinear, KernelGaussian, &Options{Theta: []float64{1, -1}}, "must be positive"},
		{"bad bounds", good, goodY, BasisLinear, KernelGaussian, &Options{Lower: 0.5, Upper: 0.1}, "scale bounds"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Fit(test.sites, test.values, test.regression, test.correlation, test.opt)
			require.ErrorContains(t, err, test.want)
		})
	}
}

func TestFit_ReproducesTrainingData(t *testing.T) {
	sites := [][]float64{
		{0.1, 0.2}, {0.9, 0.15}, {0.45, 0.5}, {0.3, 0.85},
		{0.75, 0.6}, {0.6, 0.05}, {0.2, 0.55},
	}
	values := make([][]float64, len(sites))
	for i, s := range sites {
		values[i] = []float64{s[0]*s[0] + math.Sin(3*s[1])}
	}

	model, err := Fit(sites, values, BasisLinear, KernelGaussian, nil)
	require.NoError(t, err)

	for i, s := range sites {
		got := model.Interpolate(s)
		assert.InDelta(t, values[i][0], got[0], 1e-5, "site %d", i)
	}

	_, mse, err := model.InterpolateMSE(sites[0])
	require.NoError(t, err)
	assert.InDelta(t, 0, mse[0], 1e-5)
}

func TestFit_SineScenario(t *testing.T) {
	model := sineFit(t, nil)

	// exact at a design site
	assert.InDelta(t, 1.0, model.Interpolate([]float64{0.25})[0], 1e-6)

	// between the first two sites the prediction stays between their values
	mid := model.Interpolate([]float64{0.125})[0]
	assert.GreaterOrEqual(t, mid, -1e-6)
	assert.LessOrEqual(t, mid, 1+1e-6)
}

func TestFit_SingularInitialScales(t *testing.T) {
	// Scales this small leave the correlation matrix numerically
	// singular; fitting must inflate them instead of faulting.
	model := sineFit(t, &Options{Theta: []float64{1e-8}})
	assert.Greater(t, model.Theta()[0], 1e-8)

	assert.InDelta(t, 1.0, model.Interpolate([]float64{0.25})[0], 1e-5)
}

func TestFit_CoincidentSites(t *testing.T) {
	sites := [][]float64{{0.3}, {0.3}, {0.7}}
	values := [][]float64{{1}, {1}, {2}}
	_, err := Fit(sites, values, BasisLinear, KernelGaussian, nil)
	require.ErrorContains(t, err, "coincide")
}

func TestFit_RankDeficientRegression(t *testing.T) {
	// All sites share the first coordinate, so the linear trend columns
	// 1 and x1 are dependent.
	sites := [][]float64{{0.5, 0.1}, {0.5, 0.3}, {0.5, 0.5}, {0.5, 0.7}, {0.5, 0.9}}
	values := [][]float64{{1}, {2}, {3}, {4}, {5}}
	_, err := Fit(sites, values, BasisLinear, KernelGaussian, nil)
	require.ErrorContains(t, err, "not sufficiently linearly independent")
}

func TestFit_LinearTrendGradient(t *testing.T) {
	sites := [][]float64{
		{0.1, 0.2}, {0.9, 0.15}, {0.45, 0.5}, {0.3, 0.85}, {0.75, 0.6}, {0.6, 0.05},
	}
	values := make([][]float64, len(sites))
	for i, s := range sites {
		values[i] = []float64{3 + 2*s[0] - s[1]}
	}

	// Residuals are identically zero, so pin the scales; the trend must
	// absorb the data and the gradient must be the trend slope.
	opt := &Options{Lower: 0.999, Upper: 1.001}
	model, err := Fit(sites, values, BasisLinear, KernelGaussian, opt)
	require.NoError(t, err)

	jac := model.Jacobian([]float64{0.4, 0.7})
	r, c := jac.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 1, c)
	assert.InDelta(t, 2, jac.At(0, 0), 1e-6)
	assert.InDelta(t, -1, jac.At(1, 0), 1e-6)

	assert.InDelta(t, 0, model.Sigma2()[0], 1e-10)
}

func TestFit_MultipleResponses(t *testing.T) {
	sites := [][]float64{{0}, {0.25}, {0.5}, {0.75}, {1}}
	values := make([][]float64, len(sites))
	for i, s := range sites {
		y := math.Sin(2 * math.Pi * s[0])
		values[i] = []float64{y, 2 * y}
	}
	model, err := Fit(sites, values, BasisLinear, KernelGaussian, nil)
	require.NoError(t, err)
	require.Equal(t, 2, model.Responses())

	for i, s := range sites {
		got := model.Interpolate(s)
		require.Len(t, got, 2)
		assert.InDelta(t, values[i][0], got[0], 1e-5)
		assert.InDelta(t, values[i][1], got[1], 1e-5)
	}

	// the second response is a scalar multiple of the first, and so is
	// its gradient
	jac := model.Jacobian([]float64{0.6})
	r, c := jac.Dims()
	require.Equal(t, 1, r)
	require.Equal(t, 2, c)
	assert.InDelta(t, 2*jac.At(0, 0), jac.At(0, 1), 1e-6)

	_, mse, err := model.InterpolateMSE([]float64{0.6})
	require.NoError(t, err)
	require.Len(t, mse, 2)
}

func TestFit_WarmStart(t *testing.T) {
	first := sineFit(t, nil)
	second := sineFit(t, &Options{Theta: first.Theta()})
	require.Len(t, second.Theta(), 1)
	assert.Greater(t, second.Theta()[0], 0.0)
}

func TestSurrogate_QueryDimensionPanics(t *testing.T) {
	model := sineFit(t, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a mismatched query point")
		}
	}()
	model.Interpolate([]float64{0.1, 0.2})
}

package distribution

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormal(t *testing.T, mu, sigma float64) Univariate {
	t.Helper()
	d, err := New("normal", mu, sigma)
	require.NoError(t, err)
	return d
}

func TestJoint_ProductLogPDF(t *testing.T) {
	j, err := NewJoint([]Univariate{mustNormal(t, 0, 1), mustNormal(t, 0, 1)}, nil)
	require.NoError(t, err)

	// two standard normal marginals at the origin
	want := 2 * (-0.5 * math.Log(2*math.Pi))
	assert.InDelta(t, want, j.LogPDF([]float64{0, 0}), 1e-12)
	assert.InDelta(t, math.Exp(want), j.PDF([]float64{0, 0}), 1e-12)
	assert.InDelta(t, 0.25, j.CDF([]float64{0, 0}), 1e-12)
}

func TestJoint_DimensionMismatchPanics(t *testing.T) {
	j, err := NewJoint([]Univariate{mustNormal(t, 0, 1), mustNormal(t, 0, 1)}, nil)
	require.NoError(t, err)
	assert.Panics(t, func() { j.PDF([]float64{0}) })
}

func TestJoint_CopulaRequiresTwoMarginals(t *testing.T) {
	cop, err := NewGumbelCopula(1.5)
	require.NoError(t, err)

	ms := []Univariate{mustNormal(t, 0, 1), mustNormal(t, 0, 1), mustNormal(t, 0, 1)}
	if _, err := NewJoint(ms, cop); err == nil {
		t.Fatalf("a copula with three marginals must be rejected")
	}
}

func TestJoint_ICDFFails(t *testing.T) {
	j, err := NewJoint([]Univariate{mustNormal(t, 0, 1)}, nil)
	require.NoError(t, err)
	if _, err := j.ICDF([]float64{0.5}); err == nil {
		t.Fatalf("inverse cdf of a joint must fail")
	}
}

func TestJoint_SampleShapeAndDeterminism(t *testing.T) {
	j, err := NewJoint([]Univariate{mustNormal(t, 0, 1), mustNormal(t, 2, 1)}, nil)
	require.NoError(t, err)

	s1, err := j.Sample(rand.New(rand.NewSource(999)), 25)
	require.NoError(t, err)
	s2, err := j.Sample(rand.New(rand.NewSource(999)), 25)
	require.NoError(t, err)

	require.Len(t, s1, 25)
	for i := range s1 {
		require.Len(t, s1[i], 2)
		assert.Equal(t, s1[i], s2[i])
	}
}

func TestJoint_SampleWithCopulaFails(t *testing.T) {
	cop, err := NewGumbelCopula(2)
	require.NoError(t, err)
	j, err := NewJoint([]Univariate{mustNormal(t, 0, 1), mustNormal(t, 0, 1)}, cop)
	require.NoError(t, err)

	if _, err := j.Sample(rand.New(rand.NewSource(1)), 4); err == nil {
		t.Fatalf("drawing from a copula-coupled joint must fail")
	}
}

func TestGumbelCopula_ParameterBelowOneFails(t *testing.T) {
	if _, err := NewGumbelCopula(0.9); err == nil {
		t.Fatalf("a dependence parameter below one must be rejected")
	}
}

func TestGumbelCopula_IndependenceAtOne(t *testing.T) {
	cop, err := NewGumbelCopula(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cop.Density(0.3, 0.8))
	assert.InDelta(t, 0.24, cop.CDF(0.3, 0.8), 1e-12)

	j, err := NewJoint([]Univariate{mustNormal(t, 0, 1), mustNormal(t, 0, 1)}, cop)
	require.NoError(t, err)
	indep, err := NewJoint([]Univariate{mustNormal(t, 0, 1), mustNormal(t, 0, 1)}, nil)
	require.NoError(t, err)
	x := []float64{0.4, -1.2}
	assert.InDelta(t, indep.LogPDF(x), j.LogPDF(x), 1e-12)
}

func TestGumbelCopula_PositiveDependence(t *testing.T) {
	cop, err := NewGumbelCopula(2)
	require.NoError(t, err)

	c := cop.CDF(0.5, 0.5)
	// Frechet bounds and the known value for delta=2 at (0.5, 0.5)
	assert.Greater(t, c, 0.25)
	assert.Less(t, c, 0.5)
	assert.InDelta(t, 0.37521, c, 1e-3)
}

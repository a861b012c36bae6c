package montecarlo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/quasar-uq/quasar/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJoint(t *testing.T) *distribution.Joint {
	t.Helper()
	n, err := distribution.New("normal", 0, 1)
	require.NoError(t, err)
	u, err := distribution.New("uniform", 0, 1)
	require.NoError(t, err)
	j, err := distribution.NewJoint([]distribution.Univariate{n, u}, nil)
	require.NoError(t, err)
	return j
}

func TestMonteCarlo_RequiresJoint(t *testing.T) {
	if _, err := New(nil, rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("missing joint distribution must be rejected")
	}
}

func TestMonteCarlo_RunShape(t *testing.T) {
	s, err := New(newJoint(t), rand.New(rand.NewSource(999)))
	require.NoError(t, err)

	samples, err := s.Run(50)
	require.NoError(t, err)
	require.Len(t, samples, 50)
	for _, x := range samples {
		require.Len(t, x, 2)
		assert.GreaterOrEqual(t, x[1], 0.0)
		assert.Less(t, x[1], 1.0)
	}

	if _, err := s.Run(0); err == nil {
		t.Fatalf("zero sample count must be rejected")
	}
}

func TestMonteCarlo_SampleMoments(t *testing.T) {
	s, err := New(newJoint(t), rand.New(rand.NewSource(999)))
	require.NoError(t, err)

	samples, err := s.Run(20000)
	require.NoError(t, err)

	mean := 0.0
	for _, x := range samples {
		mean += x[0]
	}
	mean /= float64(len(samples))
	if math.Abs(mean) > 0.05 {
		t.Fatalf("sample mean too far from zero: %v", mean)
	}
}

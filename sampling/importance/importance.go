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

// Package importance draws independent samples from a proposal
// distribution and reweights them toward a target density. The
// self-normalized weights can be collapsed into an unweighted ensemble
// by multinomial resampling.
package importance

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/quasar-uq/quasar/distribution"
)

// Sampler holds the proposal, the target and the weighted ensemble of
// the most recent run.
type Sampler struct {
	proposal *distribution.Joint
	target   distribution.Target
	rg       *rand.Rand

	samples    [][]float64
	logWeights []float64
	weights    []float64
}

// New validates the proposal and target and returns a sampler. The
// proposal must be a product of independent marginals; a target built
// on a copula-coupled joint is fine since it is only ever evaluated.
func New(proposal *distribution.Joint, target distribution.Target, rg *rand.Rand) (*Sampler, error) {
	if proposal == nil {
		return nil, fmt.Errorf("New: a proposal distribution is required")
	}
	if proposal.Coupled() {
		return nil, fmt.Errorf("New: a copula-coupled proposal cannot be sampled; use independent marginals")
	}
	if target.IsZero() {
		return nil, fmt.Errorf("New: a target density is required")
	}
	return &Sampler{proposal: proposal, target: target, rg: rg}, nil
}

// Run draws n proposal samples and computes their importance weights,
// replacing any previous ensemble.
func (s *Sampler) Run(n int) error {
	if n <= 0 {
		return fmt.Errorf("Run: sample count must be positive; got %d", n)
	}
	samples, err := s.proposal.Sample(s.rg, n)
	if err != nil {
		return fmt.Errorf("Run: drawing from the proposal failed; %v", err)
	}

	logTarget := s.target.LogJoint()
	logWeights := make([]float64, n)
	for i, x := range samples {
		logWeights[i] = logTarget(x) - s.proposal.LogPDF(x)
	}

	// Shift by the largest log weight before exponentiating so the
	// normalization cannot overflow.
	shift := logWeights[0]
	for _, lw := range logWeights[1:] {
		if lw > shift {
			shift = lw
		}
	}
	weights := make([]float64, n)
	sum := 0.0
	for i, lw := range logWeights {
		weights[i] = math.Exp(lw - shift)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}

	s.samples = samples
	s.logWeights = logWeights
	s.weights = weights
	return nil
}

// Samples returns the proposal draws of the last run.
func (s *Sampler) Samples() [][]float64 {
	out := make([][]float64, len(s.samples))
	for i, row := range s.samples {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Weights returns the self-normalized importance weights of the last
// run.
func (s *Sampler) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// LogWeights returns the unnormalized log weights, the target log
// density minus the proposal log density per sample.
func (s *Sampler) LogWeights() []float64 {
	return append([]float64(nil), s.logWeights...)
}

// Resample collapses the weighted ensemble into size unweighted rows
// by multinomial selection: each weighted sample appears with a
// multiplicity drawn proportionally to its weight, in ascending sample
// order. A size of zero selects the size of the weighted ensemble.
func (s *Sampler) Resample(size int) ([][]float64, error) {
	if len(s.samples) == 0 {
		return nil, fmt.Errorf("Resample: no weighted ensemble; call Run first")
	}
	if size < 0 {
		return nil, fmt.Errorf("Resample: ensemble size must not be negative; got %d", size)
	}
	if size == 0 {
		size = len(s.samples)
	}

	cumulative := make([]float64, len(s.weights))
	total := 0.0
	for i, w := range s.weights {
		total += w
		cumulative[i] = total
	}

	counts := make([]int, len(s.samples))
	for range size {
		j := sort.SearchFloat64s(cumulative, s.rg.Float64())
		if j >= len(counts) {
			j = len(counts) - 1
		}
		counts[j]++
	}

	out := make([][]float64, 0, size)
	for j, count := range counts {
		for range count {
			out = append(out, append([]float64(nil), s.samples[j]...))
		}
	}
	return out, nil
}

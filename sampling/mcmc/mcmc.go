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

// Package mcmc draws dependent samples from an unnormalized target
// density with Metropolis-Hastings chains. Three algorithms are
// provided: classical Metropolis-Hastings with a joint symmetric
// proposal, the component-wise modified variant, and the affine
// invariant ensemble sampler with stretch moves.
package mcmc

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/quasar-uq/quasar/distribution"
)

// Supported chain algorithms.
const (
	// AlgorithmMH updates all coordinates at once with a symmetric
	// joint proposal.
	AlgorithmMH = "mh"
	// AlgorithmMMH updates one coordinate at a time, accepting or
	// rejecting each axis on its own.
	AlgorithmMMH = "mmh"
	// AlgorithmStretch advances an ensemble of walkers with affine
	// invariant stretch moves.
	AlgorithmStretch = "stretch"
)

// Supported proposal kernels.
const (
	// KernelNormal perturbs a coordinate with a centered Gaussian
	// whose standard deviation is the axis scale.
	KernelNormal = "normal"
	// KernelUniform perturbs a coordinate uniformly on
	// [-scale/2, +scale/2].
	KernelUniform = "uniform"
)

// Config bundles the chain parameters. Zero values select the
// defaults documented per field.
type Config struct {
	// Dimension is the number of coordinates per sample. Defaults
	// to 1.
	Dimension int
	// Target is the unnormalized density to sample from. Required.
	Target distribution.Target
	// Algorithm selects the chain variant. Defaults to
	// AlgorithmMMH.
	Algorithm string
	// Kernels holds per-axis proposal kernel names. A single entry
	// applies to every axis. Defaults to KernelUniform. Ignored by
	// the stretch sampler.
	Kernels []string
	// Scales holds per-axis proposal scales. A single entry applies
	// to every axis. Defaults to 1, or 2 for the stretch sampler,
	// which reads only the first entry.
	Scales []float64
	// Samples is the number of chain samples to return. Required.
	Samples int
	// Burn is the number of initial states discarded before
	// thinning. Defaults to 0. Not applicable to the stretch
	// sampler.
	Burn int
	// Jump keeps every jump-th state of the chain. Defaults to 1.
	Jump int
	// Seed holds the starting point of the chain, one row for MH
	// and MMH or at least three ensemble walkers for the stretch
	// sampler. Defaults to the origin.
	Seed [][]float64
}

// Sampler is a configured MCMC chain. Create one with New and draw
// with Run.
type Sampler struct {
	target    distribution.Target
	algorithm string
	kernels   []string
	scales    []float64
	dim       int
	samples   int
	burn      int
	jump      int
	seed      [][]float64
	rg        *rand.Rand
}

// New validates the configuration, fills in defaults and returns a
// sampler ready to run.
func New(cfg Config, rg *rand.Rand) (*Sampler, error) {
	dim := cfg.Dimension
	if dim == 0 {
		dim = 1
	}
	if dim < 0 {
		return nil, fmt.Errorf("New: dimension must be positive; got %d", dim)
	}
	if cfg.Target.IsZero() {
		return nil, fmt.Errorf("New: a target density is required")
	}
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("New: sample count must be positive; got %d", cfg.Samples)
	}
	if cfg.Burn < 0 {
		return nil, fmt.Errorf("New: burn-in length must not be negative; got %d", cfg.Burn)
	}
	jump := cfg.Jump
	if jump == 0 {
		jump = 1
	}
	if jump < 0 {
		return nil, fmt.Errorf("New: jump must be positive; got %d", cfg.Jump)
	}

	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmMMH
	}
	switch algorithm {
	case AlgorithmMH, AlgorithmMMH, AlgorithmStretch:
	default:
		return nil, fmt.Errorf("New: unknown algorithm %q; supported algorithms are %q, %q and %q",
			algorithm, AlgorithmMH, AlgorithmMMH, AlgorithmStretch)
	}

	seed := cfg.Seed
	if seed == nil {
		seed = [][]float64{make([]float64, dim)}
	}
	if algorithm == AlgorithmStretch {
		if len(seed) < 3 {
			return nil, fmt.Errorf("New: the stretch sampler needs an ensemble of at least 3 seed points; got %d", len(seed))
		}
		if cfg.Samples*jump < len(seed) {
			return nil, fmt.Errorf("New: the stretch sampler needs at least as many chain states as walkers; got %d states for %d walkers",
				cfg.Samples*jump, len(seed))
		}
	} else if len(seed) != 1 {
		return nil, fmt.Errorf("New: algorithm %q expects a single seed point; got %d", algorithm, len(seed))
	}
	rows := make([][]float64, len(seed))
	for i, s := range seed {
		if len(s) != dim {
			return nil, fmt.Errorf("New: seed point %d has dimension %d; want %d", i, len(s), dim)
		}
		rows[i] = append([]float64(nil), s...)
	}

	kernels, err := resolveKernels(cfg.Kernels, algorithm, dim)
	if err != nil {
		return nil, err
	}
	scales, err := resolveScales(cfg.Scales, algorithm, dim)
	if err != nil {
		return nil, err
	}

	return &Sampler{
		target:    cfg.Target,
		algorithm: algorithm,
		kernels:   kernels,
		scales:    scales,
		dim:       dim,
		samples:   cfg.Samples,
		burn:      cfg.Burn,
		jump:      jump,
		seed:      rows,
		rg:        rg,
	}, nil
}

func resolveKernels(kernels []string, algorithm string, dim int) ([]string, error) {
	if len(kernels) == 0 {
		kernels = []string{KernelUniform}
	}
	for _, k := range kernels {
		if k != KernelNormal && k != KernelUniform {
			return nil, fmt.Errorf("New: unknown proposal kernel %q; supported kernels are %q and %q",
				k, KernelNormal, KernelUniform)
		}
	}
	if algorithm == AlgorithmMH {
		for _, k := range kernels[1:] {
			if k != kernels[0] {
				return nil, fmt.Errorf("New: algorithm %q uses a single joint proposal and cannot mix kernels", algorithm)
			}
		}
	}
	switch len(kernels) {
	case dim:
		return append([]string(nil), kernels...), nil
	case 1:
		out := make([]string, dim)
		for k := range out {
			out[k] = kernels[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("New: got %d proposal kernels for dimension %d", len(kernels), dim)
	}
}

func resolveScales(scales []float64, algorithm string, dim int) ([]float64, error) {
	if len(scales) == 0 {
		def := 1.0
		if algorithm == AlgorithmStretch {
			def = 2.0
		}
		scales = []float64{def}
	}
	for _, s := range scales {
		if s <= 0 {
			return nil, fmt.Errorf("New: proposal scales must be positive; got %v", s)
		}
	}
	switch len(scales) {
	case dim:
		return append([]float64(nil), scales...), nil
	case 1:
		out := make([]float64, dim)
		for k := range out {
			out[k] = scales[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("New: got %d proposal scales for dimension %d", len(scales), dim)
	}
}

// Run advances the chain and returns the requested samples together
// with the acceptance ratio, the fraction of accepted proposals over
// all proposal attempts.
func (s *Sampler) Run() ([][]float64, float64) {
	switch s.algorithm {
	case AlgorithmMH:
		return s.runMH()
	case AlgorithmStretch:
		return s.runStretch()
	default:
		if axes, ok := s.target.Axes(); ok {
			return s.runMMHMarginal(axes)
		}
		return s.runMMHJoint()
	}
}

// propose draws a symmetric perturbation of x along axis k.
func (s *Sampler) propose(x float64, k int) float64 {
	if s.kernels[k] == KernelNormal {
		return x + s.scales[k]*s.rg.NormFloat64()
	}
	return x + s.scales[k]*(s.rg.Float64()-0.5)
}

// accepted draws the acceptance variable and compares it against the
// log ratio.
func (s *Sampler) accepted(logRatio float64) bool {
	return math.Log(s.rg.Float64()) < logRatio
}

func acceptRatio(accepts, attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return float64(accepts) / float64(attempts)
}

func (s *Sampler) runMH() ([][]float64, float64) {
	logPDF := s.target.LogJoint()
	total := s.samples*s.jump + s.burn
	chain := make([][]float64, total)
	chain[0] = append([]float64(nil), s.seed[0]...)
	logCurrent := logPDF(chain[0])

	accepts := 0
	for i := 0; i < total-1; i++ {
		candidate := make([]float64, s.dim)
		for k := range candidate {
			candidate[k] = s.propose(chain[i][k], k)
		}
		logCandidate := logPDF(candidate)
		if s.accepted(logCandidate - logCurrent) {
			chain[i+1] = candidate
			logCurrent = logCandidate
			accepts++
		} else {
			chain[i+1] = chain[i]
		}
	}
	return thin(chain, s.samples, s.burn, s.jump), acceptRatio(accepts, total-1)
}

func (s *Sampler) runMMHMarginal(axes []func(x float64) float64) ([][]float64, float64) {
	total := s.samples*s.jump + s.burn
	chain := make([][]float64, total)
	chain[0] = append([]float64(nil), s.seed[0]...)

	logCurrent := make([]float64, s.dim)
	for k, axis := range axes {
		logCurrent[k] = axis(chain[0][k])
	}

	accepts := 0
	for i := 0; i < total-1; i++ {
		next := make([]float64, s.dim)
		for k, axis := range axes {
			candidate := s.propose(chain[i][k], k)
			logCandidate := axis(candidate)
			if s.accepted(logCandidate - logCurrent[k]) {
				next[k] = candidate
				logCurrent[k] = logCandidate
				accepts++
			} else {
				next[k] = chain[i][k]
			}
		}
		chain[i+1] = next
	}
	return thin(chain, s.samples, s.burn, s.jump), acceptRatio(accepts, (total-1)*s.dim)
}

func (s *Sampler) runMMHJoint() ([][]float64, float64) {
	logPDF := s.target.LogJoint()
	total := s.samples*s.jump + s.burn
	chain := make([][]float64, total)
	chain[0] = append([]float64(nil), s.seed[0]...)

	accepts := 0
	for i := 0; i < total-1; i++ {
		candidate := append([]float64(nil), chain[i]...)
		current := append([]float64(nil), chain[i]...)
		logCurrent := logPDF(chain[i])
		for k := range current {
			candidate[k] = s.propose(chain[i][k], k)
			logCandidate := logPDF(candidate)
			if s.accepted(logCandidate - logCurrent) {
				current[k] = candidate[k]
				logCurrent = logCandidate
				accepts++
			} else {
				// Later axes must see the retained coordinate, not
				// the rejected proposal.
				candidate[k] = current[k]
			}
		}
		chain[i+1] = current
	}
	return thin(chain, s.samples, s.burn, s.jump), acceptRatio(accepts, (total-1)*s.dim)
}

func (s *Sampler) runStretch() ([][]float64, float64) {
	logPDF := s.target.LogJoint()
	ensemble := len(s.seed)
	total := s.samples * s.jump
	chain := make([][]float64, total)
	logChain := make([]float64, total)
	for i, row := range s.seed {
		chain[i] = append([]float64(nil), row...)
		logChain[i] = logPDF(chain[i])
	}

	accepts := 0
	for i := ensemble - 1; i < total-1; i++ {
		// The walker due for an update trails the frontier by one
		// full ensemble; its companions are the other current
		// walkers.
		walker := i - ensemble + 1
		companion := chain[walker+1+s.rg.Intn(ensemble-1)]

		a := s.scales[0]
		u := s.rg.Float64()
		z := (1 + (a-1)*u) * (1 + (a-1)*u) / a

		candidate := make([]float64, s.dim)
		for k := range candidate {
			candidate[k] = companion[k] + z*(chain[walker][k]-companion[k])
		}
		logCandidate := logPDF(candidate)
		logRatio := float64(s.dim-1)*math.Log(z) + logCandidate - logChain[walker]
		if s.accepted(logRatio) {
			chain[i+1] = candidate
			logChain[i+1] = logCandidate
			accepts++
		} else {
			chain[i+1] = chain[walker]
			logChain[i+1] = logChain[walker]
		}
	}
	ratio := acceptRatio(accepts, total-ensemble)

	// De-interleave the flat chain: every jump-th generation of the
	// ensemble is emitted walker by walker.
	out := make([][]float64, 0, s.samples)
	for i := s.jump*ensemble - ensemble; i < total; i += s.jump * ensemble {
		for k := 0; k < ensemble && i+k < total && len(out) < s.samples; k++ {
			out = append(out, append([]float64(nil), chain[i+k]...))
		}
	}
	for len(out) < s.samples {
		out = append(out, make([]float64, s.dim))
	}
	return out, ratio
}

// thin drops the first burn states and keeps every jump-th of the
// remainder.
func thin(chain [][]float64, samples, burn, jump int) [][]float64 {
	out := make([][]float64, samples)
	for t := range samples {
		out[t] = append([]float64(nil), chain[burn+t*jump]...)
	}
	return out
}

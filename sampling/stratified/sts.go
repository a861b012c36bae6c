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

// Package stratified draws samples from stratum partitions and refines
// such designs adaptively one stratum at a time.
package stratified

import (
	"fmt"
	"math/rand"

	"github.com/quasar-uq/quasar/distribution"
	"github.com/quasar-uq/quasar/sampling/strata"
)

// Point placement modes within a stratum.
const (
	// ModeRandom draws the point uniformly inside the stratum.
	ModeRandom = "random"
	// ModeCentered places the point at the stratum center.
	ModeCentered = "centered"
)

// Design couples the points of a stratified design with its partition.
// Point i lies in stratum i; Unit holds the points in the unit
// hypercube, Samples the physical points mapped through the marginal
// inverse cdfs.
type Design struct {
	Partition *strata.Partition
	Unit      [][]float64
	Samples   [][]float64
}

// Size returns the number of design points.
func (d *Design) Size() int { return len(d.Samples) }

// Sampler draws one point per stratum of a partition.
type Sampler struct {
	marginals []distribution.Univariate
	partition *strata.Partition
	mode      string
	rg        *rand.Rand
}

// New validates the placement mode and dimension agreement between the
// marginals and the partition.
func New(marginals []distribution.Univariate, p *strata.Partition, mode string, rg *rand.Rand) (*Sampler, error) {
	if p == nil {
		return nil, fmt.Errorf("New: a stratum partition is required")
	}
	if len(marginals) != p.Dimension() {
		return nil, fmt.Errorf("New: %d marginals for a partition of dimension %d", len(marginals), p.Dimension())
	}
	switch mode {
	case ModeRandom, ModeCentered:
	default:
		return nil, fmt.Errorf("New: unknown placement mode %q", mode)
	}
	return &Sampler{marginals: marginals, partition: p, mode: mode, rg: rg}, nil
}

// Run draws one point in every stratum. Draws advance axis by axis over
// the strata so that a fixed seed reproduces the design.
func (s *Sampler) Run() (*Design, error) {
	n := s.partition.Size()
	d := s.partition.Dimension()

	unit := make([][]float64, n)
	samples := make([][]float64, n)
	for i := range n {
		unit[i] = make([]float64, d)
		samples[i] = make([]float64, d)
	}

	for k := range d {
		for i := range n {
			origin := s.partition.Origin(i)[k]
			width := s.partition.Width(i)[k]
			var u float64
			switch s.mode {
			case ModeRandom:
				u = origin + s.rg.Float64()*width
			case ModeCentered:
				u = origin + width/2
			}
			unit[i][k] = u
			samples[i][k] = s.marginals[k].ICDF(u)
		}
	}

	return &Design{Partition: s.partition, Unit: unit, Samples: samples}, nil
}

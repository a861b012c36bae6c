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

// Package montecarlo draws plain independent samples from a joint
// distribution.
package montecarlo

import (
	"fmt"
	"math/rand"

	"github.com/quasar-uq/quasar/distribution"
)

// Sampler draws iid realizations of a joint distribution.
type Sampler struct {
	joint *distribution.Joint
	rg    *rand.Rand
}

// New creates a Monte Carlo sampler drawing from the given joint with
// the given random generator.
func New(joint *distribution.Joint, rg *rand.Rand) (*Sampler, error) {
	if joint == nil {
		return nil, fmt.Errorf("New: a joint distribution is required")
	}
	return &Sampler{joint: joint, rg: rg}, nil
}

// Run draws n samples in insertion order.
func (s *Sampler) Run(n int) ([][]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("Run: sample count must be positive; got %d", n)
	}
	return s.joint.Sample(s.rg, n)
}

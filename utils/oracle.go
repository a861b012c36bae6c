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
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/quasar-uq/quasar/distribution"
)

// TargetMarginals builds the one dimensional distributions named by the
// --target flags, one per axis of the sample space.
func TargetMarginals(cfg *Config) ([]distribution.Univariate, error) {
	if len(cfg.Target) == 0 {
		return nil, errors.New("no target distribution given; use --target")
	}
	marginals, err := distribution.NewList(cfg.Target, cfg.TargetParams)
	if err != nil {
		return nil, fmt.Errorf("invalid target distribution; %w", err)
	}
	return marginals, nil
}

// TargetJoint couples the target marginals with the configured copula.
func TargetJoint(cfg *Config) (*distribution.Joint, error) {
	marginals, err := TargetMarginals(cfg)
	if err != nil {
		return nil, err
	}
	copula, err := configuredCopula(cfg)
	if err != nil {
		return nil, err
	}
	return distribution.NewJoint(marginals, copula)
}

// ProposalJoint builds the importance sampling proposal named by the
// --proposal flags. Proposals stay independent products since a coupled
// joint cannot be drawn from, only evaluated.
func ProposalJoint(cfg *Config) (*distribution.Joint, error) {
	if len(cfg.Proposal) == 0 {
		return nil, errors.New("no proposal distribution given; use --proposal")
	}
	marginals, err := distribution.NewList(cfg.Proposal, cfg.ProposalParams)
	if err != nil {
		return nil, fmt.Errorf("invalid proposal distribution; %w", err)
	}
	return distribution.NewJoint(marginals, nil)
}

func configuredCopula(cfg *Config) (distribution.Copula, error) {
	switch cfg.CopulaKind {
	case "":
		return nil, nil
	case "gumbel":
		return distribution.NewGumbelCopula(cfg.CopulaParam)
	default:
		return nil, fmt.Errorf("unknown copula family %q (known: gumbel)", cfg.CopulaKind)
	}
}

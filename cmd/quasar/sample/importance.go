// Copyright 2025 Quasar Labs
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

package sample

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/quasar-uq/quasar/distribution"
	"github.com/quasar-uq/quasar/logger"
	"github.com/quasar-uq/quasar/sampling/importance"
	"github.com/quasar-uq/quasar/utils"
	"github.com/urfave/cli/v2"
)

// ImportanceCommand reweights proposal draws against the target density.
var ImportanceCommand = cli.Command{
	Action:    importanceAction,
	Name:      "importance",
	Usage:     "weight proposal draws by the target density",
	ArgsUsage: "",
	Flags: []cli.Flag{
		&utils.SamplesFlag,
		&utils.TargetFlag,
		&utils.TargetParamsFlag,
		&utils.CopulaFlag,
		&utils.CopulaParamFlag,
		&utils.ProposalFlag,
		&utils.ProposalParamsFlag,
		&utils.ResampleFlag,
		&utils.RandomSeedFlag,
		&utils.OutputFlag,
		&utils.ArchiveFlag,
		&utils.TagFlag,
		&logger.LogLevelFlag,
	},
}

func importanceAction(ctx *cli.Context) error {
	cfg, argErr := utils.NewConfig(ctx, utils.NoArgs)
	if argErr != nil {
		return argErr
	}
	log := logger.NewLogger(cfg.LogLevel, "Quasar-Importance")

	return runImportance(cfg, log)
}

// runImportance draws the weighted ensemble and records the run. With
// --resample the ensemble collapses into unweighted rows first.
func runImportance(cfg *utils.Config, log logger.Logger) error {
	target, err := utils.TargetJoint(cfg)
	if err != nil {
		return err
	}
	proposal, err := utils.ProposalJoint(cfg)
	if err != nil {
		return err
	}
	if proposal.Dimension() != target.Dimension() {
		return fmt.Errorf("the target works in dimension %d but the proposal in %d",
			target.Dimension(), proposal.Dimension())
	}
	rg := rand.New(rand.NewSource(cfg.RandomSeed))
	sampler, err := importance.New(proposal, distribution.NewTargetFromJoint(target), rg)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := sampler.Run(cfg.Samples); err != nil {
		return err
	}
	weights := sampler.Weights()
	ess := effectiveSamples(weights)
	log.Infof("Weighted %v draw(s) in dimension %v; effective sample size %.1f",
		len(weights), proposal.Dimension(), ess)

	res := &runResult{
		method:    "importance",
		dimension: proposal.Dimension(),
		samples:   sampler.Samples(),
		weights:   weights,
		diagnostics: map[string]float64{
			"effectiveSamples": ess,
		},
	}
	if cfg.Resample > 0 {
		resampled, err := sampler.Resample(cfg.Resample)
		if err != nil {
			return err
		}
		res.samples = resampled
		res.weights = nil
		log.Infof("Resampled the ensemble into %v unweighted row(s)", len(resampled))
	}
	log.Noticef("Total elapsed time: %v", time.Since(start).Round(time.Millisecond))

	if err := momentDiagnostics(res); err != nil {
		return err
	}
	return writeRun(cfg, res, log)
}

// effectiveSamples is the inverse sum of squared normalized weights,
// between 1 for a degenerate ensemble and n for uniform weights.
func effectiveSamples(weights []float64) float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w * w
	}
	if sum == 0 {
		return 0
	}
	return 1 / sum
}

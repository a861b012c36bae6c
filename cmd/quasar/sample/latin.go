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
	"math/rand"
	"time"

	"github.com/quasar-uq/quasar/logger"
	"github.com/quasar-uq/quasar/sampling/latin"
	"github.com/quasar-uq/quasar/utils"
	"github.com/urfave/cli/v2"
)

// LhsCommand draws a latin hypercube design over the target marginals.
var LhsCommand = cli.Command{
	Action:    lhsAction,
	Name:      "lhs",
	Usage:     "draw a latin hypercube design over the target marginals",
	ArgsUsage: "",
	Flags: []cli.Flag{
		&utils.SamplesFlag,
		&utils.TargetFlag,
		&utils.TargetParamsFlag,
		&utils.LhsCriterionFlag,
		&utils.IterationsFlag,
		&utils.RandomSeedFlag,
		&utils.OutputFlag,
		&utils.ArchiveFlag,
		&utils.TagFlag,
		&logger.LogLevelFlag,
	},
}

func lhsAction(ctx *cli.Context) error {
	cfg, argErr := utils.NewConfig(ctx, utils.NoArgs)
	if argErr != nil {
		return argErr
	}
	log := logger.NewLogger(cfg.LogLevel, "Quasar-Lhs")

	return runLhs(cfg, log)
}

// runLhs draws the design and records the run.
func runLhs(cfg *utils.Config, log logger.Logger) error {
	marginals, err := utils.TargetMarginals(cfg)
	if err != nil {
		return err
	}
	rg := rand.New(rand.NewSource(cfg.RandomSeed))
	sampler, err := latin.New(marginals, cfg.LhsCriterion, cfg.Iterations, rg)
	if err != nil {
		return err
	}

	start := time.Now()
	_, samples, err := sampler.Run(cfg.Samples)
	if err != nil {
		return err
	}
	log.Infof("Drew a %v point design in dimension %v with the %q criterion",
		len(samples), len(marginals), cfg.LhsCriterion)
	log.Noticef("Total elapsed time: %v", time.Since(start).Round(time.Millisecond))

	res := &runResult{
		method:    "latin",
		dimension: len(marginals),
		samples:   samples,
	}
	if err := momentDiagnostics(res); err != nil {
		return err
	}
	return writeRun(cfg, res, log)
}

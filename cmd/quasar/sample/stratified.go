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

	"github.com/cockroachdb/errors"
	"github.com/quasar-uq/quasar/logger"
	"github.com/quasar-uq/quasar/sampling/strata"
	"github.com/quasar-uq/quasar/sampling/stratified"
	"github.com/quasar-uq/quasar/utils"
	"github.com/urfave/cli/v2"
)

// StsCommand draws one sample per stratum of a space-filling partition.
var StsCommand = cli.Command{
	Action:    stsAction,
	Name:      "sts",
	Usage:     "draw one sample per stratum of a space-filling partition",
	ArgsUsage: "",
	Flags: []cli.Flag{
		&utils.StrataFlag,
		&utils.StrataFileFlag,
		&utils.SamplingModeFlag,
		&utils.TargetFlag,
		&utils.TargetParamsFlag,
		&utils.RandomSeedFlag,
		&utils.OutputFlag,
		&utils.ArchiveFlag,
		&utils.TagFlag,
		&logger.LogLevelFlag,
	},
}

func stsAction(ctx *cli.Context) error {
	cfg, argErr := utils.NewConfig(ctx, utils.NoArgs)
	if argErr != nil {
		return argErr
	}
	log := logger.NewLogger(cfg.LogLevel, "Quasar-Sts")

	return runSts(cfg, log)
}

// configuredPartition builds the stratum partition from the command
// line, either a full factorial grid or a persisted design table.
func configuredPartition(cfg *utils.Config) (*strata.Partition, error) {
	switch {
	case cfg.StrataFile != "":
		return strata.Load(cfg.StrataFile)
	case len(cfg.Strata) > 0:
		return strata.NewFullFactorial(cfg.Strata)
	default:
		return nil, errors.New("no stratum design given; use --strata or --strata-file")
	}
}

// runSts draws the stratified design and records the run. Each sample
// carries the probability weight of its stratum.
func runSts(cfg *utils.Config, log logger.Logger) error {
	marginals, err := utils.TargetMarginals(cfg)
	if err != nil {
		return err
	}
	p, err := configuredPartition(cfg)
	if err != nil {
		return err
	}
	rg := rand.New(rand.NewSource(cfg.RandomSeed))
	sampler, err := stratified.New(marginals, p, cfg.Mode, rg)
	if err != nil {
		return err
	}

	start := time.Now()
	design, err := sampler.Run()
	if err != nil {
		return err
	}
	log.Infof("Drew %v sample(s) across %v strata in dimension %v",
		design.Size(), p.Size(), p.Dimension())
	log.Noticef("Total elapsed time: %v", time.Since(start).Round(time.Millisecond))

	res := &runResult{
		method:    "stratified",
		dimension: p.Dimension(),
		samples:   design.Samples,
		weights:   p.Weights(),
	}
	if err := momentDiagnostics(res); err != nil {
		return err
	}
	return writeRun(cfg, res, log)
}

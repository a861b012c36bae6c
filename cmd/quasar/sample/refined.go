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
	"github.com/quasar-uq/quasar/output"
	"github.com/quasar-uq/quasar/sampling/strata"
	"github.com/quasar-uq/quasar/sampling/stratified"
	"github.com/quasar-uq/quasar/surrogate/kriging"
	"github.com/quasar-uq/quasar/utils"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slices"
)

// RssCommand grows a stratified design by splitting strata until the
// requested size is reached. Gradient refinement steers the splits by a
// response surface fitted to a design table.
var RssCommand = cli.Command{
	Action:    rssAction,
	Name:      "rss",
	Usage:     "grow a stratified design by refining its strata",
	ArgsUsage: "",
	Flags: []cli.Flag{
		&utils.SamplesFlag,
		&utils.StrataFlag,
		&utils.StrataFileFlag,
		&utils.StrataOutFlag,
		&utils.SamplingModeFlag,
		&utils.CriterionFlag,
		&utils.TargetFlag,
		&utils.TargetParamsFlag,
		&utils.DesignFileFlag,
		&utils.RegressionFlag,
		&utils.CorrelationFlag,
		&utils.RandomSeedFlag,
		&utils.OutputFlag,
		&utils.ArchiveFlag,
		&utils.TagFlag,
		&logger.LogLevelFlag,
	},
}

func rssAction(ctx *cli.Context) error {
	cfg, argErr := utils.NewConfig(ctx, utils.NoArgs)
	if argErr != nil {
		return argErr
	}
	log := logger.NewLogger(cfg.LogLevel, "Quasar-Rss")

	return runRss(cfg, log)
}

// runRss draws an initial stratified design, refines it to the target
// size and records the run.
func runRss(cfg *utils.Config, log logger.Logger) error {
	marginals, err := utils.TargetMarginals(cfg)
	if err != nil {
		return err
	}
	p, err := configuredPartition(cfg)
	if err != nil {
		return err
	}
	rg := rand.New(rand.NewSource(cfg.RandomSeed))
	initial, err := stratified.New(marginals, p, cfg.Mode, rg)
	if err != nil {
		return err
	}
	design, err := initial.Run()
	if err != nil {
		return err
	}

	refCfg := stratified.RefinerConfig{
		Marginals: marginals,
		Design:    design,
		Samples:   cfg.Samples,
		Mode:      cfg.Criterion,
	}
	if cfg.Criterion == stratified.ModeGradient {
		model, err := designModel(cfg)
		if err != nil {
			return err
		}
		refCfg.Model = model
		refCfg.Cut = stratified.CutGradient
		refCfg.Estimator = &stratified.KrigingGradient{
			Regression:  cfg.Regression,
			Correlation: cfg.Correlation,
		}
	}
	refiner, err := stratified.NewRefiner(refCfg, rg)
	if err != nil {
		return err
	}

	seeded := design.Size()
	start := time.Now()
	refined, err := refiner.Run()
	if err != nil {
		return err
	}
	log.Infof("Refined the design from %v to %v point(s) in dimension %v",
		seeded, refined.Size(), refined.Partition.Dimension())
	log.Noticef("Total elapsed time: %v", time.Since(start).Round(time.Millisecond))

	if cfg.StrataOut != "" {
		if err := writeStrata(cfg.StrataOut, refined.Partition, log); err != nil {
			return err
		}
	}

	res := &runResult{
		method:    "refined",
		dimension: refined.Partition.Dimension(),
		samples:   refined.Samples,
		weights:   refined.Partition.Weights(),
	}
	if err := momentDiagnostics(res); err != nil {
		return err
	}
	return writeRun(cfg, res, log)
}

// designModel fits a kriging surrogate to the design table named on the
// command line and returns its prediction as the response model. The
// last table column holds the response.
func designModel(cfg *utils.Config) (func(x []float64) float64, error) {
	if cfg.DesignFile == "" {
		return nil, errors.New("gradient refinement needs a response surface; use --design")
	}
	rows, err := utils.LoadTable(cfg.DesignFile)
	if err != nil {
		return nil, err
	}
	sites, values, err := utils.SplitResponses(rows, 1)
	if err != nil {
		return nil, err
	}
	s, err := kriging.Fit(sites, values, cfg.Regression, cfg.Correlation, nil)
	if err != nil {
		return nil, err
	}
	return func(x []float64) float64 { return s.Interpolate(x)[0] }, nil
}

// writeStrata persists the partition in the layout accepted by the
// stratum design loader.
func writeStrata(path string, p *strata.Partition, log logger.Logger) error {
	w, err := output.NewTableWriter(path)
	if err != nil {
		return err
	}
	if err := writeStrataRows(p, w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Infof("Stratum design written to %v", path)
	return nil
}

func writeStrataRows(p *strata.Partition, w output.TableWriter) error {
	if err := w.WriteComment("origins then widths, one stratum per row"); err != nil {
		return err
	}
	for i := 0; i < p.Size(); i++ {
		row := append(slices.Clone(p.Origin(i)), p.Width(i)...)
		if err := w.WriteRow(row...); err != nil {
			return err
		}
	}
	return nil
}

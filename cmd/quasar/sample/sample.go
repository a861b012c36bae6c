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

// Package sample holds the quasar subcommands that draw samples and
// persist them to tables and the run archive.
package sample

import (
	"fmt"

	"github.com/quasar-uq/quasar/archive"
	"github.com/quasar-uq/quasar/logger"
	"github.com/quasar-uq/quasar/output"
	"github.com/quasar-uq/quasar/statistics"
	"github.com/quasar-uq/quasar/utils"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// runResult bundles what one sampling run leaves behind.
type runResult struct {
	method      string
	dimension   int
	samples     [][]float64
	weights     []float64 // nil for unweighted methods
	diagnostics map[string]float64
}

// momentDiagnostics folds the per axis mean and variance of the drawn
// samples into the diagnostics of the run.
func momentDiagnostics(res *runResult) error {
	vec, err := statistics.NewVector(res.dimension)
	if err != nil {
		return err
	}
	if err := vec.AddAll(res.samples); err != nil {
		return err
	}
	if res.diagnostics == nil {
		res.diagnostics = map[string]float64{}
	}
	for j := 0; j < res.dimension; j++ {
		res.diagnostics[fmt.Sprintf("mean[%d]", j)] = vec.Axis(j).Mean()
		res.diagnostics[fmt.Sprintf("variance[%d]", j)] = vec.Axis(j).Variance()
	}
	return nil
}

// writeRun persists the run to the output table and the archive when
// the respective flags name one.
func writeRun(cfg *utils.Config, res *runResult, log logger.Logger) error {
	if cfg.Output != "" {
		w, err := output.NewTableWriter(cfg.Output)
		if err != nil {
			return err
		}
		if err := writeTable(res, w); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		log.Infof("Sample table written to %v", cfg.Output)
	}
	if cfg.Archive != "" {
		db, err := archive.NewRunDB(cfg.Archive)
		if err != nil {
			return err
		}
		run, err := archiveRun(cfg, res, db)
		if err != nil {
			_ = db.Close()
			return err
		}
		if err := db.Close(); err != nil {
			return err
		}
		log.Infof("Run %v archived in %v", run, cfg.Archive)
	}
	return nil
}

// writeTable renders the samples as one row per draw. A weighted run
// carries its weight as the trailing column.
func writeTable(res *runResult, w output.TableWriter) error {
	if err := w.WriteComment("drawn by " + res.method); err != nil {
		return err
	}
	if res.weights != nil {
		if err := w.WriteComment("trailing column holds the sample weight"); err != nil {
			return err
		}
	}
	for i, row := range res.samples {
		if res.weights != nil {
			row = append(slices.Clone(row), res.weights[i])
		}
		if err := w.WriteRow(row...); err != nil {
			return err
		}
	}
	return nil
}

// archiveRun stores the samples and diagnostics as one archived run and
// returns its identifier.
func archiveRun(cfg *utils.Config, res *runResult, db archive.RunDB) (int64, error) {
	run, err := db.BeginRun(res.method, res.dimension, cfg.RandomSeed, cfg.Tag)
	if err != nil {
		return 0, err
	}
	for i, point := range res.samples {
		weight := 1.0
		if res.weights != nil {
			weight = res.weights[i]
		}
		if err := db.Add(archive.Sample{Run: run, Index: i, Point: point, Weight: weight}); err != nil {
			return 0, err
		}
	}
	names := maps.Keys(res.diagnostics)
	slices.Sort(names)
	for _, name := range names {
		if err := db.AddDiagnostic(run, name, res.diagnostics[name]); err != nil {
			return 0, err
		}
	}
	return run, nil
}

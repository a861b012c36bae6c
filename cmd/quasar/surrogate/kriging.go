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

// Package surrogate holds the quasar subcommands that fit response
// surfaces to design tables.
package surrogate

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quasar-uq/quasar/logger"
	"github.com/quasar-uq/quasar/output"
	"github.com/quasar-uq/quasar/surrogate/kriging"
	"github.com/quasar-uq/quasar/utils"
	"github.com/urfave/cli/v2"
)

// KrigingCommand fits a kriging surrogate to a design table and
// predicts the response at the points of the positional table.
var KrigingCommand = cli.Command{
	Action:    krigingAction,
	Name:      "kriging",
	Usage:     "fit a kriging surrogate to a design table and predict new points",
	ArgsUsage: "<points file>",
	Flags: []cli.Flag{
		&utils.DesignFileFlag,
		&utils.ResponsesFlag,
		&utils.RegressionFlag,
		&utils.CorrelationFlag,
		&utils.OutputFlag,
		&logger.LogLevelFlag,
	},
}

func krigingAction(ctx *cli.Context) error {
	cfg, argErr := utils.NewConfig(ctx, utils.PathArg)
	if argErr != nil {
		return argErr
	}
	log := logger.NewLogger(cfg.LogLevel, "Quasar-Kriging")

	return runKriging(cfg, log)
}

// runKriging fits the surrogate and evaluates it at the requested
// points. Predictions either go to the output table, one row of site
// coordinates, responses and mean squared errors per point, or to the
// log when no output file is named.
func runKriging(cfg *utils.Config, log logger.Logger) error {
	if cfg.DesignFile == "" {
		return errors.New("a design table is required; use --design")
	}
	rows, err := utils.LoadTable(cfg.DesignFile)
	if err != nil {
		return err
	}
	sites, values, err := utils.SplitResponses(rows, cfg.Responses)
	if err != nil {
		return err
	}

	start := time.Now()
	s, err := kriging.Fit(sites, values, cfg.Regression, cfg.Correlation, nil)
	if err != nil {
		return err
	}
	log.Infof("Fitted a %v/%v surrogate on %v site(s) in dimension %v",
		cfg.Regression, cfg.Correlation, len(sites), s.Dimension())
	log.Infof("Correlation scales %v, process variance %v", s.Theta(), s.Sigma2())

	points, err := utils.LoadTable(cfg.ArgPath)
	if err != nil {
		return err
	}
	predictions, err := predictTable(s, points)
	if err != nil {
		return err
	}
	log.Noticef("Total elapsed time: %v", time.Since(start).Round(time.Millisecond))

	if cfg.Output == "" {
		for i, row := range predictions {
			log.Infof("Point %v predicts %v", points[i], row[s.Dimension():])
		}
		return nil
	}
	w, err := output.NewTableWriter(cfg.Output)
	if err != nil {
		return err
	}
	if err := writePredictions(cfg, predictions, w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Infof("Prediction table written to %v", cfg.Output)
	return nil
}

// predictTable evaluates the surrogate at every point and returns one
// row per point: the coordinates, the responses and their mean squared
// errors.
func predictTable(s *kriging.Surrogate, points [][]float64) ([][]float64, error) {
	out := make([][]float64, len(points))
	for i, x := range points {
		if len(x) != s.Dimension() {
			return nil, fmt.Errorf("point %d has dimension %d; the surrogate works in dimension %d",
				i, len(x), s.Dimension())
		}
		y, mse, err := s.InterpolateMSE(x)
		if err != nil {
			return nil, err
		}
		row := make([]float64, 0, len(x)+2*len(y))
		row = append(row, x...)
		row = append(row, y...)
		row = append(row, mse...)
		out[i] = row
	}
	return out, nil
}

// writePredictions renders the prediction rows under a header comment.
func writePredictions(cfg *utils.Config, predictions [][]float64, w output.TableWriter) error {
	header := fmt.Sprintf("kriging predictions: site coordinates, %d response(s), %d mean squared error(s)",
		cfg.Responses, cfg.Responses)
	if err := w.WriteComment(header); err != nil {
		return err
	}
	return w.WriteTable(predictions)
}

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

// Package report holds the quasar subcommand that prints the contents
// of a run archive.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/quasar-uq/quasar/archive"
	"github.com/quasar-uq/quasar/logger"
	"github.com/quasar-uq/quasar/utils"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Command prints the runs of a sample archive with their diagnostics.
var Command = cli.Command{
	Action:    reportAction,
	Name:      "report",
	Usage:     "print the runs of a sample archive",
	ArgsUsage: "<archive db>",
	Flags: []cli.Flag{
		&utils.TagFlag,
		&logger.LogLevelFlag,
	},
}

func reportAction(ctx *cli.Context) error {
	cfg, argErr := utils.NewConfig(ctx, utils.PathArg)
	if argErr != nil {
		return argErr
	}
	log := logger.NewLogger(cfg.LogLevel, "Quasar-Report")

	return runReport(cfg, log, os.Stdout)
}

// runReport renders the archived runs, filtered by the optional tag,
// and their diagnostics as two tables.
func runReport(cfg *utils.Config, log logger.Logger, out io.Writer) error {
	if _, err := os.Stat(cfg.ArgPath); err != nil {
		return fmt.Errorf("cannot find archive %s; %w", cfg.ArgPath, err)
	}
	db, err := archive.NewRunDB(cfg.ArgPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warningf("cannot close archive; %v", err)
		}
	}()

	runs, err := db.Runs()
	if err != nil {
		return err
	}
	if cfg.Tag != "" {
		kept := runs[:0]
		for _, r := range runs {
			if r.Tag == cfg.Tag {
				kept = append(kept, r)
			}
		}
		runs = kept
	}
	if len(runs) == 0 {
		log.Warning("The archive holds no matching runs")
		return nil
	}

	fmt.Fprintln(out, renderRuns(runs))

	diagnostics := make(map[int64][]archive.Diagnostic, len(runs))
	for _, r := range runs {
		rows, err := db.Diagnostics(r.ID)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			diagnostics[r.ID] = rows
		}
	}
	if len(diagnostics) > 0 {
		fmt.Fprintln(out, renderDiagnostics(runs, diagnostics))
	}
	log.Infof("Reported %v run(s) of %v", len(runs), cfg.ArgPath)
	return nil
}

// renderRuns lays the run records out as a text table. Sample counts
// carry thousands separators.
func renderRuns(runs []archive.Run) string {
	p := message.NewPrinter(language.English)
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Created", "Method", "Dimension", "Seed", "Tag", "Samples"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.Created.Format(time.DateTime),
			r.Method,
			r.Dimension,
			r.Seed,
			r.Tag,
			p.Sprintf("%d", r.Drawn),
		})
	}
	return t.Render()
}

// renderDiagnostics lays the per-run diagnostics out as a text table.
func renderDiagnostics(runs []archive.Run, diagnostics map[int64][]archive.Diagnostic) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Diagnostic", "Value"})
	for _, r := range runs {
		for _, d := range diagnostics[r.ID] {
			t.AppendRow(table.Row{r.ID, d.Name, fmt.Sprintf("%.6g", d.Value)})
		}
	}
	return t.Render()
}

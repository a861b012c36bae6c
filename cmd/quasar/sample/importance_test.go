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
	"path/filepath"
	"testing"

	"github.com/quasar-uq/quasar/archive"
	"github.com/quasar-uq/quasar/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestCmdImportance_WeightedRows(t *testing.T) {
	// given
	dir := t.TempDir()
	out := filepath.Join(dir, "ensemble.txt")
	db := filepath.Join(dir, "runs.db")
	app := cli.NewApp()
	app.Commands = []*cli.Command{&ImportanceCommand}
	args := utils.NewArgs("test").
		Arg(ImportanceCommand.Name).
		Flag(utils.TargetFlag.Name, "normal").
		Flag(utils.TargetParamsFlag.Name, "0,1").
		Flag(utils.ProposalFlag.Name, "normal").
		Flag(utils.ProposalParamsFlag.Name, "0,2").
		Flag(utils.SamplesFlag.Name, 30).
		Flag(utils.RandomSeedFlag.Name, int64(8)).
		Flag(utils.OutputFlag.Name, out).
		Flag(utils.ArchiveFlag.Name, db).
		Build()

	// when
	err := app.Run(args)

	// then
	require.NoError(t, err)
	rows, err := utils.LoadTable(out)
	require.NoError(t, err)
	require.Len(t, rows, 30)
	total := 0.0
	for _, row := range rows {
		require.Len(t, row, 2)
		assert.GreaterOrEqual(t, row[1], 0.0)
		total += row[1]
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// the effective sample size lands between 1 and the ensemble size
	rdb, err := archive.NewRunDB(db)
	require.NoError(t, err)
	defer func() { require.NoError(t, rdb.Close()) }()
	runs, err := rdb.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	diags, err := rdb.Diagnostics(runs[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	require.Equal(t, "effectiveSamples", diags[0].Name)
	assert.GreaterOrEqual(t, diags[0].Value, 1.0)
	assert.LessOrEqual(t, diags[0].Value, 30.0)
}

func TestCmdImportance_ResampleCollapsesWeights(t *testing.T) {
	// given
	out := filepath.Join(t.TempDir(), "resampled.txt")
	app := cli.NewApp()
	app.Commands = []*cli.Command{&ImportanceCommand}
	args := utils.NewArgs("test").
		Arg(ImportanceCommand.Name).
		Flag(utils.TargetFlag.Name, "normal").
		Flag(utils.TargetParamsFlag.Name, "0,1").
		Flag(utils.ProposalFlag.Name, "normal").
		Flag(utils.ProposalParamsFlag.Name, "0,2").
		Flag(utils.SamplesFlag.Name, 30).
		Flag(utils.ResampleFlag.Name, 12).
		Flag(utils.RandomSeedFlag.Name, int64(8)).
		Flag(utils.OutputFlag.Name, out).
		Build()

	// when
	err := app.Run(args)

	// then
	require.NoError(t, err)
	rows, err := utils.LoadTable(out)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	for _, row := range rows {
		require.Len(t, row, 1)
	}
}

func TestCmdImportance_CoupledTarget(t *testing.T) {
	// given
	out := filepath.Join(t.TempDir(), "ensemble.txt")
	app := cli.NewApp()
	app.Commands = []*cli.Command{&ImportanceCommand}
	args := utils.NewArgs("test").
		Arg(ImportanceCommand.Name).
		Flag(utils.TargetFlag.Name, "normal,normal").
		Flag(utils.TargetParamsFlag.Name, "0,1,0,1").
		Flag(utils.CopulaFlag.Name, "gumbel").
		Flag(utils.CopulaParamFlag.Name, 2.0).
		Flag(utils.ProposalFlag.Name, "normal,normal").
		Flag(utils.ProposalParamsFlag.Name, "0,2,0,2").
		Flag(utils.SamplesFlag.Name, 20).
		Flag(utils.RandomSeedFlag.Name, int64(4)).
		Flag(utils.OutputFlag.Name, out).
		Build()

	// when
	err := app.Run(args)

	// then
	require.NoError(t, err)
	rows, err := utils.LoadTable(out)
	require.NoError(t, err)
	require.Len(t, rows, 20)
	for _, row := range rows {
		require.Len(t, row, 3)
	}
}

func TestCmdImportance_DimensionMismatch(t *testing.T) {
	// given
	app := cli.NewApp()
	app.Commands = []*cli.Command{&ImportanceCommand}
	args := utils.NewArgs("test").
		Arg(ImportanceCommand.Name).
		Flag(utils.TargetFlag.Name, "normal,normal").
		Flag(utils.TargetParamsFlag.Name, "0,1,0,1").
		Flag(utils.ProposalFlag.Name, "normal").
		Flag(utils.ProposalParamsFlag.Name, "0,2").
		Build()

	// when
	err := app.Run(args)

	// then
	require.ErrorContains(t, err, "the target works in dimension 2 but the proposal in 1")
}

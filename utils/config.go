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
	"time"

	"github.com/quasar-uq/quasar/logger"
	"github.com/urfave/cli/v2"
)

// ArgumentMode determines which positional arguments a command expects.
type ArgumentMode int

const (
	// NoArgs expects no positional arguments.
	NoArgs ArgumentMode = iota
	// PathArg expects exactly one positional path argument.
	PathArg
)

// Config holds the parsed command line options of one quasar invocation.
type Config struct {
	AppName     string
	CommandName string
	LogLevel    string

	ArgPath string // positional path argument, if the mode requires one

	Algorithm      string    // markov chain kernel name
	Archive        string    // sqlite archive path, empty disables archiving
	Burn           int       // number of discarded initial chain states
	CopulaKind     string    // copula family coupling the target marginals
	CopulaParam    float64   // copula dependence parameter
	Correlation    string    // kriging correlation kernel
	Criterion      string    // stratum refinement criterion
	DesignFile     string    // design table for surrogate fitting
	Dimension      int       // dimension of the sample space
	Ensemble       int       // stretch ensemble size
	Iterations     int       // candidate designs for lhs criteria
	Jump           int       // chain thinning factor
	LhsCriterion   string    // latin hypercube criterion
	Mode           string    // in-stratum placement mode
	Output         string    // sample table output path
	Proposal       []string  // proposal kernel per dimension
	ProposalParams []float64 // proposal distribution parameters
	ProposalScale  []float64 // proposal kernel scale per dimension
	RandomSeed     int64     // random seed of the run
	Regression     string    // kriging regression basis
	Resample       int       // importance resampling size
	Responses      int       // trailing response columns in the design table
	Samples        int       // requested number of samples
	Strata         []int     // strata per dimension for full-factorial designs
	StrataFile     string    // stratum design table path
	StrataOut      string    // refined stratum design output path
	StretchScale   float64   // stretch move scale parameter
	Tag            string    // archive label of the run
	Target         []string  // target density distribution names
	TargetParams   []float64 // target distribution parameters
}

// NewConfig reads the configuration of a command from its cli context.
func NewConfig(ctx *cli.Context, mode ArgumentMode) (*Config, error) {
	log := logger.NewLogger(ctx.String(logger.LogLevelFlag.Name), "Config")

	cfg, err := createConfigFromFlags(ctx)
	if err != nil {
		return nil, err
	}

	err = updateConfigPositionalArgs(ctx, cfg, mode)
	if err != nil {
		return nil, err
	}

	if cfg.RandomSeed < 0 {
		cfg.RandomSeed = time.Now().UnixNano()
		log.Debugf("no random seed given, using %d", cfg.RandomSeed)
	}

	return cfg, nil
}

// createConfigFromFlags fills a Config from the flags set on the context.
func createConfigFromFlags(ctx *cli.Context) (*Config, error) {
	cfg := &Config{
		AppName:     ctx.App.HelpName,
		CommandName: ctx.Command.Name,
		LogLevel:    ctx.String(logger.LogLevelFlag.Name),

		Algorithm:      ctx.String(AlgorithmFlag.Name),
		Archive:        ctx.String(ArchiveFlag.Name),
		Burn:           ctx.Int(BurnFlag.Name),
		CopulaKind:     ctx.String(CopulaFlag.Name),
		CopulaParam:    ctx.Float64(CopulaParamFlag.Name),
		Correlation:    ctx.String(CorrelationFlag.Name),
		Criterion:      ctx.String(CriterionFlag.Name),
		DesignFile:     ctx.String(DesignFileFlag.Name),
		Dimension:      ctx.Int(DimensionFlag.Name),
		Ensemble:       ctx.Int(EnsembleFlag.Name),
		Iterations:     ctx.Int(IterationsFlag.Name),
		Jump:           ctx.Int(JumpFlag.Name),
		LhsCriterion:   ctx.String(LhsCriterionFlag.Name),
		Mode:           ctx.String(SamplingModeFlag.Name),
		Output:         ctx.String(OutputFlag.Name),
		Proposal:       ctx.StringSlice(ProposalFlag.Name),
		ProposalParams: ctx.Float64Slice(ProposalParamsFlag.Name),
		ProposalScale:  ctx.Float64Slice(ProposalScaleFlag.Name),
		RandomSeed:     ctx.Int64(RandomSeedFlag.Name),
		Regression:     ctx.String(RegressionFlag.Name),
		Resample:       ctx.Int(ResampleFlag.Name),
		Responses:      ctx.Int(ResponsesFlag.Name),
		Samples:        ctx.Int(SamplesFlag.Name),
		Strata:         ctx.IntSlice(StrataFlag.Name),
		StrataFile:     ctx.String(StrataFileFlag.Name),
		StrataOut:      ctx.String(StrataOutFlag.Name),
		StretchScale:   ctx.Float64(StretchScaleFlag.Name),
		Tag:            ctx.String(TagFlag.Name),
		Target:         ctx.StringSlice(TargetFlag.Name),
		TargetParams:   ctx.Float64Slice(TargetParamsFlag.Name),
	}

	if cfg.Samples < 0 {
		return nil, fmt.Errorf("createConfigFromFlags: number of samples must not be negative; got %d", cfg.Samples)
	}
	// A command without the dimension flag leaves zero here; the
	// consumers fall back to their own defaults then.
	if cfg.Dimension < 0 {
		return nil, fmt.Errorf("createConfigFromFlags: dimension must not be negative; got %d", cfg.Dimension)
	}

	return cfg, nil
}

// updateConfigPositionalArgs checks the positional arguments of a command
// against its argument mode and stores them in the config.
func updateConfigPositionalArgs(ctx *cli.Context, cfg *Config, mode ArgumentMode) error {
	switch mode {
	case NoArgs:
		if ctx.Args().Len() != 0 {
			return fmt.Errorf("command %q requires no arguments; got %d", cfg.CommandName, ctx.Args().Len())
		}
	case PathArg:
		if ctx.Args().Len() != 1 {
			return fmt.Errorf("command %q requires one path argument; got %d", cfg.CommandName, ctx.Args().Len())
		}
		cfg.ArgPath = ctx.Args().Get(0)
	default:
		return fmt.Errorf("updateConfigPositionalArgs: unknown argument mode %v", mode)
	}
	return nil
}

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

import "github.com/urfave/cli/v2"

// Command line flags shared by the quasar subcommands.
var (
	SamplesFlag = cli.IntFlag{
		Name:    "samples",
		Aliases: []string{"n"},
		Usage:   "number of samples to produce",
		Value:   100,
	}
	DimensionFlag = cli.IntFlag{
		Name:    "dimension",
		Aliases: []string{"d"},
		Usage:   "dimension of the sample space",
		Value:   1,
	}
	RandomSeedFlag = cli.Int64Flag{
		Name:  "random-seed",
		Usage: "set the random seed for the run (negative value means time-based)",
		Value: -1,
	}
	OutputFlag = cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write the generated sample table to the given file (gzip if it ends in .gz)",
	}
	ArchiveFlag = cli.StringFlag{
		Name:  "archive",
		Usage: "record the run and its samples in the given sqlite archive",
	}
	TagFlag = cli.StringFlag{
		Name:  "tag",
		Usage: "free-form label stored with the run in the archive",
	}
	TargetFlag = cli.StringSliceFlag{
		Name:  "target",
		Usage: "target density as one distribution name per dimension (e.g. normal,normal)",
	}
	TargetParamsFlag = cli.Float64SliceFlag{
		Name:  "target-params",
		Usage: "flat list of the target's distribution parameters",
	}
	ProposalFlag = cli.StringSliceFlag{
		Name:  "proposal",
		Usage: "proposal distribution per dimension (a family name for importance sampling, a normal or uniform kernel for mcmc)",
	}
	ProposalScaleFlag = cli.Float64SliceFlag{
		Name:  "proposal-scale",
		Usage: "proposal kernel scale per dimension",
	}
	ProposalParamsFlag = cli.Float64SliceFlag{
		Name:  "proposal-params",
		Usage: "flat list of the proposal's distribution parameters",
	}
	AlgorithmFlag = cli.StringFlag{
		Name:    "algorithm",
		Aliases: []string{"a"},
		Usage:   "markov chain kernel (mh, mmh or stretch)",
		Value:   "mh",
	}
	BurnFlag = cli.IntFlag{
		Name:  "burn-in",
		Usage: "number of initial chain states to discard",
		Value: 0,
	}
	JumpFlag = cli.IntFlag{
		Name:  "jump",
		Usage: "thinning factor of the chain (keep every jump-th state)",
		Value: 1,
	}
	EnsembleFlag = cli.IntFlag{
		Name:  "ensemble",
		Usage: "number of walkers for the stretch kernel",
		Value: 3,
	}
	StretchScaleFlag = cli.Float64Flag{
		Name:  "stretch-scale",
		Usage: "scale parameter of the stretch move",
		Value: 2.0,
	}
	ResampleFlag = cli.IntFlag{
		Name:  "resample",
		Usage: "multinomial resample size after importance weighting (0 disables)",
		Value: 0,
	}
	StrataFlag = cli.IntSliceFlag{
		Name:  "strata",
		Usage: "number of strata per dimension for a full-factorial design",
	}
	StrataOutFlag = cli.StringFlag{
		Name:  "strata-out",
		Usage: "write the refined stratum design to the given file (gzip if it ends in .gz)",
	}
	StrataFileFlag = cli.StringFlag{
		Name:  "strata-file",
		Usage: "load the stratum design from a text table (origins then widths)",
	}
	SamplingModeFlag = cli.StringFlag{
		Name:  "mode",
		Usage: "placement of points within strata (random or centered)",
		Value: "random",
	}
	CriterionFlag = cli.StringFlag{
		Name:  "criterion",
		Usage: "stratum refinement criterion (refined or gradient)",
		Value: "refined",
	}
	LhsCriterionFlag = cli.StringFlag{
		Name:  "lhs-criterion",
		Usage: "latin hypercube criterion (random, centered, maximin or correlate)",
		Value: "random",
	}
	IterationsFlag = cli.IntFlag{
		Name:  "iterations",
		Usage: "number of candidate designs for the maximin/correlate criteria",
		Value: 100,
	}
	RegressionFlag = cli.StringFlag{
		Name:  "regression",
		Usage: "kriging regression basis (constant, linear or quadratic)",
		Value: "linear",
	}
	CorrelationFlag = cli.StringFlag{
		Name:  "correlation",
		Usage: "kriging correlation kernel (exponential, gaussian, linear, spherical or cubic)",
		Value: "gaussian",
	}
	DesignFileFlag = cli.StringFlag{
		Name:  "design",
		Usage: "text table of design sites and responses (one row per site, responses last)",
	}
	ResponsesFlag = cli.IntFlag{
		Name:  "responses",
		Usage: "number of trailing response columns in the design table",
		Value: 1,
	}
	CopulaFlag = cli.StringFlag{
		Name:  "copula",
		Usage: "couple the target marginals with a copula (gumbel)",
	}
	CopulaParamFlag = cli.Float64Flag{
		Name:  "copula-param",
		Usage: "copula dependence parameter",
		Value: 1.0,
	}
)

package utils

import (
	"flag"
	"testing"

	"github.com/quasar-uq/quasar/logger"
	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"
)

func prepareMockCliContext(arguments ...string) *cli.Context {
	flagSet := flag.NewFlagSet("utils_config_test", 0)
	flagSet.Int(SamplesFlag.Name, 500, "number of samples to produce")
	flagSet.Int(DimensionFlag.Name, 2, "dimension of the sample space")
	flagSet.Int64(RandomSeedFlag.Name, 999, "set the random seed for the run")
	flagSet.Int(JumpFlag.Name, 1, "thinning factor of the chain")
	flagSet.String(AlgorithmFlag.Name, "mmh", "markov chain kernel")
	flagSet.String(logger.LogLevelFlag.Name, "info", "Level of the logging of the app action")
	_ = flagSet.Parse(arguments)

	ctx := cli.NewContext(cli.NewApp(), flagSet, nil)

	command := &cli.Command{Name: "test_command"}
	ctx.Command = command

	return ctx
}

func TestUtilsConfig_NewConfig(t *testing.T) {
	ctx := prepareMockCliContext()

	cfg, err := NewConfig(ctx, NoArgs)
	if err != nil {
		t.Fatalf("Failed to create new config: %v", err)
	}

	if cfg.Samples != 500 {
		t.Fatalf("wrong number of samples; expected: %d, have: %d", 500, cfg.Samples)
	}
	if cfg.Dimension != 2 {
		t.Fatalf("wrong dimension; expected: %d, have: %d", 2, cfg.Dimension)
	}
	if cfg.Algorithm != "mmh" {
		t.Fatalf("wrong algorithm; expected: %q, have: %q", "mmh", cfg.Algorithm)
	}
	if cfg.CommandName != "test_command" {
		t.Fatalf("wrong command name; expected: %q, have: %q", "test_command", cfg.CommandName)
	}
}

func TestUtilsConfig_NewConfigKeepsExplicitSeed(t *testing.T) {
	ctx := prepareMockCliContext()

	cfg, err := NewConfig(ctx, NoArgs)
	if err != nil {
		t.Fatalf("Failed to create new config: %v", err)
	}
	if cfg.RandomSeed != 999 {
		t.Fatalf("explicit random seed must be kept; expected: %d, have: %d", 999, cfg.RandomSeed)
	}
}

func TestUtilsConfig_NewConfigRejectsUnexpectedArgs(t *testing.T) {
	ctx := prepareMockCliContext("unexpected")

	_, err := NewConfig(ctx, NoArgs)
	assert.Error(t, err)
}

func TestUtilsConfig_NewConfigPathArg(t *testing.T) {
	ctx := prepareMockCliContext("design.txt")

	cfg, err := NewConfig(ctx, PathArg)
	if err != nil {
		t.Fatalf("Failed to create new config: %v", err)
	}
	assert.Equal(t, "design.txt", cfg.ArgPath)

	_, err = NewConfig(prepareMockCliContext(), PathArg)
	assert.Error(t, err)
}

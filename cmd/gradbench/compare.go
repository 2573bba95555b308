package main

import (
	"math/rand"

	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/internal/catalog"
	"github.com/born-ml/gradbench/internal/config"
	"github.com/born-ml/gradbench/internal/logger"
	"github.com/born-ml/gradbench/internal/metrics"
	"github.com/born-ml/gradbench/internal/tensor"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare OP VARIANT_A VARIANT_B",
		Short: "Print the max abs difference of outputs and input gradients of two variants",
		Example: `  gradbench compare logsumexp naive stable
  gradbench compare softplus stable stable64 --size 100000`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			op := args[0]
			implA, err := catalog.Lookup(op, args[1])
			if err != nil {
				return err
			}
			implB, err := catalog.Lookup(op, args[2])
			if err != nil {
				return err
			}

			x, err := randomInput(cfg)
			if err != nil {
				return err
			}

			logger.Log.Info("comparing", "op", op, "a", args[1], "b", args[2], "size", cfg.Bench.Size)
			cmp, err := bench.Compare(cmd.OutOrStdout(), implA, implB, x)
			if err != nil {
				return err
			}

			metrics.ObserveComparison(op, cmp)
			return writeMetrics(cfg)
		},
	}
}

// randomInput draws a vector of the configured dtype from N(0, 1) that
// requires grad.
func randomInput(cfg config.Config) (*tensor.Tensor, error) {
	dtype, err := cfg.Bench.DataType()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Bench.Seed))
	x, err := tensor.Randn(tensor.Shape{cfg.Bench.Size}, dtype, rng)
	if err != nil {
		return nil, err
	}
	return x.RequireGrad(), nil
}

func writeMetrics(cfg config.Config) error {
	if cfg.Output.MetricsPath == "" {
		return nil
	}
	if err := metrics.WriteTextfile(cfg.Output.MetricsPath); err != nil {
		return err
	}
	logger.Log.Info("wrote metrics", "path", cfg.Output.MetricsPath)
	return nil
}

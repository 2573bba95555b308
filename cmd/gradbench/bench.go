package main

import (
	"github.com/born-ml/gradbench/internal/backend/cpu"
	"github.com/born-ml/gradbench/internal/backend/webgpu"
	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/internal/catalog"
	"github.com/born-ml/gradbench/internal/config"
	"github.com/born-ml/gradbench/internal/export"
	"github.com/born-ml/gradbench/internal/logger"
	"github.com/born-ml/gradbench/internal/metrics"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench OP VARIANT",
		Short: "Time the forward and backward passes of one variant",
		Example: `  gradbench bench softplus stable --nloops 100
  gradbench bench logsumexp naive --json --arrow-out run.arrow`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			op, variant := args[0], args[1]
			fwd, err := catalog.Lookup(op, variant)
			if err != nil {
				return err
			}

			x, err := randomInput(cfg)
			if err != nil {
				return err
			}

			dev, release, err := openDevice(cfg.Device.Kind)
			if err != nil {
				return err
			}
			defer release()

			logger.Log.Info("benchmarking", "op", op, "variant", variant, "device", dev.Name(),
				"warmup", cfg.Bench.Warmup, "nloops", cfg.Bench.NLoops)
			timings, err := bench.BenchmarkFwdBwd(dev, fwd, bench.Options{
				Warmup: cfg.Bench.Warmup,
				NLoops: cfg.Bench.NLoops,
			}, x)
			if err != nil {
				return err
			}

			if cfg.Output.JSON {
				err = bench.WriteJSON(cmd.OutOrStdout(), timings)
			} else {
				err = bench.Report(cmd.OutOrStdout(), timings)
			}
			if err != nil {
				return err
			}

			if cfg.Output.ArrowPath != "" {
				if err := export.WriteFile(cfg.Output.ArrowPath, timings); err != nil {
					return err
				}
				logger.Log.Info("wrote timings", "path", cfg.Output.ArrowPath)
			}

			metrics.ObserveTimings(op+"/"+variant, timings)
			return writeMetrics(cfg)
		},
	}
}

// openDevice returns the timing device named kind and its release func.
func openDevice(kind string) (bench.Device, func(), error) {
	if kind == config.DeviceWebGPU {
		dev, err := webgpu.New()
		if err != nil {
			return nil, nil, err
		}
		return dev, dev.Release, nil
	}
	return cpu.New(), func() {}, nil
}

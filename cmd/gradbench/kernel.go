package main

import (
	"fmt"

	"github.com/born-ml/gradbench/internal/backend/webgpu"
	"github.com/born-ml/gradbench/internal/kernel"
	"github.com/born-ml/gradbench/internal/logger"
	"github.com/spf13/cobra"
)

func newKernelCmd() *cobra.Command {
	var (
		defines []string
		dryRun  bool
		entry   string
	)

	cmd := &cobra.Command{
		Use:   "kernel FILE",
		Short: "Prepend #define macros to a kernel file and compile it",
		Example: `  gradbench kernel softplus.wgsl -D BLOCK=256 -D EPS=1e-5
  gradbench kernel softplus.cu -D N=4 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			defs := make([]kernel.Define, 0, len(defines))
			for _, raw := range defines {
				d, err := kernel.ParseDefine(raw)
				if err != nil {
					return err
				}
				defs = append(defs, d)
			}

			if dryRun {
				source, err := kernel.Source(path, defs...)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), source)
				return err
			}

			dev, err := webgpu.New()
			if err != nil {
				return err
			}
			defer dev.Release()

			module, err := kernel.Load[*webgpu.Module](dev, path, defs...)
			if err != nil {
				return err
			}
			defer module.Release()

			if entry != "" {
				if err := module.Build(entry); err != nil {
					return err
				}
			}

			logger.Log.Info("compiled kernel", "path", path, "defines", len(defs))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "compiled %s\n", path)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Macro NAME=VALUE to prepend (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the synthesized source instead of compiling")
	cmd.Flags().StringVar(&entry, "entry", "main", "Compute entry point to build a pipeline for (empty to skip)")

	return cmd
}

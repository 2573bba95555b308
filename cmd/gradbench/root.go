package main

import (
	"fmt"

	"github.com/born-ml/gradbench/internal/config"
	"github.com/born-ml/gradbench/internal/logger"
	"github.com/spf13/cobra"
)

const version = "v0.1.0-dev"

var (
	cfgFile   string
	activeCfg config.Config
	cfgLoaded bool
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "gradbench",
		Short:         "Compare and time differentiable operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			activeCfg = loaded
			cfgLoaded = true
			logger.Setup(loaded.Log.Level, loaded.Log.Format)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newKernelCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func requireConfig() (config.Config, error) {
	if !cfgLoaded {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gradbench %s\n", version)
			return err
		},
	}
}

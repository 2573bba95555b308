package main

import (
	"fmt"
	"strings"

	"github.com/born-ml/gradbench/internal/catalog"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered operations and their variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, op := range catalog.Ops() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", op, strings.Join(catalog.Variants(op), " ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

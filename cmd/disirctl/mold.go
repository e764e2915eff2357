package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMoldCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mold",
		Short: "Inspect and validate Mold schema documents",
	}
	root.AddCommand(newMoldLintCommand())
	return root
}

func newMoldLintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <mold-file>",
		Short: "Decode and finalize a Mold document, reporting any structural error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mold, err := decodeMoldFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: ok (version %s)\n", args[0], mold.Version())
			return nil
		},
	}
}

// Command disirctl is disir-server's operator CLI: lint Molds, validate
// and diff Configs against them, manage the registry schema, and run
// the HTTP validation service itself. Adapted from the teacher's
// cmd/migrate (cobra-driven single-purpose binary) and cmd/server
// (the service's composition root), merged into one cobra tree the way
// operator tooling for a schema-management service typically ships.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "disirctl",
		Short:         "disirctl manages disir Molds, Configs, and the validation service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a disir-server YAML config file")

	root.AddCommand(
		newMoldCommand(),
		newConfigCommand(),
		newRegistryCommand(&configPath),
		newServeCommand(&configPath),
	)
	return root
}

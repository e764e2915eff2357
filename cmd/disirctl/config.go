package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kspt-johs/disir-go/pkg/disir"
)

func newConfigCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Validate, diff, and inspect Config documents",
	}
	root.AddCommand(
		newConfigValidateCommand(),
		newConfigDiffCommand(),
		newConfigDefaultCommand(),
	)
	return root
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <mold-file> <config-file>",
		Short: "Validate a Config document against its Mold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mold, err := decodeMoldFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := decodeConfigFile(args[1], mold)
			if err != nil {
				return err
			}

			status, entries := disir.Validate(cfg)
			for _, e := range entries {
				fmt.Printf("%s: %s: %s\n", e.Path, e.Status, e.Message)
			}
			fmt.Printf("verdict: %s\n", status)

			if status != disir.StatusOK {
				return fmt.Errorf("config is %s", status)
			}
			return nil
		},
	}
}

func newConfigDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <mold-file> <config-a> <config-b>",
		Short: "Report structural differences between two Configs built against the same Mold",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mold, err := decodeMoldFile(args[0])
			if err != nil {
				return err
			}
			a, err := decodeConfigFile(args[1], mold)
			if err != nil {
				return err
			}
			b, err := decodeConfigFile(args[2], mold)
			if err != nil {
				return err
			}

			entries := disir.Diff(a, b)
			if len(entries) == 0 {
				fmt.Println("no differences")
				return nil
			}
			fmt.Println(disir.DiffReport(entries))
			return nil
		},
	}
}

func newConfigDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default <mold-file> <keyval-name> <version>",
		Short: "Print the default value a top-level Keyval resolves to at a given Mold version",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mold, err := decodeMoldFile(args[0])
			if err != nil {
				return err
			}

			target, err := disir.ParseVersion(args[2])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[2], err)
			}

			ctx, err := mold.Context().FindElement(args[1])
			if err != nil {
				return fmt.Errorf("find keyval %q: %w", args[1], err)
			}
			defer ctx.PutContext()

			value, ok := ctx.DefaultAt(target)
			if !ok {
				return fmt.Errorf("%q has no default at or before version %s", args[1], target)
			}
			fmt.Println(value.Format())
			return nil
		},
	}
}

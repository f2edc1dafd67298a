package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootsCommand(ctx *commandContext) *cobra.Command {
	rootsCmd := &cobra.Command{
		Use:   "roots",
		Short: "Manage directories searched for videos",
	}

	rootsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered search roots",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			printRoots(cmd, registry.List())
			return nil
		},
	})

	rootsCmd.AddCommand(&cobra.Command{
		Use:   "add <path>",
		Short: "Register a search root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			paths, err := registry.Add(args[0])
			if err != nil {
				return fmt.Errorf("add root: %w", err)
			}
			printRoots(cmd, paths)
			return nil
		},
	})

	rootsCmd.AddCommand(&cobra.Command{
		Use:     "remove <path>",
		Aliases: []string{"rm"},
		Short:   "Unregister a search root",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			paths, err := registry.Remove(args[0])
			if err != nil {
				return fmt.Errorf("remove root: %w", err)
			}
			printRoots(cmd, paths)
			return nil
		},
	})

	return rootsCmd
}

func printRoots(cmd *cobra.Command, paths []string) {
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintln(out, "No search roots registered")
		return
	}
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
}

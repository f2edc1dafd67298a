package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"repitch/internal/mediaid"
)

func newIDCommand() *cobra.Command {
	idCmd := &cobra.Command{
		Use:         "id",
		Short:       "Convert between video paths and ids",
		Annotations: map[string]string{skipConfigLoad: "true"},
	}

	idCmd.AddCommand(&cobra.Command{
		Use:   "encode <path>",
		Short: "Print the id of a video path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), mediaid.Encode(path))
			return nil
		},
	})

	idCmd.AddCommand(&cobra.Command{
		Use:   "decode <id>",
		Short: "Print the video path an id refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := mediaid.Decode(mediaid.ID(args[0]))
			if err != nil {
				return fmt.Errorf("decode id: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return idCmd
}

package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"laughprep/internal/config"
	"laughprep/internal/manifest"
)

func newSortCommand() *cobra.Command {
	var delimiter string

	cmd := &cobra.Command{
		Use:         "sort <file>",
		Short:       "Sort a manifest file in place by its first field",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if utf8.RuneCountInString(delimiter) != 1 {
				return fmt.Errorf("delimiter must be a single character (got %q)", delimiter)
			}
			sep, _ := utf8.DecodeRuneInString(delimiter)
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if err := manifest.SortFile(path, sep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sorted %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", " ", "Field delimiter")
	return cmd
}

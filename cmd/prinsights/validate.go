package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/dirlabel"
)

func newValidateCmd() *cobra.Command {
	var dirConfig string

	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a labeler configuration file",
		Long: `Validates .github/pr-labeler.yml (or the given file) and, with --directory-config,
a directory labeler rules file. Unknown keys are reported as warnings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if path = config.FindConfigFile("."); path == "" {
				return errors.New("no configuration file found (.github/pr-labeler.yml)")
			}
			if _, err := os.Stat(path); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			_, warnings, err := config.Load(path)
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(out, "%s: ok\n", path)

			if dirConfig != "" {
				if _, err := dirlabel.Load(dirConfig); err != nil {
					return fmt.Errorf("%s: %w", dirConfig, err)
				}
				fmt.Fprintf(out, "%s: ok\n", dirConfig)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dirConfig, "directory-config", "", "Directory labeler rules file to validate")
	return cmd
}

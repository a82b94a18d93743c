package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file into a syntree.Tree and print it",
		Long: `Parse a source file into a syntree.Tree and print it.

Examples:
  syntree-demo parse main.go
  SYNTREE_PARSER_LANGUAGE=go syntree-demo parse main.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}

	return cmd
}

func runParse(ctx context.Context, path string, stdout io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()

	source, resolvedPath, err := safeReadFile(path)
	if err != nil {
		return err
	}

	result, err := buildFromSource(ctx, logger, cfg, resolvedPath, source)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(stdout, result.Tree.String(result.Tags)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/salikh-syn/syntree/pkg/syntree"
	"github.com/salikh-syn/syntree/pkg/syntree/changeset"
)

const diffArgCount = 2

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Diff two revisions of a file and report subtree reuse",
		Long: `Diff two revisions of a file and report how much of the old tree's
shape survives the edit unchanged.

Examples:
  syntree-demo diff old.go new.go`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), args[0], args[1], cmd.OutOrStdout())
		},
	}

	return cmd
}

func runDiff(ctx context.Context, oldPath, newPath string, stdout io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()

	oldSource, oldResolved, err := safeReadFile(oldPath)
	if err != nil {
		return err
	}

	newSource, newResolved, err := safeReadFile(newPath)
	if err != nil {
		return err
	}

	oldResult, err := buildFromSource(ctx, logger, cfg, oldResolved, oldSource)
	if err != nil {
		return err
	}

	newResult, err := buildFromSource(ctx, logger, cfg, newResolved, newSource)
	if err != nil {
		return err
	}

	changes := changeset.ComputeBytes(oldSource, newSource)
	skeleton := oldResult.Tree.Unchanged(changes)

	reused, total := reuseStats(oldResult.Tree, skeleton)

	_, err = fmt.Fprintf(stdout,
		"%d changed range(s); old tree length %d, new tree length %d\n"+
			"top-level children kept by reference after Unchanged: %d/%d\n",
		len(changes), oldResult.Tree.Length(), newResult.Tree.Length(), reused, total)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

// reuseStats counts how many of skeleton's top-level children are the same
// Child value oldTree held before Unchanged ran, i.e. were kept by
// reference rather than dropped for the next parse to regenerate.
func reuseStats(oldTree, skeleton *syntree.Tree) (reused, total int) {
	kept := make(map[syntree.Child]bool)
	for _, c := range oldTree.Children() {
		kept[c] = true
	}

	children := skeleton.Children()
	total = len(children)

	for _, c := range children {
		if kept[c] {
			reused++
		}
	}

	return reused, total
}

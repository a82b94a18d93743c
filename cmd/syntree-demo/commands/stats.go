package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/salikh-syn/syntree/pkg/syntree"
)

func newStatsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Summarize a built tree's shape and render a depth histogram",
		Long: `Parse a source file, build its syntree.Tree, and print a table of
buffer-versus-pointer node counts, max depth and buffer occupancy,
alongside an HTML depth histogram.

Examples:
  syntree-demo stats main.go
  syntree-demo stats -o depth.html main.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), args[0], output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "syntree-stats.html", "HTML depth-histogram output path")

	return cmd
}

func runStats(ctx context.Context, path, output string, stdout io.Writer) error {
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

	st := collectTreeStats(result.Tree)

	maxBufferLength := cfg.Builder.MaxBufferLength
	if maxBufferLength <= 0 {
		maxBufferLength = syntree.DefaultMaxBufferLength
	}

	printStatsTable(stdout, resolvedPath, st, maxBufferLength)

	if err := renderDepthHistogram(output, st); err != nil {
		return fmt.Errorf("render depth histogram: %w", err)
	}

	color.New(color.FgGreen).Fprintf(stdout, "wrote depth histogram to %s\n", output) //nolint:errcheck // best-effort colored status line

	return nil
}

// treeStats summarizes one built Tree's shape.
type treeStats struct {
	PointerNodes  int
	BufferRegions int
	BufferRecords int
	BufferSpan    int
	MaxDepth      int
	DepthCounts   map[int]int
}

func collectTreeStats(tree *syntree.Tree) treeStats {
	st := treeStats{DepthCounts: make(map[int]int)}
	walkChild(tree, 0, &st)

	return st
}

func walkChild(c syntree.Child, depth int, st *treeStats) {
	switch v := c.(type) {
	case *syntree.Tree:
		st.PointerNodes++
		recordDepth(st, depth)

		for _, child := range v.Children() {
			walkChild(child, depth+1, st)
		}
	case *syntree.NodeBuffer:
		st.BufferRegions++
		st.BufferSpan += v.Length()

		bufDepth := depth

		enter := func(_ syntree.TypeID, _, _ int) bool {
			bufDepth++
			st.BufferRecords++
			recordDepth(st, bufDepth)

			return true
		}
		leave := func(_ syntree.TypeID, _, _ int) { bufDepth-- }

		v.Iterate(0, v.Length(), 0, enter, leave)
	}
}

func recordDepth(st *treeStats, depth int) {
	st.DepthCounts[depth]++

	if depth > st.MaxDepth {
		st.MaxDepth = depth
	}
}

func printStatsTable(w io.Writer, path string, st treeStats, maxBufferLength int) {
	color.New(color.FgCyan).Fprintf(w, "%s\n", path) //nolint:errcheck // best-effort colored header

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"metric", "value"})
	tbl.AppendRow(table.Row{"pointer nodes", humanize.Comma(int64(st.PointerNodes))})
	tbl.AppendRow(table.Row{"buffer regions", humanize.Comma(int64(st.BufferRegions))})
	tbl.AppendRow(table.Row{"buffer records", humanize.Comma(int64(st.BufferRecords))})
	tbl.AppendRow(table.Row{"max depth", st.MaxDepth})
	tbl.AppendRow(table.Row{
		"buffer occupancy",
		fmt.Sprintf("%s / %s per region budget", humanize.Bytes(uint64(st.BufferSpan)), humanize.Bytes(uint64(maxBufferLength))), //nolint:gosec // lengths are always non-negative
	})
	tbl.Render()
}

func renderDepthHistogram(output string, st treeStats) error {
	depths := make([]int, 0, len(st.DepthCounts))
	for d := range st.DepthCounts {
		depths = append(depths, d)
	}

	sort.Ints(depths)

	labels := make([]string, len(depths))
	data := make([]opts.BarData, len(depths))

	for i, d := range depths {
		labels[i] = fmt.Sprintf("%d", d)
		data[i] = opts.BarData{Value: st.DepthCounts[d]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Node depth histogram"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "depth"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "node count"}),
	)
	bar.SetXAxis(labels).AddSeries("nodes", data)

	f, err := os.Create(output) //nolint:gosec // output path comes from a user-controlled CLI flag by design
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

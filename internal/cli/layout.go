package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capicuhq/capicu/pkg/layout"
	"github.com/capicuhq/capicu/pkg/pipeline"
)

// layoutCommand creates the layout command for computing chain layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "layout [board]",
		Short: "Compute a chain layout from a board",
		Long: `Compute a chain layout from a board.

The board is either a board JSON file or shorthand notation like "6-6 6-4 4-2".
Tiles are placed along a spiral: the chain grows right along the baseline,
turns up at the frame edge, runs back along an upper lane, and descends again,
with doubles drawn crosswise. The whole arrangement is scaled uniformly so it
always fits the frame.

The output is a layout JSON file with one placement per tile plus the two open
ends, ready to render with 'capicu render'. Results are cached locally for
faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().Float64Var(&opts.TileWidth, "tile-width", opts.TileWidth, "base tile width before scaling")
	cmd.Flags().Float64Var(&opts.TileHeight, "tile-height", opts.TileHeight, "base tile height before scaling")
	cmd.Flags().IntVar(&opts.TilesPerRow, "tiles-per-row", opts.TilesPerRow, "tiles on the baseline before the chain turns up")
	cmd.Flags().IntVar(&opts.TilesPerColumn, "tiles-per-column", opts.TilesPerColumn, "tiles in the vertical runs")

	return cmd
}

// runLayout parses the board, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	boardInput(input, &opts)

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	b, err := runner.Parse(ctx, opts)
	if err != nil {
		return fmt.Errorf("parse board: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing layout for %d tiles...", b.Len()))
	spinner.Start()

	res, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, b, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutOutputPath(input, opts)
	}

	if err := layout.WriteResultFile(res, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(b.Len(), res.Scale, cacheHit)
	if res.Scale < 0.5 {
		printWarning("Dense chain: tiles shrink to %.0f%% of base size", res.Scale*100)
	}
	printNewline()
	printNextStep("Render", "capicu render "+outputPath)

	return nil
}

// layoutOutputPath derives the default output file name. File inputs keep
// their base name; shorthand input lands in layout.json.
func layoutOutputPath(input string, opts pipeline.Options) string {
	if opts.BoardFile == "" {
		return "layout.json"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".layout.json"
}

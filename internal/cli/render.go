package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capicuhq/capicu/pkg/board"
	"github.com/capicuhq/capicu/pkg/layout"
	"github.com/capicuhq/capicu/pkg/pipeline"
)

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "render [board|layout.json]",
		Short: "Render a chain as SVG, PNG, DOT, or JSON",
		Long: `Render a chain as SVG, PNG, DOT, or JSON.

The input is a board JSON file, shorthand notation like "6-6 6-4 4-2", or a
precomputed *.layout.json file from 'capicu layout'. Board input runs the full
parse, layout, and render pipeline; layout input skips straight to rendering.

SVG and PNG draw the tiles in place on the table. DOT describes the chain as a
graph for Graphviz tooling, and JSON bundles the placements with the tiles for
frontend consumption. Results are cached locally, so re-rendering an unchanged
board is close to free.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateStyle(opts.Style); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "visual style: classic (default), midnight")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().BoolVar(&opts.Table, "table", opts.Table, "draw the table surface behind the chain")
	cmd.Flags().BoolVar(&opts.Endpoints, "endpoints", opts.Endpoints, "mark the two open ends")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", opts.Detailed, "include chain positions and matched pips in DOT output")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")

	return cmd
}

// runRender dispatches on the input kind and renders the requested formats.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	if strings.HasSuffix(input, ".layout.json") {
		return c.renderLayout(ctx, runner, input, opts, output)
	}
	return c.renderBoard(ctx, runner, input, opts, output)
}

// renderBoard runs the full parse, layout, and render pipeline.
func (c *CLI) renderBoard(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) error {
	boardInput(input, &opts)

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering chain...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Rendered %d tiles to %s", result.Board.Len(), strings.Join(opts.Formats, ", ")))

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		tileCount: result.Board.Len(),
		scale:     result.Layout.Scale,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}

// renderLayout renders straight from a precomputed layout file.
func (c *CLI) renderLayout(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) error {
	res, err := layout.ReadResultFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()

	// The tile pips ride along in the placements, so no board is needed.
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, res, board.Board{}, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		tileCount: len(res.Placements),
		scale:     res.Scale,
		cacheHit:  cacheHit,
	})
}

// =============================================================================
// Artifact Output
// =============================================================================

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	tileCount int
	scale     float64
	cacheHit  bool
}

// writeArtifacts writes each rendered format to disk and prints a summary.
// A single format honors the output path as given; multiple formats share
// its base and get one file per extension.
func writeArtifacts(p artifactWriteParams) error {
	base := artifactBase(p.output, p.input)

	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if p.output != "" && len(p.formats) == 1 {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Render complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.tileCount, p.scale, p.cacheHit)
	return nil
}

// artifactBase derives the base output path. Format extensions on the
// output flag are stripped so "-o chain.svg -f svg,png" writes chain.svg
// and chain.png.
func artifactBase(output, input string) string {
	if output == "" {
		if _, err := os.Stat(input); err != nil {
			return "chain" // shorthand input has no path to derive from
		}
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgraph/pkg/config"
	"github.com/matzehuels/ghgraph/pkg/graph"
	"github.com/matzehuels/ghgraph/pkg/inflight"
	"github.com/matzehuels/ghgraph/pkg/render"
	"github.com/matzehuels/ghgraph/pkg/render/nodelink"
	"github.com/matzehuels/ghgraph/pkg/render/svg"
)

const (
	formatSVG  = "svg"
	formatDOT  = "dot"
	formatJSON = "json"
	formatPNG  = "png"
	formatPDF  = "pdf"

	defaultDepth = 1
	pngScale     = 2.0
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatJSON: true, formatPNG: true, formatPDF: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file, base path for several formats, or "-" for stdout
	formats  []string // output formats
	depth    int      // expansion levels below the root
	limit    int      // stop expanding once this many nodes are visible; 0 means no limit
	labels   bool     // print node names next to circles
	graphviz bool     // draw through Graphviz neato instead of the native SVG writer
}

// renderCommand creates the render command: expand, settle, write files.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{depth: defaultDepth}

	cmd := &cobra.Command{
		Use:   "render [owner/repo]",
		Short: "Expand a repository's graph and write it to SVG, DOT, JSON, PNG or PDF",
		Long: `Render expands the graph around a repository to the given depth, runs the
force layout until it settles and writes the result.

Depth 1 shows the repository's contributors, depth 2 adds their repositories,
and so on. Every level costs one GitHub request per node, so keep --limit in
mind for popular repositories: unauthenticated clients get 60 requests an hour.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) > 1 {
				return fmt.Errorf("output to stdout needs exactly one format")
			}
			if opts.depth < 0 {
				return fmt.Errorf("invalid depth: %d (must not be negative)", opts.depth)
			}
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			repo, err := repoArg(cfg, args)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, repo, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (single format), base path (several), or "-" for stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, png, pdf (comma-separated)")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", opts.depth, "expansion levels below the root")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "stop expanding once this many nodes are visible (0 = no limit)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label nodes with repository names and logins")
	cmd.Flags().BoolVar(&opts.graphviz, "graphviz", false, "draw SVG/PNG/PDF through Graphviz instead of the built-in writer")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	return parts
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'dot', 'json', 'png' or 'pdf')", f)
		}
	}
	return nil
}

// basePath derives the base output path. Without an output it is the
// repository name with the slash replaced ("mbostock_d3"); a known format
// extension on output is stripped.
func basePath(output, repo string) string {
	if output == "" {
		return strings.ReplaceAll(repo, "/", "_")
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to the file it is written to.
func outputPaths(output, repo string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, repo)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func (c *CLI) runRender(ctx context.Context, cfg config.Config, repo string, opts *renderOpts) error {
	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Loading "+repo)
	spinner.Start()

	ctrl, err := c.newController(ctx, cfg, repo, inflight.NewMemory(cfg.Server.PendingTTL))
	if err != nil {
		spinner.StopWithError("Could not load %s", repo)
		return err
	}

	spinner.Update("Expanding %s to depth %d", repo, opts.depth)
	expandErr := ctrl.ExpandAll(ctx, opts.depth, opts.limit)
	if ctx.Err() != nil {
		spinner.Stop()
		return ctx.Err()
	}

	spinner.Update("Settling layout of %d nodes", ctrl.Visible())
	ticks, err := ctrl.Settle(ctx, nil)
	if err != nil {
		spinner.Stop()
		return err
	}
	// Status lines go to stdout, which then carries the rendered document.
	quiet := opts.output == "-"
	if quiet {
		spinner.Stop()
	} else {
		spinner.StopWithSuccess("Built graph of %s", repo)
	}
	prog.done(fmt.Sprintf("Settled layout in %d ticks", ticks))

	if expandErr != nil {
		failed := len(unwrapJoined(expandErr))
		c.Logger.Debug("Expansion failures", "err", expandErr)
		if quiet {
			c.Logger.Warn("Some nodes could not be expanded", "count", failed)
		} else {
			printWarning("%d node(s) could not be expanded", failed)
		}
	}

	snap := ctrl.Snapshot()
	if !quiet {
		printStats(snap)
	}

	paths := outputPaths(opts.output, repo, opts.formats)
	for _, format := range opts.formats {
		path := paths[format]
		data, err := renderSnapshot(snap, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		if err := writeOutput(path, data); err != nil {
			return err
		}
		if !quiet {
			printFile(path)
		}
	}

	if !quiet {
		printDetail("Canvas %dx%d, %d visible nodes", snap.Width, snap.Height, len(snap.Nodes))
		printNextStep("Explore interactively", appName+" explore "+repo)
	}
	return nil
}

// renderSnapshot encodes a settled snapshot in one format.
func renderSnapshot(s graph.Snapshot, format string, opts *renderOpts) ([]byte, error) {
	if format == formatJSON {
		return graph.MarshalSnapshot(s)
	}

	dot := nodelink.ToDOT(s, nodelink.Options{Labels: opts.labels})
	if format == formatDOT {
		return []byte(dot), nil
	}

	if opts.graphviz {
		switch format {
		case formatSVG:
			return nodelink.RenderSVG(dot)
		case formatPNG:
			return nodelink.RenderPNG(dot, pngScale)
		case formatPDF:
			return nodelink.RenderPDF(dot)
		}
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	svgOpts := []svg.Option{svg.WithTooltips(), svg.WithBackground("white")}
	if opts.labels {
		svgOpts = append(svgOpts, svg.WithLabels())
	}
	doc := svg.Render(s, svgOpts...)
	switch format {
	case formatSVG:
		return doc, nil
	case formatPNG:
		return render.ToPNG(doc, pngScale)
	case formatPDF:
		return render.ToPDF(doc)
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

func writeOutput(path string, data []byte) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := w.Write(data)
	return err
}

// unwrapJoined lists the errors combined by errors.Join.
func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	if err == nil {
		return nil
	}
	return []error{err}
}

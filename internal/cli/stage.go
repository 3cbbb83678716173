package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdaograph/internal/config"
	mdaoio "github.com/matzehuels/mdaograph/pkg/io"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/pipeline"
)

// stageOpts holds the flags shared by the stage commands.
type stageOpts struct {
	output     string
	format     string
	noCache    bool
	refresh    bool
	arch       string
	conv       string
	allow      bool
	cycleLimit int
}

func (o *stageOpts) register(cmd *cobra.Command, cached bool) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&o.arch, "architecture", "", "override the MDAO architecture")
	cmd.Flags().StringVar(&o.conv, "convergence", "", "override the convergence type: Jacobi, Gauss-Seidel, None")
	cmd.Flags().BoolVar(&o.allow, "allow-unconverged", false, "allow unconverged couplings")
	if cached {
		cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
		cmd.Flags().BoolVar(&o.refresh, "refresh", false, "recompute and overwrite cached results")
	}
}

// pipelineOptions merges flags over config values.
func (c *CLI) pipelineOptions(cmd *cobra.Command, o *stageOpts, target mdao.Stage) pipeline.Options {
	opts := pipeline.Options{
		Target:     target,
		CycleLimit: c.Config.Schedule.CycleLimit,
		Refresh:    o.refresh,
		Logger:     c.Logger,
	}
	if o.cycleLimit > 0 {
		opts.CycleLimit = o.cycleLimit
	}
	if o.arch != "" {
		opts.Architecture = mdao.Architecture(o.arch)
	}
	if o.conv != "" {
		opts.ConvergenceType = mdao.ConvergenceType(o.conv)
	}
	if f := cmd.Flags().Lookup("allow-unconverged"); f != nil && f.Changed {
		allow := o.allow
		opts.AllowUnconvergedCouplings = &allow
	}
	return opts
}

func (c *CLI) rolesCommand() *cobra.Command {
	var o stageOpts
	cmd := &cobra.Command{
		Use:   "roles [problem]",
		Short: "Assign problem roles and write the problem graph",
		Long: `Assign problem roles to the functions and variables of a problem.

The input is an HCL problem definition or a JSON repository/FPG document. The
output is the FPG document with its function ordering filled in. Findings of
the problem graph checks are printed as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoles(cmd.Context(), args[0], c.pipelineOptions(cmd, &o, mdao.StageFPG), o)
		},
	}
	o.register(cmd, false)
	return cmd
}

func (c *CLI) runRoles(ctx context.Context, input string, opts pipeline.Options, o stageOpts) error {
	doc, err := pipeline.LoadDocument(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	timer := startStage(loggerFromContext(ctx), string(mdao.StageFPG))
	fpg, diags, err := runner.Roles(ctx, doc, opts)
	if err != nil {
		return err
	}
	timer.done("assigned roles", "functions", len(fpg.Formulation.FunctionOrder))

	if len(diags) > 0 {
		printWarning("%d finding(s) in the problem graph", len(diags))
		printDiagnostics(diags)
	}
	return c.writeDocument(mdaoio.FromFPG(fpg), o.output)
}

func (c *CLI) synthesizeCommand() *cobra.Command {
	var o stageOpts
	cmd := &cobra.Command{
		Use:   "synthesize [problem]",
		Short: "Synthesize the MDAO data graph of a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExecute(cmd.Context(), args[0], c.pipelineOptions(cmd, &o, mdao.StageMDG), o)
		},
	}
	o.register(cmd, true)
	return cmd
}

func (c *CLI) scheduleCommand() *cobra.Command {
	var o stageOpts
	cmd := &cobra.Command{
		Use:   "schedule [problem]",
		Short: "Schedule the MDAO process graph of a problem",
		Long: `Schedule the MDAO process graph of a problem.

The input may be a problem definition, a problem graph or an MDAO data graph
written by 'synthesize'. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExecute(cmd.Context(), args[0], c.pipelineOptions(cmd, &o, mdao.StageMPG), o)
		},
	}
	o.register(cmd, true)
	return cmd
}

func (c *CLI) processCommand() *cobra.Command {
	var o stageOpts
	cmd := &cobra.Command{
		Use:   "process [problem]",
		Short: "Print the process list and loop nesting of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := o.format
			if format == "" {
				format = formatFromPath(o.output)
			}
			if format == "" {
				format = c.Config.Output.Format
			}
			if err := config.ValidateFormat(format); err != nil {
				return err
			}
			o.format = format
			opts := c.pipelineOptions(cmd, &o, mdao.StageMPG)
			opts.Process = true
			return c.runExecute(cmd.Context(), args[0], opts, o)
		},
	}
	o.register(cmd, true)
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "report format: yaml, json (default from config)")
	cmd.Flags().IntVar(&o.cycleLimit, "cycle-limit", 0, "cycle enumeration limit for the loop nesting (default from config)")
	return cmd
}

// runExecute runs the pipeline up to opts.Target and writes the last
// product: the process report when opts.Process is set, else the graph.
func (c *CLI) runExecute(ctx context.Context, input string, opts pipeline.Options, o stageOpts) error {
	doc, err := pipeline.LoadDocument(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	runner, err := c.newRunner(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	timer := startStage(loggerFromContext(ctx), string(opts.Target))
	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		if res != nil && len(res.Diagnostics) > 0 {
			printDiagnostics(res.Diagnostics)
		}
		return err
	}
	timer.done("pipeline finished", "run", res.RunID)

	if opts.Process {
		printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.ProcessHit)
		return c.writeProcess(res.Process, o.format, o.output)
	}
	var out *mdaoio.Document
	cached := false
	switch opts.Target {
	case mdao.StageMDG:
		out = mdaoio.FromMDG(res.MDG)
		cached = res.CacheInfo.MDGHit
	default:
		out = mdaoio.FromMPG(res.MPG)
		cached = res.CacheInfo.MPGHit
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, cached)
	if err := c.writeDocument(out, o.output); err != nil {
		return err
	}
	if opts.Target == mdao.StageMDG && o.output != "" {
		printNextStep("Schedule it", "mdaograph schedule "+o.output)
	}
	return nil
}

// writeDocument writes d to path, or to stdout when path is empty or "-".
func (c *CLI) writeDocument(d *mdaoio.Document, path string) error {
	if path == "" || path == "-" {
		return mdaoio.WriteJSON(d, c.out)
	}
	if err := mdaoio.ExportJSON(d, path); err != nil {
		return err
	}
	printSuccess("Wrote %s graph", d.Stage)
	printFile(path)
	return nil
}

func (c *CLI) writeProcess(r *mdaoio.ProcessReport, format, path string) error {
	var w io.Writer = c.out
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	var err error
	if format == config.FormatJSON {
		err = writeJSON(w, r)
	} else {
		err = mdaoio.WriteProcessYAML(r, w)
	}
	if err != nil {
		return fmt.Errorf("write process report: %w", err)
	}
	if w != c.out {
		printSuccess("Wrote process report (%d steps)", len(r.Steps))
		printFile(path)
	}
	return nil
}

// formatFromPath infers the report format from a file extension, or
// returns "" when the extension does not name one.
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return config.FormatJSON
	case ".yaml", ".yml":
		return config.FormatYAML
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

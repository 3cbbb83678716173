package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/pipeline"
)

func (c *CLI) validateCommand() *cobra.Command {
	var (
		asJSON bool
		arch   string
		conv   string
	)
	cmd := &cobra.Command{
		Use:   "validate [document]",
		Short: "Run the graph checks on a problem or workflow document",
		Long: `Run the graph checks on a problem or workflow document.

Problem definitions and FPG documents get their problem roles assigned first.
MDG and MPG documents are checked as they are. The command fails when any
check reports a finding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pipeline.LoadDocument(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			opts := pipeline.Options{
				Architecture:    mdao.Architecture(arch),
				ConvergenceType: mdao.ConvergenceType(conv),
				Logger:          c.Logger,
			}

			v, err := pipeline.NewRunner(nil, nil, c.Logger).Validate(cmd.Context(), doc, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.out, v)
			}

			printKeyValue("document", args[0])
			printKeyValue("stage", string(v.Stage))
			if v.Valid {
				printSuccess("All checks passed")
				return nil
			}
			fmt.Fprintln(uiOut, StyleTitle.Render(fmt.Sprintf("%d finding(s)", len(v.Diagnostics))))
			printDiagnostics(v.Diagnostics)
			return fmt.Errorf("%s graph failed validation", v.Stage)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&arch, "architecture", "", "check against another MDAO architecture")
	cmd.Flags().StringVar(&conv, "convergence", "", "check against another convergence type")
	return cmd
}

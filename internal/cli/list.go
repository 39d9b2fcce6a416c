package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rentalfigs/internal/figures"
	"rentalfigs/internal/validation"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the figures with their inputs and outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, nil)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			defs := figures.Definitions(a.paths, a.cfg.Figures)
			present := make(map[string]bool)
			for _, status := range validation.NewFileValidator(a.logger).CheckInputs(defs) {
				present[status.Path] = status.Present
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tINPUT\tOUTPUT\tOPTIONAL\tINPUT PRESENT")
			for _, def := range defs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					def.ID, def.InputPath, a.paths.GetFigurePath(def.OutputFile),
					yesNo(def.Optional), yesNo(present[def.InputPath]))
			}
			return tw.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

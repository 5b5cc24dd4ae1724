package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/commands"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/production/queries"
)

// NewSolveCommand creates the solve command
func NewSolveCommand() *cobra.Command {
	var colors bool

	cmd := &cobra.Command{
		Use:   "solve [page]",
		Short: "Solve a production page",
		Long: `Compute the rate of every process instance of a page so that its links
balance. When no balanced solution exists, the links that cannot be matched
are reported with the amount they are off by.

Every solve is recorded; see 'yafc runs'.

Examples:
  yafc solve circuits
  yafc solve --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolvePageName(args)
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &commands.SolvePageCommand{PageName: name})
				if err != nil {
					return err
				}
				response := result.(*commands.SolvePageResponse)
				return render(cmd.OutOrStdout(), response, func(w io.Writer) { displaySolve(w, response, colors) })
			})
		},
	}

	cmd.Flags().BoolVar(&colors, "color", false, "Colour link states")

	return cmd
}

func displaySolve(w io.Writer, r *commands.SolvePageResponse, colors bool) {
	fmt.Fprint(w, NewTreeFormatter(colors).FormatTree(r.PageName, r.Network))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Status:    %s after %d attempt(s) in %s\n", r.Status, r.Attempts, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Objective: %s\n", formatNumber(r.ObjectiveValue))
	if r.Diagnosed {
		fmt.Fprintln(w, "⚠ The page could not be balanced; unmatched links are marked")
	}
	if r.PrunedLinks > 0 {
		fmt.Fprintf(w, "Links without producer or consumer: %d\n", r.PrunedLinks)
	}
	if r.Message != "" {
		fmt.Fprintf(w, "⚠ %s\n", r.Message)
	}

	var unlinked []string
	for _, entry := range r.Network.Flow {
		if !entry.Linked {
			unlinked = append(unlinked, fmt.Sprintf("%s %s/s", entry.Resource, formatNumber(entry.Amount)))
		}
	}
	if len(unlinked) > 0 {
		fmt.Fprintln(w, "Unlinked flow:")
		for _, entry := range unlinked {
			fmt.Fprintf(w, "  %s\n", entry)
		}
	}
}

// NewRunsCommand creates the runs command
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [page]",
		Short: "Show recent solves of a page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := resolvePageName(args)
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &queries.ListSolveRunsQuery{PageName: name, Limit: limit})
				if err != nil {
					return err
				}
				response := result.(*queries.ListSolveRunsResponse)
				return render(cmd.OutOrStdout(), response, func(w io.Writer) { displayRuns(w, response) })
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

func displayRuns(w io.Writer, r *queries.ListSolveRunsResponse) {
	if len(r.Runs) == 0 {
		fmt.Fprintf(w, "No solves recorded for %s\n", r.PageName)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tSTATUS\tDURATION\tINSTANCES\tLINKS\tOBJECTIVE\tMESSAGE")
	for _, run := range r.Runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Duration.Round(time.Millisecond),
			run.Instances,
			run.Links,
			formatNumber(run.ObjectiveValue),
			run.Message,
		)
	}
	tw.Flush()
}

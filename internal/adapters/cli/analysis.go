package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/commands"
	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/queries"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the catalog analyses",
		Long: `Build the dependency graph, classify every object by automation status,
estimate costs and look for technology loops.

Example:
  yafc analyze --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &commands.RunAnalysisCommand{Refresh: refresh})
				if err != nil {
					return err
				}
				response := result.(*commands.RunAnalysisResponse)
				return render(cmd.OutOrStdout(), response, func(w io.Writer) { displayAnalysis(w, response) })
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload the catalog before analysing")

	return cmd
}

func displayAnalysis(w io.Writer, r *commands.RunAnalysisResponse) {
	fmt.Fprintf(w, "Analysis of %d objects (%s)\n", r.Objects, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Automatable now:    %d\n", r.AutomatableNow)
	fmt.Fprintf(w, "  Automatable later:  %d\n", r.AutomatableLater)
	fmt.Fprintf(w, "  Not automatable:    %d\n", r.NotAutomatable)
	fmt.Fprintf(w, "  Cost model:         %s\n", r.CostStatus)
	if r.MilestoneStatus != "" {
		fmt.Fprintf(w, "  Milestone model:    %s\n", r.MilestoneStatus)
	}
	fmt.Fprintf(w, "  Technology loops:   %d\n", r.Loops)
	if len(r.ImportantItems) > 0 {
		fmt.Fprintf(w, "  Important items:    %s\n", strings.Join(r.ImportantItems, ", "))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warning)
	}
}

// NewCostCommand creates the cost command
func NewCostCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "cost <object>",
		Short: "Show the estimated cost of an object",
		Long: `Show the automation status and cost figures of a catalog object.

Processes also show the cost of one execution and the waste of their
byproducts. Objects that cannot be automated cost "inf".

A recipe may share its product's name; --kind process selects the recipe.

Example:
  yafc cost iron-plate
  yafc cost iron-plate --kind process`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &queries.GetObjectCostQuery{Name: args[0], Kind: kind})
				if err != nil {
					return err
				}
				dto := result.(*queries.ObjectCostDTO)
				return render(cmd.OutOrStdout(), dto, func(w io.Writer) { displayCost(w, dto) })
			})
		},
	}
	addKindFlag(cmd, &kind)
	return cmd
}

func displayCost(w io.Writer, dto *queries.ObjectCostDTO) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t(%s #%d)\n", dto.Name, dto.Kind, dto.ID)
	fmt.Fprintf(tw, "  Automation\t%s\n", dto.Automation)
	fmt.Fprintf(tw, "  Cost\t%s\n", formatNumber(dto.Cost))
	if dto.CostNow != nil {
		fmt.Fprintf(tw, "  Cost (current milestones)\t%s\n", formatNumber(*dto.CostNow))
	}
	fmt.Fprintf(tw, "  Flow\t%s\n", formatNumber(dto.Flow))
	if dto.Kind == "PROCESS" || dto.Kind == "TECHNOLOGY" {
		fmt.Fprintf(tw, "  Recipe cost\t%s\n", formatNumber(dto.RecipeCost))
		fmt.Fprintf(tw, "  Recipe product cost\t%s\n", formatNumber(dto.RecipeProductCost))
		fmt.Fprintf(tw, "  Waste\t%s\n", formatNumber(dto.Waste))
	}
	tw.Flush()
}

// NewDepsCommand creates the deps command
func NewDepsCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "deps <object>",
		Short: "Show what an object depends on and what depends on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &queries.GetDependenciesQuery{Name: args[0], Kind: kind})
				if err != nil {
					return err
				}
				response := result.(*queries.GetDependenciesResponse)
				return render(cmd.OutOrStdout(), response, func(w io.Writer) { displayDependencies(w, response) })
			})
		},
	}
	addKindFlag(cmd, &kind)
	return cmd
}

func addKindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVar(kind, "kind", "", "Object kind when several share the name (resource, process, entity, technology)")
}

func displayDependencies(w io.Writer, r *queries.GetDependenciesResponse) {
	fmt.Fprintf(w, "%s\n", r.Name)
	if len(r.Groups) == 0 {
		fmt.Fprintln(w, "  (no dependencies)")
	}
	for _, group := range r.Groups {
		mode := "any of"
		if group.RequiresAll {
			mode = "all of"
		}
		suffix := ""
		if group.OneTimeInvestment {
			suffix = " [one-time]"
		}
		fmt.Fprintf(w, "  %s: %s %s%s\n", group.Kind, mode, strings.Join(group.Elements, ", "), suffix)
	}
	if len(r.Dependents) > 0 {
		fmt.Fprintf(w, "Needed by: %s\n", strings.Join(r.Dependents, ", "))
	}
}

// NewLoopsCommand creates the loops command
func NewLoopsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "loops",
		Short: "List technologies whose prerequisites form a cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
				result, err := app.send(ctx, &queries.FindTechnologyLoopsQuery{})
				if err != nil {
					return err
				}
				response := result.(*queries.FindTechnologyLoopsResponse)
				return render(cmd.OutOrStdout(), response, func(w io.Writer) {
					if len(response.Loops) == 0 {
						fmt.Fprintln(w, "✓ No technology loops")
						return
					}
					for i, loop := range response.Loops {
						fmt.Fprintf(w, "Loop %d: %s\n", i+1, strings.Join(loop, " → "))
					}
				})
			})
		},
	}
}

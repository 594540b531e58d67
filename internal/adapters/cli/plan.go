package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/craftplan-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/craftplan-go/internal/adapters/grpc"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/commands"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	var (
		amount  int64
		mode    string
		ceiling int64
		format  string
		remote  bool
	)

	cmd := &cobra.Command{
		Use:   "plan <resource-key>",
		Short: "Plan how to produce an amount of a resource",
		Long: `Resolve a request into pattern invocations, storage extractions and
missing inputs.

Resource keys are written type:id or type:id#variant, with type one of
item, fluid or generic.

In simulate mode (default) storage is only read. In modulate mode the stock
the plan uses is extracted from storage once planning succeeds.

The cost ceiling defaults to planner.cost_ceiling from the configuration;
zero or negative means unlimited.

Examples:
  craftplan plan item:stick --amount 16
  craftplan plan item:iron_gear --amount 4 --mode modulate
  craftplan plan fluid:lubricant --amount 1000 --ceiling 500 --format json
  craftplan plan item:stick --remote`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resource.ParseKey(args[0])
			if err != nil {
				return err
			}
			planMode, err := resource.ParseMode(mode)
			if err != nil {
				return err
			}
			if format != "tree" && format != "json" {
				return fmt.Errorf("unknown format %q (expected tree or json)", format)
			}

			out := cmd.OutOrStdout()
			if remote {
				return planRemote(cmd.Context(), out, key, amount, planMode, ceiling, format)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("ceiling") {
				ceiling = s.app.Config.Planner.CostCeiling
			}
			return planLocal(s, out, key, amount, planMode, ceiling, format)
		},
	}

	cmd.Flags().Int64VarP(&amount, "amount", "n", 1, "Amount to produce")
	cmd.Flags().StringVarP(&mode, "mode", "m", "simulate", "Planning mode: simulate or modulate")
	cmd.Flags().Int64Var(&ceiling, "ceiling", 0, "Cost ceiling in bytes (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format: tree or json")
	cmd.Flags().BoolVar(&remote, "remote", false, "Plan on the running daemon instead of locally")

	return cmd
}

func planLocal(s *session, out io.Writer, key resource.Key, amount int64, mode resource.Mode, ceiling int64, format string) error {
	response, err := s.app.Mediator.Send(s.ctx, &commands.PlanCraftingCommand{
		Key:     key,
		Amount:  amount,
		Mode:    mode,
		Ceiling: ceiling,
	})
	if err != nil {
		return err
	}
	planned := response.(*commands.PlanCraftingResponse)

	if err := renderPlan(out, planned.PlanID, planned.Plan.ExportDebug(), format); err != nil {
		return err
	}

	if format == "tree" && !planned.Plan.IsSatisfied() {
		hint, err := unknownKeyHint(s.ctx, s.app.Patterns, key)
		if err != nil {
			return err
		}
		if hint != "" {
			fmt.Fprintln(out, hint)
		}
	}
	return nil
}

func planRemote(ctx context.Context, out io.Writer, key resource.Key, amount int64, mode resource.Mode, ceiling int64, format string) error {
	client, err := grpc.NewPlannerClient(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Plan(ctx, key, amount, mode, ceiling)
	if err != nil {
		return fmt.Errorf("daemon plan request failed: %w", err)
	}
	return renderPlan(out, result.PlanID, result.Plan, format)
}

func renderPlan(out io.Writer, planID string, debug map[string]interface{}, format string) error {
	if format == "json" {
		return printJSON(out, map[string]interface{}{
			"plan_id": planID,
			"plan":    debug,
		})
	}
	_, err := fmt.Fprint(out, NewTreeFormatter(!noColor).FormatPlan(planID, debug))
	return err
}

// unknownKeyHint suggests near spellings when no pattern produces key
func unknownKeyHint(ctx context.Context, patterns pattern.Source, key resource.Key) (string, error) {
	all, err := patterns.List(ctx)
	if err != nil {
		return "", err
	}

	seen := make(map[resource.Key]bool)
	var known []resource.Key
	for _, p := range all {
		for _, o := range p.Outputs() {
			if o.Key == key {
				return "", nil
			}
			if !seen[o.Key] {
				seen[o.Key] = true
				known = append(known, o.Key)
			}
		}
	}

	suggestions := catalogfile.Suggest(key, known, 3)
	if len(suggestions) == 0 {
		return fmt.Sprintf("\nNo pattern produces %s.", key), nil
	}
	names := make([]string, len(suggestions))
	for i, k := range suggestions {
		names[i] = k.String()
	}
	return fmt.Sprintf("\nNo pattern produces %s. Did you mean: %s?", key, strings.Join(names, ", ")), nil
}

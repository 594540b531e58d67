package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/craftplan-go/internal/adapters/export"
	"github.com/andrescamacho/craftplan-go/internal/adapters/grpc"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/queries"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
)

// planRow is one line of a plan history table
type planRow struct {
	ID        string
	Request   string
	Mode      string
	Outcome   string
	Bytes     int64
	Missing   int64
	PlannedAt string
}

func rowFromRecord(r *crafting.PlanRecord) planRow {
	return planRow{
		ID:        r.ID,
		Request:   fmt.Sprintf("%d × %s", r.FinalOutput.Amount, r.FinalOutput.Key),
		Mode:      string(r.Mode),
		Outcome:   string(r.Outcome),
		Bytes:     r.Bytes,
		Missing:   r.MissingTotal,
		PlannedAt: r.PlannedAt.Local().Format("2006-01-02 15:04:05"),
	}
}

func rowFromMap(m map[string]interface{}) planRow {
	row := planRow{
		ID:      stringOf(m["id"]),
		Mode:    stringOf(m["mode"]),
		Outcome: stringOf(m["outcome"]),
		Bytes:   toInt64(m["bytes"]),
		Missing: toInt64(m["missing_total"]),
	}
	if final, ok := m["final_output"].(map[string]interface{}); ok {
		row.Request = fmt.Sprintf("%d × %s", toInt64(final["amount"]), stringOf(final["key"]))
	}
	if t, err := time.Parse(time.RFC3339Nano, stringOf(m["planned_at"])); err == nil {
		row.PlannedAt = t.Local().Format("2006-01-02 15:04:05")
	}
	return row
}

func writePlanRows(out io.Writer, rows []planRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No plans recorded")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUEST\tMODE\tOUTCOME\tBYTES\tMISSING\tPLANNED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Request, r.Mode, r.Outcome, r.Bytes, r.Missing, r.PlannedAt)
	}
	return w.Flush()
}

// NewPlansCommand creates the plans command with subcommands
func NewPlansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Browse and archive recorded plans",
		Long: `Every plan the planner produces is recorded, partial or not.

Examples:
  craftplan plans list --limit 10
  craftplan plans show plan-item-stick-1a2b3c4d
  craftplan plans list --remote
  craftplan plans export history.zst --limit 500
  craftplan plans inspect history.zst`,
	}

	cmd.AddCommand(newPlansListCommand())
	cmd.AddCommand(newPlansShowCommand())
	cmd.AddCommand(newPlansExportCommand())
	cmd.AddCommand(newPlansInspectCommand())

	return cmd
}

func newPlansListCommand() *cobra.Command {
	var (
		limit  int
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				client, err := grpc.NewPlannerClient(socketPath)
				if err != nil {
					return err
				}
				defer client.Close()

				plans, err := client.ListPlans(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("daemon list request failed: %w", err)
				}
				rows := make([]planRow, len(plans))
				for i, p := range plans {
					rows[i] = rowFromMap(p)
				}
				return writePlanRows(cmd.OutOrStdout(), rows)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			response, err := s.app.Mediator.Send(s.ctx, &queries.ListPlansQuery{Limit: limit})
			if err != nil {
				return err
			}
			records := response.(*queries.ListPlansResponse).Records
			rows := make([]planRow, len(records))
			for i, r := range records {
				rows[i] = rowFromRecord(r)
			}
			return writePlanRows(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of plans to show")
	cmd.Flags().BoolVar(&remote, "remote", false, "List the daemon's plans")
	return cmd
}

func newPlansShowCommand() *cobra.Command {
	var (
		format string
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a recorded plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				client, err := grpc.NewPlannerClient(socketPath)
				if err != nil {
					return err
				}
				defer client.Close()

				record, err := client.GetPlan(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("daemon get request failed: %w", err)
				}
				debug, _ := record["debug"].(map[string]interface{})
				return renderPlan(cmd.OutOrStdout(), args[0], debug, format)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			response, err := s.app.Mediator.Send(s.ctx, &queries.GetPlanQuery{PlanID: args[0]})
			if err != nil {
				return err
			}
			record := response.(*queries.GetPlanResponse).Record
			return renderPlan(cmd.OutOrStdout(), record.ID, record.Debug, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format: tree or json")
	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the plan from the daemon")
	return cmd
}

func newPlansExportCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write recent plans to a compressed archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			response, err := s.app.Mediator.Send(s.ctx, &queries.ListPlansQuery{Limit: limit})
			if err != nil {
				return err
			}
			records := response.(*queries.ListPlansResponse).Records

			if err := export.WriteArchiveFile(args[0], records, s.app.Clock.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d plans to %s\n", len(records), args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 1000, "Maximum number of plans to export")
	return cmd
}

func newPlansInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the plans in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, plans, err := export.ReadArchiveFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archive:   %s (format %s v%d)\n", args[0], header.Format, header.Version)
			fmt.Fprintf(out, "Exported:  %s\n\n", header.ExportedAt.Local().Format("2006-01-02 15:04:05"))

			rows := make([]planRow, len(plans))
			for i, p := range plans {
				rows[i] = planRow{
					ID:        p.ID,
					Request:   fmt.Sprintf("%d × %s", p.FinalAmount, p.FinalKey),
					Mode:      p.Mode,
					Outcome:   p.Outcome,
					Bytes:     p.Bytes,
					Missing:   p.MissingTotal,
					PlannedAt: p.PlannedAt.Local().Format("2006-01-02 15:04:05"),
				}
			}
			return writePlanRows(out, rows)
		},
	}
}

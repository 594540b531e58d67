package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/craftplan-go/internal/adapters/persistence"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

// cliSource attributes storage mutations made from the command line
var cliSource = storage.ActionSource{Actor: "cli", Machine: "craftplan"}

// NewStorageCommand creates the storage command with subcommands
func NewStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect and change the storage network",
		Long: `Inspect and change the configured storage network.

With the memory backend the network is rebuilt from storage.seed_path on
every run, so insert and extract only last for that run. Use the database
backend for a persistent network.

Examples:
  craftplan storage list
  craftplan storage insert item:oak_log 64
  craftplan storage extract item:oak_log 8 --simulate
  craftplan storage history`,
	}

	cmd.AddCommand(newStorageListCommand())
	cmd.AddCommand(newStorageMutateCommand("insert", "Insert stock into storage"))
	cmd.AddCommand(newStorageMutateCommand("extract", "Extract stock from storage"))
	cmd.AddCommand(newStorageHistoryCommand())

	return cmd
}

func newStorageListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			stacks, err := s.app.Storage.AvailableStacks(s.ctx)
			if err != nil {
				return err
			}
			if len(stacks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Storage is empty")
				return nil
			}

			var total int64
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tAMOUNT")
			for _, stack := range stacks {
				fmt.Fprintf(w, "%s\t%d\n", stack.Key, stack.Amount)
				total += stack.Amount
			}
			fmt.Fprintf(w, "\t\nTOTAL\t%d\n", total)
			return w.Flush()
		},
	}
}

func newStorageMutateCommand(operation, short string) *cobra.Command {
	var simulate bool

	cmd := &cobra.Command{
		Use:   operation + " <resource-key> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resource.ParseKey(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("amount must be a positive integer, got %q", args[1])
			}

			mode := resource.Modulate
			if simulate {
				mode = resource.Simulate
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var moved int64
			if operation == "insert" {
				moved, err = s.app.Storage.Insert(s.ctx, key, amount, mode, cliSource)
			} else {
				moved, err = s.app.Storage.Extract(s.ctx, key, amount, mode, cliSource)
			}
			if err != nil {
				return err
			}

			verb := map[string]string{"insert": "Inserted", "extract": "Extracted"}[operation]
			if simulate {
				verb = "Would " + operation
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d %s\n", verb, moved, amount, key)
			if moved < amount {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d could not be moved\n", amount-moved)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&simulate, "simulate", false, "Report what would move without changing storage")
	return cmd
}

func newStorageHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the audit trail of the database storage backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			store, ok := s.app.Storage.(*persistence.GormStorage)
			if !ok {
				return fmt.Errorf("storage history requires the database backend (storage.backend: database)")
			}
			actions, err := store.Actions(s.ctx)
			if err != nil {
				return err
			}
			if len(actions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No storage actions recorded")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tKEY\tDELTA\tSOURCE")
			for _, a := range actions {
				source := storage.ActionSource{Actor: a.Actor, Machine: a.Machine}
				fmt.Fprintf(w, "%s\t%s\t%+d\t%s\n",
					a.PerformedAt.Format("2006-01-02 15:04:05"), a.ResourceKey, a.Delta, source)
			}
			return w.Flush()
		},
	}
}

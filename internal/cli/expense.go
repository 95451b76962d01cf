package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
)

func newExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and list case expenses",
	}
	cmd.AddCommand(
		newExpenseAddCmd(),
		newExpenseListCmd(),
		newExpenseDeleteCmd(),
	)
	return cmd
}

func newExpenseAddCmd() *cobra.Command {
	var (
		caseName string
		category string
		amount   string
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an expense entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if caseName == "" {
				return fmt.Errorf("--case is required")
			}

			cat := timelog.Category(category)
			if category == "" {
				cat = timelog.CategoryOther
			} else if !validCategory(cat) {
				return fmt.Errorf("unknown category %q; valid: %v", category, timelog.Categories())
			}

			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			entry := timelog.NewExpenseEntry(caseName, cat, amount, notes, time.Now())
			if err := app.Store.AppendExpense(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Printf("expense recorded: %s / %s / %s\n", entry.Case, entry.Category, entry.Amount)
			return nil
		},
	}
	cmd.Flags().StringVar(&caseName, "case", "", "case name")
	cmd.Flags().StringVar(&category, "category", "", "expense category (default Other)")
	cmd.Flags().StringVar(&amount, "amount", "", "expense amount, free-form decimal string")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes (optional)")
	return cmd
}

func newExpenseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all expense entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			expenses, err := app.Store.ListExpenses(cmd.Context())
			if err != nil {
				return err
			}
			if len(expenses) == 0 {
				fmt.Println("no expenses recorded")
				return nil
			}
			for i, e := range expenses {
				fmt.Printf("%3d  %-30s %-18s %10s  %s  %s\n",
					i, e.Case, e.Category, e.Amount,
					e.Timestamp.Format(timelog.TimeLayout), e.Notes)
			}
			return nil
		},
	}
}

func newExpenseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete the expense entry at INDEX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse index %q: %w", args[0], err)
			}

			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Store.DeleteExpense(cmd.Context(), index); err != nil {
				return err
			}
			fmt.Printf("deleted expense %d\n", index)
			return nil
		},
	}
}

func validCategory(c timelog.Category) bool {
	for _, known := range timelog.Categories() {
		if c == known {
			return true
		}
	}
	return false
}

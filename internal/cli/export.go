package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
)

func newExportCmd() *cobra.Command {
	var (
		format   string
		expenses bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the time log (or expenses) as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q; valid values: csv, json", format)
			}

			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %q: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if expenses {
				items, err := app.Store.ListExpenses(cmd.Context())
				if err != nil {
					return err
				}
				if format == "csv" {
					return timelog.WriteExpenseCSV(w, items)
				}
				return writeJSON(w, items)
			}

			items, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			if format == "csv" {
				return timelog.WriteCSV(w, items)
			}
			return writeJSON(w, items)
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	cmd.Flags().BoolVar(&expenses, "expenses", false, "export expenses instead of time entries")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

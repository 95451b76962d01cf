package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
)

func newTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show total logged hours per case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			entries, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("log is empty")
				return nil
			}

			totals := timelog.TotalHours(entries)
			names := make([]string, 0, len(totals))
			for name := range totals {
				names = append(names, name)
			}
			sort.Strings(names)

			var grand float64
			for _, name := range names {
				fmt.Printf("%-40s %7.2f h\n", name, totals[name])
				grand += totals[name]
			}
			fmt.Printf("%-40s %7.2f h\n", "total", grand)
			return nil
		},
	}
}

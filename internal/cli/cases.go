package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Manage the registry of known case names",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME...",
		Short: "Add a case to the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			name := strings.Join(args, " ")
			if err := app.Cases.Add(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Printf("added %q\n", strings.TrimSpace(name))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove NAME...",
		Short: "Remove a case from the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			name := strings.Join(args, " ")
			if err := app.Cases.Remove(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Printf("removed %q\n", strings.TrimSpace(name))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all registered cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			cases, err := app.Cases.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				fmt.Println("no cases registered")
				return nil
			}
			for _, c := range cases {
				fmt.Println(c)
			}
			return nil
		},
	})

	return cmd
}

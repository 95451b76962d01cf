package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "List and edit time entries directly (bypassing voice)",
	}
	cmd.AddCommand(
		newLogListCmd(),
		newLogAddCmd(),
		newLogEditCmd(),
		newLogDeleteCmd(),
		newLogClearCmd(),
	)
	return cmd
}

func newLogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all time entries",
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
			for i, e := range entries {
				fmt.Printf("%3d  %-30s %s  %s  %8s  %s %s\n",
					i, e.Case,
					e.Start.Format(timelog.TimeLayout),
					e.End.Format(timelog.TimeLayout),
					timelog.FormatDuration(e.Duration()),
					e.TaskType, e.Notes)
			}
			return nil
		},
	}
}

// entryFlags holds the shared --case/--start/--end/--task-type/--notes
// flag values for add and edit.
type entryFlags struct {
	caseName string
	start    string
	end      string
	taskType string
	notes    string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.caseName, "case", "", "case name")
	cmd.Flags().StringVar(&f.start, "start", "", "start timestamp (\""+timelog.TimeLayout+"\")")
	cmd.Flags().StringVar(&f.end, "end", "", "end timestamp (\""+timelog.TimeLayout+"\")")
	cmd.Flags().StringVar(&f.taskType, "task-type", "", "task classification (optional)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-text notes (optional)")
}

func (f *entryFlags) entry() (timelog.Entry, error) {
	if f.caseName == "" {
		return timelog.Entry{}, fmt.Errorf("--case is required")
	}
	start, err := time.ParseInLocation(timelog.TimeLayout, f.start, time.Local)
	if err != nil {
		return timelog.Entry{}, fmt.Errorf("parse --start: %w", err)
	}
	end, err := time.ParseInLocation(timelog.TimeLayout, f.end, time.Local)
	if err != nil {
		return timelog.Entry{}, fmt.Errorf("parse --end: %w", err)
	}
	if end.Before(start) {
		return timelog.Entry{}, fmt.Errorf("--end %q is before --start %q", f.end, f.start)
	}
	return timelog.NewEntry(f.caseName, start, end, f.taskType, f.notes), nil
}

func newLogAddCmd() *cobra.Command {
	var flags entryFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a time entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			entry, err := flags.entry()
			if err != nil {
				return err
			}
			if err := app.Store.Append(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Printf("logged %s (%s)\n", entry.Case, timelog.FormatDuration(entry.Duration()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newLogEditCmd() *cobra.Command {
	var flags entryFlags
	cmd := &cobra.Command{
		Use:   "edit INDEX",
		Short: "Replace the time entry at INDEX",
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

			entry, err := flags.entry()
			if err != nil {
				return err
			}
			if err := app.Store.Update(cmd.Context(), index, entry); err != nil {
				return err
			}
			fmt.Printf("updated entry %d\n", index)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newLogDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete the time entry at INDEX",
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

			if err := app.Store.Delete(cmd.Context(), index); err != nil {
				return err
			}
			fmt.Printf("deleted entry %d\n", index)
			return nil
		},
	}
}

func newLogClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all time entries and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}

			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("log cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the whole log")
	return cmd
}

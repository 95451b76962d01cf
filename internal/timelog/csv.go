package timelog

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes entries to w as CSV with a header row. Fields containing
// commas, quotes or newlines are escaped per RFC 4180.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "start", "end", "duration", "task_type", "notes"}); err != nil {
		return fmt.Errorf("timelog: write csv header: %w", err)
	}
	for i, e := range entries {
		record := []string{
			e.Case,
			e.Start.Format(TimeLayout),
			e.End.Format(TimeLayout),
			FormatDuration(e.Duration()),
			e.TaskType,
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("timelog: write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("timelog: flush csv: %w", err)
	}
	return nil
}

// WriteExpenseCSV writes expense entries to w as CSV with a header row.
func WriteExpenseCSV(w io.Writer, expenses []ExpenseEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "category", "amount", "notes", "timestamp"}); err != nil {
		return fmt.Errorf("timelog: write csv header: %w", err)
	}
	for i, e := range expenses {
		record := []string{
			e.Case,
			string(e.Category),
			e.Amount,
			e.Notes,
			e.Timestamp.Format(TimeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("timelog: write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("timelog: flush csv: %w", err)
	}
	return nil
}

package timelog

import (
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	entries := []Entry{
		NewEntry("Sierra Club", start, start.Add(25*time.Minute), "Research", "reviewed filings"),
		NewEntry(`Smith, Jones & "Partners"`, start, start.Add(time.Hour), "Call", "line one\nline two"),
	}

	var buf strings.Builder
	if err := WriteCSV(&buf, entries); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (header + 2 rows)", len(records))
	}

	wantHeader := []string{"client", "start", "end", "duration", "task_type", "notes"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}

	wantRow := []string{
		"Sierra Club", "2026-03-14 09:00:00", "2026-03-14 09:25:00",
		"0:25:00", "Research", "reviewed filings",
	}
	if !reflect.DeepEqual(records[1], wantRow) {
		t.Errorf("row 1 = %v, want %v", records[1], wantRow)
	}

	// Embedded commas, quotes and newlines survive the round trip.
	if records[2][0] != `Smith, Jones & "Partners"` {
		t.Errorf("client = %q, want escaped original", records[2][0])
	}
	if records[2][5] != "line one\nline two" {
		t.Errorf("notes = %q, want multi-line original", records[2][5])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV(nil) error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "client,start,end,duration,task_type,notes" {
		t.Errorf("output = %q, want header only", got)
	}
}

func TestWriteExpenseCSV(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 14, 14, 5, 0, 0, time.Local)
	expenses := []ExpenseEntry{
		NewExpenseEntry("Sierra Club", CategoryParking, "12.50", "garage, 5th street", ts),
	}

	var buf strings.Builder
	if err := WriteExpenseCSV(&buf, expenses); err != nil {
		t.Fatalf("WriteExpenseCSV() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("re-parse output: %v", err)
	}
	wantHeader := []string{"client", "category", "amount", "notes", "timestamp"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}
	wantRow := []string{"Sierra Club", "Parking", "12.50", "garage, 5th street", "2026-03-14 14:05:00"}
	if !reflect.DeepEqual(records[1], wantRow) {
		t.Errorf("row = %v, want %v", records[1], wantRow)
	}
}

// Package timelog owns the persisted sequences of time entries and expense
// entries.
//
// Entries are append-only with explicit edit-in-place and delete-by-index.
// The on-disk layout is one JSON array per collection with every timestamp
// rendered through [TimeLayout], so files written by older trackers load
// unchanged.
package timelog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the stable timestamp format used in persisted files and CSV
// exports. Formatting and parsing round-trip exactly at second precision.
const TimeLayout = "2006-01-02 15:04:05"

// Entry is one completed billable time interval.
type Entry struct {
	// Case is the canonical client/matter name.
	Case string

	// Start and End bound the interval at second precision.
	Start time.Time
	End   time.Time

	// TaskType is an optional free-text classification ("Research",
	// "Drafting", "Call").
	TaskType string

	// Notes is optional free text.
	Notes string
}

// NewEntry builds an Entry with both timestamps truncated to second
// precision so that persisted and in-memory values compare equal.
func NewEntry(caseName string, start, end time.Time, taskType, notes string) Entry {
	return Entry{
		Case:     caseName,
		Start:    start.Truncate(time.Second),
		End:      end.Truncate(time.Second),
		TaskType: taskType,
		Notes:    notes,
	}
}

// Duration returns End − Start.
func (e Entry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// entryJSON is the wire form of an Entry. The duration field is derived on
// write and ignored on read.
type entryJSON struct {
	Client   string `json:"client"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
	TaskType string `json:"task_type"`
	Notes    string `json:"notes"`
}

// MarshalJSON implements json.Marshaler using the persisted field layout.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Client:   e.Case,
		Start:    e.Start.Format(TimeLayout),
		End:      e.End.Format(TimeLayout),
		Duration: FormatDuration(e.Duration()),
		TaskType: e.TaskType,
		Notes:    e.Notes,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Timestamps are parsed in the
// local location, matching how they were formatted.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var w entryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	start, err := time.ParseInLocation(TimeLayout, w.Start, time.Local)
	if err != nil {
		return fmt.Errorf("timelog: parse start %q: %w", w.Start, err)
	}
	end, err := time.ParseInLocation(TimeLayout, w.End, time.Local)
	if err != nil {
		return fmt.Errorf("timelog: parse end %q: %w", w.End, err)
	}
	*e = Entry{
		Case:     w.Client,
		Start:    start,
		End:      end,
		TaskType: w.TaskType,
		Notes:    w.Notes,
	}
	return nil
}

// FormatDuration renders d as H:MM:SS, the format the persisted duration
// field and CSV exports use. Sub-second precision is dropped.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// Category classifies an expense.
type Category string

// The fixed expense categories.
const (
	CategoryGasMileage       Category = "Gas Mileage"
	CategoryPostage          Category = "Postage"
	CategoryFilingFees       Category = "Filing Fees"
	CategoryTolls            Category = "Tolls"
	CategoryLodging          Category = "Lodging"
	CategoryMeals            Category = "Meals"
	CategoryTravel           Category = "Travel"
	CategoryCourtCopies      Category = "Court Copies"
	CategoryPrinting         Category = "Printing"
	CategoryServiceOfProcess Category = "Service of Process"
	CategoryParking          Category = "Parking"
	CategoryOther            Category = "Other"
)

// Categories returns all expense categories in display order.
func Categories() []Category {
	return []Category{
		CategoryGasMileage, CategoryPostage, CategoryFilingFees,
		CategoryTolls, CategoryLodging, CategoryMeals, CategoryTravel,
		CategoryCourtCopies, CategoryPrinting, CategoryServiceOfProcess,
		CategoryParking, CategoryOther,
	}
}

// categoryKeywords maps spoken keywords to categories. Multi-word keywords
// are checked before single words via the ordered list in DetectCategory.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"service of process", CategoryServiceOfProcess},
	{"process server", CategoryServiceOfProcess},
	{"court copies", CategoryCourtCopies},
	{"gas mileage", CategoryGasMileage},
	{"filing fee", CategoryFilingFees},
	{"mileage", CategoryGasMileage},
	{"gas", CategoryGasMileage},
	{"postage", CategoryPostage},
	{"stamp", CategoryPostage},
	{"filing", CategoryFilingFees},
	{"toll", CategoryTolls},
	{"lodging", CategoryLodging},
	{"hotel", CategoryLodging},
	{"meal", CategoryMeals},
	{"lunch", CategoryMeals},
	{"dinner", CategoryMeals},
	{"travel", CategoryTravel},
	{"flight", CategoryTravel},
	{"copies", CategoryCourtCopies},
	{"printing", CategoryPrinting},
	{"print", CategoryPrinting},
	{"parking", CategoryParking},
}

// DetectCategory picks the expense category mentioned in text, defaulting to
// CategoryOther. Matching is case-insensitive substring search with
// longer/more-specific keywords checked first.
func DetectCategory(text string) Category {
	lower := strings.ToLower(text)
	for _, kw := range categoryKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.category
		}
	}
	return CategoryOther
}

// ExpenseEntry is one recorded expense.
type ExpenseEntry struct {
	Case      string
	Category  Category
	Amount    string
	Notes     string
	Timestamp time.Time
}

// NewExpenseEntry builds an ExpenseEntry with the timestamp truncated to
// second precision.
func NewExpenseEntry(caseName string, category Category, amount, notes string, ts time.Time) ExpenseEntry {
	return ExpenseEntry{
		Case:      caseName,
		Category:  category,
		Amount:    amount,
		Notes:     notes,
		Timestamp: ts.Truncate(time.Second),
	}
}

// expenseJSON is the wire form of an ExpenseEntry.
type expenseJSON struct {
	Client    string `json:"client"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON implements json.Marshaler using the persisted field layout.
func (e ExpenseEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseJSON{
		Client:    e.Case,
		Category:  string(e.Category),
		Amount:    e.Amount,
		Notes:     e.Notes,
		Timestamp: e.Timestamp.Format(TimeLayout),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExpenseEntry) UnmarshalJSON(data []byte) error {
	var w expenseJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ts, err := time.ParseInLocation(TimeLayout, w.Timestamp, time.Local)
	if err != nil {
		return fmt.Errorf("timelog: parse timestamp %q: %w", w.Timestamp, err)
	}
	*e = ExpenseEntry{
		Case:      w.Client,
		Category:  Category(w.Category),
		Amount:    w.Amount,
		Notes:     w.Notes,
		Timestamp: ts,
	}
	return nil
}

// TotalHours sums entry durations per case, in fractional hours.
func TotalHours(entries []Entry) map[string]float64 {
	totals := make(map[string]float64, len(entries))
	for _, e := range entries {
		totals[e.Case] += e.Duration().Hours()
	}
	return totals
}

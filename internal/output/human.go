package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"xnav/internal/errors"
)

// Format selects how a command prints its result.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "human", "text":
		return FormatHuman, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.Newf(errors.InvalidArgument, "unknown output format %q (want human or json)", s)
	}
}

// WriteJSON writes v as indented deterministic JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := EncodeIndented(v, "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// RelativeTime describes how long before now t was, in the largest whole
// unit: "3 days ago", "1 hour ago", "just now".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return "just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Table writes aligned columns. Call Flush when done.
type Table struct {
	tw *tabwriter.Writer
}

// NewTable creates a Table writing to w.
func NewTable(w io.Writer) *Table {
	return &Table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
}

// Row writes one row.
func (t *Table) Row(cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.tw, strings.Join(parts, "\t"))
}

// Flush writes buffered rows.
func (t *Table) Flush() error {
	return t.tw.Flush()
}

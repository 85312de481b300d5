// Package leaderboard maintains the helper leaderboard, a markdown table
// kept as a wiki document.
package leaderboard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// DateLayout is the calendar-date format used in the table and the
// "last updated" stamp.
const DateLayout = "2006-01-02"

// The document starts with a fixed header block: title, blank line,
// updated stamp, blank line, column header, delimiter row. Rows follow.
const headerSize = 6

const (
	titleLine     = "# Helper Leaderboard"
	columnsLine   = "| User | Points | Last Awarded |"
	delimiterLine = "|:--|:--|:--|"
)

// Row is one leaderboard entry. Username carries the u/ mention prefix.
type Row struct {
	Username    string
	Points      int
	LastAwarded time.Time
}

// Load parses a leaderboard document into rows. The header block is
// skipped by size; the "last updated" stamp is transient and not parsed.
func Load(document string) ([]Row, error) {
	lines := strings.Split(strings.TrimRight(document, "\n"), "\n")
	if len(lines) < headerSize {
		return nil, fmt.Errorf("%w: leaderboard header truncated (%d lines)", domain.ErrMalformedDocument, len(lines))
	}

	var rows []Row
	for _, line := range lines[headerSize:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(line string) (Row, error) {
	cells := strings.Split(line, "|")
	// leading and trailing pipes produce empty outer cells
	if len(cells) != 5 {
		return Row{}, fmt.Errorf("%w: leaderboard row %q", domain.ErrMalformedDocument, line)
	}

	username := strings.TrimSpace(cells[1])
	points, err := strconv.Atoi(strings.TrimSpace(cells[2]))
	if err != nil || points <= 0 {
		return Row{}, fmt.Errorf("%w: leaderboard points in %q", domain.ErrMalformedDocument, line)
	}
	awarded, err := time.Parse(DateLayout, strings.TrimSpace(cells[3]))
	if err != nil {
		return Row{}, fmt.Errorf("%w: leaderboard date in %q", domain.ErrMalformedDocument, line)
	}
	return Row{Username: username, Points: points, LastAwarded: awarded}, nil
}

// Upsert awards one point to username, appending a fresh row when the
// user is not yet on the board. The mention prefix is normalized on both
// sides of the comparison so u/alice and alice never split into two
// rows. Returns the updated rows and the user's new total.
func Upsert(rows []Row, username string, today time.Time) ([]Row, int) {
	key := domain.Mention(username)
	for i := range rows {
		if domain.Mention(rows[i].Username) == key {
			rows[i].Points++
			rows[i].LastAwarded = today
			return rows, rows[i].Points
		}
	}
	return append(rows, Row{Username: key, Points: 1, LastAwarded: today}), 1
}

// Sort orders rows by points descending, then last-awarded date
// ascending: among equal scores the longest-standing holder ranks first,
// so a recent scorer never jumps an equal-point veteran.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Points != rows[b].Points {
			return rows[a].Points > rows[b].Points
		}
		return rows[a].LastAwarded.Before(rows[b].LastAwarded)
	})
}

// Render serializes the full document: fixed header with a refreshed
// stamp, then every row. Callers persist the result with a whole-document
// write, never an in-place row edit.
func Render(rows []Row, updated time.Time) string {
	var b strings.Builder
	b.WriteString(titleLine + "\n\n")
	b.WriteString("Last updated: " + updated.Format(DateLayout) + "\n\n")
	b.WriteString(columnsLine + "\n")
	b.WriteString(delimiterLine + "\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", row.Username, row.Points, row.LastAwarded.Format(DateLayout))
	}
	return b.String()
}

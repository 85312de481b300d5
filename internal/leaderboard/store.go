package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

// Store persists the leaderboard on a wiki page. Every award is a full
// load-upsert-sort-rewrite cycle, so a failed write leaves the document
// either fully old or fully new.
type Store struct {
	wiki  domain.WikiStore
	page  string
	clock clockwork.Clock
}

func NewStore(wiki domain.WikiStore, page string, clock clockwork.Clock) *Store {
	return &Store{wiki: wiki, page: page, clock: clock}
}

// Award grants one point to username and returns the new total. A
// missing page starts an empty board rather than failing the grant.
func (s *Store) Award(ctx context.Context, username string) (int, error) {
	var rows []Row
	document, _, err := s.wiki.Get(ctx, s.page)
	switch {
	case errors.Is(err, domain.ErrPageNotFound):
		// first award ever bootstraps the document
	case err != nil:
		return 0, fmt.Errorf("loading leaderboard: %w", err)
	default:
		if rows, err = Load(document); err != nil {
			return 0, err
		}
	}

	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	rows, points := Upsert(rows, username, today)
	Sort(rows)

	reason := "thanks: " + domain.Mention(username)
	if err := s.wiki.Put(ctx, s.page, Render(rows, today), reason); err != nil {
		return 0, fmt.Errorf("writing leaderboard: %w", err)
	}
	return points, nil
}

// BumpFlairLabel rewrites a numeric helper label with a new total,
// keeping the label's own wording ("Helpful ★ 11" → "Helpful ★ 12"). An
// absent label starts the default wording.
func BumpFlairLabel(label string, points int) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return fmt.Sprintf("Helpful ★ %d", points)
	}
	fields[len(fields)-1] = strconv.Itoa(points)
	return strings.Join(fields, " ")
}

// ParseFlairLabel extracts the points embedded in a helper flair label by
// taking the final whitespace-delimited token ("Helpful ★ 12" → 12).
// A non-numeric final token marks a custom label, which is excluded from
// the numeric update path. An empty label is simply zero points.
func ParseFlairLabel(label string) (points int, custom bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, false
	}
	points, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, true
	}
	return points, false
}

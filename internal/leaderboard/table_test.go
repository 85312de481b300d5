package leaderboard

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleRows() []Row {
	return []Row{
		{Username: "u/alice", Points: 5, LastAwarded: date("2026-08-01")},
		{Username: "u/bob", Points: 5, LastAwarded: date("2026-08-10")},
		{Username: "u/carol", Points: 2, LastAwarded: date("2026-08-20")},
	}
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "leaderboard", []byte(Render(sampleRows(), date("2026-08-28"))))
}

func TestLoad_RoundTrip(t *testing.T) {
	rows := sampleRows()
	loaded, err := Load(Render(rows, date("2026-08-28")))
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestLoad_StampIsTransient(t *testing.T) {
	rows := sampleRows()
	a, err := Load(Render(rows, date("2026-08-27")))
	require.NoError(t, err)
	b, err := Load(Render(rows, date("2026-08-28")))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoad_EmptyBoard(t *testing.T) {
	rows, err := Load(Render(nil, date("2026-08-28")))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoad_TruncatedHeader(t *testing.T) {
	_, err := Load("# Helper Leaderboard\n")
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestLoad_MalformedRow(t *testing.T) {
	doc := Render(nil, date("2026-08-28")) + "| u/alice | five | 2026-08-01 |\n"
	_, err := Load(doc)
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}

func TestUpsert_NewUserStartsAtOne(t *testing.T) {
	rows, points := Upsert(nil, "dave", date("2026-08-28"))
	assert.Equal(t, 1, points)
	require.Len(t, rows, 1)
	assert.Equal(t, "u/dave", rows[0].Username)
	assert.Equal(t, date("2026-08-28"), rows[0].LastAwarded)
}

func TestUpsert_RepeatedAwardsAccumulate(t *testing.T) {
	var rows []Row
	var points int
	for n := 1; n <= 4; n++ {
		day := date("2026-08-20").AddDate(0, 0, n)
		rows, points = Upsert(rows, "dave", day)
		assert.Equal(t, n, points)
	}
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Points)
	assert.Equal(t, date("2026-08-24"), rows[0].LastAwarded)
}

func TestUpsert_MentionPrefixNormalizedBothSides(t *testing.T) {
	rows, _ := Upsert(nil, "u/alice", date("2026-08-01"))
	rows, points := Upsert(rows, "alice", date("2026-08-02"))
	assert.Equal(t, 2, points)
	assert.Len(t, rows, 1, "bare and prefixed names must not split into two rows")
}

func TestSort_PointsDescDateAsc(t *testing.T) {
	rows := []Row{
		{Username: "u/carol", Points: 2, LastAwarded: date("2026-08-20")},
		{Username: "u/bob", Points: 5, LastAwarded: date("2026-08-10")},
		{Username: "u/alice", Points: 5, LastAwarded: date("2026-08-01")},
	}
	Sort(rows)

	for i := 0; i < len(rows)-1; i++ {
		a, b := rows[i], rows[i+1]
		ordered := a.Points > b.Points ||
			(a.Points == b.Points && !a.LastAwarded.After(b.LastAwarded))
		assert.True(t, ordered, "rows %d and %d out of order", i, i+1)
	}
	assert.Equal(t, "u/alice", rows[0].Username, "veteran outranks equal-point newcomer")
}

func TestParseFlairLabel(t *testing.T) {
	points, custom := ParseFlairLabel("Helpful ★ 12")
	assert.Equal(t, 12, points)
	assert.False(t, custom)

	_, custom = ParseFlairLabel("Glyph Wizard")
	assert.True(t, custom)

	points, custom = ParseFlairLabel("")
	assert.Equal(t, 0, points)
	assert.False(t, custom)
}

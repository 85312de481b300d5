package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_ArgumentToLineEnd(t *testing.T) {
	p := Parse("please !link phone (3a)\nthanks", "link")
	assert.Equal(t, "phone (3a)", p.Argument)
	assert.Equal(t, "link", p.Keyword)
}

func TestParse_ArgumentToEndOfBody(t *testing.T) {
	p := Parse("!wiki glyph matrix", "wiki")
	assert.Equal(t, "glyph matrix", p.Argument)
}

func TestParse_CaseInsensitiveTrigger(t *testing.T) {
	p := Parse("!LINK charger", "link")
	assert.Equal(t, "charger", p.Argument)
}

func TestParse_EmptyArgumentIsDistinctFromMissing(t *testing.T) {
	p := Parse("!link\nsome other text", "link")
	assert.Equal(t, "link", p.Keyword)
	assert.False(t, p.HasArgument())
}

func TestParse_WhitespaceOnlyArgument(t *testing.T) {
	p := Parse("!link   ", "link")
	assert.False(t, p.HasArgument())
}

func TestParse_FirstOccurrenceWins(t *testing.T) {
	p := Parse("!link first\n!link second", "link")
	assert.Equal(t, "first", p.Argument)
}

func TestIsQuoted_DoubleQuotes(t *testing.T) {
	assert.True(t, IsQuoted(`just type "!solved" in a comment`, "solved"))
}

func TestIsQuoted_SingleQuotes(t *testing.T) {
	assert.True(t, IsQuoted("use '!solved' to close it", "solved"))
}

func TestIsQuoted_Backticks(t *testing.T) {
	assert.True(t, IsQuoted("use `!solved` to close it", "solved"))
}

func TestIsQuoted_EscapedDoubleQuotes(t *testing.T) {
	assert.True(t, IsQuoted(`the payload is \"!solved\" there`, "solved"))
}

func TestIsQuoted_UnquotedOccurrence(t *testing.T) {
	assert.False(t, IsQuoted("!solved", "solved"))
}

func TestIsQuoted_MixedQuotedAndLive(t *testing.T) {
	// A live occurrence next to a quoted one still counts as live.
	assert.False(t, IsQuoted(`"!solved" is the magic word. !solved`, "solved"))
}

func TestIsQuoted_MismatchedQuotesAreLive(t *testing.T) {
	assert.False(t, IsQuoted(`"!solved' hmm`, "solved"))
}

func TestDetect_PriorityOrder(t *testing.T) {
	body := "!thanks for the tip, marking !solved"
	parsed := Detect(body)
	if assert.Len(t, parsed, 2) {
		assert.Equal(t, KindSolved, parsed[0].Kind)
		assert.Equal(t, KindThanks, parsed[1].Kind)
	}
}

func TestDetect_NoCommands(t *testing.T) {
	assert.Empty(t, Detect("no commands in here"))
}

func TestDetect_LookupCarriesArgument(t *testing.T) {
	parsed := Detect("!glyph composer")
	if assert.Len(t, parsed, 1) {
		assert.Equal(t, KindGlyph, parsed[0].Kind)
		assert.Equal(t, "composer", parsed[0].Argument)
		assert.True(t, parsed[0].Kind.IsLookup())
	}
}

func TestDetect_QuotedFlagPropagates(t *testing.T) {
	parsed := Detect(`you could write "!solved" here`)
	if assert.Len(t, parsed, 1) {
		assert.True(t, parsed[0].Quoted)
	}
}

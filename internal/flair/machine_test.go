package flair

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rNothingTech/NothingTechBot/internal/domain"
)

func testMachine() *Machine {
	return New(TemplateIDs{Support: "tpl-support", Solved: "tpl-solved"})
}

func TestCanTransition(t *testing.T) {
	m := testMachine()

	assert.True(t, m.CanTransition(domain.FlairUnset, domain.FlairSolved))
	assert.True(t, m.CanTransition(domain.FlairSupport, domain.FlairSolved))
	assert.True(t, m.CanTransition(domain.FlairUnset, domain.FlairSupport))

	// solved is terminal
	assert.False(t, m.CanTransition(domain.FlairSolved, domain.FlairSolved))
	assert.False(t, m.CanTransition(domain.FlairSolved, domain.FlairSupport))
	// no backwards transitions
	assert.False(t, m.CanTransition(domain.FlairSupport, domain.FlairSupport))
	assert.False(t, m.CanTransition(domain.FlairSolved, domain.FlairUnset))
}

func TestTemplateID(t *testing.T) {
	m := testMachine()
	assert.Equal(t, "tpl-solved", m.TemplateID(domain.FlairSolved))
	assert.Equal(t, "tpl-support", m.TemplateID(domain.FlairSupport))
	assert.Equal(t, "", m.TemplateID(domain.FlairUnset))
}

func TestAuthorized_SubmissionAuthor(t *testing.T) {
	assert.True(t, Authorized("op", "op", nil))
	assert.True(t, Authorized("OP", "op", nil))
	assert.False(t, Authorized("bystander", "op", nil))
}

func TestAuthorized_Moderator(t *testing.T) {
	mods := map[string]struct{}{"modperson": {}}
	assert.True(t, Authorized("ModPerson", "op", mods))
	assert.False(t, Authorized("bystander", "op", mods))
}

func TestAuthorized_ModeratorSetIsPerSubreddit(t *testing.T) {
	otherSubMods := map[string]struct{}{"elsewhere-mod": {}}
	assert.False(t, Authorized("modperson", "op", otherSubMods))
}

func TestBestAnswer_AuthorNomination(t *testing.T) {
	got := BestAnswer("helper", "Reboot it.\n\nThen update.", "op", false)

	assert.Contains(t, got, "nominated by u/op:")
	assert.NotContains(t, got, "on behalf of")
	assert.Contains(t, got, "> Reboot it.\n>\n> Then update.\n")
	assert.Contains(t, got, "Answer by u/helper.")
}

func TestBestAnswer_ModeratorOnBehalf(t *testing.T) {
	got := BestAnswer("helper", "Reboot it.", "modperson", true)
	assert.Contains(t, got, "nominated by u/modperson on behalf of the author:")
}

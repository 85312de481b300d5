package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgentNamesBuildAndOperator(t *testing.T) {
	ua := UserAgent("bot_operator")

	assert.Equal(t, "linux:NothingTechBot:dev (by /u/bot_operator)", ua)
}

func TestGetReportsGoVersion(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

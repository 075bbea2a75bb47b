package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesSubreddit_EmptyFilters(t *testing.T) {
	assert.True(t, MatchesSubreddit(SubredditFilters{}, "anything"))
}

func TestMatchesSubreddit_IncludeList(t *testing.T) {
	filters := SubredditFilters{
		Include: []string{"k12sysadmin", "sysadmin"},
	}

	assert.True(t, MatchesSubreddit(filters, "k12sysadmin"))
	assert.True(t, MatchesSubreddit(filters, "sysadmin"))
	assert.False(t, MatchesSubreddit(filters, "funny"))
}

func TestMatchesSubreddit_ExcludeList(t *testing.T) {
	filters := SubredditFilters{
		Exclude: []string{"circlejerk", "test"},
	}

	assert.False(t, MatchesSubreddit(filters, "circlejerk"))
	assert.False(t, MatchesSubreddit(filters, "test"))
	assert.True(t, MatchesSubreddit(filters, "teachers"))
}

func TestMatchesSubreddit_ExcludeTakesPrecedence(t *testing.T) {
	filters := SubredditFilters{
		Include: []string{"teachers", "education"},
		Exclude: []string{"teachers"},
	}

	assert.False(t, MatchesSubreddit(filters, "teachers"), "excluded should override included")
	assert.True(t, MatchesSubreddit(filters, "education"))
}

func TestMatchesSubreddit_CaseInsensitive(t *testing.T) {
	include := SubredditFilters{Include: []string{"K12SysAdmin"}}
	exclude := SubredditFilters{Exclude: []string{"K12SYSADMIN"}}

	assert.True(t, MatchesSubreddit(include, "k12sysadmin"))
	assert.True(t, MatchesSubreddit(include, "K12SYSADMIN"))
	assert.False(t, MatchesSubreddit(exclude, "k12sysadmin"))
	assert.False(t, MatchesSubreddit(exclude, "K12SysAdmin"))
}

func TestIsRemoved(t *testing.T) {
	assert.True(t, IsRemoved("[deleted]"))
	assert.True(t, IsRemoved(" [removed] "))
	assert.False(t, IsRemoved("removed"))
	assert.False(t, IsRemoved(""))
}

package matchers

import (
	"strings"
)

// SubredditFilters limits a batch to some subreddits. An empty Include
// list allows every subreddit that is not excluded.
type SubredditFilters struct {
	Include []string
	Exclude []string
}

func MatchesSubreddit(f SubredditFilters, subreddit string) bool {
	// Check exclude list first
	for _, excluded := range f.Exclude {
		if strings.EqualFold(excluded, subreddit) {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, included := range f.Include {
		if strings.EqualFold(included, subreddit) {
			return true
		}
	}

	return false
}

// IsRemoved reports whether text is reddit's placeholder for a deleted or
// moderator-removed body.
func IsRemoved(text string) bool {
	switch strings.TrimSpace(text) {
	case "[deleted]", "[removed]":
		return true
	}
	return false
}

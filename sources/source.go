package sources

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/enums"
	"github.com/kova98/threadcorpus/forest"
)

var (
	// ErrSourceUnavailable means the source itself cannot be used (auth,
	// identity or search failure). It aborts the whole batch.
	ErrSourceUnavailable = errors.New("thread source unavailable")

	// ErrMalformedThread means one thread lacks required metadata. The
	// thread is skipped.
	ErrMalformedThread = errors.New("malformed thread")
)

type SearchQuery struct {
	Subreddit  string
	Query      string
	Sort       enums.SortOrder
	TimeWindow enums.TimeWindow
	Limit      int
}

// ThreadHandle is one search result. Its forest is fetched on demand.
type ThreadHandle interface {
	Metadata() corpus.Metadata
	Forest(ctx context.Context) (forest.Forest, error)
}

// ThreadSource produces threads lazily, page by page. Search may yield
// fewer than Limit threads. Errors wrapping ErrMalformedThread concern a
// single result; any other error ends the sequence.
type ThreadSource interface {
	Verify(ctx context.Context) error
	Search(ctx context.Context, q SearchQuery) iter.Seq2[ThreadHandle, error]
}

// ValidateMetadata reports the fields a thread cannot be tabulated without.
func ValidateMetadata(m corpus.Metadata) error {
	var missing []string
	if m.ID == "" {
		missing = append(missing, "id")
	}
	if m.Author == "" {
		missing = append(missing, "author")
	}
	if m.Link == "" {
		missing = append(missing, "link")
	}
	if m.PostedAt.IsZero() {
		missing = append(missing, "posted time")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedThread, strings.Join(missing, ", "))
	}
	return nil
}

func pageSize(remaining int) int {
	if remaining <= 0 || remaining > maxPageSize {
		return maxPageSize
	}
	return remaining
}

const maxPageSize = 100

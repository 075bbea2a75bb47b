package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/enums"
	"github.com/kova98/threadcorpus/forest"
	"github.com/kova98/threadcorpus/matchers"
	"github.com/kova98/threadcorpus/metrics"
	"github.com/kova98/threadcorpus/sources"
	"github.com/kova98/threadcorpus/writers"
)

type languageMatcher interface {
	Matches(text string) bool
}

// Filters decide which valid threads enter the corpus. They run in field
// order and the first rejection wins.
type Filters struct {
	CreatedAfter time.Time
	Subreddits   matchers.SubredditFilters
	Keyword      string
	MatchMode    enums.MatchMode
	Language     languageMatcher
}

// reject names the filter that drops a thread, or returns "".
func (f Filters) reject(m corpus.Metadata) string {
	if !f.CreatedAfter.IsZero() && !m.PostedAt.After(f.CreatedAfter) {
		return "created_after"
	}
	if !matchers.MatchesSubreddit(f.Subreddits, m.Subreddit) {
		return "subreddit"
	}
	text := m.Title + " " + m.Content
	if !matchers.Matches(f.MatchMode, text, f.Keyword) {
		return "keyword"
	}
	if f.Language != nil && !f.Language.Matches(strings.TrimSpace(text)) {
		return "language"
	}
	return ""
}

type recorder interface {
	Thread(outcome string)
	Utterances(n int)
	Finish(width int, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) Thread(string)             {}
func (noopRecorder) Utterances(int)            {}
func (noopRecorder) Finish(int, time.Duration) {}

type RunStats struct {
	Collected  int
	Filtered   int
	Malformed  int
	Failed     int
	Utterances int
	Width      int
	Elapsed    time.Duration
}

// Collector runs one batch: search every subreddit in order, flatten each
// accepted thread, then write the corpus once.
type Collector struct {
	logger   *slog.Logger
	source   sources.ThreadSource
	expander *forest.Expander
	writer   writers.CorpusWriter
	recorder recorder
	filters  Filters
	search   SearchPlan
}

// SearchPlan is the query run against every subreddit.
type SearchPlan struct {
	Subreddits []string
	Query      string
	Sort       enums.SortOrder
	TimeWindow enums.TimeWindow
	Limit      int
}

func NewCollector(logger *slog.Logger, source sources.ThreadSource, expander *forest.Expander, writer writers.CorpusWriter, rec recorder, filters Filters, search SearchPlan) *Collector {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &Collector{
		logger:   logger,
		source:   source,
		expander: expander,
		writer:   writer,
		recorder: rec,
		filters:  filters,
		search:   search,
	}
}

// Run returns the written corpus. A source failure or cancellation aborts
// before anything is written.
func (c *Collector) Run(ctx context.Context) (corpus.Corpus, RunStats, error) {
	start := time.Now()
	var stats RunStats

	if err := c.source.Verify(ctx); err != nil {
		return corpus.Corpus{}, stats, errors.Wrap(err, "run: verify source")
	}

	tab := corpus.NewTabulizer()
	for _, subreddit := range c.search.Subreddits {
		if err := c.collectSubreddit(ctx, subreddit, tab, &stats); err != nil {
			return corpus.Corpus{}, stats, err
		}
	}
	if err := ctx.Err(); err != nil {
		return corpus.Corpus{}, stats, errors.Wrap(err, "run: interrupted")
	}

	result := tab.Corpus()
	stats.Width = result.Width
	stats.Elapsed = time.Since(start)
	c.recorder.Finish(result.Width, stats.Elapsed)

	if err := c.writer.Write(ctx, result); err != nil {
		return result, stats, errors.Wrap(err, "run: write corpus")
	}
	return result, stats, nil
}

func (c *Collector) collectSubreddit(ctx context.Context, subreddit string, tab *corpus.Tabulizer, stats *RunStats) error {
	q := sources.SearchQuery{
		Subreddit:  subreddit,
		Query:      c.search.Query,
		Sort:       c.search.Sort,
		TimeWindow: c.search.TimeWindow,
		Limit:      c.search.Limit,
	}
	c.logger.Info("searching", "subreddit", subreddit, "query", q.Query, "limit", q.Limit)

	for handle, err := range c.source.Search(ctx, q) {
		if errors.Is(err, sources.ErrMalformedThread) {
			c.logger.Warn("skipping malformed thread", "subreddit", subreddit, "error", err)
			stats.Malformed++
			c.recorder.Thread(metrics.ThreadMalformed)
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "run: search r/%s", subreddit)
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "run: interrupted")
		}
		c.collectThread(ctx, handle, tab, stats)
	}
	return nil
}

func (c *Collector) collectThread(ctx context.Context, handle sources.ThreadHandle, tab *corpus.Tabulizer, stats *RunStats) {
	meta := handle.Metadata()
	if err := sources.ValidateMetadata(meta); err != nil {
		c.logger.Warn("skipping malformed thread", "thread_id", meta.ID, "error", err)
		stats.Malformed++
		c.recorder.Thread(metrics.ThreadMalformed)
		return
	}
	if reason := c.filters.reject(meta); reason != "" {
		c.logger.Debug("thread filtered", "thread_id", meta.ID, "filter", reason)
		stats.Filtered++
		c.recorder.Thread(metrics.ThreadFiltered)
		return
	}

	items, err := handle.Forest(ctx)
	if err != nil {
		c.logger.Warn("skipping thread, comments unavailable", "thread_id", meta.ID, "error", err)
		stats.Failed++
		c.recorder.Thread(metrics.ThreadFailed)
		return
	}

	result := c.expander.Expand(ctx, items)
	tab.Add(meta, result.Utterances)
	stats.Collected++
	stats.Utterances += len(result.Utterances)
	c.recorder.Thread(metrics.ThreadCollected)
	c.recorder.Utterances(len(result.Utterances))
	c.logger.Debug("thread collected", "thread_id", meta.ID, "utterances", len(result.Utterances),
		"stubs_resolved", result.Resolved, "stubs_dropped", result.Dropped, "stubs_failed", result.Failed)
}

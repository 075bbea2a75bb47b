package writers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kova98/threadcorpus/corpus"
	"github.com/kova98/threadcorpus/data"
)

type runSaver interface {
	SaveRun(ctx context.Context, run data.Run, threads []data.Thread, utterances []data.Utterance) error
}

// StoreWriter saves a corpus in long form: one run, one row per thread
// and one row per real utterance. Padding is not stored.
type StoreWriter struct {
	logger *slog.Logger
	repo   runSaver
	source string
	query  string
	now    func() time.Time
}

func NewStoreWriter(logger *slog.Logger, repo runSaver, source, query string) *StoreWriter {
	return &StoreWriter{logger: logger, repo: repo, source: source, query: query, now: time.Now}
}

func (w *StoreWriter) Write(ctx context.Context, c corpus.Corpus) error {
	run := data.Run{
		ID:          uuid.New(),
		Source:      w.source,
		Query:       w.query,
		Width:       c.Width,
		ThreadCount: len(c.Rows),
		CreatedAt:   w.now().UTC(),
	}

	threads := make([]data.Thread, 0, len(c.Rows))
	for i, row := range c.Rows {
		m := row.Metadata
		threads = append(threads, data.Thread{
			RunID:     run.ID,
			ThreadID:  m.ID,
			Position:  i + 1,
			Subreddit: m.Subreddit,
			PostedAt:  m.PostedAt.UTC(),
			Title:     m.Title,
			Author:    m.Author,
			Link:      m.Link,
			Content:   m.Content,
		})
	}

	long := c.Long()
	utterances := make([]data.Utterance, 0, len(long))
	for _, rec := range long {
		utterances = append(utterances, data.Utterance{
			RunID:          run.ID,
			ThreadPosition: rec.Row,
			ThreadID:       rec.ThreadID,
			Position:       rec.Position,
			Body:           rec.Utterance,
		})
	}

	if err := w.repo.SaveRun(ctx, run, threads, utterances); err != nil {
		return err
	}
	w.logger.Info("corpus stored", "run_id", run.ID, "threads", len(threads), "utterances", len(utterances))
	return nil
}

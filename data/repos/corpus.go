package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kova98/threadcorpus/data"
)

// insertBatch keeps multi-row inserts under the bind parameter limits of
// both postgres and sqlite.
const insertBatch = 500

type CorpusRepo struct {
	db *sqlx.DB
}

func NewCorpusRepo(db *sqlx.DB) *CorpusRepo {
	return &CorpusRepo{db}
}

// SaveRun stores a run with its threads and utterances in one transaction.
func (r *CorpusRepo) SaveRun(ctx context.Context, run data.Run, threads []data.Thread, utterances []data.Utterance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, source, query, width, thread_count, created_at)
		VALUES (:id, :source, :query, :width, :thread_count, :created_at)`, run)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	for start := 0; start < len(threads); start += insertBatch {
		batch := threads[start:min(start+insertBatch, len(threads))]
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO threads (run_id, thread_id, position, subreddit, posted_at, title, author, link, content)
			VALUES (:run_id, :thread_id, :position, :subreddit, :posted_at, :title, :author, :link, :content)`, batch)
		if err != nil {
			return fmt.Errorf("create threads: %w", err)
		}
	}

	for start := 0; start < len(utterances); start += insertBatch {
		batch := utterances[start:min(start+insertBatch, len(utterances))]
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO utterances (run_id, thread_position, thread_id, position, body)
			VALUES (:run_id, :thread_position, :thread_id, :position, :body)`, batch)
		if err != nil {
			return fmt.Errorf("create utterances: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

func (r *CorpusRepo) GetRun(ctx context.Context, id uuid.UUID) (data.Run, error) {
	var run data.Run
	query := r.db.Rebind(`SELECT id, source, query, width, thread_count, created_at FROM runs WHERE id = ?`)
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return run, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (r *CorpusRepo) GetThreads(ctx context.Context, runID uuid.UUID) ([]data.Thread, error) {
	var threads []data.Thread
	query := r.db.Rebind(`
		SELECT run_id, thread_id, position, subreddit, posted_at, title, author, link, content
		FROM threads
		WHERE run_id = ?
		ORDER BY position ASC`)
	if err := r.db.SelectContext(ctx, &threads, query, runID); err != nil {
		return nil, fmt.Errorf("get threads: %w", err)
	}
	return threads, nil
}

// GetUtterances returns the utterances of the thread at threadPosition.
func (r *CorpusRepo) GetUtterances(ctx context.Context, runID uuid.UUID, threadPosition int) ([]data.Utterance, error) {
	var utterances []data.Utterance
	query := r.db.Rebind(`
		SELECT run_id, thread_position, thread_id, position, body
		FROM utterances
		WHERE run_id = ? AND thread_position = ?
		ORDER BY position ASC`)
	if err := r.db.SelectContext(ctx, &utterances, query, runID, threadPosition); err != nil {
		return nil, fmt.Errorf("get utterances: %w", err)
	}
	return utterances, nil
}

package data

import (
	"time"

	"github.com/google/uuid"
)

type Run struct {
	ID          uuid.UUID `db:"id"`
	Source      string    `db:"source"`
	Query       string    `db:"query"`
	Width       int       `db:"width"`
	ThreadCount int       `db:"thread_count"`
	CreatedAt   time.Time `db:"created_at"`
}

// Thread is one corpus row without its utterance columns. Threads are
// keyed by Position since a batch may hold the same post twice.
type Thread struct {
	RunID     uuid.UUID `db:"run_id"`
	ThreadID  string    `db:"thread_id"`
	Position  int       `db:"position"`
	Subreddit string    `db:"subreddit"`
	PostedAt  time.Time `db:"posted_at"`
	Title     string    `db:"title"`
	Author    string    `db:"author"`
	Link      string    `db:"link"`
	Content   string    `db:"content"`
}

// Utterance is one non-missing corpus cell. ThreadPosition is the row of
// its thread; Position is 1-based and matches the CommentN column.
type Utterance struct {
	RunID          uuid.UUID `db:"run_id"`
	ThreadPosition int       `db:"thread_position"`
	ThreadID       string    `db:"thread_id"`
	Position       int       `db:"position"`
	Body           string    `db:"body"`
}

// Package writers persists a finished corpus.
package writers

import (
	"context"
	"fmt"

	"github.com/kova98/threadcorpus/corpus"
)

type CorpusWriter interface {
	Write(ctx context.Context, c corpus.Corpus) error
}

// Multi writes to every writer in order and stops at the first failure.
type Multi []CorpusWriter

func (m Multi) Write(ctx context.Context, c corpus.Corpus) error {
	for i, w := range m {
		if err := w.Write(ctx, c); err != nil {
			return fmt.Errorf("writer %d: %w", i, err)
		}
	}
	return nil
}

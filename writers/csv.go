package writers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kova98/threadcorpus/corpus"
)

// EncodeCSV writes the header and every row, missing cells as missingToken.
func EncodeCSV(w io.Writer, c corpus.Corpus, missingToken string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(c.Records(missingToken)); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

type CSVWriter struct {
	path         string
	missingToken string
}

func NewCSVWriter(path, missingToken string) *CSVWriter {
	return &CSVWriter{path: path, missingToken: missingToken}
}

// Write replaces the file atomically so a failed run never leaves a
// truncated corpus behind.
func (w *CSVWriter) Write(_ context.Context, c corpus.Corpus) error {
	tmp, err := os.CreateTemp(filepath.Dir(w.path), filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeCSV(tmp, c, w.missingToken); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("rename csv: %w", err)
	}
	return nil
}

// Package corpus turns per-thread utterance lists into one fixed-width table.
package corpus

import (
	"strconv"
	"time"
)

// MetadataHeader names the metadata columns, in row order.
var MetadataHeader = []string{"Posted Time", "Title", "Author", "Link", "Content"}

const utteranceColumnPrefix = "Comment"

// Metadata describes the root post of a thread. ID and Subreddit identify
// the thread but are not part of the dense table.
type Metadata struct {
	ID        string
	Subreddit string
	PostedAt  time.Time
	Title     string
	Author    string
	Link      string
	Content   string
}

func (m Metadata) Fields() []string {
	return []string{
		m.PostedAt.UTC().Format(time.RFC3339),
		m.Title,
		m.Author,
		m.Link,
		m.Content,
	}
}

// Cell is one utterance slot. Missing cells have Valid == false, so an
// empty utterance stays distinguishable from padding.
type Cell struct {
	Value string
	Valid bool
}

// Missing pads rows shorter than the corpus width.
var Missing = Cell{}

func Text(s string) Cell {
	return Cell{Value: s, Valid: true}
}

func (c Cell) Render(missingToken string) string {
	if !c.Valid {
		return missingToken
	}
	return c.Value
}

type Row struct {
	Metadata   Metadata
	Utterances []Cell
}

// Corpus is a dense table: every row carries exactly Width utterance cells.
type Corpus struct {
	Width int
	Rows  []Row
}

func (c Corpus) Header() []string {
	header := make([]string, 0, len(MetadataHeader)+c.Width)
	header = append(header, MetadataHeader...)
	for i := 1; i <= c.Width; i++ {
		header = append(header, utteranceColumnPrefix+strconv.Itoa(i))
	}
	return header
}

// Records renders the header and every row as strings, missing cells as
// missingToken.
func (c Corpus) Records(missingToken string) [][]string {
	records := make([][]string, 0, len(c.Rows)+1)
	records = append(records, c.Header())
	for _, row := range c.Rows {
		record := make([]string, 0, len(MetadataHeader)+len(row.Utterances))
		record = append(record, row.Metadata.Fields()...)
		for _, cell := range row.Utterances {
			record = append(record, cell.Render(missingToken))
		}
		records = append(records, record)
	}
	return records
}

// LongRecord is one real utterance in sparse form. Row and Position are
// 1-based: Row is the thread's row, Position its CommentN column.
type LongRecord struct {
	Row       int
	ThreadID  string
	Position  int
	Utterance string
}

// Long drops padding and returns the sparse equivalent of the table.
func (c Corpus) Long() []LongRecord {
	var records []LongRecord
	for r, row := range c.Rows {
		for i, cell := range row.Utterances {
			if !cell.Valid {
				continue
			}
			records = append(records, LongRecord{
				Row:       r + 1,
				ThreadID:  row.Metadata.ID,
				Position:  i + 1,
				Utterance: cell.Value,
			})
		}
	}
	return records
}

package labeling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kova98/threadcorpus/matchers"
)

// ExtractQuotes collects the text worth labeling from a corpus table, row
// by row: Comment1..CommentN, then Content. Missing cells, blank text and
// removed bodies are dropped. records[0] must be the header.
//
// A CSV cannot tell a missing cell from a comment whose whole text equals
// missingToken, so such comments are dropped too. Pick a token that cannot
// occur as comment text when that matters.
func ExtractQuotes(records [][]string, missingToken string) ([]string, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("extract quotes: no header")
	}
	columns, err := quoteColumns(records[0])
	if err != nil {
		return nil, err
	}

	var quotes []string
	for _, record := range records[1:] {
		for _, col := range columns {
			if col >= len(record) {
				continue
			}
			text := record[col]
			if text == missingToken || strings.TrimSpace(text) == "" || matchers.IsRemoved(text) {
				continue
			}
			quotes = append(quotes, text)
		}
	}
	return quotes, nil
}

// quoteColumns returns the CommentN column indexes ordered by N, followed
// by the Content column.
func quoteColumns(header []string) ([]int, error) {
	type comment struct{ n, col int }
	var comments []comment
	content := -1
	for i, name := range header {
		if name == "Content" {
			content = i
			continue
		}
		if rest, ok := strings.CutPrefix(name, "Comment"); ok {
			if n, err := strconv.Atoi(rest); err == nil {
				comments = append(comments, comment{n, i})
			}
		}
	}
	if content < 0 {
		return nil, fmt.Errorf("extract quotes: header has no Content column")
	}
	sort.Slice(comments, func(a, b int) bool { return comments[a].n < comments[b].n })

	columns := make([]int, 0, len(comments)+1)
	for _, c := range comments {
		columns = append(columns, c.col)
	}
	return append(columns, content), nil
}

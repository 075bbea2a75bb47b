package corpus

import "slices"

// ThreadUtterances pairs a thread with its flattened utterances.
type ThreadUtterances struct {
	Metadata   Metadata
	Utterances []string
}

// Build measures the widest thread, then materializes every row at that
// width. An empty input yields a zero-width corpus.
func Build(threads []ThreadUtterances) Corpus {
	width := 0
	for _, t := range threads {
		if len(t.Utterances) > width {
			width = len(t.Utterances)
		}
	}
	return materialize(threads, width)
}

func materialize(threads []ThreadUtterances, width int) Corpus {
	rows := make([]Row, 0, len(threads))
	for _, t := range threads {
		cells := make([]Cell, width)
		for i, u := range t.Utterances {
			cells[i] = Text(u)
		}
		rows = append(rows, Row{Metadata: t.Metadata, Utterances: cells})
	}
	return Corpus{Width: width, Rows: rows}
}

// Tabulizer buffers threads in arrival order and tracks the running width.
// The table is only materialized by Corpus, once every thread is known.
type Tabulizer struct {
	threads []ThreadUtterances
	width   int
}

func NewTabulizer() *Tabulizer {
	return &Tabulizer{}
}

// Add copies utterances, so the caller may reuse the slice.
func (t *Tabulizer) Add(meta Metadata, utterances []string) {
	t.threads = append(t.threads, ThreadUtterances{Metadata: meta, Utterances: slices.Clone(utterances)})
	if len(utterances) > t.width {
		t.width = len(utterances)
	}
}

func (t *Tabulizer) Len() int {
	return len(t.threads)
}

func (t *Tabulizer) Width() int {
	return t.width
}

func (t *Tabulizer) Corpus() Corpus {
	return materialize(t.threads, t.width)
}

package labeling

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// FirstWordRole reduces a role answer to its first word, letters only,
// lower-case.
func FirstWordRole(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(lettersOnly(fields[0]))
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}

var (
	labelSeparators = regexp.MustCompile(`[,\n]`)
	nonLabelChars   = regexp.MustCompile(`[^\p{L} ]+`)
	spaces          = regexp.MustCompile(`\s+`)
)

// SplitLabels splits a model answer on commas and newlines and cleans each
// label: bullets, quotes and other non-letters go, case is lowered.
func SplitLabels(raw string) []string {
	var labels []string
	for _, part := range labelSeparators.Split(raw, -1) {
		label := nonLabelChars.ReplaceAllString(part, "")
		label = strings.ToLower(strings.TrimSpace(spaces.ReplaceAllString(label, " ")))
		if label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// NormalizeLabels is SplitLabels joined with ", ".
func NormalizeLabels(raw string) string {
	return strings.Join(SplitLabels(raw), ", ")
}

// Matrix is a symmetric label co-occurrence table over a sorted axis.
type Matrix struct {
	Labels []string
	Counts [][]int
}

// CoOccurrence counts, for every pair of distinct labels, the rows holding
// both. Rows with fewer than two distinct labels do not contribute.
func CoOccurrence(labelSets [][]string) Matrix {
	var rows [][]string
	seen := map[string]bool{}
	for _, set := range labelSets {
		distinct := slices.Compact(slices.Sorted(slices.Values(set)))
		if len(distinct) < 2 {
			continue
		}
		rows = append(rows, distinct)
		for _, l := range distinct {
			seen[l] = true
		}
	}

	axis := make([]string, 0, len(seen))
	for l := range seen {
		axis = append(axis, l)
	}
	slices.Sort(axis)
	index := make(map[string]int, len(axis))
	for i, l := range axis {
		index[l] = i
	}

	counts := make([][]int, len(axis))
	for i := range counts {
		counts[i] = make([]int, len(axis))
	}
	for _, row := range rows {
		for i := 0; i < len(row); i++ {
			for j := i + 1; j < len(row); j++ {
				a, b := index[row[i]], index[row[j]]
				counts[a][b]++
				counts[b][a]++
			}
		}
	}
	return Matrix{Labels: axis, Counts: counts}
}

// Records renders the matrix with the label axis as header row and first
// column.
func (m Matrix) Records() [][]string {
	header := append([]string{""}, m.Labels...)
	records := [][]string{header}
	for i, label := range m.Labels {
		record := make([]string, 0, len(m.Labels)+1)
		record = append(record, label)
		for _, n := range m.Counts[i] {
			record = append(record, strconv.Itoa(n))
		}
		records = append(records, record)
	}
	return records
}

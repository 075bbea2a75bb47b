package labeling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstWordRole(t *testing.T) {
	assert.Equal(t, "parent", FirstWordRole("Parent. The author mentions my daughter."))
	assert.Equal(t, "admin", FirstWordRole("  **Admin**: manages the district instance"))
	assert.Equal(t, "", FirstWordRole("   "))
}

func TestNormalizeLabels(t *testing.T) {
	raw := "- Worried about data\n• \"Lost trust\", Lack of Accountability.\n\n"

	assert.Equal(t, "worried about data, lost trust, lack of accountability", NormalizeLabels(raw))
}

func TestNormalizeLabels_Empty(t *testing.T) {
	assert.Equal(t, "", NormalizeLabels(" ,\n- "))
}

func TestCoOccurrence(t *testing.T) {
	m := CoOccurrence([][]string{
		{"worried", "confused"},
		{"confused", "worried", "lost trust"},
		{"surprised"},
		{"lost trust", "lost trust"},
	})

	assert.Equal(t, []string{"confused", "lost trust", "worried"}, m.Labels)
	assert.Equal(t, [][]int{
		{0, 1, 2},
		{1, 0, 1},
		{2, 1, 0},
	}, m.Counts)
}

func TestCoOccurrence_Empty(t *testing.T) {
	m := CoOccurrence(nil)

	assert.Empty(t, m.Labels)
	assert.Equal(t, [][]string{{""}}, m.Records())
}

func TestMatrix_Records(t *testing.T) {
	m := CoOccurrence([][]string{{"b", "a"}})

	assert.Equal(t, [][]string{
		{"", "a", "b"},
		{"a", "0", "1"},
		{"b", "1", "0"},
	}, m.Records())
}

package labeling

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_ReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.csv")
	records := RoleRecords([]RoleResult{{Quote: "my kid, again", Role: "parent", Response: "Parent\nbecause"}})

	require.NoError(t, WriteCSV(path, records))
	got, err := ReadCSV(path)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"quote", "role", "response"}, {"my kid, again", "parent", "Parent\nbecause"}}, got)
}

func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))

	assert.Error(t, err)
}

func TestLabelSets(t *testing.T) {
	sets := LabelSets([]LabelResult{{Labels: "confused, lost trust"}, {}})

	assert.Equal(t, [][]string{{"confused", "lost trust"}, nil}, sets)
}

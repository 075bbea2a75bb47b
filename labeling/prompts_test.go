package labeling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompts_Default(t *testing.T) {
	p, err := LoadPrompts("")

	require.NoError(t, err)
	assert.Contains(t, p.Role, "parent, student, teacher, admin")
	assert.Len(t, p.LabelList, 14)
}

func TestLoadPrompts_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: Who wrote this?\nlabels: Pick labels.\nlabel_list:\n  - name: Calm\n    description: Not worried.\n"), 0o644))

	p, err := LoadPrompts(path)

	require.NoError(t, err)
	assert.Equal(t, "Who wrote this?\nMessage: hi", p.RolePrompt("hi"))
	assert.Equal(t, "Pick labels.\nCalm - Not worried.\nMessage: hi", p.LabelPrompt("hi"))
}

func TestLoadPrompts_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: only a role\n"), 0o644))

	_, err := LoadPrompts(path)
	assert.Error(t, err)

	_, err = LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

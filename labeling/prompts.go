package labeling

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type LabelDefinition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Prompts are the instructions sent ahead of every quote.
type Prompts struct {
	Role      string            `yaml:"role"`
	Labels    string            `yaml:"labels"`
	LabelList []LabelDefinition `yaml:"label_list"`
}

// LoadPrompts reads prompts from path, or the built-in set when path is
// empty.
func LoadPrompts(path string) (Prompts, error) {
	raw := defaultPrompts
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return Prompts{}, fmt.Errorf("read prompts: %w", err)
		}
	}
	return parsePrompts(raw)
}

func parsePrompts(raw []byte) (Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts: %w", err)
	}
	if strings.TrimSpace(p.Role) == "" || strings.TrimSpace(p.Labels) == "" {
		return Prompts{}, fmt.Errorf("parse prompts: role and labels are required")
	}
	return p, nil
}

func (p Prompts) RolePrompt(quote string) string {
	return p.Role + "\nMessage: " + quote
}

func (p Prompts) LabelPrompt(quote string) string {
	var b strings.Builder
	b.WriteString(p.Labels)
	b.WriteString("\n")
	for _, l := range p.LabelList {
		fmt.Fprintf(&b, "%s - %s\n", l.Name, l.Description)
	}
	b.WriteString("Message: ")
	b.WriteString(quote)
	return b.String()
}

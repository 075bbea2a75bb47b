package labeling

import (
	"context"
	"log/slog"
)

type RoleResult struct {
	Quote    string
	Role     string
	Response string
}

type LabelResult struct {
	Quote    string
	Labels   string
	Response string
}

// Classifier sends one prompt per quote, in order. A failed call is logged
// and leaves an empty result, so results stay aligned with quotes.
type Classifier struct {
	logger   *slog.Logger
	provider Provider
	prompts  Prompts
}

func NewClassifier(logger *slog.Logger, provider Provider, prompts Prompts) *Classifier {
	return &Classifier{logger: logger, provider: provider, prompts: prompts}
}

func (c *Classifier) Roles(ctx context.Context, quotes []string) []RoleResult {
	results := make([]RoleResult, 0, len(quotes))
	for i, quote := range quotes {
		result := RoleResult{Quote: quote}
		response, err := c.provider.Generate(ctx, c.prompts.RolePrompt(quote))
		if err != nil {
			c.logger.Warn("role classification failed", "quote_index", i, "error", err)
		} else {
			result.Response = response
			result.Role = FirstWordRole(response)
		}
		results = append(results, result)
		c.progress("roles", i+1, len(quotes))
	}
	return results
}

func (c *Classifier) Labels(ctx context.Context, quotes []string) []LabelResult {
	results := make([]LabelResult, 0, len(quotes))
	for i, quote := range quotes {
		result := LabelResult{Quote: quote}
		response, err := c.provider.Generate(ctx, c.prompts.LabelPrompt(quote))
		if err != nil {
			c.logger.Warn("labeling failed", "quote_index", i, "error", err)
		} else {
			result.Response = response
			result.Labels = NormalizeLabels(response)
		}
		results = append(results, result)
		c.progress("labels", i+1, len(quotes))
	}
	return results
}

func (c *Classifier) progress(stage string, done, total int) {
	if done%50 == 0 || done == total {
		c.logger.Info("classification progress", "stage", stage, "done", done, "total", total)
	}
}

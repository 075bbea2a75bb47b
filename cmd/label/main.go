package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"

	"github.com/kova98/threadcorpus/config"
	"github.com/kova98/threadcorpus/labeling"
)

func main() {
	cfg, err := config.LoadLabeling()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	opts := slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := label(ctx, logger, cfg); err != nil {
		logger.Error("labeling failed", "error", err)
		os.Exit(1)
	}
}

func label(ctx context.Context, logger *slog.Logger, cfg config.LabelingConfig) error {
	prompts, err := labeling.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return errors.Wrap(err, "label: load prompts")
	}
	provider, err := labeling.NewProvider(ctx, cfg.Provider, labeling.ProviderOptions{
		Model:        cfg.Model,
		OllamaURL:    cfg.OllamaURL,
		OpenAIURL:    cfg.OpenAIURL,
		OpenAIKey:    cfg.OpenAIKey,
		GoogleAPIKey: cfg.GoogleAPIKey,
		HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout},
	})
	if err != nil {
		return errors.Wrap(err, "label: create provider")
	}

	records, err := labeling.ReadCSV(cfg.Input)
	if err != nil {
		return errors.Wrap(err, "label: read corpus")
	}
	quotes, err := labeling.ExtractQuotes(records, cfg.MissingToken)
	if err != nil {
		return errors.Wrap(err, "label: extract quotes")
	}
	logger.Info("quotes extracted", "input", cfg.Input, "quotes", len(quotes), "provider", cfg.Provider, "model", cfg.Model)

	classifier := labeling.NewClassifier(logger, provider, prompts)

	roles := classifier.Roles(ctx, quotes)
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "label: roles interrupted")
	}
	if err := labeling.WriteCSV(cfg.RolesOutput, labeling.RoleRecords(roles)); err != nil {
		return errors.Wrap(err, "label: write roles")
	}

	labels := classifier.Labels(ctx, quotes)
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "label: labels interrupted")
	}
	if err := labeling.WriteCSV(cfg.LabelsOutput, labeling.LabelRecords(labels)); err != nil {
		return errors.Wrap(err, "label: write labels")
	}

	matrix := labeling.CoOccurrence(labeling.LabelSets(labels))
	if err := labeling.WriteCSV(cfg.CooccurrenceOutput, matrix.Records()); err != nil {
		return errors.Wrap(err, "label: write co-occurrence")
	}

	logger.Info("labeling finished", "quotes", len(quotes), "labels", len(matrix.Labels))
	return nil
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kova98/threadcorpus/enums"
	"github.com/kova98/threadcorpus/forest"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	defaultUserAgent = "threadcorpus data collector"
)

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

type SearchConfig struct {
	Query      string
	Subreddits []string // searched in this order
	Sort       enums.SortOrder
	TimeWindow enums.TimeWindow
	Limit      int // per subreddit
}

type FilterConfig struct {
	CreatedAfter      time.Time // zero disables the cutoff
	IncludeSubreddits []string
	ExcludeSubreddits []string
	MatchKeyword      string
	MatchMode         enums.MatchMode
	Languages         []string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != ""
}

type StoreConfig struct {
	Driver string // StoreDriverPostgres or StoreDriverSQLite
	URL    string
}

func (c StoreConfig) Enabled() bool {
	return c.Driver != ""
}

type AppConfig struct {
	Source         enums.Source
	Reddit         RedditConfig
	Search         SearchConfig
	Budget         forest.Budget
	Charge         forest.ChargePolicy
	Filters        FilterConfig
	OutputCSV      string
	MissingToken   string
	S3             S3Config
	Store          StoreConfig
	ProxyURLs      []string
	HTTPTimeout    time.Duration
	PushgatewayURL string
	LogLevel       slog.Level
}

// Load reads the collector configuration from the environment. Every
// problem is reported at once.
func Load() (AppConfig, error) {
	l := &loader{}
	cfg := AppConfig{}

	cfg.Source = enums.ParseSource(l.loadOptional("THREAD_SOURCE", string(enums.SourceReddit)))
	if cfg.Source == enums.SourceInvalid {
		l.fail("THREAD_SOURCE", "must be reddit or arcticshift")
	}
	if cfg.Source == enums.SourceReddit {
		cfg.Reddit.ClientID = l.loadRequired("REDDIT_CLIENT_ID")
		cfg.Reddit.ClientSecret = l.loadRequired("REDDIT_CLIENT_SECRET")
		cfg.Reddit.Username = l.loadRequired("REDDIT_USERNAME")
		cfg.Reddit.Password = l.loadRequired("REDDIT_PASSWORD")
	}
	cfg.Reddit.UserAgent = l.loadOptional("REDDIT_USER_AGENT", defaultUserAgent)

	cfg.Search.Query = l.loadRequired("SEARCH_QUERY")
	cfg.Search.Subreddits = l.loadList("SUBREDDITS")
	if len(cfg.Search.Subreddits) == 0 {
		cfg.Search.Subreddits = []string{"all"}
	}
	cfg.Search.Sort = enums.ParseSortOrder(l.loadOptional("SEARCH_SORT", string(enums.SortRelevance)))
	if cfg.Search.Sort == enums.SortInvalid {
		l.fail("SEARCH_SORT", "must be relevance or new")
	}
	cfg.Search.TimeWindow = enums.ParseTimeWindow(l.loadOptional("SEARCH_TIME_WINDOW", string(enums.TimeWindowYear)))
	if cfg.Search.TimeWindow == enums.TimeWindowInvalid {
		l.fail("SEARCH_TIME_WINDOW", "must be one of hour, day, week, month, year, all")
	}
	cfg.Search.Limit = l.loadInt("SEARCH_LIMIT", 50)

	budget, err := forest.ParseBudget(os.Getenv("EXPANSION_BUDGET"))
	if err != nil {
		l.fail("EXPANSION_BUDGET", err.Error())
	}
	cfg.Budget = budget
	cfg.Charge = forest.ParseChargePolicy(l.loadOptional("EXPANSION_CHARGE", string(forest.ChargeShared)))
	if cfg.Charge == forest.ChargeInvalid {
		l.fail("EXPANSION_CHARGE", "must be shared or per-level")
	}

	if raw := os.Getenv("CREATED_AFTER"); raw != "" {
		cutoff, err := parseTime(raw)
		if err != nil {
			l.fail("CREATED_AFTER", err.Error())
		}
		cfg.Filters.CreatedAfter = cutoff
	}
	cfg.Filters.IncludeSubreddits = l.loadList("INCLUDE_SUBREDDITS")
	cfg.Filters.ExcludeSubreddits = l.loadList("EXCLUDE_SUBREDDITS")
	cfg.Filters.MatchKeyword = os.Getenv("MATCH_KEYWORD")
	cfg.Filters.MatchMode = enums.ParseMatchMode(l.loadOptional("MATCH_MODE", string(enums.MatchModeBroad)))
	if cfg.Filters.MatchMode == enums.MatchModeInvalid {
		l.fail("MATCH_MODE", "must be broad or exact")
	}
	cfg.Filters.Languages = l.loadList("LANGUAGES")

	cfg.OutputCSV = l.loadOptional("OUTPUT_CSV", "posts.csv")
	cfg.MissingToken = l.loadOptional("CSV_MISSING_TOKEN", "NA")

	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	if cfg.S3.Enabled() {
		cfg.S3.AccessKey = l.loadRequired("S3_ACCESS_KEY")
		cfg.S3.SecretKey = l.loadRequired("S3_SECRET_KEY")
		cfg.S3.Bucket = l.loadRequired("S3_BUCKET")
		cfg.S3.Object = l.loadOptional("S3_OBJECT", "posts.csv")
		cfg.S3.UseSSL = l.loadBool("S3_USE_SSL", true)
	}

	cfg.Store.Driver = strings.ToLower(os.Getenv("STORE_DRIVER"))
	if cfg.Store.Enabled() {
		if cfg.Store.Driver != StoreDriverPostgres && cfg.Store.Driver != StoreDriverSQLite {
			l.fail("STORE_DRIVER", "must be postgres or sqlite")
		}
		cfg.Store.URL = l.loadRequired("STORE_URL")
	}

	cfg.ProxyURLs = l.loadList("PROXY_URLS")
	cfg.HTTPTimeout = time.Duration(l.loadInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second
	cfg.PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")
	cfg.LogLevel = loadLogLevel()

	return cfg, l.err()
}

type LabelingConfig struct {
	Input              string
	Provider           enums.Provider
	Model              string
	OllamaURL          string
	OpenAIURL          string
	OpenAIKey          string
	GoogleAPIKey       string
	PromptsPath        string // empty uses the built-in prompts
	MissingToken       string
	RolesOutput        string
	LabelsOutput       string
	CooccurrenceOutput string
	HTTPTimeout        time.Duration
	LogLevel           slog.Level
}

var defaultModels = map[enums.Provider]string{
	enums.ProviderOllama: "llama3.1",
	enums.ProviderOpenAI: "gpt-4o-mini",
	enums.ProviderGemini: "gemini-2.5-flash",
}

// LoadLabeling reads the configuration of the labeling command.
func LoadLabeling() (LabelingConfig, error) {
	l := &loader{}
	cfg := LabelingConfig{}

	cfg.Input = l.loadOptional("LABEL_INPUT", "posts.csv")
	cfg.Provider = enums.ParseProvider(l.loadOptional("LABEL_PROVIDER", string(enums.ProviderOllama)))
	switch cfg.Provider {
	case enums.ProviderOpenAI:
		cfg.OpenAIKey = l.loadRequired("OPENAI_API_KEY")
	case enums.ProviderGemini:
		cfg.GoogleAPIKey = l.loadRequired("GOOGLE_API_KEY")
	case enums.ProviderInvalid:
		l.fail("LABEL_PROVIDER", "must be ollama, openai or gemini")
	}
	cfg.Model = l.loadOptional("LABEL_MODEL", defaultModels[cfg.Provider])
	cfg.OllamaURL = l.loadOptional("OLLAMA_URL", "http://localhost:11434")
	cfg.OpenAIURL = l.loadOptional("OPENAI_URL", "https://api.openai.com/v1")
	cfg.PromptsPath = os.Getenv("LABEL_PROMPTS")
	cfg.MissingToken = l.loadOptional("CSV_MISSING_TOKEN", "NA")
	cfg.RolesOutput = l.loadOptional("ROLES_OUTPUT", "roles.csv")
	cfg.LabelsOutput = l.loadOptional("LABELS_OUTPUT", "labels.csv")
	cfg.CooccurrenceOutput = l.loadOptional("COOCCURRENCE_OUTPUT", "cooccurrence.csv")
	cfg.HTTPTimeout = time.Duration(l.loadInt("HTTP_TIMEOUT_SECONDS", 120)) * time.Second
	cfg.LogLevel = loadLogLevel()

	return cfg, l.err()
}

func loadLogLevel() slog.Level {
	lvlString := os.Getenv("LOG_LEVEL")
	if lvlString == "" {
		lvlString = "INFO"
	}
	level, err := parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		return slog.LevelInfo
	}
	return level
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

// parseTime accepts RFC3339 or unix seconds.
func parseTime(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339 or unix seconds, got %q", s)
	}
	return t.UTC(), nil
}

// loader collects configuration errors instead of exiting on the first.
type loader struct {
	errs []error
}

func (l *loader) fail(key, reason string) {
	l.errs = append(l.errs, fmt.Errorf("%s: %s", key, reason))
}

func (l *loader) err() error {
	return errors.Join(l.errs...)
}

func (l *loader) loadRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		l.fail(key, "required env var not set")
	}
	return value
}

func (l *loader) loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (l *loader) loadInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		l.fail(key, fmt.Sprintf("expected a non-negative integer, got %q", value))
		return defaultValue
	}
	return n
}

func (l *loader) loadBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		l.fail(key, fmt.Sprintf("expected a boolean, got %q", value))
		return defaultValue
	}
	return b
}

// loadList splits a comma separated value, dropping blanks.
func (l *loader) loadList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

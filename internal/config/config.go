package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	defaultLogLevel    = "info"
	defaultHTTPTimeout = 10 * time.Second
	defaultUserAgent   = "AdvisoryDigest/1.0"
	// TargetDateLayout is the human-readable layout of schedule.targetDate.
	TargetDateLayout = "January 2, 2006"

	configPathEnv         = "ADVISORY_DIGEST_CONFIG"
	logLevelEnv           = "LOG_LEVEL"
	targetDateEnv         = "TARGET_DATE"
	summarizerProviderEnv = "SUMMARIZER_PROVIDER"
	summarizerEndpointEnv = "SUMMARIZER_ENDPOINT"
	summarizerAPIKeyEnv   = "SUMMARIZER_API_KEY"
	openAIAPIKeyEnv       = "OPENAI_API_KEY"
	openAIModelEnv        = "OPENAI_MODEL"
	openAIBaseURLEnv      = "OPENAI_BASE_URL"
)

// Summarizer providers.
const (
	ProviderNone   = "none"
	ProviderML     = "ml"
	ProviderOpenAI = "openai"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	HTTP       HTTPConfig       `yaml:"http"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Sites      []SiteConfig     `yaml:"sites"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig bounds every page fetch.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// ScheduleConfig defines which publication day to report on.
type ScheduleConfig struct {
	Timezone   string         `yaml:"timezone"`
	TargetDate string         `yaml:"targetDate"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the schedule timezone string to a time.Location.
func (s ScheduleConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Day returns the configured target date, or today in the schedule timezone.
func (s ScheduleConfig) Day(now time.Time) time.Time {
	loc := s.Location()
	if s.TargetDate != "" {
		if day, err := time.ParseInLocation(TargetDateLayout, strings.TrimSpace(s.TargetDate), loc); err == nil {
			return day
		}
		log.Printf("config: cannot parse target date %q, using today", s.TargetDate)
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SiteConfig describes one listing page and the scanner that parses it.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URL     string            `yaml:"url"`
	Listing ListingConfig     `yaml:"listing"`
	Options map[string]string `yaml:"options"`
}

// ListingConfig holds the CSS selectors of a teaser listing.
type ListingConfig struct {
	Item string `yaml:"item"`
	Link string `yaml:"link"`
	Date string `yaml:"date"`
}

// ExtractionConfig carries the content heuristics as replaceable data.
type ExtractionConfig struct {
	Candidates         []NamedValue `yaml:"candidates"`
	TextTags           []string     `yaml:"textTags"`
	BoilerplateRegions []NamedValue `yaml:"boilerplateRegions"`
	BoilerplatePhrases []NamedValue `yaml:"boilerplatePhrases"`
}

// NamedValue is a pattern with a semantic name used in logs.
type NamedValue struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// SummarizerConfig selects the abstractive backend and the tier thresholds.
type SummarizerConfig struct {
	Provider      string       `yaml:"provider"`
	MinInputChars int          `yaml:"minInputChars"`
	MaxLength     int          `yaml:"maxLength"`
	MinLength     int          `yaml:"minLength"`
	BudgetChars   int          `yaml:"budgetChars"`
	ML            MLConfig     `yaml:"ml"`
	OpenAI        OpenAIConfig `yaml:"openai"`
}

// MLConfig describes the summarization inference service.
type MLConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// OpenAIConfig defines how to contact an OpenAI-compatible API.
type OpenAIConfig struct {
	BaseURL      string `yaml:"baseUrl"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
	Probe        bool   `yaml:"probe"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(targetDateEnv); v != "" {
		c.Schedule.TargetDate = v
	}

	if v := os.Getenv(summarizerProviderEnv); v != "" {
		c.Summarizer.Provider = strings.ToLower(v)
	}

	if v := os.Getenv(summarizerEndpointEnv); v != "" {
		c.Summarizer.ML.Endpoint = v
	}

	if v := os.Getenv(summarizerAPIKeyEnv); v != "" {
		c.Summarizer.ML.APIKey = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Summarizer.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.Summarizer.OpenAI.Model = v
	}

	if v := os.Getenv(openAIBaseURLEnv); v != "" {
		c.Summarizer.OpenAI.BaseURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Schedule.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Schedule.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.HTTP.Timeout > 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}

	if override.Schedule.Timezone != "" {
		base.Schedule.Timezone = override.Schedule.Timezone
	}
	if override.Schedule.TargetDate != "" {
		base.Schedule.TargetDate = override.Schedule.TargetDate
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
		for i := range base.Sites {
			base.Sites[i].Listing = mergeListing(defaultListing(), base.Sites[i].Listing)
		}
	}

	if len(override.Extraction.Candidates) > 0 {
		base.Extraction.Candidates = override.Extraction.Candidates
	}
	if len(override.Extraction.TextTags) > 0 {
		base.Extraction.TextTags = override.Extraction.TextTags
	}
	if override.Extraction.BoilerplateRegions != nil {
		base.Extraction.BoilerplateRegions = override.Extraction.BoilerplateRegions
	}
	if override.Extraction.BoilerplatePhrases != nil {
		base.Extraction.BoilerplatePhrases = override.Extraction.BoilerplatePhrases
	}

	base.Summarizer = mergeSummarizer(base.Summarizer, override.Summarizer)

	return base
}

func mergeListing(base, override ListingConfig) ListingConfig {
	if override.Item != "" {
		base.Item = override.Item
	}
	if override.Link != "" {
		base.Link = override.Link
	}
	if override.Date != "" {
		base.Date = override.Date
	}
	return base
}

func mergeSummarizer(base, override SummarizerConfig) SummarizerConfig {
	if override.Provider != "" {
		base.Provider = strings.ToLower(override.Provider)
	}
	if override.MinInputChars > 0 {
		base.MinInputChars = override.MinInputChars
	}
	if override.MaxLength > 0 {
		base.MaxLength = override.MaxLength
	}
	if override.MinLength > 0 {
		base.MinLength = override.MinLength
	}
	if override.BudgetChars > 0 {
		base.BudgetChars = override.BudgetChars
	}

	if override.ML.Endpoint != "" {
		base.ML.Endpoint = override.ML.Endpoint
	}
	if override.ML.APIKey != "" {
		base.ML.APIKey = override.ML.APIKey
	}
	if override.ML.Timeout > 0 {
		base.ML.Timeout = override.ML.Timeout
	}

	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SystemPrompt != "" {
		base.OpenAI.SystemPrompt = override.OpenAI.SystemPrompt
	}
	base.OpenAI.Probe = base.OpenAI.Probe || override.OpenAI.Probe

	return base
}

func defaultListing() ListingConfig {
	return ListingConfig{
		Item: "article.c-teaser",
		Link: "h3.c-teaser__title a[href]",
		Date: "div.c-teaser__date time",
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: defaultLogLevel},
		HTTP:     HTTPConfig{Timeout: defaultHTTPTimeout, UserAgent: defaultUserAgent},
		Schedule: ScheduleConfig{Timezone: defaultTimezone, location: tz},
		Sites: []SiteConfig{
			{
				Name:    "cisa-advisories",
				Scanner: "teaser",
				URL:     "https://www.cisa.gov/news-events/cybersecurity-advisories",
				Listing: defaultListing(),
			},
		},
		Extraction: ExtractionConfig{
			Candidates: []NamedValue{
				{Name: "page-section-content", Value: "div.l-page-section_content"},
				{Name: "page-section-rich-text", Value: "div.l-page-section.l-page-section--rich-text"},
				{Name: "layout-region-content", Value: "div.layout__region--content"},
				{Name: "field-body", Value: "div.field--name-body"},
				{Name: "node-content", Value: "div.node__content"},
				{Name: "article-body", Value: "article.c-article__body"},
				{Name: "main-landmark", Value: "main#main"},
			},
			TextTags: []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "strong", "em"},
			BoilerplateRegions: []NamedValue{
				{Name: "site-footer", Value: "c-site-footer"},
				{Name: "site-header", Value: "c-site-header"},
				{Name: "site-nav", Value: "c-site-nav"},
				{Name: "view-filters", Value: "view__filters"},
				{Name: "share-buttons", Value: "share-buttons"},
				{Name: "contact-info", Value: "contact-info"},
				{Name: "related-links", Value: "related-links"},
			},
			BoilerplatePhrases: []NamedValue{
				{Name: "report-issue", Value: "report a cyber issue"},
				{Name: "secure-by-design", Value: "secure by design"},
				{Name: "secure-our-world", Value: "secure our world"},
				{Name: "shields-up", Value: "shields up"},
				{Name: "privacy-policy", Value: "privacy policy"},
				{Name: "accessibility", Value: "accessibility"},
				{Name: "sitemap", Value: "sitemap"},
				{Name: "free-services", Value: "free cyber services"},
				{Name: "last-updated", Value: "last updated"},
				{Name: "share-page", Value: "share this page"},
				{Name: "contact-us", Value: "contact us"},
				{Name: "press-release", Value: "press release"},
				{Name: "disclaimer", Value: "disclaimer"},
			},
		},
		Summarizer: SummarizerConfig{
			Provider:      ProviderML,
			MinInputChars: 100,
			MaxLength:     150,
			MinLength:     30,
			BudgetChars:   500,
			ML: MLConfig{
				Endpoint: "",
				Timeout:  60 * time.Second,
			},
			OpenAI: OpenAIConfig{
				BaseURL:      "https://api.openai.com/v1",
				Model:        "gpt-4o-mini",
				SystemPrompt: "You summarize cybersecurity advisories for a daily briefing.",
			},
		},
	}
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// MetricsNamespace prefixes every Prometheus series the module exposes.
const MetricsNamespace = "bestsellers"

// Config holds scraper configuration.
type Config struct {
	BaseURL          string
	Category         string
	MaxPages         int
	Parallelism      int
	Delay            time.Duration
	RandomDelay      time.Duration
	Timeout          time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	RetryBackoffMax  time.Duration
	UserAgent        string
	RespectRobotsTxt bool
	FetchDetails     bool
	Selectors        Selectors
	DedupeMaxSize    int
	MetricsAddr      string
	Verbose          bool

	Export ExportConfig
}

// Selectors locate listing fields inside the crawled HTML.
type Selectors struct {
	Item        string
	Position    string
	Title       string
	Price       string
	Rating      string
	ReviewCount string
	Link        string
	NextPage    string
	Description string
}

// ExportConfig controls where and how bestseller files are written.
type ExportConfig struct {
	// Dirs are tried in order for the spreadsheet.
	Dirs           []string
	BackupDir      string
	SheetName      string
	MaxColumnWidth int
}

// DefaultConfig returns conservative defaults for a bestseller listing.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "https://www.amazon.com/gp/bestsellers/electronics",
		Category:         "Electronics",
		MaxPages:         2,
		Parallelism:      2,
		Delay:            500 * time.Millisecond,
		RandomDelay:      500 * time.Millisecond,
		Timeout:          15 * time.Second,
		MaxRetries:       2,
		RetryBackoff:     500 * time.Millisecond,
		RetryBackoffMax:  5 * time.Second,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		RespectRobotsTxt: false,
		FetchDetails:     false,
		Selectors:        DefaultSelectors(),
		DedupeMaxSize:    10000,
		Verbose:          false,
		Export:           DefaultExportConfig(),
	}
}

// DefaultSelectors matches the grid layout of Amazon bestseller pages.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:        "div#gridItemRoot",
		Position:    "span.zg-bdg-text",
		Title:       "a.a-link-normal span div",
		Price:       "span.p13n-sc-price",
		Rating:      "i.a-icon-star-small span.a-icon-alt",
		ReviewCount: "a.a-link-normal span.a-size-small",
		Link:        "a.a-link-normal",
		NextPage:    "li.a-last a",
		Description: "#productDescription, #feature-bullets",
	}
}

// DefaultExportConfig resolves the fixed save-location policy.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Dirs:           DefaultCandidateDirs(),
		BackupDir:      DefaultBackupDir(),
		SheetName:      "Bestsellers",
		MaxColumnWidth: 50,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if strings.TrimSpace(c.Category) == "" {
		return fmt.Errorf("category cannot be empty")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.RandomDelay < 0 {
		return fmt.Errorf("random delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Selectors.Item == "" || c.Selectors.Title == "" {
		return fmt.Errorf("item and title selectors are required")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return c.Export.Validate()
}

// Validate checks the export settings.
func (e ExportConfig) Validate() error {
	if len(e.Dirs) == 0 {
		return fmt.Errorf("export needs at least one candidate directory")
	}
	for i, dir := range e.Dirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("export directory %d is empty", i)
		}
	}
	if e.BackupDir == "" {
		return fmt.Errorf("backup directory cannot be empty")
	}
	if e.SheetName == "" {
		return fmt.Errorf("sheet name cannot be empty")
	}
	if len(e.SheetName) > 31 {
		return fmt.Errorf("sheet name %q exceeds 31 characters", e.SheetName)
	}
	if e.MaxColumnWidth <= 0 {
		return fmt.Errorf("max column width must be positive")
	}
	return nil
}

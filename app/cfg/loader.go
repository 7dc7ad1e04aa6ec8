package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/samber/lo"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Monitor configuration
	ConfigFile    string `long:"config" short:"c" env:"CONFIG" description:"Path to a YAML or TOML monitor configuration file"`
	RSSURLs       string `long:"rss-urls" env:"RSS_URLS" description:"Comma-separated list of RSS feed URLs"`
	Keywords      string `long:"keywords" env:"KEYWORDS" description:"Comma-separated list of keywords"`
	Interval      int    `long:"interval" env:"INTERVAL" default:"60" description:"Time between sweeps in seconds"`
	Retries       int    `long:"retries" env:"RETRIES" default:"3" description:"Extra fetch attempts when a feed fails"`
	RetryInterval int    `long:"retry-interval" env:"RETRY_INTERVAL" default:"0" description:"Seconds between retries (0 = interval / retries)"`

	// Runtime configuration
	WorkerCount    int    `long:"workers" env:"WORKER_COUNT" default:"0" description:"Number of feeds polled concurrently (0 = one per feed, up to 5)"`
	FetchTimeout   int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed request timeout in seconds"`
	WebhookTimeout int    `long:"webhook-timeout" env:"WEBHOOK_TIMEOUT" default:"10" description:"Webhook request timeout in seconds"`
	Port           string `long:"port" env:"PORT" description:"Status API port (empty disables the API)"`
	HistoryDB      string `long:"history-db" env:"HISTORY_DB" description:"SQLite file recording delivered notifications (empty disables the journal)"`
	LogFile        string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this file, rotated by size"`
	APIAccessKey   string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for /api endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"CourtRSS/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args (without the program name) and the environment. It
// returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigFile:     raw.ConfigFile,
		RSSURLs:        splitList(raw.RSSURLs),
		Keywords:       splitList(raw.Keywords),
		Interval:       raw.Interval,
		Retries:        raw.Retries,
		RetryInterval:  raw.RetryInterval,
		WorkerCount:    raw.WorkerCount,
		FetchTimeout:   raw.FetchTimeout,
		WebhookTimeout: raw.WebhookTimeout,
		Port:           raw.Port,
		HistoryDB:      raw.HistoryDB,
		LogFile:        raw.LogFile,
		APIAccessKey:   raw.APIAccessKey,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return lo.Compact(lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}

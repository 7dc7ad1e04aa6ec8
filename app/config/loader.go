// Package config loads and validates the monitor configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/courtrss/app/cfg"
)

const (
	DefaultInterval = 60 // seconds
	DefaultRetries  = 3
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads a monitor configuration file. The format follows the extension:
// .yaml, .yml or .toml.
func Load(path string) (*MonitorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config MonitorConfig

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file extension %q", ErrInvalidConfig, ext)
	}

	if err := prepare(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

// FromFlags builds a configuration from command line values. It always
// notifies through a desktop alert. A zero retryInterval is derived from the
// interval.
func FromFlags(rssURLs, keywords []string, interval, retries, retryInterval int) (*MonitorConfig, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be a positive integer", ErrInvalidConfig)
	}

	config := MonitorConfig{
		RSSURLs:       rssURLs,
		Keywords:      keywords,
		Notifications: []NotifyMethod{{Type: MethodWindowNotification}},
		Interval:      &interval,
		Retries:       &retries,
		RetryInterval: retryInterval,
	}

	if err := prepare(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Resolve picks the configuration file when one is given and the command
// line values otherwise.
func Resolve(c *cfg.Cfg) (*MonitorConfig, error) {
	if c.ConfigFile != "" {
		return Load(c.ConfigFile)
	}

	if len(c.RSSURLs) == 0 || len(c.Keywords) == 0 {
		return nil, fmt.Errorf("%w: provide either --rss-urls and --keywords or --config", ErrInvalidConfig)
	}

	return FromFlags(c.RSSURLs, c.Keywords, c.Interval, c.Retries, c.RetryInterval)
}

func prepare(config *MonitorConfig) error {
	normalize(config)
	if err := validate(config); err != nil {
		return err
	}
	setDefaults(config)
	return nil
}

func normalize(config *MonitorConfig) {
	config.RSSURLs = cleanList(config.RSSURLs)
	config.Keywords = cleanList(config.Keywords)
	for i := range config.Notifications {
		config.Notifications[i].Type = strings.TrimSpace(config.Notifications[i].Type)
		config.Notifications[i].WebhookURL = strings.TrimSpace(config.Notifications[i].WebhookURL)
	}
	config.Notifications = lo.Uniq(config.Notifications)
}

func cleanList(items []string) []string {
	return lo.Uniq(lo.Compact(lo.Map(items, func(item string, _ int) string {
		return strings.TrimSpace(item)
	})))
}

func setDefaults(config *MonitorConfig) {
	if config.Interval == nil {
		interval := DefaultInterval
		config.Interval = &interval
	}
	if config.Retries == nil {
		retries := DefaultRetries
		config.Retries = &retries
	}
}

func validate(config *MonitorConfig) error {
	if len(config.RSSURLs) == 0 {
		return fmt.Errorf("%w: no RSS URLs provided", ErrInvalidConfig)
	}
	for _, rawURL := range config.RSSURLs {
		if !isHTTPURL(rawURL) {
			return fmt.Errorf("%w: invalid RSS URL %q", ErrInvalidConfig, rawURL)
		}
	}

	if len(config.Keywords) == 0 {
		return fmt.Errorf("%w: no keywords provided", ErrInvalidConfig)
	}

	if len(config.Notifications) == 0 {
		return fmt.Errorf("%w: no notification methods provided", ErrInvalidConfig)
	}
	for i, method := range config.Notifications {
		switch method.Type {
		case MethodWindowNotification:
		case MethodDiscordWebhook:
			if !isHTTPURL(method.WebhookURL) {
				return fmt.Errorf("%w: notification at index %d requires a valid webhook_url", ErrInvalidConfig, i)
			}
		default:
			return fmt.Errorf("%w: unknown notification type at index %d: %q", ErrInvalidConfig, i, method.Type)
		}
	}

	if config.Interval != nil && *config.Interval <= 0 {
		return fmt.Errorf("%w: interval must be a positive integer", ErrInvalidConfig)
	}
	if config.Retries != nil && *config.Retries < 0 {
		return fmt.Errorf("%w: retries must be a non-negative integer", ErrInvalidConfig)
	}
	if config.RetryInterval < 0 {
		return fmt.Errorf("%w: retry_interval must be a positive integer", ErrInvalidConfig)
	}

	return nil
}

func isHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

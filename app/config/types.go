package config

const (
	MethodWindowNotification = "window_notification"
	MethodDiscordWebhook     = "discord_webhook"
)

// MonitorConfig is the monitor configuration file.
type MonitorConfig struct {
	RSSURLs       []string       `yaml:"rss_urls" toml:"rss_urls"`
	Keywords      []string       `yaml:"keywords" toml:"keywords"`
	Notifications []NotifyMethod `yaml:"notifications" toml:"notifications"`
	Interval      *int           `yaml:"interval" toml:"interval"`             // seconds, nil means default
	Retries       *int           `yaml:"retries" toml:"retries"`               // nil means default
	RetryInterval int            `yaml:"retry_interval" toml:"retry_interval"` // seconds, 0 means derived
}

type NotifyMethod struct {
	Type       string `yaml:"type" toml:"type"`
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`
}

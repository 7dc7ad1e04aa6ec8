package cfg

type Cfg struct {
	// Monitor configuration
	ConfigFile    string
	RSSURLs       []string
	Keywords      []string
	Interval      int
	Retries       int
	RetryInterval int

	// Runtime configuration
	WorkerCount    int
	FetchTimeout   int
	WebhookTimeout int
	Port           string
	HistoryDB      string
	LogFile        string
	APIAccessKey   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

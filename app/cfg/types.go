package cfg

import "time"

type Cfg struct {
	// Upstream services
	GraphQLURL  string
	AuthURL     string
	AdminSecret string

	// Article source
	Source       string
	FeedURL      string
	FixtureFile  string
	FetchTimeout time.Duration

	// Application configuration
	Port         string
	DBPath       string
	WorkerCount  int
	PageSize     int
	SessionTTL   time.Duration
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// PersistAnnotations reports whether annotations outlive the session.
func (c *Cfg) PersistAnnotations() bool {
	return c.DBPath != ""
}

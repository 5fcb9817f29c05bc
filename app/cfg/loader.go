package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	SourceGraphQL = "graphql"
	SourceFeed    = "feed"
	SourceFixture = "fixture"
)

type rawCfg struct {
	// Upstream services
	GraphQLURL  string `long:"graphql-url" env:"GRAPHQL_URL" description:"GraphQL endpoint serving the articles"`
	AuthURL     string `long:"auth-url" env:"AUTH_URL" description:"Base URL of the authentication service (required)"`
	AdminSecret string `long:"admin-secret" env:"HASURA_ADMIN_SECRET" description:"Admin secret sent with GraphQL requests (optional)"`

	// Article source
	Source       string        `long:"source" env:"ARTICLE_SOURCE" default:"graphql" choice:"graphql" choice:"feed" choice:"fixture" description:"Article source backend"`
	FeedURL      string        `long:"feed-url" env:"FEED_URL" description:"RSS/Atom feed URL used when --source=feed"`
	FixtureFile  string        `long:"fixture-file" env:"FIXTURE_FILE" description:"YAML article file used when --source=fixture"`
	FetchTimeout time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30s" description:"Timeout for upstream requests"`

	// Application configuration
	Port         string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DBPath       string        `long:"db-path" env:"DB_PATH" description:"SQLite file for persisting annotations (empty keeps them per session)"`
	WorkerCount  int           `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of background workers loading articles"`
	PageSize     int           `long:"page-size" env:"PAGE_SIZE" default:"6" description:"Articles revealed per page"`
	SessionTTL   time.Duration `long:"session-ttl" env:"SESSION_TTL" default:"24h" description:"Idle time after which a dashboard session is dropped (0 disables)"`
	APIAccessKey string        `long:"api-key" env:"API_ACCESS_KEY" description:"API access key required on auth routes (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Digest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs returns nil, nil when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		GraphQLURL:   raw.GraphQLURL,
		AuthURL:      raw.AuthURL,
		AdminSecret:  raw.AdminSecret,
		Source:       raw.Source,
		FeedURL:      raw.FeedURL,
		FixtureFile:  raw.FixtureFile,
		FetchTimeout: raw.FetchTimeout,
		Port:         raw.Port,
		DBPath:       raw.DBPath,
		WorkerCount:  raw.WorkerCount,
		PageSize:     raw.PageSize,
		SessionTTL:   raw.SessionTTL,
		APIAccessKey: raw.APIAccessKey,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	if c.AuthURL == "" {
		return errors.New("auth URL is required (--auth-url or AUTH_URL)")
	}

	switch c.Source {
	case SourceGraphQL:
		if c.GraphQLURL == "" {
			return errors.New("GraphQL URL is required for the graphql source (--graphql-url or GRAPHQL_URL)")
		}
	case SourceFeed:
		if c.FeedURL == "" {
			return errors.New("feed URL is required for the feed source (--feed-url or FEED_URL)")
		}
	case SourceFixture:
		if c.FixtureFile == "" {
			return errors.New("fixture file is required for the fixture source (--fixture-file or FIXTURE_FILE)")
		}
	default:
		return fmt.Errorf("unknown article source: %s", c.Source)
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive, got %d", c.WorkerCount)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/aretw0/flowpaths/pkg/domain"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when --config is not given and the file exists.
const DefaultConfigFile = "flowpaths.yaml"

// Store kinds.
const (
	StoreNone     = "none"
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds every knob of the CLI. It is read from a YAML file and
// then overridden by the flags the user set explicitly.
type Config struct {
	Dir              string `yaml:"dir"`
	Debug            bool   `yaml:"debug"`
	LogJSON          bool   `yaml:"log-json"`
	IndependentLoops bool   `yaml:"independent-loops"`
	MaxAlternatives  int    `yaml:"max-alternatives"`
	SwitchMode       string `yaml:"switch-mode"`
	Occurrences      string `yaml:"occurrences"`
	Concurrency      int    `yaml:"concurrency"`

	Store     StoreConfig     `yaml:"store"`
	Publisher PublisherConfig `yaml:"publisher"`
	Lock      LockConfig      `yaml:"lock"`
}

// StoreConfig selects where Export persists results.
type StoreConfig struct {
	Kind     string         `yaml:"kind"`
	Path     string         `yaml:"path"`
	CacheTTL time.Duration  `yaml:"cache-ttl"`
	Redact   []string       `yaml:"redact"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// PublisherConfig enables broadcasting results to an AMQP broker.
type PublisherConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// LockConfig bounds how long one Export may hold its workflow lock.
type LockConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Dir:             ".",
		MaxAlternatives: 4096,
		SwitchMode:      string(domain.SwitchUnion),
		Occurrences:     string(domain.FirstOccurrence),
		Store: StoreConfig{
			Kind: StoreFile,
			Path: ".flowpaths/results",
		},
		Lock: LockConfig{TTL: time.Minute},
	}
}

// LoadConfig reads path over the defaults. A missing file is only an
// error when explicit is set.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := domain.ParseSwitchMode(c.SwitchMode); err != nil {
		return err
	}
	if _, err := domain.ParseOccurrencePolicy(c.Occurrences); err != nil {
		return err
	}
	switch c.Store.Kind {
	case "", StoreNone, StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Store.Kind == StorePostgres && c.Store.Postgres.DSN == "" {
		return fmt.Errorf("store kind %q requires a dsn", StorePostgres)
	}
	for _, p := range c.Store.Redact {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
	}
	return nil
}

// Override copies every flag the user changed into the config.
// Flags that the set does not define are skipped.
func (c *Config) Override(fs *pflag.FlagSet) error {
	var errs []error
	visit := func(name string, apply func() error) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			errs = append(errs, apply())
		}
	}

	visit("dir", func() (err error) { c.Dir, err = fs.GetString("dir"); return })
	visit("debug", func() (err error) { c.Debug, err = fs.GetBool("debug"); return })
	visit("log-json", func() (err error) { c.LogJSON, err = fs.GetBool("log-json"); return })
	visit("independent-loops", func() (err error) { c.IndependentLoops, err = fs.GetBool("independent-loops"); return })
	visit("max-alternatives", func() (err error) { c.MaxAlternatives, err = fs.GetInt("max-alternatives"); return })
	visit("switch-mode", func() (err error) { c.SwitchMode, err = fs.GetString("switch-mode"); return })
	visit("occurrences", func() (err error) { c.Occurrences, err = fs.GetString("occurrences"); return })
	visit("concurrency", func() (err error) { c.Concurrency, err = fs.GetInt("concurrency"); return })
	visit("store", func() (err error) { c.Store.Kind, err = fs.GetString("store"); return })
	visit("store-path", func() (err error) { c.Store.Path, err = fs.GetString("store-path"); return })
	visit("redis-addr", func() (err error) { c.Store.Redis.Addr, err = fs.GetString("redis-addr"); return })
	visit("postgres-dsn", func() (err error) { c.Store.Postgres.DSN, err = fs.GetString("postgres-dsn"); return })
	visit("amqp-url", func() (err error) { c.Publisher.URL, err = fs.GetString("amqp-url"); return })

	if err := errors.Join(errs...); err != nil {
		return err
	}
	return c.Validate()
}

// BindFlags registers the persistent flags that Override understands.
func BindFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()
	fs.String("config", DefaultConfigFile, "YAML configuration file")
	fs.String("dir", def.Dir, "Workflow document, HCL file, diagram text or document directory")
	fs.Bool("debug", false, "Enable debug logging")
	fs.Bool("log-json", false, "Log as JSON")
	fs.Bool("independent-loops", false, "Treat loop iterations as independent of each other")
	fs.Int("max-alternatives", def.MaxAlternatives, "Abort expansions producing more alternatives (0 disables)")
	fs.String("switch-mode", def.SwitchMode, "How switch branches appear in paths: union or embed")
	fs.String("occurrences", def.Occurrences, "Which occurrences of a repeated action to report: first or all")
	fs.Int("concurrency", 0, "Parallel target analyses (0 means unbounded)")
	fs.String("store", def.Store.Kind, "Result store: none, memory, file, redis or postgres")
	fs.String("store-path", def.Store.Path, "Directory of the file store")
	fs.String("redis-addr", "", "Redis address of the redis store")
	fs.String("postgres-dsn", "", "Connection string of the postgres store")
	fs.String("amqp-url", "", "Publish extractions to this AMQP broker")
}

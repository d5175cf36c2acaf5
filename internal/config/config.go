package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Sink kinds.
const (
	SinkSQLite  = "sqlite"
	SinkAutoMem = "automem"
)

// Content source kinds.
const (
	ContentREST = "rest"
	ContentFeed = "feed"
)

type Config struct {
	Sources  Sources  `yaml:"sources"`
	Sink     Sink     `yaml:"sink"`
	Schedule Schedule `yaml:"schedule"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type Sources struct {
	HelpScout HelpScout `yaml:"helpscout"`
	WordPress WordPress `yaml:"wordpress"`
	Inventory Inventory `yaml:"inventory"`
}

// HelpScout configures the ticket source. An empty BaseURL selects the
// public Help Scout API.
type HelpScout struct {
	BaseURL    string `yaml:"base_url"`
	InboxQuery string `yaml:"inbox_query"`
}

type WordPress struct {
	Kind             string `yaml:"kind"`
	BaseURL          string `yaml:"base_url"`
	FeedURL          string `yaml:"feed_url"`
	FetchFullContent bool   `yaml:"fetch_full_content"`
}

// Inventory configures the file inventory. With no Directories the
// pipeline assesses its default locations.
type Inventory struct {
	Root        string      `yaml:"root"`
	Directories []Directory `yaml:"directories"`
}

// Directory is a named inventory location, relative to Inventory.Root.
type Directory struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type Sink struct {
	Kind       string `yaml:"kind"`
	AutoMemURL string `yaml:"automem_url"`
}

type Schedule struct {
	Cron string `yaml:"cron"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConfigDir returns the XDG config directory for bizpulse.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "bizpulse")
}

// DataDir returns the XDG data directory for bizpulse.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "bizpulse")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/bizpulse/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'bizpulse init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file, then applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			HelpScout: HelpScout{InboxQuery: "support"},
			WordPress: WordPress{Kind: ContentREST},
			Inventory: Inventory{Root: "."},
		},
		Sink:     Sink{Kind: SinkSQLite, AutoMemURL: "http://localhost:8001"},
		Schedule: Schedule{Cron: "0 7 * * 1-5"},
		Server:   Server{Port: 8000},
		Logging:  Logging{Level: "info", Format: "text"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Sink.Kind {
	case SinkSQLite, SinkAutoMem:
	default:
		return fmt.Errorf("invalid sink kind %q (want %q or %q)", c.Sink.Kind, SinkSQLite, SinkAutoMem)
	}
	switch c.Sources.WordPress.Kind {
	case ContentREST, ContentFeed:
	default:
		return fmt.Errorf("invalid wordpress kind %q (want %q or %q)", c.Sources.WordPress.Kind, ContentREST, ContentFeed)
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DBPath returns the path of the local report store.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "bizpulse.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

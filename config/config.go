package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project config file looked up in the root.
const FileName = ".milestones.yaml"

// Config holds every runtime setting.
type Config struct {
	RootDir               string   `yaml:"root"`
	Excludes              []string `yaml:"exclude"`
	MaxFileSizeBytes      int64    `yaml:"max_file_size"`
	StatePath             string   `yaml:"state"`
	Marker                string   `yaml:"marker"`
	CompletionToken       string   `yaml:"done_token"`
	RescanIntervalSeconds int      `yaml:"rescan_interval"`
	LogLevel              string   `yaml:"log_level"`
	LogFile               string   `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxFileSizeBytes: 1024 * 1024,
		Marker:           "MILESTONE",
		CompletionToken:  "DONE",
		LogLevel:         "info",
	}
}

// excludePatterns is a repeatable CLI flag for exclusion globs.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

// Parse builds the config from defaults, then the YAML file, then explicitly set flags.
// The YAML file is -config when given, else <root>/.milestones.yaml when present.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()

	var flagValues Config
	var excludes excludePatterns
	var configPath string

	fs.StringVar(&flagValues.RootDir, "root", "", "Project root directory (default: current working directory)")
	fs.Var(&excludes, "exclude", "Extra exclusion glob, doublestar syntax (repeatable)")
	fs.Int64Var(&flagValues.MaxFileSizeBytes, "max-file-size", cfg.MaxFileSizeBytes, "Maximum file size in bytes to scan")
	fs.StringVar(&flagValues.StatePath, "state", "", "Milestone state database (default: <root>/.milestones/state.db)")
	fs.StringVar(&flagValues.Marker, "marker", cfg.Marker, "Marker keyword")
	fs.StringVar(&flagValues.CompletionToken, "done-token", cfg.CompletionToken, "Completion keyword")
	fs.IntVar(&flagValues.RescanIntervalSeconds, "rescan-interval", 0, "Seconds between full rescans (0 disables)")
	fs.StringVar(&flagValues.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	fs.StringVar(&flagValues.LogFile, "log-file", "", "Log file path (default: <root>/milestones-mcp.log)")
	fs.StringVar(&configPath, "config", "", "YAML config file (default: <root>/"+FileName+" if present)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	rootDir := flagValues.RootDir
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("getting working directory: %w", err)
		}
		rootDir = wd
	}

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(rootDir, FileName)
	}
	if err := loadFile(configPath, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if set["root"] || cfg.RootDir == "" {
		cfg.RootDir = rootDir
	}
	if set["max-file-size"] {
		cfg.MaxFileSizeBytes = flagValues.MaxFileSizeBytes
	}
	if set["state"] {
		cfg.StatePath = flagValues.StatePath
	}
	if set["marker"] {
		cfg.Marker = flagValues.Marker
	}
	if set["done-token"] {
		cfg.CompletionToken = flagValues.CompletionToken
	}
	if set["rescan-interval"] {
		cfg.RescanIntervalSeconds = flagValues.RescanIntervalSeconds
	}
	if set["log-level"] {
		cfg.LogLevel = flagValues.LogLevel
	}
	if set["log-file"] {
		cfg.LogFile = flagValues.LogFile
	}
	cfg.Excludes = append(cfg.Excludes, excludes...)

	return cfg.resolve()
}

// resolve makes paths absolute, fills path defaults and validates the tokens.
func (c Config) resolve() (Config, error) {
	rootDir, err := filepath.Abs(c.RootDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolving root %s: %w", c.RootDir, err)
	}
	c.RootDir = rootDir

	if c.StatePath == "" {
		c.StatePath = filepath.Join(c.RootDir, ".milestones", "state.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.RootDir, "milestones-mcp.log")
	}

	if c.Marker == "" || strings.ContainsFunc(c.Marker, unicode.IsSpace) {
		return Config{}, fmt.Errorf("marker %q must be a single non-empty word", c.Marker)
	}
	if c.CompletionToken == "" || strings.ContainsFunc(c.CompletionToken, unicode.IsSpace) {
		return Config{}, fmt.Errorf("completion token %q must be a single non-empty word", c.CompletionToken)
	}
	if c.RescanIntervalSeconds < 0 {
		return Config{}, fmt.Errorf("rescan interval must not be negative, got %d", c.RescanIntervalSeconds)
	}
	return c, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

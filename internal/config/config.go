// Package config loads and validates Grantha configuration.
// Precedence: built-in defaults, then the user config file, then
// GRANTHA_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Config is the complete Grantha configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Paths    PathsConfig    `yaml:"paths" json:"paths"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	Semantic SemanticConfig `yaml:"semantic" json:"semantic"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// PathsConfig locates the on-disk corpus and semantic pack.
type PathsConfig struct {
	// DataDir is the root for all Grantha state. Other paths default
	// to subpaths of it when left empty.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// CorpusDB is the corpus SQLite database.
	CorpusDB string `yaml:"corpus_db" json:"corpus_db"`

	// PackDir holds downloaded semantic pack assets.
	PackDir string `yaml:"pack_dir" json:"pack_dir"`
}

// SearchConfig tunes the lexical and hybrid search engines.
type SearchConfig struct {
	// PerPage is the default page size. One of 25, 50, 100.
	PerPage int `yaml:"per_page" json:"per_page"`

	// Alpha is the hybrid blend weight for the dense score (0.0-1.0);
	// the lexical score gets 1-alpha.
	Alpha float64 `yaml:"alpha" json:"alpha"`

	// DenseK and LexicalK size the candidate pools fused by hybrid
	// search.
	DenseK   int `yaml:"dense_k" json:"dense_k"`
	LexicalK int `yaml:"lexical_k" json:"lexical_k"`
}

// SemanticConfig configures the embedding encoder and pack installer.
type SemanticConfig struct {
	// Provider selects the encoder: "hashed" (built-in, deterministic)
	// or "remote" (HTTP feature-extraction endpoint).
	Provider string `yaml:"provider" json:"provider"`

	// Dimension is the embedding width. Must match the installed pack.
	Dimension int `yaml:"dimension" json:"dimension"`

	// Endpoint and Model apply to the remote provider only.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Model    string `yaml:"model" json:"model"`

	// BaseURL is the pack distribution root; the manifest lives at
	// <base>/manifest.json. Mirrors are tried in order after the
	// primary fails.
	BaseURL string   `yaml:"base_url" json:"base_url"`
	Mirrors []string `yaml:"mirrors" json:"mirrors"`

	// PermissiveChecksums downgrades checksum mismatches from fatal
	// errors to warnings. Off unless explicitly enabled.
	PermissiveChecksums bool `yaml:"permissive_checksums" json:"permissive_checksums"`

	// CacheSize bounds the embedding LRU cache (entries).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// LoggingConfig controls the structured log output.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

const (
	currentVersion   = 1
	defaultPackURL   = "https://packs.samhita-labs.org/grantha"
	defaultDimension = 384
	defaultAlpha     = 0.6
	defaultDenseK    = 150
	defaultLexicalK  = 300
	defaultPerPage   = 25
	defaultCacheSize = 1000
)

// PageSizes are the page sizes the paginator accepts.
var PageSizes = []int{25, 50, 100}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Version: currentVersion,
		Paths: PathsConfig{
			DataDir:  dataDir,
			CorpusDB: filepath.Join(dataDir, "corpus.db"),
			PackDir:  filepath.Join(dataDir, "pack"),
		},
		Search: SearchConfig{
			PerPage:  defaultPerPage,
			Alpha:    defaultAlpha,
			DenseK:   defaultDenseK,
			LexicalK: defaultLexicalK,
		},
		Semantic: SemanticConfig{
			Provider:  "hashed",
			Dimension: defaultDimension,
			BaseURL:   defaultPackURL,
			CacheSize: defaultCacheSize,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".grantha"
	}
	return filepath.Join(home, ".grantha")
}

// UserConfigPath is the per-user config file location.
func UserConfigPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load builds the effective configuration: defaults, then the config
// file at path (or the user config when path is empty, missing file
// tolerated), then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if path == "" {
		path = UserConfigPath()
	}
	if err := cfg.loadYAML(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			code := grerrors.ErrCodeConfigInvalid
			if os.IsNotExist(err) {
				code = grerrors.ErrCodeConfigNotFound
			}
			return nil, grerrors.New(code, fmt.Sprintf("load config %s", path), err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnvOverrides applies GRANTHA_* environment variables, the
// highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GRANTHA_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
		c.Paths.CorpusDB = filepath.Join(v, "corpus.db")
		c.Paths.PackDir = filepath.Join(v, "pack")
	}
	if v := os.Getenv("GRANTHA_CORPUS_DB"); v != "" {
		c.Paths.CorpusDB = v
	}
	if v := os.Getenv("GRANTHA_PACK_DIR"); v != "" {
		c.Paths.PackDir = v
	}
	if v := os.Getenv("GRANTHA_ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.Alpha = f
		}
	}
	if v := os.Getenv("GRANTHA_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.PerPage = n
		}
	}
	if v := os.Getenv("GRANTHA_PROVIDER"); v != "" {
		c.Semantic.Provider = v
	}
	if v := os.Getenv("GRANTHA_ENDPOINT"); v != "" {
		c.Semantic.Endpoint = v
	}
	if v := os.Getenv("GRANTHA_PACK_URL"); v != "" {
		c.Semantic.BaseURL = v
	}
	if v := os.Getenv("GRANTHA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if c.Search.Alpha < 0 || c.Search.Alpha > 1 {
		return grerrors.New(grerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.alpha must be in [0,1], got %g", c.Search.Alpha), nil)
	}
	if !validPerPage(c.Search.PerPage) {
		return grerrors.New(grerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("search.per_page must be one of %v, got %d", PageSizes, c.Search.PerPage), nil)
	}
	if c.Search.DenseK <= 0 || c.Search.LexicalK <= 0 {
		return grerrors.New(grerrors.ErrCodeConfigInvalid,
			"search.dense_k and search.lexical_k must be positive", nil)
	}
	if c.Semantic.Dimension <= 0 {
		return grerrors.New(grerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("semantic.dimension must be positive, got %d", c.Semantic.Dimension), nil)
	}
	switch c.Semantic.Provider {
	case "hashed", "remote":
	default:
		return grerrors.New(grerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("semantic.provider must be hashed or remote, got %q", c.Semantic.Provider), nil)
	}
	if c.Semantic.Provider == "remote" && c.Semantic.Endpoint == "" {
		return grerrors.New(grerrors.ErrCodeConfigInvalid,
			"semantic.endpoint is required for the remote provider", nil)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return grerrors.New(grerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level), nil)
	}
	return nil
}

func validPerPage(n int) bool {
	for _, s := range PageSizes {
		if n == s {
			return true
		}
	}
	return false
}

// WriteYAML persists the configuration, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return grerrors.New(grerrors.ErrCodeInternal, "marshal config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return grerrors.New(grerrors.ErrCodeFilePermission, "create config dir", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return grerrors.New(grerrors.ErrCodeFilePermission, "write config", err)
	}
	return nil
}

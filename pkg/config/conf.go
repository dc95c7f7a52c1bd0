package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	CommonPasswordsDefault = "common_passwords.txt"
	DictionaryWordsDefault = "dictionary_words.txt"
	MaxAgeDaysDefault      = 90
	OracleTimeoutDefault   = 5 * time.Second
	ConcurrencyDefault     = 4
	LogLevelDefault        = "info"
	FormatDefault          = FormatText

	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrInvalid is returned when a config value is out of range.
var ErrInvalid = errors.New("invalid config")

// Config represents app config object.
type Config struct {
	CommonPasswords string        `yaml:"common_passwords" json:"common_passwords"`
	DictionaryWords string        `yaml:"dictionary_words" json:"dictionary_words"`
	MaxAgeDays      int           `yaml:"max_age_days" json:"max_age_days"`
	OracleTimeout   time.Duration `yaml:"oracle_timeout" json:"oracle_timeout"`
	Strict          bool          `yaml:"strict" json:"strict"`
	Concurrency     int           `yaml:"concurrency" json:"concurrency"`
	History         bool          `yaml:"history" json:"history"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	Format          string        `yaml:"format" json:"format"`
}

// Default returns the config used when no file exists yet.
func Default() *Config {
	return &Config{
		CommonPasswords: CommonPasswordsDefault,
		DictionaryWords: DictionaryWordsDefault,
		MaxAgeDays:      MaxAgeDaysDefault,
		OracleTimeout:   OracleTimeoutDefault,
		Concurrency:     ConcurrencyDefault,
		History:         true,
		LogLevel:        LogLevelDefault,
		Format:          FormatDefault,
	}
}

// Validate checks value ranges and fills zero values with defaults.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config required", ErrInvalid)
	}
	if c.MaxAgeDays < 0 {
		return fmt.Errorf("%w: max_age_days must be positive: %d", ErrInvalid, c.MaxAgeDays)
	}
	if c.OracleTimeout < 0 {
		return fmt.Errorf("%w: oracle_timeout must be positive: %s", ErrInvalid, c.OracleTimeout)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be positive: %d", ErrInvalid, c.Concurrency)
	}

	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "":
		c.Format = FormatDefault
	case "yml":
		c.Format = FormatYAML
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: unsupported format: %s", ErrInvalid, c.Format)
	}

	if c.CommonPasswords == "" {
		c.CommonPasswords = CommonPasswordsDefault
	}
	if c.DictionaryWords == "" {
		c.DictionaryWords = DictionaryWordsDefault
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = MaxAgeDaysDefault
	}
	if c.Concurrency == 0 {
		c.Concurrency = ConcurrencyDefault
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelDefault
	}
	return nil
}

// Save writes the config to the config file in dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("creating dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file %s: %w", path, err)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the app directory under the user home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("getting user home dir: %w", err)
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("creating dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}

// ResolvePath makes relative list paths relative to the config directory
// when the file exists there, otherwise leaves them as given.
func ResolvePath(dirPath, p string) string {
	if p == "" || filepath.IsAbs(p) || dirPath == "" {
		return p
	}
	candidate := filepath.Join(dirPath, p)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return p
}

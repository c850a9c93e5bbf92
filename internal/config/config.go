package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataloom-cli/internal/parser"
	"github.com/KaramelBytes/dataloom-cli/internal/table"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	// File format
	Delimiter    string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal      string `mapstructure:"decimal" yaml:"decimal"`
	MissingToken string `mapstructure:"missing_token" yaml:"missing_token"`

	// Display
	PreviewTitle string `mapstructure:"preview_title" yaml:"preview_title"`
	ColumnGap    int    `mapstructure:"column_gap" yaml:"column_gap"`

	// Analysis
	IQRFactor         float64 `mapstructure:"iqr_factor" yaml:"iqr_factor"`
	ZThreshold        float64 `mapstructure:"z_threshold" yaml:"z_threshold"`
	MissingIndexLimit int     `mapstructure:"missing_index_limit" yaml:"missing_index_limit"`
	TopRows           int     `mapstructure:"top_rows" yaml:"top_rows"`
	TopPatterns       int     `mapstructure:"top_patterns" yaml:"top_patterns"`

	// Logging and shell
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	HistoryFile string `mapstructure:"history_file" yaml:"history_file"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"delimiter", "decimal", "missing_token", "preview_title", "column_gap",
	"iqr_factor", "z_threshold", "missing_index_limit", "top_rows", "top_patterns",
	"log_level", "log_file", "history_file",
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATALOOM")
	v.AutomaticEnv()

	v.SetDefault("delimiter", ";")
	v.SetDefault("decimal", ".")
	v.SetDefault("missing_token", "NaN")
	v.SetDefault("preview_title", "Data preview:")
	v.SetDefault("column_gap", 2)
	v.SetDefault("iqr_factor", 1.5)
	v.SetDefault("z_threshold", 3.0)
	v.SetDefault("missing_index_limit", 10)
	v.SetDefault("top_rows", 5)
	v.SetDefault("top_patterns", 5)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")
	v.SetDefault("history_file", "")

	dir, err := homeDir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "dataloom.log")
	}
	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(dir, "history")
	}
	for _, p := range []*string{&c.LogFile, &c.HistoryFile} {
		if *p, err = utils.ExpandHome(*p); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail deep inside an operation.
func (c *Global) Validate() error {
	if _, err := parser.ParseDelimiter(c.Delimiter); err != nil {
		return err
	}
	if _, err := parseDecimal(c.Decimal); err != nil {
		return err
	}
	if c.ColumnGap < 1 {
		return fmt.Errorf("column_gap must be at least 1, got %d", c.ColumnGap)
	}
	if c.IQRFactor <= 0 || c.ZThreshold <= 0 {
		return fmt.Errorf("iqr_factor and z_threshold must be positive")
	}
	return nil
}

func parseDecimal(s string) (rune, error) {
	switch s {
	case ".", "":
		return '.', nil
	case ",":
		return ',', nil
	default:
		return 0, fmt.Errorf("unsupported decimal separator %q (use . or ,)", s)
	}
}

// Policy returns the coercion policy the configuration describes.
func (c *Global) Policy() table.Policy {
	dec, _ := parseDecimal(c.Decimal)
	return table.Policy{Decimal: dec, MissingToken: c.MissingToken}
}

// ParserOptions returns the file options the configuration describes.
func (c *Global) ParserOptions() parser.Options {
	d, _ := parser.ParseDelimiter(c.Delimiter)
	return parser.Options{Delimiter: d, Policy: c.Policy()}
}

// Get returns the textual value of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "delimiter":
		return c.Delimiter, nil
	case "decimal":
		return c.Decimal, nil
	case "missing_token":
		return c.MissingToken, nil
	case "preview_title":
		return c.PreviewTitle, nil
	case "column_gap":
		return strconv.Itoa(c.ColumnGap), nil
	case "iqr_factor":
		return strconv.FormatFloat(c.IQRFactor, 'g', -1, 64), nil
	case "z_threshold":
		return strconv.FormatFloat(c.ZThreshold, 'g', -1, 64), nil
	case "missing_index_limit":
		return strconv.Itoa(c.MissingIndexLimit), nil
	case "top_rows":
		return strconv.Itoa(c.TopRows), nil
	case "top_patterns":
		return strconv.Itoa(c.TopPatterns), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	case "history_file":
		return c.HistoryFile, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set parses value into key and validates the result; c is unchanged on error.
func (c *Global) Set(key, value string) error {
	next := *c
	var err error
	switch key {
	case "delimiter":
		next.Delimiter = value
	case "decimal":
		next.Decimal = value
	case "missing_token":
		next.MissingToken = value
	case "preview_title":
		next.PreviewTitle = value
	case "column_gap":
		next.ColumnGap, err = strconv.Atoi(value)
	case "iqr_factor":
		next.IQRFactor, err = strconv.ParseFloat(value, 64)
	case "z_threshold":
		next.ZThreshold, err = strconv.ParseFloat(value, 64)
	case "missing_index_limit":
		next.MissingIndexLimit, err = strconv.Atoi(value)
	case "top_rows":
		next.TopRows, err = strconv.Atoi(value)
	case "top_patterns":
		next.TopPatterns, err = strconv.Atoi(value)
	case "log_level":
		next.LogLevel = strings.ToLower(value)
	case "log_file":
		next.LogFile = value
	case "history_file":
		next.HistoryFile = value
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

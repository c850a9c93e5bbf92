package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/logging"
	"github.com/KaramelBytes/dataloom-cli/internal/session"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides for config values when set
	flagDelimiter string
	flagDecimal   string
	flagLogLevel  string
	flagLogFile   string

	// Loaded configuration
	cfg *cfgpkg.Global

	logCloser = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "dataloom",
	Short: "DataLoom CLI: inspect, filter and edit a delimited data file",
	Long: `DataLoom loads a semicolon-delimited table and lets you inspect it (statistics, correlations,
outliers, missing data), transform it (filters, replacements, sub-tables, cell edits) and save it back.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	logCloser()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "field delimiter: ';' | ',' | 'tab' | '|' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator: '.' | ',' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug | info | warn | error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "log file path, '-' for stderr (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands load again and report the error when they need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("delimiter") {
		if err := cfg.Set("delimiter", flagDelimiter); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: ignoring --delimiter: %v\n", err)
		}
	}
	if f.Changed("decimal") {
		if err := cfg.Set("decimal", flagDecimal); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: ignoring --decimal: %v\n", err)
		}
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if f.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}

	logCloser()
	l, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logging disabled: %v\n", err)
		l, closer = zerolog.Nop(), func() {}
	}
	logCloser = closer
	logging.SetDefault(l)
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// openSession loads path into a new session.
func openSession(path string) (*session.Session, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	s := session.New(c, logging.Component("cli"))
	if path != "" {
		if _, err := s.Load(path); err != nil {
			return nil, err
		}
	}
	return s, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool

	cfg    *deckfill.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "deckfill",
	Short: "Fill PowerPoint templates with data",
	Long: `deckfill substitutes values from a JSON or YAML context into a PPTX template.

Text tokens such as $name$ are replaced in every text frame and table cell,
tables holding a $relationship.field$ row are expanded with one row per
record, and pictures whose alt text names a context key are swapped for the
bound image.

Configuration is read from the defaults, then DECKFILL_* environment
variables, then the --config file, then command line flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = deckfill.NewLogger(cfg.LogLevel, deckfill.LogFormat(logFormat), os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(deckfill.LogFormatConsole), "Log format: console or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers the configuration sources. Flags registered on the
// running command override the file and the environment only when set.
func loadConfig(cmd *cobra.Command) (*deckfill.Config, error) {
	var c *deckfill.Config
	if configPath != "" {
		var err error
		if c, err = deckfill.LoadConfigFile(configPath); err != nil {
			return nil, err
		}
	} else {
		c = deckfill.ConfigFromEnvironment()
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if verbose {
		c.LogLevel = "debug"
	}
	if flags.Lookup("delimiter") != nil && flags.Changed("delimiter") {
		c.Delimiter, _ = flags.GetString("delimiter")
	}
	if flags.Lookup("strict") != nil && flags.Changed("strict") {
		c.StrictMode, _ = flags.GetBool("strict")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		c.Workers, _ = flags.GetInt("workers")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

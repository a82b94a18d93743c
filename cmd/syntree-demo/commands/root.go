// Package commands implements the syntree-demo cobra commands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the tunables syntree-demo loads through viper, matching the
// core's compile-time defaults as a fallback.
type Config struct {
	Parser struct {
		Language string `mapstructure:"language"`
	} `mapstructure:"parser"`
	Builder struct {
		MaxBufferLength int `mapstructure:"max_buffer_length"`
	} `mapstructure:"builder"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

var (
	cfgFile string //nolint:gochecknoglobals // CLI flag variable
	verbose bool   //nolint:gochecknoglobals // CLI flag variable
	quiet   bool   //nolint:gochecknoglobals // CLI flag variable
)

// NewRootCommand builds the syntree-demo root command and wires its
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "syntree-demo",
		Short: "syntree-demo exercises the syntree package end to end",
		Long: `syntree-demo parses source files into syntree.Tree values, diffs two
revisions of a file reusing unchanged subtrees, and reports structural
statistics about the trees it builds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./syntree-demo.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newDiffCommand())
	rootCmd.AddCommand(newStatsCommand())

	return rootCmd
}

// loadConfig loads syntree-demo's configuration from file and environment
// variables, matching pkg/config's viper wiring.
func loadConfig() (*Config, error) {
	viperCfg := viper.New()

	viperCfg.SetDefault("parser.language", "go")
	viperCfg.SetDefault("builder.max_buffer_length", 0)
	viperCfg.SetDefault("logging.level", "info")

	if cfgFile != "" {
		viperCfg.SetConfigFile(cfgFile)
	} else {
		viperCfg.SetConfigName("syntree-demo")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix("SYNTREE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config file: %w", readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// newLogger returns a slog.Logger honoring the --verbose/--quiet flags,
// matching cmd/codefang's verbosity convention.
func newLogger() *slog.Logger {
	level := slog.LevelInfo

	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	return slog.New(handler)
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/poolkit/internal/contract"
	"github.com/joshuapare/poolkit/internal/logger"
	"github.com/joshuapare/poolkit/mem/pool"
	"github.com/joshuapare/poolkit/pkg/report"
)

// envPrefix prefixes every configuration key read from the environment,
// e.g. POOLCTL_BLOCK_SIZE.
const envPrefix = "POOLCTL"

var (
	cfgFile string

	// cfg is rebuilt for every execution from flags, env and the config file.
	cfg = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Simulate fixed-block pools and inspect pool snapshots",
	Long: `poolctl drives a fixed-block pool allocator from a small step script,
prints its accounting and block map, and saves or inspects pool snapshots.

Configuration comes from flags, POOLCTL_* environment variables and an
optional YAML file (--config, default .poolctl.yaml in the working directory).`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig(cmd) },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .poolctl.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "enable logging at debug, info, warn or error")
	rootCmd.PersistentFlags().String("contract", "error", "contract violations: error or panic")
	rootCmd.PersistentFlags().String("lang", "en", "language tag for number formatting")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("yaml", false, "output in YAML format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig binds the command's flags, POOLCTL_* env vars and the config
// file into a fresh cfg, then applies the logging settings.
func loadConfig(cmd *cobra.Command) error {
	cfg = viper.New()
	if err := cfg.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	cfg.AutomaticEnv()

	if cfgFile != "" {
		cfg.SetConfigFile(cfgFile)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		cfg.AddConfigPath(".")
		cfg.SetConfigName(".poolctl")
		cfg.SetConfigType("yaml")
		if err := cfg.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}

	if cfg.GetBool("json") && cfg.GetBool("yaml") {
		return errors.New("--json and --yaml are mutually exclusive")
	}

	if lvl := cfg.GetString("log-level"); lvl != "" {
		level, err := logger.ParseLevel(lvl)
		if err != nil {
			return err
		}
		return logger.Init(logger.Options{Enabled: true, Level: level})
	}
	if err := logger.Init(logger.Options{}); err != nil {
		return err
	}
	// no level configured for poolctl, fall back to POOLKIT_LOG
	return logger.FromEnv()
}

// poolOptions returns the pool options selected by the configuration.
func poolOptions() ([]pool.Option, error) {
	mode, err := contract.ParseMode(cfg.GetString("contract"))
	if err != nil {
		return nil, err
	}
	return []pool.Option{pool.WithPolicy(mode), pool.WithLogger(logger.L)}, nil
}

// writeReport prints r as text, JSON or YAML depending on the output flags.
func writeReport(w io.Writer, r report.Report) error {
	switch {
	case cfg.GetBool("json"):
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case cfg.GetBool("yaml"):
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	tag, err := language.Parse(cfg.GetString("lang"))
	if err != nil {
		return fmt.Errorf("invalid --lang: %w", err)
	}
	return r.WriteText(w, tag)
}

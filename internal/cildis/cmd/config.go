package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
)

// Output formats.
const (
	formatListing = "listing"
	formatTree    = "tree"
	formatJSON    = "json"
	formatReport  = "report"
)

var formats = []string{formatListing, formatTree, formatJSON, formatReport}

// Config represents configuration for the cildis tool
type Config struct {
	Debug   bool   `json:"debug,omitempty" jsonschema:"title=Debug,description=Enable debug logging"`
	Workers int    `json:"workers,omitempty" jsonschema:"title=Workers,description=Methods decoded in parallel,minimum=0"`
	MaxSize int    `json:"maxSize,omitempty" jsonschema:"title=Max Size,description=Bytes decoded from the start offset (0 for no limit),minimum=0"`
	NoColor bool   `json:"noColor,omitempty" jsonschema:"title=No Color,description=Disable coloured output"`
	Format  string `json:"format,omitempty" jsonschema:"title=Format,description=Output format,enum=listing,enum=tree,enum=json,enum=report"`
}

// DefaultConfig returns the settings used when neither a file nor flags say otherwise.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
		Format:  formatListing,
	}
}

// LoadConfig reads a JSON config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no command can honour.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("max size must not be negative, got %d", c.MaxSize)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("unknown format %q, want one of %v", c.Format, formats)
	}
	return nil
}

// resolveConfig loads --config when given, then applies every flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	cfg := DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Lookup("max-size") != nil && flags.Changed("max-size") {
		cfg.MaxSize, _ = flags.GetInt("max-size")
	}
	for _, f := range []string{formatTree, formatJSON, formatReport} {
		if flags.Lookup(f) == nil {
			continue
		}
		if on, _ := flags.GetBool(f); on {
			cfg.Format = f
		}
	}
	return cfg, cfg.Validate()
}

type configKey struct{}

func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(Config); ok {
			return cfg
		}
	}
	return DefaultConfig()
}

// addFormatFlags registers the mutually exclusive output format switches.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(formatTree, false, "Print blocks as a tree")
	cmd.Flags().BoolP(formatJSON, "j", false, "Output results as JSON")
	cmd.Flags().Bool(formatReport, false, "Print a markdown report with statistics and findings")
	cmd.MarkFlagsMutuallyExclusive(formatTree, formatJSON, formatReport)
}

// Package config loads and validates runtime configuration. Values are
// layered: built-in defaults, then an optional YAML file, then CARDGENIE_
// environment variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/rishabhcli/CardGenie-sub007/internal/highlight"
	"github.com/rishabhcli/CardGenie-sub007/internal/schedule"
)

// envPrefix namespaces the environment variables this process reads.
const envPrefix = "CARDGENIE_"

// Config is the full runtime configuration.
type Config struct {
	HTTPAddr string `koanf:"http_addr" validate:"required"`
	DBPath   string `koanf:"db_path" validate:"required"`
	ReposDir string `koanf:"repos_dir" validate:"required"`

	// TargetMasteryPercent is the deck mastery considered study-ready;
	// mastery reporting is scaled as progress toward it.
	TargetMasteryPercent float64 `koanf:"target_mastery_percent" validate:"gte=0,lte=100"`
	MasteryCeilingDays   int     `koanf:"mastery_ceiling_days" validate:"gte=1"`

	Scorer highlight.Config `koanf:"scorer"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:             ":8484",
		DBPath:               "cardgenie.db",
		ReposDir:             "repos",
		TargetMasteryPercent: 80,
		MasteryCeilingDays:   schedule.DefaultMasteryCeilingDays,
		Scorer:               highlight.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// non-empty and present), CARDGENIE_ environment variables, and finally the
// given flag set. The result is validated before being returned.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	// CARDGENIE_SCORER_ACCEPT_THRESHOLD → scorer.accept_threshold. Only
	// the section separator becomes a dot; key names keep their
	// underscores.
	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			for _, section := range []string{"scorer_"} {
				if strings.HasPrefix(key, section) {
					key = strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
					break
				}
			}
			return key, value
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		err := k.Load(posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		}), nil)
		if err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct-level constraints and the cross-field
// invariants the scorer depends on.
func Validate(cfg Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Signal-free prose must never pass the acceptance threshold.
	if cfg.Scorer.BaseConfidence > cfg.Scorer.AcceptThreshold {
		return fmt.Errorf("invalid configuration: base confidence %.2f exceeds accept threshold %.2f",
			cfg.Scorer.BaseConfidence, cfg.Scorer.AcceptThreshold)
	}
	if cfg.Scorer.AcceptThreshold >= cfg.Scorer.ConfidenceCap {
		return fmt.Errorf("invalid configuration: accept threshold %.2f must be below the confidence cap %.2f",
			cfg.Scorer.AcceptThreshold, cfg.Scorer.ConfidenceCap)
	}
	return nil
}

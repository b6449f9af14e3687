package bpr

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/borbamartin/behave-parallel-runner/flags"
)

// Profile is an optional YAML file supplying run settings. Flags set on the
// command line take precedence over profile values.
type Profile struct {
	Tags            []string `yaml:"tags"`
	Features        []string `yaml:"features"`
	MaxWorkers      int      `yaml:"max_workers"`
	CommandTemplate string   `yaml:"command_template"`
}

// Config holds the application configuration
type Config struct {
	Tags            string        // unified tag filter, passed verbatim into the command template
	FeatureArgs     []string      // feature file/directory arguments, in submission order
	MaxWorkers      int           // concurrency ceiling
	CommandTemplate string        // command line template with two substitution points
	PollInterval    time.Duration // delay between completion-detection polling passes
	Strict          bool          // propagate feature failures to the process exit code
	Log             log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	cfg := &Config{
		Tags:            unifyTags(ctx.StringSlice(flags.Tags.Name)),
		FeatureArgs:     ctx.Args().Slice(),
		MaxWorkers:      ctx.Int(flags.MaxWorkers.Name),
		CommandTemplate: ctx.String(flags.CommandTemplate.Name),
		PollInterval:    ctx.Duration(flags.PollInterval.Name),
		Strict:          ctx.Bool(flags.Strict.Name),
		Log:             log,
	}

	if profilePath := ctx.String(flags.Profile.Name); profilePath != "" {
		profile, err := loadProfile(profilePath)
		if err != nil {
			return nil, err
		}
		applyProfile(cfg, ctx, profile)
	}

	if len(cfg.FeatureArgs) == 0 {
		return nil, errors.New("feature file/directory path not specified")
	}
	if cfg.MaxWorkers <= 0 {
		return nil, fmt.Errorf("max workers must be positive, got %d", cfg.MaxWorkers)
	}
	if strings.Count(cfg.CommandTemplate, "%s") != 2 {
		return nil, fmt.Errorf("command template must contain exactly two substitution points: %q", cfg.CommandTemplate)
	}

	return cfg, nil
}

// loadProfile reads and parses a YAML profile file.
func loadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %q: %w", path, err)
	}
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %q: %w", path, err)
	}
	return &profile, nil
}

// applyProfile fills config values the command line did not set explicitly.
func applyProfile(cfg *Config, ctx *cli.Context, profile *Profile) {
	if len(profile.Tags) > 0 && !ctx.IsSet(flags.Tags.Name) {
		cfg.Tags = unifyTags(profile.Tags)
	}
	if len(profile.Features) > 0 && len(cfg.FeatureArgs) == 0 {
		cfg.FeatureArgs = profile.Features
	}
	if profile.MaxWorkers > 0 && !ctx.IsSet(flags.MaxWorkers.Name) {
		cfg.MaxWorkers = profile.MaxWorkers
	}
	if profile.CommandTemplate != "" && !ctx.IsSet(flags.CommandTemplate.Name) {
		cfg.CommandTemplate = profile.CommandTemplate
	}
}

// unifyTags converts the tag values to the single opaque filter string handed
// to the command template. Each value becomes one '--tags=' argument.
func unifyTags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "--tags=") {
			tag = "--tags=" + tag
		}
		parts = append(parts, tag)
	}
	return strings.Join(parts, " ")
}

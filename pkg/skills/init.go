package skills

import (
	"context"

	"github.com/jingkaihe/skillreg/pkg/config"
)

// OptionsFromConfig translates the skills section of the configuration
// into registry options.
func OptionsFromConfig(cfg config.SkillsConfig) []Option {
	opts := []Option{}
	if len(cfg.Extensions) > 0 {
		opts = append(opts, WithExtensions(cfg.Extensions...))
	}
	if len(cfg.Exclude) > 0 {
		opts = append(opts, WithExclude(cfg.Exclude...))
	}
	if len(cfg.Allowed) > 0 {
		opts = append(opts, WithAllowlist(cfg.Allowed...))
	}
	if cfg.SkillFile != "" {
		opts = append(opts, WithSkillFileName(cfg.SkillFile))
	}
	if cfg.Concurrency > 0 {
		opts = append(opts, WithConcurrency(cfg.Concurrency))
	}
	return opts
}

// Initialize creates a registry from the configuration and loads the
// configured directory into it.
func Initialize(ctx context.Context, cfg config.SkillsConfig) (*Registry, error) {
	registry, err := NewRegistry(OptionsFromConfig(cfg)...)
	if err != nil {
		return nil, err
	}
	if err := registry.Load(ctx, cfg.Dir); err != nil {
		return nil, err
	}
	return registry, nil
}

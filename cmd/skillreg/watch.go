package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/jingkaihe/skillreg/pkg/presenter"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	ShowDiff bool
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		ShowDiff: false,
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the skills directory whenever it changes",
	Long: `Load the skills directory, then watch it and reload on every change, printing
which skills were added, removed or modified. A change that leaves the directory
invalid is reported and the previously loaded skills are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		watchConfig := getWatchConfigFromFlags(cmd)
		return errors.Wrap(runWatchCommand(cmd.Context(), cfg, watchConfig, presenter.New()), "failed to watch skills")
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().Bool("diff", defaults.ShowDiff, "Print a unified diff of modified skill bodies")
	watchCmd.Flags().Int("debounce", 300, "Milliseconds to wait for changes to settle before reloading")

	viper.BindPFlag("watch.debounce_ms", watchCmd.Flags().Lookup("debounce"))
}

// getWatchConfigFromFlags extracts watch configuration from command flags
func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()

	if showDiff, err := cmd.Flags().GetBool("diff"); err == nil {
		config.ShowDiff = showDiff
	}

	return config
}

func runWatchCommand(ctx context.Context, cfg config.Config, watchConfig *WatchConfig, out presenter.Presenter) error {
	registry, err := skills.Initialize(ctx, cfg.Skills)
	if err != nil {
		return err
	}

	out.Info(fmt.Sprintf("Loaded %d skills from %s, watching for changes", registry.Len(), cfg.Skills.Dir))

	watcher := skills.NewWatcher(registry, cfg.Skills.Dir,
		skills.WithDebounce(watchDebounce(cfg)),
		skills.OnReload(func(_ context.Context, changes skills.Changes, before, after *skills.Snapshot) {
			reportChanges(out, changes, before, after, watchConfig.ShowDiff)
		}),
		skills.OnError(func(_ context.Context, err error) {
			out.Error(err, "reload failed, keeping previous skills")
		}),
	)

	return watcher.Run(ctx)
}

func watchDebounce(cfg config.Config) time.Duration {
	return time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
}

// reportChanges prints the outcome of a reload
func reportChanges(out presenter.Presenter, changes skills.Changes, before, after *skills.Snapshot, showDiff bool) {
	if changes.Empty() {
		return
	}

	out.Success(fmt.Sprintf("Reloaded %d skills (%s)", after.Len(), changes))

	if !showDiff {
		return
	}
	for _, name := range changes.Modified {
		prev, _ := before.Get(name)
		next, _ := after.Get(name)
		diff := skills.UnifiedDiff(prev, next)
		if diff == "" {
			continue
		}
		out.Section(name)
		out.Info(diff)
	}
}

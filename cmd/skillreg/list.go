package main

import (
	"context"
	"fmt"

	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/jingkaihe/skillreg/pkg/presenter"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ListConfig holds configuration for the list command
type ListConfig struct {
	JSON bool
}

// NewListConfig creates a new ListConfig with default values
func NewListConfig() *ListConfig {
	return &ListConfig{
		JSON: false,
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills in the skills directory",
	Long:  `Load the skills directory and list every skill with its name, path and description.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		listConfig := getListConfigFromFlags(cmd)
		return errors.Wrap(runListCommand(cmd.Context(), cfg, listConfig, presenter.New()), "failed to list skills")
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().Bool("json", defaults.JSON, "Output skills as JSON")
}

// getListConfigFromFlags extracts list configuration from command flags
func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()

	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}

	return config
}

func runListCommand(ctx context.Context, cfg config.Config, listConfig *ListConfig, out presenter.Presenter) error {
	registry, err := skills.Initialize(ctx, cfg.Skills)
	if err != nil {
		return err
	}

	summaries := registry.Snapshot().Summaries()

	if listConfig.JSON {
		return out.JSON(summaries)
	}

	if len(summaries) == 0 {
		out.Info(fmt.Sprintf("No skills found in %s", cfg.Skills.Dir))
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, []string{
			summary.Name,
			summary.Path,
			presenter.Truncate(summary.Description, 60),
		})
	}
	out.Table([]string{"NAME", "PATH", "DESCRIPTION"}, rows)
	return nil
}

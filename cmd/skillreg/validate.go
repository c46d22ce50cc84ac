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

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the skills directory for malformed headers and duplicate names",
	Long: `Scan the skills directory and report every malformed header and duplicate
skill name at once. Exits with status 1 if any problem is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		return errors.Wrap(runValidateCommand(cmd.Context(), cfg, presenter.New()), "validation failed")
	},
}

func runValidateCommand(ctx context.Context, cfg config.Config, out presenter.Presenter) error {
	err := skills.Validate(ctx, cfg.Skills.Dir, skills.OptionsFromConfig(cfg.Skills)...)
	if err == nil {
		out.Success(fmt.Sprintf("Skills in %s are valid", cfg.Skills.Dir))
		return nil
	}

	problems := skills.Problems(err)
	for _, problem := range problems {
		out.Error(problem, "")
	}
	if len(problems) == 1 {
		return errors.New("found 1 problem")
	}
	return errors.Errorf("found %d problems", len(problems))
}

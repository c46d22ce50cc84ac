package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// GetConfig holds configuration for the get command
type GetConfig struct {
	Format string
}

// NewGetConfig creates a new GetConfig with default values
func NewGetConfig() *GetConfig {
	return &GetConfig{
		Format: "markdown",
	}
}

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a single skill",
	Long: `Load the skills directory and print the skill with the given name.

Formats:
  markdown  the skill body as written (default)
  json      the skill with its header fields and outline
  html      the body rendered to HTML
  outline   the headings of the body`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		getConfig := getGetConfigFromFlags(cmd)
		return errors.Wrap(runGetCommand(cmd.Context(), cfg, getConfig, args[0], os.Stdout), "failed to get skill")
	},
}

func init() {
	defaults := NewGetConfig()
	getCmd.Flags().StringP("format", "f", defaults.Format, "Output format (markdown, json, html, outline)")
}

// getGetConfigFromFlags extracts get configuration from command flags
func getGetConfigFromFlags(cmd *cobra.Command) *GetConfig {
	config := NewGetConfig()

	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}

	return config
}

func runGetCommand(ctx context.Context, cfg config.Config, getConfig *GetConfig, name string, w io.Writer) error {
	registry, err := skills.Initialize(ctx, cfg.Skills)
	if err != nil {
		return err
	}

	skill, err := registry.Get(name)
	if err != nil {
		return err
	}

	switch getConfig.Format {
	case "markdown", "md":
		_, err = io.WriteString(w, skill.Body)
		if err == nil && !strings.HasSuffix(skill.Body, "\n") {
			_, err = io.WriteString(w, "\n")
		}
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(skill.Detail())
	case "html":
		html, err := skills.RenderHTML(skill)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	case "outline":
		for _, heading := range skills.Outline(skill) {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", heading.Level-1), heading.Text)
		}
		return nil
	default:
		return errors.Errorf("unsupported format '%s', must be one of: markdown, json, html, outline", getConfig.Format)
	}
}

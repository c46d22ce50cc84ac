package main

import (
	"context"
	"os"

	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/jingkaihe/skillreg/pkg/mcpserver"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the skills directory as MCP tools over stdio",
	Long: `Load the skills directory and run a Model Context Protocol server on stdin and
stdout, exposing the list_skills, get_skill and reload_skills tools. Logs are
written to stderr so they never interleave with protocol messages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		return errors.Wrap(runMCPCommand(cmd.Context(), cfg), "MCP server failed")
	},
}

func runMCPCommand(ctx context.Context, cfg config.Config) error {
	logger.SetLogOutput(os.Stderr)

	registry, err := skills.Initialize(ctx, cfg.Skills)
	if err != nil {
		return err
	}

	return mcpserver.NewMCPServer(registry).Serve(ctx, os.Stdin, os.Stdout)
}

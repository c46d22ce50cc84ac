// Package mcpserver exposes a skill registry as Model Context Protocol
// tools so agents can discover and read skills over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/jingkaihe/skillreg/pkg/version"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the implementation name reported to MCP clients
const ServerName = "skillreg"

// MCPServer wraps a registry to provide MCP tool access
type MCPServer struct {
	registry *skills.Registry
	server   *server.MCPServer
}

// NewMCPServer creates a new MCP server backed by registry
func NewMCPServer(registry *skills.Registry) *MCPServer {
	s := &MCPServer{
		registry: registry,
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version.Get().Version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.server = mcpServer
	return s
}

func (s *MCPServer) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("list_skills",
			mcp.WithDescription("List available skills with their names and descriptions. Use it to find a skill relevant to the current task."),
		),
		s.handleListSkills,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_skill",
			mcp.WithDescription("Get the full instructions of a skill by name."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Skill name as returned by list_skills"),
			),
		),
		s.handleGetSkill,
	)

	mcpServer.AddTool(
		mcp.NewTool("reload_skills",
			mcp.WithDescription("Reload skills from the source directory. The previous skills stay available if the directory is invalid."),
		),
		s.handleReloadSkills,
	)
}

func (s *MCPServer) handleListSkills(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries := s.registry.Snapshot().Summaries()
	if len(summaries) == 0 {
		return mcp.NewToolResultText("No skills available."), nil
	}

	var sb strings.Builder
	for _, summary := range summaries {
		if summary.Description == "" {
			fmt.Fprintf(&sb, "- %s\n", summary.Name)
		} else {
			fmt.Fprintf(&sb, "- %s: %s\n", summary.Name, summary.Description)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *MCPServer) handleGetSkill(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	skill, err := s.registry.Get(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSkill(skill)), nil
}

func (s *MCPServer) handleReloadSkills(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	after, changes, err := s.registry.ReloadChanges(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reload failed: %v", err)), nil
	}

	result := map[string]any{
		"total":      after.Len(),
		"generation": after.ID(),
		"changes":    changes,
	}
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal reload result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func formatSkill(skill *skills.Skill) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Skill: %s\n\n", skill.Name)
	if skill.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", skill.Description)
	}
	fmt.Fprintf(&sb, "Directory: %s\n\n", skill.Directory)
	sb.WriteString(skill.Body)
	return sb.String()
}

// Serve runs the MCP server over the given streams until ctx is done
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.G(ctx).WithField("skills", s.registry.Len()).Info("Starting MCP server on stdio")
	return server.NewStdioServer(s.server).Listen(ctx, in, out)
}

package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) (*skills.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\nname: a\ndescription: first\n---\nbody A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("body B"), 0o644))

	registry, err := skills.NewRegistry()
	require.NoError(t, err)
	require.NoError(t, registry.Load(context.Background(), dir))
	return registry, dir
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewMCPServer_RegistersTools(t *testing.T) {
	registry, _ := setupRegistry(t)
	s := NewMCPServer(registry)

	tools := s.server.ListTools()
	assert.Len(t, tools, 3)
	assert.Contains(t, tools, "list_skills")
	assert.Contains(t, tools, "get_skill")
	assert.Contains(t, tools, "reload_skills")
}

func TestHandleListSkills(t *testing.T) {
	registry, _ := setupRegistry(t)
	s := NewMCPServer(registry)

	result, err := s.handleListSkills(context.Background(), callTool("list_skills", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "- a: first\n- b\n", resultText(t, result))
}

func TestHandleListSkills_Empty(t *testing.T) {
	registry, err := skills.NewRegistry()
	require.NoError(t, err)
	s := NewMCPServer(registry)

	result, err := s.handleListSkills(context.Background(), callTool("list_skills", nil))
	require.NoError(t, err)
	assert.Equal(t, "No skills available.", resultText(t, result))
}

func TestHandleGetSkill(t *testing.T) {
	registry, dir := setupRegistry(t)
	s := NewMCPServer(registry)

	tests := []struct {
		name     string
		args     map[string]any
		isError  bool
		contains []string
	}{
		{
			name:     "found",
			args:     map[string]any{"name": "a"},
			contains: []string{"# Skill: a", "first", "Directory: " + dir, "body A"},
		},
		{
			name:     "not found",
			args:     map[string]any{"name": "missing"},
			isError:  true,
			contains: []string{"skill 'missing' not found"},
		},
		{
			name:     "missing name",
			args:     map[string]any{},
			isError:  true,
			contains: []string{"name parameter is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleGetSkill(context.Background(), callTool("get_skill", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, result.IsError)

			text := resultText(t, result)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
		})
	}
}

func TestHandleReloadSkills(t *testing.T) {
	registry, dir := setupRegistry(t)
	s := NewMCPServer(registry)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.md"), []byte("body C"), 0o644))

	result, err := s.handleReloadSkills(context.Background(), callTool("reload_skills", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"total": 3`)
	assert.Contains(t, text, `"added": [`)
	assert.Equal(t, []string{"a", "b", "c"}, registry.Names())
}

func TestHandleReloadSkills_KeepsPreviousOnError(t *testing.T) {
	registry, dir := setupRegistry(t)
	s := NewMCPServer(registry)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.md"), []byte("---\nname: a\n---\nclash"), 0o644))

	result, err := s.handleReloadSkills(context.Background(), callTool("reload_skills", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "duplicate skill identifier 'a'")
	assert.Equal(t, []string{"a", "b"}, registry.Names())
}

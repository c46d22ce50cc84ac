package skills

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutline(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []Heading
	}{
		{
			name:     "no headings",
			body:     "just a paragraph",
			expected: []Heading{},
		},
		{
			name: "nested headings",
			body: "# Deploy\n\nintro\n\n## Prerequisites\n\n### Access\n\n## Steps\n",
			expected: []Heading{
				{Level: 1, Text: "Deploy"},
				{Level: 2, Text: "Prerequisites"},
				{Level: 3, Text: "Access"},
				{Level: 2, Text: "Steps"},
			},
		},
		{
			name: "inline markup is flattened",
			body: "# Run `make release` **carefully**\n",
			expected: []Heading{
				{Level: 1, Text: "Run make release carefully"},
			},
		},
		{
			name: "setext headings",
			body: "Overview\n========\n\nDetails\n-------\n",
			expected: []Heading{
				{Level: 1, Text: "Overview"},
				{Level: 2, Text: "Details"},
			},
		},
		{
			name:     "headings inside code blocks are ignored",
			body:     "```\n# not a heading\n```\n",
			expected: []Heading{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Outline(&Skill{Body: tt.body}))
		})
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(&Skill{Name: "a", Body: "# Title\n\nSome *emphasis*.\n"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Title</h1>\n<p>Some <em>emphasis</em>.</p>\n", html)
}

func TestHeaderSchema(t *testing.T) {
	schema := HeaderSchema()
	assert.Equal(t, "Skill header", schema.Title)

	data, err := json.Marshal(schema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "object", decoded["type"])

	properties, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, properties, 2)

	name, ok := properties["name"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", name["type"])
	assert.Contains(t, name["description"], "Unique skill identifier")

	assert.NotEqual(t, false, decoded["additionalProperties"])
}

func TestSkillViews(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "deploy/SKILL.md", "---\ndescription: ship it\nowner: platform\n---\n# Deploy\n")

	registry := newLoadedRegistry(t, dir)
	skill, err := registry.Get("deploy")
	require.NoError(t, err)

	assert.Equal(t, Summary{Name: "deploy", Description: "ship it", Path: skill.Path}, skill.Summary())

	detail := skill.Detail()
	assert.Equal(t, "deploy", detail.Name)
	assert.Equal(t, skill.Directory, detail.Directory)
	assert.True(t, detail.HasHeader)
	assert.Equal(t, map[string]string{"owner": "platform"}, detail.Extra)
	assert.Equal(t, []Heading{{Level: 1, Text: "Deploy"}}, detail.Outline)
	assert.Equal(t, "# Deploy\n", detail.Body)

	assert.Equal(t, []Summary{skill.Summary()}, registry.Snapshot().Summaries())

	var unloaded *Snapshot
	assert.Equal(t, []Summary{}, unloaded.Summaries())
}

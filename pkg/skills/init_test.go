package skills

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "keep.md", "keep")
	writeSkillFile(t, dir, "other.md", "other")
	writeSkillFile(t, dir, "tool/GUIDE.txt", "guide")
	writeSkillFile(t, dir, "skip/SKILL.md", "skipped")

	registry, err := Initialize(context.Background(), config.SkillsConfig{
		Dir:         dir,
		Extensions:  []string{".md", ".txt"},
		Exclude:     []string{"skip"},
		Allowed:     []string{"keep", "tool"},
		SkillFile:   "GUIDE.txt",
		Concurrency: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, dir, registry.Source())
	assert.Equal(t, []string{"keep", "tool"}, registry.Names())
}

func TestInitialize_Errors(t *testing.T) {
	_, err := Initialize(context.Background(), config.SkillsConfig{
		Dir:     t.TempDir(),
		Exclude: []string{"[bad"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")

	_, err = Initialize(context.Background(), config.SkillsConfig{Dir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	assert.Empty(t, OptionsFromConfig(config.SkillsConfig{}))
	assert.Len(t, OptionsFromConfig(config.SkillsConfig{
		Extensions:  []string{".md"},
		Exclude:     []string{"x"},
		Allowed:     []string{"y"},
		SkillFile:   "SKILL.md",
		Concurrency: 1,
	}), 5)
}

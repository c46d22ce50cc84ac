package skills

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Clean(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "---\nname: a\n---\n")
	writeSkillFile(t, dir, "b/SKILL.md", "b")

	assert.NoError(t, Validate(context.Background(), dir))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "a")
	writeSkillFile(t, dir, "b.md", "---\nname: a\n---\n")
	writeSkillFile(t, dir, "c.md", "---\nname: c\n")
	writeSkillFile(t, dir, "d.md", "---\nbad line\n---\n")
	writeSkillFile(t, dir, "e.md", "---\nname: a\n---\n")

	err := Validate(context.Background(), dir)
	require.Error(t, err)

	problems := Problems(err)
	require.Len(t, problems, 4)

	var dup *DuplicateIdentifierError
	require.True(t, errors.As(problems[0], &dup))
	assert.Equal(t, filepath.Join(dir, "a.md"), dup.FirstPath)
	assert.Equal(t, filepath.Join(dir, "b.md"), dup.SecondPath)

	assert.True(t, IsMalformedHeader(problems[1]))
	assert.Contains(t, problems[1].Error(), "c.md")

	var malformed *MalformedHeaderError
	require.True(t, errors.As(problems[2], &malformed))
	assert.Equal(t, 2, malformed.Line)

	require.True(t, errors.As(problems[3], &dup))
	assert.Equal(t, filepath.Join(dir, "e.md"), dup.SecondPath)

	assert.Contains(t, err.Error(), "4 errors occurred")
}

func TestValidate_DoesNotTouchRegistry(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "a")
	registry := newLoadedRegistry(t, dir)
	prior := registry.Snapshot()

	writeSkillFile(t, dir, "b.md", "---\nname: a\n---\n")
	require.Error(t, Validate(context.Background(), dir))

	assert.Same(t, prior, registry.Snapshot())
}

func TestValidate_Options(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.md", "a")
	writeSkillFile(t, dir, "drafts/SKILL.md", "---\nname: a\n---\n")

	assert.Error(t, Validate(context.Background(), dir))
	assert.NoError(t, Validate(context.Background(), dir, WithExclude("drafts")))

	err := Validate(context.Background(), dir, WithConcurrency(-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency must be at least 1")
}

func TestValidate_MissingDirectory(t *testing.T) {
	err := Validate(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	problems := Problems(err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Error(), "failed to read skills directory")
}

func TestProblems_Nil(t *testing.T) {
	assert.Nil(t, Problems(nil))
}

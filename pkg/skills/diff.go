package skills

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

// Changes describes how one snapshot differs from another
type Changes struct {
	Added    []string `json:"added,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Modified []string `json:"modified,omitempty"`
}

// Empty reports whether the snapshots hold the same skills
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

func (c Changes) String() string {
	if c.Empty() {
		return "no changes"
	}
	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("added: %s", strings.Join(c.Added, ", ")))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("removed: %s", strings.Join(c.Removed, ", ")))
	}
	if len(c.Modified) > 0 {
		parts = append(parts, fmt.Sprintf("modified: %s", strings.Join(c.Modified, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Diff compares two snapshots by identifier. Either side may be nil.
func Diff(before, after *Snapshot) Changes {
	var changes Changes

	for skill := range after.All() {
		prev, ok := before.Get(skill.Name)
		switch {
		case !ok:
			changes.Added = append(changes.Added, skill.Name)
		case !prev.equal(skill):
			changes.Modified = append(changes.Modified, skill.Name)
		}
	}
	for skill := range before.All() {
		if _, ok := after.Get(skill.Name); !ok {
			changes.Removed = append(changes.Removed, skill.Name)
		}
	}

	sort.Strings(changes.Added)
	sort.Strings(changes.Removed)
	sort.Strings(changes.Modified)
	return changes
}

// UnifiedDiff renders the body change between two versions of a skill.
// Either side may be nil.
func UnifiedDiff(before, after *Skill) string {
	var beforeLabel, beforeBody, afterLabel, afterBody string
	if before != nil {
		beforeLabel, beforeBody = before.Path, before.Body
	}
	if after != nil {
		afterLabel, afterBody = after.Path, after.Body
	}
	return udiff.Unified(beforeLabel, afterLabel, beforeBody, afterBody)
}

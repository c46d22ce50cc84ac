// Package skills provides a registry of skill documents. A skill is a text
// file, usually markdown, with an optional header block delimited by "---"
// marker lines holding line-oriented key: value pairs. Skills are laid out
// either as flat files in a directory or as one level of skill directories,
// each holding a SKILL.md (or a single document file).
//
// A Registry loads a directory into an immutable Snapshot and swaps it in
// atomically, so concurrent readers never observe a partially loaded set.
package skills

import (
	"maps"
	"slices"
)

// Skill represents a loaded skill document. Skills held by a Snapshot are
// shared by every reader and must not be modified; Registry.Get and
// Registry.List hand out copies.
type Skill struct {
	Name        string // Unique identifier, from the name header or derived from the file name
	Description string // Optional short description from the header
	Body        string // Document content after the header block
	Path        string // Full path to the source document
	Directory   string // Directory holding the document
	HasHeader   bool   // Whether the document carried a header block

	extraKeys []string
	extra     map[string]string
}

// Header is the validated header record of a skill document.
type Header struct {
	Name        string            `mapstructure:"name" json:"name,omitempty" jsonschema:"description=Unique skill identifier. Defaults to the file or directory name"`
	Description string            `mapstructure:"description" json:"description,omitempty" jsonschema:"description=Short human readable summary of the skill"`
	Extra       map[string]string `mapstructure:",remain" json:"-"`
}

// Extra returns a copy of the header keys that are not interpreted by the
// registry.
func (s *Skill) Extra() map[string]string {
	if len(s.extra) == 0 {
		return map[string]string{}
	}
	return maps.Clone(s.extra)
}

// ExtraKeys returns the uninterpreted header keys in the order they appear
// in the document.
func (s *Skill) ExtraKeys() []string {
	return slices.Clone(s.extraKeys)
}

// clone returns a copy that callers may modify. The extra key list and map
// are only reachable through copying accessors, so they are shared.
func (s *Skill) clone() *Skill {
	c := *s
	return &c
}

// equal reports whether two skills carry the same content and origin.
func (s *Skill) equal(o *Skill) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Name == o.Name &&
		s.Description == o.Description &&
		s.Body == o.Body &&
		s.Path == o.Path &&
		s.HasHeader == o.HasHeader &&
		maps.Equal(s.extra, o.extra)
}

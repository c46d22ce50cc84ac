package skills

import (
	"iter"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

// Snapshot is an immutable, ordered set of skills loaded from one directory.
// A nil Snapshot is the empty, unloaded set.
type Snapshot struct {
	id       string
	source   string
	loadedAt time.Time
	skills   []*Skill
	index    map[string]*Skill
}

// buildSnapshot indexes docs in order. Duplicates are checked across every
// document before the allowlist is applied.
func buildSnapshot(source string, docs []*Skill, allowlist []glob.Glob) (*Snapshot, error) {
	seen := make(map[string]*Skill, len(docs))
	for _, doc := range docs {
		if first, exists := seen[doc.Name]; exists {
			return nil, &DuplicateIdentifierError{
				Identifier: doc.Name,
				FirstPath:  first.Path,
				SecondPath: doc.Path,
			}
		}
		seen[doc.Name] = doc
	}

	snap := &Snapshot{
		id:       uuid.NewString(),
		source:   source,
		loadedAt: time.Now(),
		skills:   make([]*Skill, 0, len(docs)),
		index:    make(map[string]*Skill, len(docs)),
	}
	for _, doc := range docs {
		if !allowed(doc.Name, allowlist) {
			continue
		}
		snap.skills = append(snap.skills, doc)
		snap.index[doc.Name] = doc
	}

	return snap, nil
}

func allowed(name string, allowlist []glob.Glob) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, g := range allowlist {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ID returns the generation identifier of the snapshot
func (s *Snapshot) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Source returns the directory the snapshot was loaded from
func (s *Snapshot) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// LoadedAt returns when the snapshot was built
func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// Len returns the number of skills in the snapshot
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.skills)
}

// Get returns the skill with the given identifier. The skill is shared with
// every reader of the snapshot.
func (s *Snapshot) Get(name string) (*Skill, bool) {
	if s == nil {
		return nil, false
	}
	skill, ok := s.index[name]
	return skill, ok
}

// All yields the skills in directory-scan order. The sequence can be
// ranged over any number of times.
func (s *Snapshot) All() iter.Seq[*Skill] {
	return func(yield func(*Skill) bool) {
		if s == nil {
			return
		}
		for _, skill := range s.skills {
			if !yield(skill) {
				return
			}
		}
	}
}

// Names returns the skill identifiers in directory-scan order
func (s *Snapshot) Names() []string {
	names := make([]string, 0, s.Len())
	for skill := range s.All() {
		names = append(names, skill.Name)
	}
	return names
}

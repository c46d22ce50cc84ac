package skills

// Summary is the listing view of a skill
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
}

// Detail is the full view of a skill, including its body and outline
type Detail struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Path        string            `json:"path"`
	Directory   string            `json:"directory"`
	HasHeader   bool              `json:"has_header"`
	Extra       map[string]string `json:"extra"`
	Outline     []Heading         `json:"outline"`
	Body        string            `json:"body"`
}

// Summary returns the listing view of the skill
func (s *Skill) Summary() Summary {
	return Summary{
		Name:        s.Name,
		Description: s.Description,
		Path:        s.Path,
	}
}

// Detail returns the full view of the skill
func (s *Skill) Detail() Detail {
	return Detail{
		Name:        s.Name,
		Description: s.Description,
		Path:        s.Path,
		Directory:   s.Directory,
		HasHeader:   s.HasHeader,
		Extra:       s.Extra(),
		Outline:     Outline(s),
		Body:        s.Body,
	}
}

// Summaries collects the listing view of every skill in the snapshot
func (s *Snapshot) Summaries() []Summary {
	summaries := make([]Summary, 0, s.Len())
	for skill := range s.All() {
		summaries = append(summaries, skill.Summary())
	}
	return summaries
}

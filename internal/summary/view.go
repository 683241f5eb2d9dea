package summary

// DeepView is the full read projection: every section with its complete
// history and metadata, plus the legacy mirror for cross-checking. Intended
// for audit and debug consumers, not for size-constrained ones.
type DeepView struct {
	Repository    string             `json:"repository"`
	GitURL        *string            `json:"git_url,omitempty"`
	CurrentCommit *string            `json:"current_commit,omitempty"`
	SchemaVersion int                `json:"schema_version"`

	// HasSections distinguishes "sectioned but empty" from a pure legacy
	// row that has no sectioned data at all
	HasSections bool `json:"has_sections"`

	Sections map[string]Section `json:"sections,omitempty"`
	Legacy   map[string]string  `json:"legacy_mirror,omitempty"`

	UpdatedAt int64 `json:"updated_at"`
}

// Shallow derives the flat, history-free projection: section name → current
// value for every section that has ever been set. A row without sectioned
// data falls back to its non-empty legacy flat fields, so pre-migration
// repositories stay readable through the same call.
func Shallow(s *ProjectSummary) map[string]string {
	if s.SchemaVersion >= SchemaV2 && len(s.Sections) > 0 {
		view := make(map[string]string, len(s.Sections))
		for name, sec := range s.Sections {
			view[name] = sec.CurrentValue
		}
		return view
	}

	view := make(map[string]string, len(s.Legacy))
	for name, value := range s.Legacy {
		if value != "" {
			view[name] = value
		}
	}
	return view
}

// Deep derives the full projection. Read-only: the returned view shares the
// aggregate's maps and must not be mutated by callers.
func Deep(s *ProjectSummary) *DeepView {
	return &DeepView{
		Repository:    s.Repository,
		GitURL:        s.GitURL,
		CurrentCommit: s.CurrentCommit,
		SchemaVersion: s.SchemaVersion,
		HasSections:   s.SchemaVersion >= SchemaV2 && len(s.Sections) > 0,
		Sections:      s.Sections,
		Legacy:        s.Legacy,
		UpdatedAt:     s.UpdatedAt,
	}
}

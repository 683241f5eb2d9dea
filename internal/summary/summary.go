// Package summary holds the living project summary aggregate: per-repository
// section values, their append-only evolution history, and the projections
// derived from them.
package summary

// SchemaV1 marks a legacy flat-row summary with no sectioned data.
// SchemaV2 marks the sectioned model.
const (
	SchemaV1 = 1
	SchemaV2 = 2
)

// HistoryEntry records a superseded section value. Entries capture the value
// being replaced, not the final state: a section's history is the ledger of
// everything its current value has overwritten.
type HistoryEntry struct {
	// Value is the section value that was superseded
	Value string `json:"value"`

	// CommitRef is the commit the superseded value was pinned to (nullable)
	CommitRef *string `json:"commit_ref"`

	// At is the Unix timestamp the superseded value was written
	At int64 `json:"at"`

	// ChangeSummary is the caller's short description of the change that
	// superseded this value
	ChangeSummary string `json:"change_summary"`
}

// Section is one independently updatable field of the project summary.
type Section struct {
	// CurrentValue is the live value; never empty for a stored section
	CurrentValue string `json:"current_value"`

	// History is append-only, oldest first, never mutated or pruned
	History []HistoryEntry `json:"history,omitempty"`

	// LastUpdatedCommit is denormalized from the newest write (nullable)
	LastUpdatedCommit *string `json:"last_updated_commit,omitempty"`

	// LastUpdatedAt is the Unix timestamp of the newest write
	LastUpdatedAt int64 `json:"last_updated_at,omitempty"`
}

// ProjectSummary is the aggregate root, one per repository name.
type ProjectSummary struct {
	// ID is a ULID that uniquely identifies this summary
	ID string

	// Repository is the unique key, immutable after creation
	Repository string

	// GitURL is an optional descriptive field
	GitURL *string

	// CurrentCommit is the commit the summary as a whole was last pinned to
	CurrentCommit *string

	// SchemaVersion distinguishes sectioned rows (2) from legacy flat rows (1)
	SchemaVersion int

	// Sections maps section name to its current value and history.
	// A name absent from the map has never been filled.
	Sections map[string]Section

	// Legacy is the flat per-section mirror kept in lockstep with Sections
	// for readers that have not migrated to the sectioned API
	Legacy map[string]string

	// CreatedAt is the Unix timestamp when the summary was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the most recent section mutation
	UpdatedAt int64
}

// JournalEntry is an append-only dev-journal record attached to a repository.
// Recent entries are handed to the narrative normalizer as related context.
type JournalEntry struct {
	// ID is a ULID that uniquely identifies this entry
	ID string `json:"id"`

	// Repository names the repository the entry belongs to
	Repository string `json:"repository"`

	// Content is the journal text (markdown)
	Content string `json:"content"`

	// CommitRef optionally pins the entry to a commit
	CommitRef *string `json:"commit_ref,omitempty"`

	// Tags is a list of tags for categorization (stored as JSON in DB)
	Tags []string `json:"tags,omitempty"`

	// CreatedAt is the Unix timestamp when the entry was written
	CreatedAt int64 `json:"created_at"`
}

// MirrorFromSections recomputes the legacy flat mirror from the sections map.
// The mirror is a deterministic projection of the sections and is written in
// the same transaction as any section update; it is never written on its own.
func MirrorFromSections(sections map[string]Section) map[string]string {
	mirror := make(map[string]string, len(sections))
	for name, sec := range sections {
		mirror[name] = sec.CurrentValue
	}
	return mirror
}

// SectionsFromLegacy seeds a sections map from non-empty legacy mirror values.
// Used when a legacy flat row receives its first sectioned update: the old
// flat values become current section values (with empty history) so the
// update that follows supersedes them into the ledger instead of losing them.
func SectionsFromLegacy(legacy map[string]string) map[string]Section {
	sections := make(map[string]Section, len(legacy))
	for name, value := range legacy {
		if value == "" {
			continue
		}
		sections[name] = Section{CurrentValue: value}
	}
	return sections
}

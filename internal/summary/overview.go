package summary

// Overview is a summary row without section bodies or history.
// Used for browse operations (dashboard list, summary_list) to keep
// responses small.
type Overview struct {
	// ID is the ULID of the summary row
	ID string `json:"id"`

	// Repository is the unique repository name
	Repository string `json:"repository"`

	// SchemaVersion distinguishes sectioned rows from legacy flat rows
	SchemaVersion int `json:"schema_version"`

	// SectionsCount is the number of sections ever set
	SectionsCount int `json:"sections_count"`

	// CurrentCommit is the commit the summary was last pinned to (nullable)
	CurrentCommit *string `json:"current_commit,omitempty"`

	// UpdatedAt is the Unix timestamp of the most recent mutation
	UpdatedAt int64 `json:"updated_at"`
}

// Package ops implements the orchestration layer: tier validation, vocabulary
// filtering, merge precedence, and the read projections, on top of the
// transactional document store in internal/db.
package ops

import (
	"context"
	"crypto/rand"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/schema"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/summary"
)

// Pagination limits
const (
	DefaultListLimit    = 20
	MaxListLimit        = 100
	DefaultJournalLimit = 20
	MaxJournalLimit     = 200

	// recentJournalLimit bounds the related records handed to the
	// narrative normalizer.
	recentJournalLimit = 10
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Normalizer turns a free-form narrative report into section values,
// restricted to the narrative vocabulary. It receives the current aggregate
// and recent journal entries as context; implementations are best-effort and
// may ignore either. An AI-backed collaborator plugs in here.
type Normalizer interface {
	Normalize(ctx context.Context, rawReport string, current *summary.ProjectSummary, recent []summary.JournalEntry) (map[string]string, error)
}

// markdownNormalizer is the deterministic default: it carves the report
// along markdown headers, synonym-aware, and ignores the context arguments.
type markdownNormalizer struct{}

func (markdownNormalizer) Normalize(_ context.Context, rawReport string, _ *summary.ProjectSummary, _ []summary.JournalEntry) (map[string]string, error) {
	return summary.ExtractNarrative(rawReport), nil
}

// DefaultNormalizer returns the built-in markdown normalizer.
func DefaultNormalizer() Normalizer {
	return markdownNormalizer{}
}

// TruncatePreview bounds a change summary to maxChars runes before storage.
// A presentation concern: history entries carry a preview, not the full
// agent report.
func TruncatePreview(s string, maxChars int) string {
	s = strings.TrimSpace(s)
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxChars])) + "..."
}

// validateVocabulary rejects section names outside the class an operation
// accepts, listing the offending names. Nothing is partially applied.
func validateVocabulary(operation string, sections map[string]string, class schema.Class) error {
	var invalid []string
	for name := range sections {
		if schema.Classify(name) != class {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return errors.NewInvalidSections(operation, invalid)
	}
	return nil
}

// filterNonEmpty trims values and drops empties. An update never clears a
// section, so an empty value is treated as not provided.
func filterNonEmpty(sections map[string]string) map[string]string {
	out := make(map[string]string, len(sections))
	for name, value := range sections {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out[name] = trimmed
		}
	}
	return out
}

// cleanOptionalString trims a *string and nils it out when empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

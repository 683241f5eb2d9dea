package summary

import "slices"

// MergeOutcome reports what a merge touched.
type MergeOutcome struct {
	// Updated lists the section names that received a new current value,
	// in canonical (sorted) order
	Updated []string

	// HistoryAppended counts the history entries pushed across this merge
	HistoryAppended int
}

// MergeSections applies proposed values onto a sections map in place and
// returns what changed. Sections absent from proposed are left untouched;
// a merge never deletes a section.
//
// For every proposed section that already has a value, the previous value is
// pushed onto that section's history first, pinned to the previous commit ref
// and timestamp and annotated with this call's change summary. The push
// happens even when the new value is byte-identical to the old one: the
// change summary may carry meaning ("reconfirmed after audit") without a
// value change, and it keeps history length equal to the number of
// value-bearing updates.
//
// The function is pure over its inputs apart from mutating the sections map,
// so merge semantics are unit-testable without a store.
func MergeSections(sections map[string]Section, proposed map[string]string, commitRef *string, changeSummary string, at int64) MergeOutcome {
	var outcome MergeOutcome

	names := make([]string, 0, len(proposed))
	for name := range proposed {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		newValue := proposed[name]
		sec := sections[name]

		if sec.CurrentValue != "" {
			sec.History = append(sec.History, HistoryEntry{
				Value:         sec.CurrentValue,
				CommitRef:     sec.LastUpdatedCommit,
				At:            sec.LastUpdatedAt,
				ChangeSummary: changeSummary,
			})
			outcome.HistoryAppended++
		}

		sec.CurrentValue = newValue
		sec.LastUpdatedCommit = commitRef
		sec.LastUpdatedAt = at
		sections[name] = sec

		outcome.Updated = append(outcome.Updated, name)
	}

	return outcome
}

// Package schema defines the fixed section vocabulary of a project summary.
// It is pure data: membership tests over process-wide constants, nothing else.
package schema

// Class identifies which vocabulary a section name belongs to.
type Class int

const (
	Unknown Class = iota
	Technical
	Narrative
)

// String returns the lowercase class name for error messages and logs.
func (c Class) String() string {
	switch c {
	case Technical:
		return "technical"
	case Narrative:
		return "narrative"
	default:
		return "unknown"
	}
}

// technicalSections lists the technical vocabulary in canonical order.
var technicalSections = []string{
	"file_structure",
	"tech_stack",
	"patterns",
	"commands",
	"architecture",
	"frontend",
	"backend",
	"database_info",
	"services",
	"data_flow",
	"custom_tooling",
}

// narrativeSections lists the narrative vocabulary in canonical order.
var narrativeSections = []string{
	"summary",
	"purpose",
	"key_decisions",
	"technologies",
	"status",
	"extended_notes",
}

// tier1Sections is the subset of technical sections required at creation.
var tier1Sections = []string{
	"file_structure",
	"tech_stack",
	"patterns",
	"commands",
	"architecture",
}

var (
	technicalSet = toSet(technicalSections)
	narrativeSet = toSet(narrativeSections)
	tier1Set     = toSet(tier1Sections)
)

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Classify returns the vocabulary class of a section name.
func Classify(name string) Class {
	switch {
	case technicalSet[name]:
		return Technical
	case narrativeSet[name]:
		return Narrative
	default:
		return Unknown
	}
}

// IsTier1 reports whether a section is required at summary creation.
func IsTier1(name string) bool {
	return tier1Set[name]
}

// TechnicalSections returns the technical vocabulary in canonical order.
func TechnicalSections() []string {
	out := make([]string, len(technicalSections))
	copy(out, technicalSections)
	return out
}

// NarrativeSections returns the narrative vocabulary in canonical order.
func NarrativeSections() []string {
	out := make([]string, len(narrativeSections))
	copy(out, narrativeSections)
	return out
}

// Tier1Sections returns the creation-required sections in canonical order.
func Tier1Sections() []string {
	out := make([]string, len(tier1Sections))
	copy(out, tier1Sections)
	return out
}

// AllSectionNames returns every known section name, technical first,
// in canonical order. The order also fixes the column order of the
// legacy mirror in the database schema.
func AllSectionNames() []string {
	out := make([]string, 0, len(technicalSections)+len(narrativeSections))
	out = append(out, technicalSections...)
	out = append(out, narrativeSections...)
	return out
}

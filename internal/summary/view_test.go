package summary

import "testing"

func sectionedSummary() *ProjectSummary {
	sections := map[string]Section{}
	MergeSections(sections, map[string]string{
		"tech_stack": "Go 1.25, sqlite",
		"summary":    "project knowledge server",
	}, strPtr("abc"), "initial", 100)

	return &ProjectSummary{
		ID:            "01TEST",
		Repository:    "acme",
		SchemaVersion: SchemaV2,
		Sections:      sections,
		Legacy:        MirrorFromSections(sections),
		UpdatedAt:     100,
	}
}

func legacySummary() *ProjectSummary {
	return &ProjectSummary{
		ID:            "01LEGACY",
		Repository:    "oldrepo",
		SchemaVersion: SchemaV1,
		Legacy: map[string]string{
			"tech_stack": "Node 18",
			"commands":   "npm test",
			"frontend":   "",
		},
		UpdatedAt: 50,
	}
}

func TestShallow_Sectioned(t *testing.T) {
	view := Shallow(sectionedSummary())

	if len(view) != 2 {
		t.Fatalf("len(view) = %d, want 2", len(view))
	}
	if view["tech_stack"] != "Go 1.25, sqlite" {
		t.Errorf("tech_stack = %q", view["tech_stack"])
	}
	if view["summary"] != "project knowledge server" {
		t.Errorf("summary = %q", view["summary"])
	}
}

func TestShallow_LegacyFallback(t *testing.T) {
	view := Shallow(legacySummary())

	if view["tech_stack"] != "Node 18" || view["commands"] != "npm test" {
		t.Errorf("legacy fallback view = %v", view)
	}
	if _, ok := view["frontend"]; ok {
		t.Error("empty legacy field should be omitted from the shallow view")
	}
}

func TestShallowDeepConsistency(t *testing.T) {
	s := sectionedSummary()
	shallow := Shallow(s)
	deep := Deep(s)

	for name, value := range shallow {
		if deep.Sections[name].CurrentValue != value {
			t.Errorf("section %q: shallow %q != deep %q", name, value, deep.Sections[name].CurrentValue)
		}
	}
	if len(shallow) != len(deep.Sections) {
		t.Errorf("shallow has %d sections, deep has %d", len(shallow), len(deep.Sections))
	}
}

func TestDeep_Sectioned(t *testing.T) {
	deep := Deep(sectionedSummary())

	if !deep.HasSections {
		t.Error("HasSections = false, want true")
	}
	if deep.SchemaVersion != SchemaV2 {
		t.Errorf("SchemaVersion = %d, want %d", deep.SchemaVersion, SchemaV2)
	}
	if deep.Legacy["tech_stack"] != "Go 1.25, sqlite" {
		t.Error("deep view must carry the legacy mirror for cross-checking")
	}
}

func TestDeep_LegacyMarkedAsNoSectionedData(t *testing.T) {
	deep := Deep(legacySummary())

	if deep.HasSections {
		t.Error("HasSections = true for a pure legacy row, want false")
	}
	if len(deep.Sections) != 0 {
		t.Errorf("Sections = %v, want empty", deep.Sections)
	}
	if deep.Legacy["tech_stack"] != "Node 18" {
		t.Error("legacy fields missing from deep view")
	}
}

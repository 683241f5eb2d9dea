package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/config"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/errors"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/ops"
	"github.com/GuiArSt/tartarus-dev-workshop-sub001/internal/schema"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /summaries, the summary list page.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.db,
		parseIntParam(r, "limit", ops.DefaultListLimit),
		parseIntParam(r, "offset", 0),
	)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Summaries",
			Version: h.renderer.version,
			Nav:     "summaries",
		},
		Items:      result.Summaries,
		Pagination: result.Pagination,
	})
}

// HandleDetail handles GET /summaries/{repository...}, one summary with
// per-section history. Repository names contain slashes, hence the
// multi-segment wildcard.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	repository := r.PathValue("repository")
	if repository == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("repository is required"))
		return
	}

	view, err := ops.GetDeep(r.Context(), h.db, repository)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// Sections in canonical vocabulary order, legacy-only rows included.
	var sections []SectionView
	for _, name := range schema.AllSectionNames() {
		if sec, ok := view.Sections[name]; ok {
			sections = append(sections, SectionView{
				Name:         name,
				RenderedHTML: renderMarkdown(sec.CurrentValue),
				LastCommit:   sec.LastUpdatedCommit,
				LastUpdated:  sec.LastUpdatedAt,
				History:      sec.History,
			})
			continue
		}
		if !view.HasSections {
			if value := view.Legacy[name]; value != "" {
				sections = append(sections, SectionView{
					Name:         name,
					RenderedHTML: renderMarkdown(value),
				})
			}
		}
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   view.Repository,
			Version: h.renderer.version,
			Nav:     "summaries",
		},
		Repository:    view.Repository,
		GitURL:        view.GitURL,
		CurrentCommit: view.CurrentCommit,
		SchemaVersion: view.SchemaVersion,
		HasSections:   view.HasSections,
		Sections:      sections,
		UpdatedAt:     view.UpdatedAt,
	})
}

// HandleJournal handles GET /journal, journal entries optionally scoped
// to one repository via ?repository=.
func (h *Handlers) HandleJournal(w http.ResponseWriter, r *http.Request) {
	repository := r.URL.Query().Get("repository")

	result, err := ops.JournalList(r.Context(), h.db, repository,
		parseIntParam(r, "limit", ops.DefaultJournalLimit),
		parseIntParam(r, "offset", 0),
	)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	entries := make([]JournalEntryView, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = JournalEntryView{
			JournalEntry: e,
			RenderedHTML: renderMarkdown(e.Content),
		}
	}

	h.renderer.renderPage(w, r, "journal", JournalPageData{
		PageData: PageData{
			Title:   "Journal",
			Version: h.renderer.version,
			Nav:     "journal",
		},
		Repository: repository,
		Entries:    entries,
		Pagination: result.Pagination,
	})
}

// HandleAPISummary handles GET /api/summaries/{repository...}, the JSON read
// access for non-MCP consumers. A trailing /deep path segment or ?deep=true
// returns the full projection with history; the default is the shallow flat
// current-values object.
func (h *Handlers) HandleAPISummary(w http.ResponseWriter, r *http.Request) {
	repository := r.PathValue("repository")
	deep := parseBoolParam(r, "deep")
	// Repository names contain slashes, so the route wildcard swallows a
	// /deep suffix; peel it off here.
	if rest, ok := strings.CutSuffix(repository, "/deep"); ok {
		repository = rest
		deep = true
	}
	if repository == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("repository is required"))
		return
	}

	if deep {
		view, err := ops.GetDeep(r.Context(), h.db, repository)
		if err != nil {
			apiError(w, err)
			return
		}
		renderJSON(w, http.StatusOK, view)
		return
	}

	result, err := ops.GetShallow(r.Context(), h.db, repository)
	if err != nil {
		apiError(w, err)
		return
	}
	// The shallow resource is a single flat object of section name to
	// current value, so size-constrained consumers can key on section
	// names directly without unwrapping an envelope.
	renderJSON(w, http.StatusOK, result.Sections)
}

// apiError writes a structured JSON error for API routes.
func apiError(w http.ResponseWriter, err error) {
	terr, ok := err.(*errors.TartarusError)
	if !ok {
		terr = errors.NewInternal(err)
	}
	renderJSON(w, terr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(terr.Code),
			"message": terr.Message,
			"status":  terr.Status,
		},
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

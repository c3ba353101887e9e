package clinical

import (
	"sort"
	"time"

	"github.com/aurelia-health/aurelia-backend/internal/models"
	"github.com/aurelia-health/aurelia-backend/internal/visibility"
)

// ContentFilter selects what a report contains.
type ContentFilter string

const (
	ContentEntries ContentFilter = "entries"
	ContentNotes   ContentFilter = "notes"
	ContentBoth    ContentFilter = "both"
)

// ReportConfig parameterizes an offline report. Requester describes who the
// report is generated for; filtering is evaluated against exactly that
// viewer so the report is provably a subset of their live view.
type ReportConfig struct {
	From time.Time
	To   time.Time

	Requester models.Viewer

	// ProfessionalFilter optionally restricts notes to one specialty. For a
	// professional requester it can only narrow what their role already
	// permits; requesting the other specialty is refused.
	ProfessionalFilter models.Specialty

	Content ContentFilter
}

// ReportDocument is the filtered, ordered, format-independent dataset
// handed to any renderer. Everything in it is already access-controlled.
type ReportDocument struct {
	GeneratedAt time.Time      `json:"generated_at"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	Requester   models.Viewer  `json:"requester"`
	Entries     []models.Entry `json:"entries"`
	Notes       []models.Note  `json:"notes"`
}

// BuildReport re-applies the visibility resolver, specialty isolation and
// the date-range rules over the supplied datasets. Pure: no I/O, no store
// access; callers fetch and pass the raw rows.
func BuildReport(entries []models.Entry, notes []models.Note, cfg ReportConfig) (ReportDocument, error) {
	if cfg.Content == "" {
		cfg.Content = ContentBoth
	}

	// Defense in depth: a professional asking for the other specialty's
	// notes is an isolation violation, not an empty result.
	if cfg.ProfessionalFilter != "" && cfg.Requester.IsProfessional() && cfg.ProfessionalFilter != cfg.Requester.Specialty {
		return ReportDocument{}, ErrSpecialtyIsolation
	}

	doc := ReportDocument{
		GeneratedAt: time.Now().UTC(),
		From:        cfg.From,
		To:          cfg.To,
		Requester:   cfg.Requester,
		Entries:     []models.Entry{},
		Notes:       []models.Note{},
	}

	if cfg.Content == ContentEntries || cfg.Content == ContentBoth {
		for _, e := range entries {
			if !inRange(e.CreatedAt, cfg.From, cfg.To) {
				continue
			}
			// Same resolver as the live view, never re-derived here.
			if visibility.IsVisible(e, cfg.Requester) {
				doc.Entries = append(doc.Entries, e)
			}
		}
		sort.Slice(doc.Entries, func(i, j int) bool {
			return doc.Entries[i].CreatedAt.After(doc.Entries[j].CreatedAt)
		})
	}

	if cfg.Content == ContentNotes || cfg.Content == ContentBoth {
		visible := visibility.FilterNotes(clipNotes(notes, cfg.From, cfg.To), cfg.Requester)
		for _, n := range visible {
			if cfg.ProfessionalFilter != "" && n.ThreadSpecialty != "" && n.ThreadSpecialty != cfg.ProfessionalFilter {
				continue
			}
			doc.Notes = append(doc.Notes, n)
		}
		sort.Slice(doc.Notes, func(i, j int) bool {
			return doc.Notes[i].CreatedAt.After(doc.Notes[j].CreatedAt)
		})
	}

	return doc, nil
}

func clipNotes(notes []models.Note, from, to time.Time) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if inRange(n.CreatedAt, from, to) {
			out = append(out, n)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

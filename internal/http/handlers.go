package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"trastes/internal/chart"
	"trastes/internal/core"
	applog "trastes/internal/log"
	"trastes/internal/observability"
	"trastes/internal/stats"
)

const (
	msgSaved  = "✅ Registratie opgeslagen"
	msgNoData = "⚠️ Geen gegevens voor deze activiteit"
)

type logRow struct {
	Activity string
	Person   string
	Date     string
	Time     string
}

// chartView marks the rendered PNG data URI as trusted so html/template
// keeps it in the img src.
type chartView struct {
	Title string
	Src   template.URL
}

type indexData struct {
	Activities []core.Activity
	People     []string
	Selected   string
	Rows       []logRow
	Totals     []stats.Share
	Charts     []chartView
	Message    string
	Warning    bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	logger := applog.FromContext(ctx)

	q := r.URL.Query()
	data := indexData{
		Activities: s.roster.Activities,
		People:     s.roster.PersonChoices(),
		Selected:   strings.TrimSpace(q.Get("activiteit_stats")),
	}
	if q.Get("opgeslagen") == "1" {
		data.Message = msgSaved
	}

	records, err := s.reader.ReadAll(ctx)
	if err != nil {
		observability.StoreError(applog.OpRead)
		logger.LogError(ctx, "Failed to read records", err, applog.OpRead, nil)
		http.Error(w, "Gegevens konden niet worden gelezen", http.StatusInternalServerError)
		return
	}

	for _, rec := range stats.Last(records, s.logLimit) {
		data.Rows = append(data.Rows, logRow{
			Activity: rec.Activity,
			Person:   rec.Person,
			Date:     rec.Date(),
			Time:     rec.Time(),
		})
	}
	data.Totals = stats.Totals(records)

	var breakdowns []stats.Breakdown
	if data.Selected != "" {
		if b, ok := stats.ByPerson(records, data.Selected); ok {
			breakdowns = []stats.Breakdown{b}
		} else {
			data.Message = msgNoData
			data.Warning = true
		}
	} else {
		breakdowns = stats.ByActivity(records, s.roster.ActivityNames())
	}

	images, err := s.charts.PieAll(ctx, breakdowns)
	if err != nil {
		logger.LogError(ctx, "Failed to render charts", err, applog.OpRender, nil)
		http.Error(w, "Grafieken konden niet worden gemaakt", http.StatusInternalServerError)
		return
	}
	data.Charts = chartViews(images)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logger.LogError(ctx, "Index template execution failed", err, applog.OpRender, nil)
		http.Error(w, "Pagina kon niet worden weergegeven", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleSubmit serves both forms of the page. A statistics selection is
// turned into a bookmarkable GET; a chore is stored and followed by a
// redirect so a reload cannot log it twice.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ongeldig formulier", http.StatusBadRequest)
		return
	}

	if _, ok := r.PostForm["activiteit_stats"]; ok && !r.PostForm.Has("activiteit") {
		selected := strings.TrimSpace(r.PostForm.Get("activiteit_stats"))
		if selected == "" {
			http.Error(w, "Selecteer een activiteit", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/?activiteit_stats="+url.QueryEscape(selected), http.StatusSeeOther)
		return
	}

	activity := strings.TrimSpace(r.PostForm.Get("activiteit"))
	person := strings.TrimSpace(r.PostForm.Get("persoon"))
	records, err := s.roster.Expand(activity, person, s.now().In(s.loc))
	if err != nil {
		logger.WarnContext(ctx, "Rejected chore submission",
			applog.NewFields().WithRecord(activity, person).WithError(err).WithOperation(applog.OpValidate).ToSlice()...)
		http.Error(w, badRequestMessage(err), http.StatusBadRequest)
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	ref, err := s.writer.Append(storeCtx, records...)
	if err != nil {
		observability.StoreError(applog.OpAppend)
		logger.LogError(ctx, "Failed to store records", err, applog.OpAppend,
			applog.NewFields().WithRecord(activity, person))
		http.Error(w, "Registratie kon niet worden opgeslagen", http.StatusInternalServerError)
		return
	}

	for _, rec := range records {
		observability.RecordAppended(rec.Activity, rec.Person)
	}
	applog.LogRecordsSaved(ctx, activity, person, len(records), ref)
	http.Redirect(w, r, "/?opgeslagen=1", http.StatusSeeOther)
}

func chartViews(images []chart.Image) []chartView {
	out := make([]chartView, len(images))
	for i, img := range images {
		out[i] = chartView{Title: img.Title, Src: template.URL(img.DataURI)}
	}
	return out
}

func badRequestMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyActivity):
		return "Activiteit ontbreekt"
	case errors.Is(err, core.ErrEmptyPerson):
		return "Persoon ontbreekt"
	case errors.Is(err, core.ErrUnknownActivity):
		return "Onbekende activiteit"
	case errors.Is(err, core.ErrUnknownPerson):
		return "Onbekende persoon"
	default:
		return "Ongeldige registratie"
	}
}

package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/fwmsg/aufgaben-web/internal/auth"
	applog "github.com/fwmsg/aufgaben-web/internal/log"
	"github.com/fwmsg/aufgaben-web/internal/matrix"
	"github.com/fwmsg/aufgaben-web/internal/prefs"
)

// selection loads the user's stored filters and applies cluster and f from
// the query; changes are written back.
func (s *Server) selection(r *http.Request) (*prefs.Prefs, matrix.Selection) {
	username, _ := auth.UsernameFromRequest(r)
	p, err := s.prefs.Load(username)
	if err != nil {
		applog.Warnf("prefs for %s: %v", username, err)
		p = prefs.Default()
	}
	sel, changed := p.Selection.Apply(r.URL.Query())
	if changed {
		if _, err := s.prefs.Update(username, func(p *prefs.Prefs) { p.Selection = sel }); err != nil {
			applog.Warnf("save prefs for %s: %v", username, err)
		}
	}
	return p, sel
}

func (s *Server) buildTable(w http.ResponseWriter, r *http.Request, sel matrix.Selection) (template.HTML, error) {
	snap, err := s.client.LoadSnapshot(r.Context(), sel)
	if err != nil {
		return "", err
	}
	return matrix.BuildTable(snap, s.urls, matrix.Options{
		CSRF:  s.ensureCSRFToken(w, r),
		Next:  s.urls.ListTable,
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	})
}

func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	p, sel := s.selection(r)
	data := s.layoutData(w, r, "Aufgaben")
	data["Selection"] = sel
	data["FilterOpen"] = p.Panels["filter"]
	status := http.StatusOK
	table, err := s.buildTable(w, r, sel)
	if err != nil {
		applog.Errorf("load table: %v", err)
		data["Error"] = err.Error()
		status = upstreamStatus(err)
	}
	data["Table"] = table
	s.renderPage(w, "aufgaben", status, data)
}

func (s *Server) handleTableFragment(w http.ResponseWriter, r *http.Request) {
	_, sel := s.selection(r)
	table, err := s.buildTable(w, r, sel)
	if err != nil {
		applog.Errorf("load table: %v", err)
		http.Error(w, err.Error(), upstreamStatus(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(table))
}

// knownPanels are the collapsible panels whose state is stored.
var knownPanels = map[string]bool{"filter": true}

// handlePanel stores whether a collapsible panel is open.
func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	name := strings.TrimSpace(r.FormValue("panel"))
	if !knownPanels[name] {
		http.Error(w, "unknown panel", http.StatusBadRequest)
		return
	}
	open := formBool(r, "open")
	username, _ := auth.UsernameFromRequest(r)
	if _, err := s.prefs.Update(username, func(p *prefs.Prefs) { p.Panels[name] = open }); err != nil {
		applog.Warnf("save panel state for %s: %v", username, err)
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/fwmsg/aufgaben-web/internal/auth"
	applog "github.com/fwmsg/aufgaben-web/internal/log"
	"github.com/fwmsg/aufgaben-web/internal/ui"
	"github.com/fwmsg/aufgaben-web/internal/upstream"
	"github.com/fwmsg/aufgaben-web/internal/validate"
)

const csrfCookie = "csrf_token"

// ensureCSRFToken returns the request's CSRF token, issuing a new cookie if
// none is present.
func (s *Server) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookie); err == nil && c.Value != "" {
		return c.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	// gleicher Request soll das Token schon sehen
	r.AddCookie(&http.Cookie{Name: csrfCookie, Value: token})
	return token
}

// validateCSRFToken compares the submitted token (form field or header) with
// the cookie.
func validateCSRFToken(r *http.Request) bool {
	c, err := r.Cookie(csrfCookie)
	if err != nil || c.Value == "" {
		return false
	}
	sent := r.Header.Get("X-CSRFToken")
	if sent == "" {
		sent = r.FormValue("csrf_token")
	}
	return subtle.ConstantTimeCompare([]byte(sent), []byte(c.Value)) == 1
}

// flash support
type flash struct{ Type, Text string }

func (s *Server) setFlash(w http.ResponseWriter, typ, text string) {
	if typ == "" {
		typ = "info"
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: url.QueryEscape(typ + "|" + text), Path: "/", MaxAge: 5})
}

func (s *Server) getFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie("flash")
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Path: "/", MaxAge: -1})
	val, err := url.QueryUnescape(c.Value)
	if err != nil {
		val = c.Value
	}
	typ, text, ok := strings.Cut(val, "|")
	if !ok {
		return &flash{Type: "info", Text: val}
	}
	return &flash{Type: typ, Text: text}
}

// AlertClass maps a flash type onto a Bootstrap alert.
func (f *flash) AlertClass() string {
	switch f.Type {
	case "error":
		return "alert-danger"
	case "success":
		return "alert-success"
	case "warning":
		return "alert-warning"
	default:
		return "alert-info"
	}
}

type footerEntry struct{ When, Text string; Failed bool }

func (s *Server) footerData(r *http.Request, username string) (show bool, entries []footerEntry, moreURL string) {
	show = s.uiCfg.ShowActionLog
	if c, err := r.Cookie("actionlog"); err == nil {
		if c.Value == "off" {
			show = false
		} else if c.Value == "on" {
			show = true
		}
	}
	if !show {
		return
	}
	moreURL = "/__actions"
	for _, e := range s.actions.List(username, 5) {
		entries = append(entries, footerEntry{When: e.When.Format("15:04:05"), Text: ui.Describe(e), Failed: e.Err != ""})
	}
	return
}

func (s *Server) layoutData(w http.ResponseWriter, r *http.Request, title string) map[string]any {
	username, _ := auth.UsernameFromRequest(r)
	show, entries, more := s.footerData(r, username)
	return map[string]any{
		"Title":     title,
		"Active":    activeFromPath(r.URL.Path),
		"User":      username,
		"CSRF":      s.ensureCSRFToken(w, r),
		"Flash":     s.getFlash(w, r),
		"ShowLog":   show,
		"LogLines":  entries,
		"LogMore":   more,
	}
}

func (s *Server) renderPage(w http.ResponseWriter, name string, status int, data map[string]any) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.Execute(w, data); err != nil {
		applog.Errorf("render %s: %v", name, err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Warnf("write json: %v", err)
	}
}

// nextTarget returns a local redirect target: the next field, the Referer
// path or the table.
func (s *Server) nextTarget(r *http.Request) string {
	if n := r.FormValue("next"); isLocalPath(n) {
		return n
	}
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		if ref.RawQuery != "" {
			return ref.Path + "?" + ref.RawQuery
		}
		return ref.Path
	}
	return s.urls.ListTable
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// upstreamStatus maps a backend failure onto the status we answer with:
// client errors pass through, everything else is a bad gateway.
func upstreamStatus(err error) int {
	if st := upstream.StatusOf(err); st >= 400 && st < 500 {
		return st
	}
	return http.StatusBadGateway
}

// guardMutation parses the form and checks the CSRF token. It answers the
// request itself and returns false on failure.
func (s *Server) guardMutation(w http.ResponseWriter, r *http.Request) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return false
		}
	}
	if validateCSRFToken(r) {
		return true
	}
	applog.Warnf("CSRF check failed for %s %s", r.Method, r.URL.Path)
	if wantsJSON(r) {
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": "Ungültiges Sicherheitstoken"})
		return false
	}
	s.setFlash(w, "error", "Ungültiges Sicherheitstoken. Bitte Seite neu laden und erneut versuchen.")
	http.Redirect(w, r, s.urls.ListTable, http.StatusSeeOther)
	return false
}

// finish records a mutation and answers with JSON or flash plus redirect.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, action, target, okText string, err error) {
	username, _ := auth.UsernameFromRequest(r)
	s.actions.Append(username, action, target, err)
	if err != nil {
		applog.Warnf("%s %s by %s failed: %v", action, target, username, err)
	} else {
		applog.Infof("%s %s by %s", action, target, username)
	}
	if wantsJSON(r) {
		if err != nil {
			writeJSON(w, upstreamStatus(err), map[string]any{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": okText})
		return
	}
	if err != nil {
		s.setFlash(w, "error", err.Error())
	} else {
		s.setFlash(w, "success", okText)
	}
	http.Redirect(w, r, s.nextTarget(r), http.StatusSeeOther)
}

// rejectInvalid answers a validation failure.
func (s *Server) rejectInvalid(w http.ResponseWriter, r *http.Request, err error) {
	var fields []validate.FieldError
	if ve, ok := err.(*validate.Error); ok {
		fields = ve.Fields
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error(), "fields": fields})
		return
	}
	s.setFlash(w, "error", err.Error())
	http.Redirect(w, r, s.nextTarget(r), http.StatusSeeOther)
}

package server

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/fwmsg/aufgaben-web/internal/auth"
	"github.com/fwmsg/aufgaben-web/internal/config"
	"github.com/fwmsg/aufgaben-web/internal/matrix"
	"github.com/fwmsg/aufgaben-web/internal/prefs"
	"github.com/fwmsg/aufgaben-web/internal/ui"
	"github.com/fwmsg/aufgaben-web/internal/upstream"
)

type Server struct {
	userStore auth.UserStore
	mux       *http.ServeMux
	layoutTpl *template.Template
	pages     map[string]*template.Template
	cfg       *config.Config
	client    *upstream.Client
	prefs     *prefs.Store
	actions   *ui.ActionLogStore
	substeps  *ui.SubstepCache
	tokens    *ui.Tokens
	urls      matrix.URLs
	uiCfg     config.UIConfig
}

const faviconSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
  <rect rx="12" width="64" height="64" fill="#198754"/>
  <path d="M14 18h36v6H14zM14 30h36v6H14zM14 42h24v6H14z" fill="#fff"/>
 </svg>`

func NewServerWithConfig(userStore auth.UserStore, cfg *config.Config, client *upstream.Client) *Server {
	s := &Server{
		userStore: userStore,
		cfg:       cfg,
		uiCfg:     cfg.UI,
		client:    client,
		prefs:     prefs.NewStore(cfg),
		actions:   ui.NewActionLogStore(cfg.UI.ActionLogMax),
		substeps:  ui.NewSubstepCache(),
		tokens:    ui.NewTokens(),
		urls:      urlsFromConfig(cfg),
		mux:       http.NewServeMux(),
	}
	s.layoutTpl = template.Must(template.New("layout").Parse(layoutHTML))
	s.pages = map[string]*template.Template{
		"aufgaben": s.page(aufgabenPageHTML),
		"delete":   s.page(deletePageHTML),
		"actions":  s.page(actionsPageHTML),
		"error":    s.page(errorPageHTML),
	}
	s.routes()
	return s
}

// SubstepCache exposes the sub-step model for the nightly reset.
func (s *Server) SubstepCache() *ui.SubstepCache { return s.substeps }

func (s *Server) page(content string) *template.Template {
	t := template.Must(s.layoutTpl.Clone())
	template.Must(t.New("content").Parse(content))
	return t
}

// urlsFromConfig resolves backend links against the backend base URL; action
// routes stay on this server.
func urlsFromConfig(cfg *config.Config) matrix.URLs {
	l := cfg.Upstream.Links
	abs := func(p string) string {
		if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			return p
		}
		return strings.TrimRight(cfg.Upstream.BaseURL, "/") + "/" + strings.TrimLeft(p, "/")
	}
	return matrix.URLs{
		EditAufgabe:     abs(l.EditAufgabe),
		EditUserAufgabe: abs(l.EditUserAufgabe),
		DownloadAufgabe: abs(l.DownloadAufgabe),
		AddAufgabe:      abs(l.AddAufgabe),
		ListTable:       l.ListTable,
	}.WithActionDefaults()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /favicon.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
		_, _ = w.Write([]byte(faviconSVG))
	})
	s.mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/favicon.svg", http.StatusMovedPermanently)
	})
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/aufgaben", http.StatusSeeOther)
	})

	s.mux.HandleFunc("GET /aufgaben", s.handleTablePage)
	s.mux.HandleFunc("GET /aufgaben/table", s.handleTableFragment)
	s.mux.HandleFunc("POST /aufgaben/panels", s.handlePanel)

	s.mux.HandleFunc("GET /aufgaben/{id}/zwischenschritte", s.handleSubsteps)
	s.mux.HandleFunc("POST /aufgaben/{id}/zwischenschritte/{step}", s.handleToggleSubstep)

	s.mux.HandleFunc("POST /aufgaben/assign", s.handleAssign)
	s.mux.HandleFunc("POST /aufgaben/assign-all", s.handleAssignAll)
	s.mux.HandleFunc("POST /aufgaben/assign-country", s.handleAssignCountry)
	s.mux.HandleFunc("POST /aufgaben/{id}/status", s.handleStatus)
	s.mux.HandleFunc("POST /aufgaben/{id}/reminder", s.handleReminder)
	s.mux.HandleFunc("GET /aufgaben/{id}/delete-file", s.handleDeleteFileConfirm)
	s.mux.HandleFunc("POST /aufgaben/{id}/delete-file", s.handleDeleteFile)

	s.mux.HandleFunc("GET /__actions", s.handleActions)
}

func (s *Server) Handler() http.Handler {
	// Basic Auth für alle außer /healthz
	protected := auth.BasicAuthMiddleware(s.userStore, "aufgaben", s.mux)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			s.mux.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	})
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwmsg/aufgaben-web/internal/auth"
	applog "github.com/fwmsg/aufgaben-web/internal/log"
	"github.com/fwmsg/aufgaben-web/internal/matrix"
	"github.com/fwmsg/aufgaben-web/internal/validate"
)

// handleSubsteps serves the sub-step panel. The backend is asked only on the
// first open; later opens render from the cached model.
func (s *Server) handleSubsteps(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	username, _ := auth.UsernameFromRequest(r)
	list, cached := s.substeps.Get(username, id)
	if !cached {
		var err error
		list, err = s.client.Substeps(r.Context(), id)
		if err != nil {
			applog.Warnf("load substeps %d: %v", id, err)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(upstreamStatus(err))
			_, _ = w.Write([]byte(`<div class="alert alert-danger">Fehler beim Laden der Zwischenschritte: ` + matrix.Escape(err.Error()) + `</div>`))
			return
		}
		s.substeps.Put(username, list)
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, list)
		return
	}
	html, err := matrix.RenderSubsteps(list, s.urls)
	if err != nil {
		applog.Errorf("render substeps %d: %v", id, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

type togglePatch struct {
	Success   bool            `json:"success"`
	TaskID    int64           `json:"task_id"`
	StepID    int64           `json:"step_id"`
	Status    bool            `json:"status"`
	DoneOpen  matrix.DoneOpen `json:"zwischenschritte_done_open"`
	Done      bool            `json:"zwischenschritte_done"`
	BadgeHTML string          `json:"badge_html"`
	CellClass string          `json:"cell_class"`
}

func readToggleInput(w http.ResponseWriter, r *http.Request) (toggleInput, error) {
	var in toggleInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&in); err != nil {
			return in, fmt.Errorf("invalid JSON: %w", err)
		}
	} else if v := strings.TrimSpace(r.FormValue("status")); v != "" {
		b := formBool(r, "status")
		in.Status = &b
	}
	return in, validate.Struct(in)
}

// handleToggleSubstep forwards a sub-step toggle. Only a confirmed toggle
// changes the cached model; a response overtaken by a newer toggle of the
// same step is answered with 409 and not applied.
func (s *Server) handleToggleSubstep(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	id, ok1 := pathID(r, "id")
	step, ok2 := pathID(r, "step")
	if !ok1 || !ok2 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	in, err := readToggleInput(w, r)
	if err != nil {
		s.rejectInvalid(w, r, err)
		return
	}
	done := *in.Status
	username, _ := auth.UsernameFromRequest(r)
	key := fmt.Sprintf("%s:toggle:%d:%d", username, id, step)
	tok := s.tokens.Next(key)

	res, err := s.client.ToggleSubstep(r.Context(), id, step, done)
	if !s.tokens.Current(key, tok) {
		// der neuere Request entscheidet; Cache beim nächsten Öffnen neu laden
		s.substeps.Invalidate(username, id)
		s.staleResponse(w, r, "toggle", id)
		return
	}
	target := fmt.Sprintf("task=%d step=%d done=%t", id, step, done)
	if err != nil {
		s.finish(w, r, "toggle", target, "", err)
		return
	}
	s.substeps.SetStep(username, id, step, done)
	s.actions.Append(username, "toggle", target, nil)
	applog.Infof("toggle %s by %s", target, username)

	if !wantsJSON(r) {
		s.setFlash(w, "success", "Zwischenschritt gespeichert")
		http.Redirect(w, r, s.nextTarget(r), http.StatusSeeOther)
		return
	}
	badge, err := matrix.RenderPendingBadge(id, res.DoneOpen, res.Done)
	if err != nil {
		applog.Errorf("render badge %d: %v", id, err)
	}
	patch := togglePatch{
		Success:   true,
		TaskID:    id,
		StepID:    step,
		Status:    done,
		DoneOpen:  res.DoneOpen,
		Done:      res.Done,
		BadgeHTML: string(badge),
	}
	if res.Done {
		patch.CellClass = "table-success"
	}
	writeJSON(w, http.StatusOK, patch)
}

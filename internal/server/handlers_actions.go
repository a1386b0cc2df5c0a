package server

import (
	"fmt"
	"net/http"

	"github.com/fwmsg/aufgaben-web/internal/auth"
	applog "github.com/fwmsg/aufgaben-web/internal/log"
	"github.com/fwmsg/aufgaben-web/internal/matrix"
	"github.com/fwmsg/aufgaben-web/internal/ui"
	"github.com/fwmsg/aufgaben-web/internal/validate"
)

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	f := assignForm{UserID: formInt(r, "user_id"), AufgabeID: formInt(r, "aufgabe_id")}
	if err := validate.Struct(f); err != nil {
		s.rejectInvalid(w, r, err)
		return
	}
	res, err := s.client.Assign(r.Context(), f.UserID, f.AufgabeID)
	msg := "Aufgabe zugewiesen"
	if err == nil && !res.Created {
		msg = "Aufgabe war bereits zugewiesen"
	}
	s.finish(w, r, "assign", fmt.Sprintf("user=%d aufgabe=%d", f.UserID, f.AufgabeID), msg, err)
}

func (s *Server) handleAssignAll(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	f := assignAllForm{AufgabeID: formInt(r, "aufgabe_id"), PersonCluster: r.FormValue("person_cluster")}
	if err := validate.Struct(f); err != nil {
		s.rejectInvalid(w, r, err)
		return
	}
	res, err := s.client.AssignAll(r.Context(), f.AufgabeID, f.PersonCluster)
	msg := fmt.Sprintf("Aufgabe %d Personen zugewiesen", res.AssignedCount)
	if err == nil && len(res.Errors) > 0 {
		applog.Infof("assign-all aufgabe=%d skipped: %v", f.AufgabeID, res.Errors)
		msg += fmt.Sprintf(" (%d ohne Zugriff)", len(res.Errors))
	}
	s.finish(w, r, "assign-all", fmt.Sprintf("aufgabe=%d cluster=%s", f.AufgabeID, f.PersonCluster), msg, err)
}

func (s *Server) handleAssignCountry(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	f := assignCountryForm{AufgabeID: formInt(r, "aufgabe_id"), CountryID: formInt(r, "country_id")}
	if err := validate.Struct(f); err != nil {
		s.rejectInvalid(w, r, err)
		return
	}
	res, err := s.client.AssignCountry(r.Context(), f.AufgabeID, f.CountryID)
	s.finish(w, r, "assign-country", fmt.Sprintf("aufgabe=%d land=%d", f.AufgabeID, f.CountryID),
		fmt.Sprintf("Aufgabe %d Personen im Einsatzland zugewiesen", res.AssignedCount), err)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	pending, erledigt := formBool(r, "pending"), formBool(r, "erledigt")
	username, _ := auth.UsernameFromRequest(r)
	key := fmt.Sprintf("%s:status:%d", username, id)
	tok := s.tokens.Next(key)
	_, err := s.client.UpdateStatus(r.Context(), id, pending, erledigt)
	if !s.tokens.Current(key, tok) {
		s.staleResponse(w, r, "status", id)
		return
	}
	state := matrix.UserAufgabe{Pending: pending, Erledigt: erledigt}.State()
	s.finish(w, r, "status", fmt.Sprintf("task=%d %s", id, state), "Status gespeichert", err)
}

func (s *Server) handleReminder(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	_, err := s.client.SendReminder(r.Context(), id)
	s.finish(w, r, "reminder", fmt.Sprintf("task=%d", id), "Erinnerung gesendet", err)
}

func (s *Server) handleDeleteFileConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	_, sel := s.selection(r)
	data := s.layoutData(w, r, "Datei löschen")
	snap, err := s.client.LoadSnapshot(r.Context(), sel)
	if err != nil {
		data["Error"] = err.Error()
		s.renderPage(w, "error", upstreamStatus(err), data)
		return
	}
	user, aufgabe, as, found := snap.FindAssignment(id)
	if !found || !as.UserAufgabe.File {
		data["Error"] = "Keine Datei zu dieser Aufgabe gefunden"
		s.renderPage(w, "error", http.StatusNotFound, data)
		return
	}
	next := r.URL.Query().Get("next")
	if !isLocalPath(next) {
		next = s.urls.ListTable
	}
	data["Action"] = matrix.BuildURL(s.urls.DeleteFile, id)
	data["Next"] = next
	data["TaskName"] = aufgabe.Name
	data["FileName"] = as.UserAufgabe.FileName
	data["UserName"] = user.DisplayName()
	s.renderPage(w, "delete", http.StatusOK, data)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if !s.guardMutation(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	_, err := s.client.DeleteFile(r.Context(), id)
	s.finish(w, r, "delete-file", fmt.Sprintf("task=%d", id), "Datei gelöscht", err)
}

// staleResponse drops the outcome of a request that was overtaken by a newer
// one on the same control.
func (s *Server) staleResponse(w http.ResponseWriter, r *http.Request, action string, id int64) {
	applog.Debugf("%s %d: stale response discarded", action, id)
	if wantsJSON(r) {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "stale": true})
		return
	}
	http.Redirect(w, r, s.nextTarget(r), http.StatusSeeOther)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromRequest(r)
	entries := s.actions.List(username, 0)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, entries)
		return
	}
	data := s.layoutData(w, r, "Letzte Aktionen")
	rows := make([]footerEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		rows = append(rows, footerEntry{When: e.When.Format("02.01.2006 15:04:05"), Text: ui.Describe(e), Failed: e.Err != ""})
	}
	data["Entries"] = rows
	s.renderPage(w, "actions", http.StatusOK, data)
}

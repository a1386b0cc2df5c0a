package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestAssign_RejectsMissingCSRF(t *testing.T) {
	b := newFakeBackend()
	s := newTestServer(t, b)
	req := newReq(http.MethodPost, "/aufgaben/assign", url.Values{"user_id": {"7"}, "aufgabe_id": {"1"}})
	req.Header.Del("Cookie")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: "other"})
	rr := serve(s, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if !strings.HasPrefix(flashOf(rr), "error|") {
		t.Fatalf("expected error flash, got %q", flashOf(rr))
	}
	if b.count("/org/ajax/assign-task/") != 0 {
		t.Fatalf("backend must not be called without valid token")
	}
}

func TestAssign_ForwardsAndRedirects(t *testing.T) {
	b := newFakeBackend()
	s := newTestServer(t, b)
	rr := serve(s, newReq(http.MethodPost, "/aufgaben/assign", url.Values{"user_id": {"7"}, "aufgabe_id": {"1"}, "next": {"/aufgaben?f=2"}}))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/aufgaben?f=2" {
		t.Fatalf("expected redirect to next, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	body := b.lastBody("/org/ajax/assign-task/")
	if body["user_id"] != float64(7) || body["aufgabe_id"] != float64(1) {
		t.Fatalf("unexpected backend body %v", body)
	}
	if flashOf(rr) != "success|Aufgabe zugewiesen" {
		t.Fatalf("flash=%q", flashOf(rr))
	}
	if got := s.actions.List("admin", 0); len(got) != 1 || got[0].Action != "assign" {
		t.Fatalf("action not logged: %+v", got)
	}
}

func TestAssign_ValidationErrorAsJSON(t *testing.T) {
	b := newFakeBackend()
	s := newTestServer(t, b)
	req := newReq(http.MethodPost, "/aufgaben/assign", url.Values{"user_id": {"x"}, "aufgabe_id": {"1"}})
	req.Header.Set("Accept", "application/json")
	rr := serve(s, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	m := decodeJSON(t, rr)
	fields, _ := m["fields"].([]any)
	if len(fields) != 1 || fields[0].(map[string]any)["field"] != "assignForm.user_id" {
		t.Fatalf("unexpected fields %v", m["fields"])
	}
	if b.count("/org/ajax/assign-task/") != 0 {
		t.Fatalf("invalid input must not reach the backend")
	}
}

func TestAssignAllAndCountry(t *testing.T) {
	b := newFakeBackend()
	s := newTestServer(t, b)
	rr := serve(s, newReq(http.MethodPost, "/aufgaben/assign-all", url.Values{"aufgabe_id": {"1"}, "person_cluster": {"4"}}))
	if flashOf(rr) != "success|Aufgabe 4 Personen zugewiesen" {
		t.Fatalf("flash=%q", flashOf(rr))
	}
	if b.lastBody("/org/ajax/assign-task-to-all/")["person_cluster_id"] != "4" {
		t.Fatalf("cluster not forwarded")
	}
	rr = serve(s, newReq(http.MethodPost, "/aufgaben/assign-country", url.Values{"aufgabe_id": {"1"}, "country_id": {"5"}}))
	if flashOf(rr) != "success|Aufgabe 2 Personen im Einsatzland zugewiesen" {
		t.Fatalf("flash=%q", flashOf(rr))
	}
	if b.lastBody("/org/ajax/assign-tasks-by-country/")["country_id"] != float64(5) {
		t.Fatalf("country not forwarded")
	}
}

func TestStatus_JSON(t *testing.T) {
	b := newFakeBackend()
	s := newTestServer(t, b)
	req := newReq(http.MethodPost, "/aufgaben/3/status", url.Values{"pending": {"false"}, "erledigt": {"true"}})
	req.Header.Set("Accept", "application/json")
	rr := serve(s, req)
	if rr.Code != http.StatusOK || decodeJSON(t, rr)["success"] != true {
		t.Fatalf("unexpected answer %d %s", rr.Code, rr.Body.String())
	}
	body := b.lastBody("/org/ajax/update-task-status/")
	if body["aufgabe_id"] != float64(3) || body["erledigt"] != true || body["pending"] != false {
		t.Fatalf("unexpected backend body %v", body)
	}
}

func TestReminder_BackendRefusal(t *testing.T) {
	b := newFakeBackend()
	b.mux = http.NewServeMux()
	b.handle("/org/send-task-reminder/", "400", `{"success":false,"error":"Erinnerung wurde bereits heute gesendet"}`)
	s := newTestServer(t, b)
	rr := serve(s, newReq(http.MethodPost, "/aufgaben/3/reminder", url.Values{}))
	if flashOf(rr) != "error|Erinnerung wurde bereits heute gesendet" {
		t.Fatalf("flash=%q", flashOf(rr))
	}
	if b.lastQuery("/org/send-task-reminder/").Get("id") != "3" {
		t.Fatalf("id not forwarded")
	}

	req := newReq(http.MethodPost, "/aufgaben/3/reminder", url.Values{})
	req.Header.Set("Accept", "application/json")
	if rr := serve(s, req); rr.Code != http.StatusBadRequest {
		t.Fatalf("backend 400 should pass through, got %d", rr.Code)
	}
}

func TestDeleteFile_ConfirmThenDelete(t *testing.T) {
	b := newFakeBackend()
	s := newTestServer(t, b)
	rr := serve(s, newReq(http.MethodGet, "/aufgaben/3/delete-file?next=%2Faufgaben", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	doc := parseDoc(t, rr.Body.String())
	text := doc.Find("p").Text()
	for _, want := range []string{"pass.pdf", "Pass hochladen", "Ana Bilic"} {
		if !strings.Contains(text, want) {
			t.Fatalf("confirmation misses %q: %s", want, text)
		}
	}
	if action, _ := doc.Find("form").Attr("action"); action != "/aufgaben/3/delete-file" {
		t.Fatalf("form action=%q", action)
	}
	if b.count("/org/ajax/delete-task-file/") != 0 {
		t.Fatalf("GET must not delete")
	}

	rr = serve(s, newReq(http.MethodPost, "/aufgaben/3/delete-file", url.Values{"next": {"/aufgaben"}}))
	if rr.Code != http.StatusSeeOther || flashOf(rr) != "success|Datei gelöscht" {
		t.Fatalf("unexpected answer %d %q", rr.Code, flashOf(rr))
	}
	if b.lastBody("/org/ajax/delete-task-file/")["aufgabe_id"] != float64(3) {
		t.Fatalf("id not forwarded")
	}
}

func TestDeleteFile_UnknownAssignment(t *testing.T) {
	s := newTestServer(t, newFakeBackend())
	if rr := serve(s, newReq(http.MethodGet, "/aufgaben/99/delete-file", nil)); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

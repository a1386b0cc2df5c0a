package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fwmsg/aufgaben-web/internal/auth"
	"github.com/fwmsg/aufgaben-web/internal/config"
	"github.com/fwmsg/aufgaben-web/internal/upstream"
)

const testCSRF = "test-csrf-token"

const backendTable = `{"success": true, "data": {
  "users": [{"id": 7, "username": "ana", "first_name": "Ana", "last_name": "Bilic"}],
  "aufgaben": [{"id": 1, "name": "Pass hochladen", "mitupload": true}],
  "user_aufgaben_assigned": {"7": {"1": {"user_aufgabe": {"id": 3, "pending": true, "faellig": "2026-10-01",
    "file": true, "file_name": "pass.pdf", "mail_notifications": true}, "zwischenschritte_done_open": "1/2", "zwischenschritte_done": false}}},
  "user_aufgaben_eligible": {},
  "countries": [{"id": 5, "name": "Peru"}],
  "today": "2026-10-19",
  "current_person_cluster": null
}}`

// fakeBackend records calls to the backend API.
type fakeBackend struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]map[string]any
	query  map[string]url.Values
	mux    *http.ServeMux
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{calls: map[string]int{}, bodies: map[string]map[string]any{}, query: map[string]url.Values{}, mux: http.NewServeMux()}
	b.handle("/org/ajax/load-aufgaben-table-data/", `200`, backendTable)
	b.handle("/org/get-aufgaben-zwischenschritte/", `200`, `{"task_name":"Pass hochladen","user_name":"Ana Bilic","zwischenschritte":[{"id":1,"name":"Kopie","erledigt":true},{"id":2,"name":"Original","erledigt":false}]}`)
	b.handle("/org/toggle-zwischenschritt-status/", `200`, `{"success":true,"zwischenschritte_done_open":"Pending 2/2","zwischenschritte_done":true}`)
	b.handle("/org/ajax/assign-task/", `200`, `{"success":true,"created":true,"task_id":9}`)
	b.handle("/org/ajax/assign-task-to-all/", `200`, `{"success":true,"assigned_count":4}`)
	b.handle("/org/ajax/assign-tasks-by-country/", `200`, `{"success":true,"assigned_count":2}`)
	b.handle("/org/ajax/update-task-status/", `200`, `{"success":true}`)
	b.handle("/org/send-task-reminder/", `200`, `{"success":true}`)
	b.handle("/org/ajax/delete-task-file/", `200`, `{"success":true}`)
	return b
}

func (b *fakeBackend) handle(path, status, body string) {
	b.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.Header().Set("Content-Type", "application/json")
		if status != "200" {
			code := http.StatusInternalServerError
			if status == "400" {
				code = http.StatusBadRequest
			}
			w.WriteHeader(code)
		}
		_, _ = io.WriteString(w, body)
	})
}

func (b *fakeBackend) record(r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[r.URL.Path]++
	b.bodies[r.URL.Path] = body
	b.query[r.URL.Path] = r.URL.Query()
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *fakeBackend) lastBody(path string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[path]
}

func (b *fakeBackend) lastQuery(path string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query[path]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) { b.mux.ServeHTTP(w, r) }

func newTestServer(t *testing.T, backend http.Handler) *Server {
	t.Helper()
	us := auth.NewInMemoryUserStore()
	if err := us.AddUserPlain("admin", "admin"); err != nil {
		t.Fatalf("user: %v", err)
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.Upstream.BaseURL = srv.URL
	cfg.Upstream.Timeout = 2 * time.Second
	cfg.PrefsDir = t.TempDir()
	client, err := upstream.NewClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return NewServerWithConfig(us, cfg, client)
}

// newReq builds an authenticated request. A non-nil form is posted together
// with a matching CSRF token.
func newReq(method, target string, form url.Values) *http.Request {
	var body io.Reader
	if form != nil {
		form.Set("csrf_token", testCSRF)
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.SetBasicAuth("admin", "admin")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testCSRF})
	return req
}

// newJSONReq posts a JSON body with the CSRF header.
func newJSONReq(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRFToken", testCSRF)
	req.SetBasicAuth("admin", "admin")
	req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testCSRF})
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func parseDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func flashOf(rr *httptest.ResponseRecorder) string {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "flash" {
			v, _ := url.QueryUnescape(c.Value)
			return v
		}
	}
	return ""
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode json %q: %v", rr.Body.String(), err)
	}
	return m
}

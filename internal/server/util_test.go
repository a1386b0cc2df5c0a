package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestActiveFromPath(t *testing.T) {
	if activeFromPath("/__actions") != "actions" {
		t.Fatalf("actions not detected")
	}
	if activeFromPath("/aufgaben/3/delete-file") != "aufgaben" {
		t.Fatalf("default should be aufgaben")
	}
}

func TestIsLocalPath(t *testing.T) {
	for p, want := range map[string]bool{
		"/aufgaben":            true,
		"/aufgaben?f=2":        true,
		"//evil.example":       false,
		"/\\evil.example":      false,
		"https://evil.example": false,
		"":                     false,
	} {
		if got := isLocalPath(p); got != want {
			t.Fatalf("isLocalPath(%q)=%v want %v", p, got, want)
		}
	}
}

func TestNextTarget(t *testing.T) {
	s := newTestServer(t, http.NotFoundHandler())
	r := httptest.NewRequest(http.MethodPost, "/aufgaben/assign?next=//evil", nil)
	r.Header.Set("Referer", "http://example.com/aufgaben?cluster=4")
	if got := s.nextTarget(r); got != "/aufgaben?cluster=4" {
		t.Fatalf("expected referer path, got %q", got)
	}
	r = httptest.NewRequest(http.MethodPost, "/aufgaben/assign?next=/aufgaben%3Ff%3D2", nil)
	if got := s.nextTarget(r); got != "/aufgaben?f=2" {
		t.Fatalf("expected next, got %q", got)
	}
	r = httptest.NewRequest(http.MethodPost, "/aufgaben/assign", nil)
	r.Header.Set("Referer", "https://other.example/x")
	if got := s.nextTarget(r); got != "/aufgaben" {
		t.Fatalf("foreign referer must fall back, got %q", got)
	}
}

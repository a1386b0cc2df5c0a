package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwmsg/aufgaben-web/internal/config"
	"github.com/fwmsg/aufgaben-web/internal/matrix"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	cfg := config.Default()
	cfg.PrefsDir = t.TempDir()
	return NewStore(cfg), cfg.PrefsDir
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, _ := newStore(t)
	p, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Version != 1 || p.Selection != (matrix.Selection{}) || p.Panels == nil {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestUpdate_PersistsPerUser(t *testing.T) {
	s, dir := newStore(t)
	if _, err := s.Update("alice", func(p *Prefs) {
		p.Selection = matrix.Selection{PersonCluster: "4", TaskCluster: "2"}
		p.Panels["filter"] = true
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "alice.yaml")); err != nil {
		t.Fatalf("prefs file missing: %v", err)
	}
	p, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Selection.PersonCluster != "4" || p.Selection.TaskCluster != "2" || !p.Panels["filter"] {
		t.Fatalf("round trip lost data: %+v", p)
	}
	other, _ := s.Load("bob")
	if other.Selection.PersonCluster != "" {
		t.Fatalf("users must not share prefs")
	}
}

func TestLoad_EmptyUsernameFails(t *testing.T) {
	s, _ := newStore(t)
	if _, err := s.Load(" "); err == nil {
		t.Fatalf("expected error")
	}
}

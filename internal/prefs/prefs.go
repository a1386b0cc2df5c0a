package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwmsg/aufgaben-web/internal/config"
	"github.com/fwmsg/aufgaben-web/internal/matrix"
	"gopkg.in/yaml.v3"
)

// Prefs is the persisted view state of one user.
type Prefs struct {
	Version   int              `yaml:"version"`
	Selection matrix.Selection `yaml:"selection"`
	// Panels merkt sich auf- und zugeklappte Bereiche (true = offen).
	Panels map[string]bool `yaml:"panels,omitempty"`
}

func Default() *Prefs {
	return &Prefs{Version: 1, Panels: map[string]bool{}}
}

type Store struct {
	cfg *config.Config
	mu  sync.Mutex
}

func NewStore(cfg *config.Config) *Store { return &Store{cfg: cfg} }

// Load reads the prefs of username. A missing file yields defaults.
func (s *Store) Load(username string) (*Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(username)
}

func (s *Store) load(username string) (*Prefs, error) {
	path, ok := config.PrefsPathForUser(s.cfg, username)
	if !ok {
		return nil, errors.New("prefs path could not be determined")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	if p.Panels == nil {
		p.Panels = map[string]bool{}
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return p, nil
}

func (s *Store) save(username string, p *Prefs) error {
	path, ok := config.PrefsPathForUser(s.cfg, username)
	if !ok {
		return errors.New("prefs path could not be determined")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// Update loads, mutates and writes back the prefs of username in one step.
func (s *Store) Update(username string, fn func(p *Prefs)) (*Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.load(username)
	if err != nil {
		return nil, err
	}
	fn(p)
	return p, s.save(username, p)
}

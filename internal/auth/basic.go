package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/fwmsg/aufgaben-web/internal/config"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	HasUser(username string) bool
	CheckPassword(username, plain string) bool
}

type InMemoryUserStore struct {
	// username -> bcrypt hash
	hashes map[string][]byte
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{hashes: make(map[string][]byte)}
}

// FromConfig builds the store from cfg.Users. Without configured users the
// fallback account is added with a freshly hashed password.
func FromConfig(cfg *config.Config, fallbackUser, fallbackPass string) (*InMemoryUserStore, error) {
	s := NewInMemoryUserStore()
	for _, u := range cfg.Users {
		if u.Username == "" || u.PasswordHash == "" {
			continue
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("user %q: invalid bcrypt hash: %w", u.Username, err)
		}
		if err := s.AddUserHash(u.Username, []byte(u.PasswordHash)); err != nil {
			return nil, err
		}
	}
	if len(s.hashes) == 0 {
		if err := s.AddUserPlain(fallbackUser, fallbackPass); err != nil {
			return nil, fmt.Errorf("default user: %w", err)
		}
	}
	return s, nil
}

func (s *InMemoryUserStore) HasUser(username string) bool {
	_, ok := s.hashes[username]
	return ok
}

// Usernames lists the known accounts, sorted.
func (s *InMemoryUserStore) Usernames() []string {
	out := make([]string, 0, len(s.hashes))
	for u := range s.hashes { out = append(out, u) }
	sort.Strings(out)
	return out
}

func (s *InMemoryUserStore) AddUserPlain(username, password string) error {
	if username == "" {
		return errors.New("username empty")
	}
	if password == "" {
		return errors.New("password empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.hashes[username] = hash
	return nil
}

func (s *InMemoryUserStore) AddUserHash(username string, bcryptHash []byte) error {
	if username == "" {
		return errors.New("username empty")
	}
	if len(bcryptHash) == 0 {
		return errors.New("hash empty")
	}
	s.hashes[username] = bcryptHash
	return nil
}

func (s *InMemoryUserStore) CheckPassword(username, plain string) bool {
	hash, ok := s.hashes[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}

func BasicAuthMiddleware(store UserStore, realm string, next http.Handler) http.Handler {
	if realm == "" {
		realm = "aufgaben"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !store.HasUser(username) || !store.CheckPassword(username, password) {
			unauthorized(w, realm)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
	})
}

func unauthorized(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", "Basic realm=\""+realm+"\"")
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

type contextKey string

const userKey contextKey = "auth.user"

// WithUsername attaches the authenticated user to ctx.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey, username)
}

func UsernameFromRequest(r *http.Request) (string, bool) {
	s, ok := r.Context().Value(userKey).(string)
	return s, ok && s != ""
}

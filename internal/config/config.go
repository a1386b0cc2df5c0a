package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"passwordHash"` // bcrypt hash
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type UIConfig struct {
	ShowActionLog bool `yaml:"showActionLog"`
	ActionLogMax  int  `yaml:"actionLogMax"`
	// CacheResetSpec ist ein Cron-Ausdruck; leer deaktiviert den nächtlichen Reset.
	CacheResetSpec string `yaml:"cacheResetSpec"`
}

// Links sind browserseitige URL-Vorlagen des Backends; {id} wird ersetzt.
type Links struct {
	EditAufgabe     string `yaml:"editAufgabe"`
	EditUserAufgabe string `yaml:"editUserAufgabe"`
	DownloadAufgabe string `yaml:"downloadAufgabe"`
	AddAufgabe      string `yaml:"addAufgabe"`
	ListTable       string `yaml:"listTable"`
}

// API sind die Backend-Endpunkte, die der Server selbst aufruft.
type API struct {
	TableData     string `yaml:"tableData"`
	Substeps      string `yaml:"substeps"`
	ToggleSubstep string `yaml:"toggleSubstep"`
	Assign        string `yaml:"assign"`
	AssignAll     string `yaml:"assignAll"`
	AssignCountry string `yaml:"assignCountry"`
	UpdateStatus  string `yaml:"updateStatus"`
	SendReminder  string `yaml:"sendReminder"`
	DeleteFile    string `yaml:"deleteFile"`
	Health        string `yaml:"health"`
}

type UpstreamConfig struct {
	BaseURL       string        `yaml:"baseURL"`
	Timeout       time.Duration `yaml:"timeout"`
	CSRFToken     string        `yaml:"csrfToken"`
	SessionCookie string        `yaml:"sessionCookie"`
	API           API           `yaml:"api"`
	Links         Links         `yaml:"links"`
}

type Config struct {
	Listen   string         `yaml:"listen"`
	Logging  LoggingConfig  `yaml:"logging"`
	UI       UIConfig       `yaml:"ui"`
	Users    []UserConfig   `yaml:"users"`
	PrefsDir string         `yaml:"prefsDir"`
	Upstream UpstreamConfig `yaml:"upstream"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		UI: UIConfig{
			ShowActionLog:  true,
			ActionLogMax:   200,
			CacheResetSpec: "0 0 * * *",
		},
		Users:    []UserConfig{},
		PrefsDir: defaultPrefsDir(),
		Upstream: UpstreamConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
			API: API{
				TableData:     "/org/ajax/load-aufgaben-table-data/",
				Substeps:      "/org/get-aufgaben-zwischenschritte/",
				ToggleSubstep: "/org/toggle-zwischenschritt-status/",
				Assign:        "/org/ajax/assign-task/",
				AssignAll:     "/org/ajax/assign-task-to-all/",
				AssignCountry: "/org/ajax/assign-tasks-by-country/",
				UpdateStatus:  "/org/ajax/update-task-status/",
				SendReminder:  "/org/send-task-reminder/",
				DeleteFile:    "/org/ajax/delete-task-file/",
				Health:        "/",
			},
			Links: Links{
				EditAufgabe:     "/org/edit/aufgabe/{id}",
				EditUserAufgabe: "/org/edit/useraufgaben/{id}",
				DownloadAufgabe: "/org/download-aufgabe/{id}",
				AddAufgabe:      "/org/add/aufgabe/",
				ListTable:       "/aufgaben",
			},
		},
	}
}

func defaultPrefsDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "aufgaben-web")
	}
	return ".aufgaben-web"
}

// Load lädt eine optionale YAML-Datei. Fehlt sie, gelten Defaults plus ENV.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUFGABEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AUFGABEN_BACKEND_URL"); v != "" {
		cfg.Upstream.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("AUFGABEN_CSRF_TOKEN"); v != "" {
		cfg.Upstream.CSRFToken = v
	}
	if v := os.Getenv("AUFGABEN_SESSION"); v != "" {
		cfg.Upstream.SessionCookie = v
	}
	if v := os.Getenv("AUFGABEN_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Upstream.Timeout = d
		}
	}
	if v := os.Getenv("AUFGABEN_PREFS_DIR"); v != "" {
		cfg.PrefsDir = v
	}
	if v := os.Getenv("AUFGABEN_UI_SHOW_ACTIONLOG"); v != "" {
		cfg.UI.ShowActionLog = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("AUFGABEN_ACTIONLOG_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UI.ActionLogMax = n
		}
	}
}

// PrefsPathForUser liefert die YAML-Datei für die Ansichtseinstellungen eines Nutzers.
func PrefsPathForUser(cfg *Config, username string) (string, bool) {
	name := strings.TrimSpace(username)
	if name == "" || cfg.PrefsDir == "" {
		return "", false
	}
	// Pfadtrenner im Namen würden aus PrefsDir herausführen
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	return filepath.Join(cfg.PrefsDir, name+".yaml"), true
}

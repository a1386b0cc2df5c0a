package server

import (
	"net/http"
	"strconv"
	"strings"
)

func activeFromPath(path string) string {
	path = strings.ToLower(path)
	switch {
	case strings.HasPrefix(path, "/__actions"):
		return "actions"
	default:
		return "aufgaben"
	}
}

// pathID reads a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// formInt parses an optional integer field; bad input yields 0 and is caught
// by validation.
func formInt(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	return n
}

func formBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(r.FormValue(key)))
	return b
}

type assignForm struct {
	UserID    int64 `form:"user_id" validate:"gt=0"`
	AufgabeID int64 `form:"aufgabe_id" validate:"gt=0"`
}

type assignAllForm struct {
	AufgabeID     int64  `form:"aufgabe_id" validate:"gt=0"`
	PersonCluster string `form:"person_cluster" validate:"omitempty,max=32"`
}

type assignCountryForm struct {
	AufgabeID int64 `form:"aufgabe_id" validate:"gt=0"`
	CountryID int64 `form:"country_id" validate:"gt=0"`
}

type toggleInput struct {
	Status *bool `json:"status" form:"status" validate:"required"`
}

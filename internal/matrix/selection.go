package matrix

import (
	"net/url"
	"strings"
)

// Selection is the table filter state of one user. Handlers take it in and
// hand a new value back; nothing is kept in package state.
type Selection struct {
	PersonCluster string `yaml:"personCluster,omitempty"`
	TaskCluster   string `yaml:"taskCluster,omitempty"`
}

// Apply merges the query parameters cluster and f into s. The value "None"
// clears a filter. changed reports whether the result differs from s.
func (s Selection) Apply(q url.Values) (next Selection, changed bool) {
	next = s
	if q.Has("cluster") {
		next.PersonCluster = normalizeFilter(q.Get("cluster"))
	}
	if q.Has("f") {
		next.TaskCluster = normalizeFilter(q.Get("f"))
	}
	return next, next != s
}

// Query encodes the selection for the backend table request.
func (s Selection) Query() url.Values {
	v := url.Values{}
	if s.PersonCluster != "" {
		v.Set("person_cluster_filter", s.PersonCluster)
	}
	if s.TaskCluster != "" {
		v.Set("f", s.TaskCluster)
	}
	return v
}

// Key identifies the selection for request deduplication.
func (s Selection) Key() string { return s.PersonCluster + "|" + s.TaskCluster }

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == "None" || v == "undefined" {
		return ""
	}
	return v
}

package matrix

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// searchLower mirrors the browser's toLowerCase: ß stays ß, Σ at a word end
// becomes ς.
var searchLower = cases.Lower(language.Und)

// SearchKey is the lower-cased "first last" key the row filter matches against.
func SearchKey(u User) string {
	return searchLower.String(u.DisplayName())
}

// MatchesSearch is a case-insensitive substring match; an empty query matches all.
func MatchesSearch(key, q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	return strings.Contains(key, searchLower.String(q))
}

// FilterUsers keeps users whose search key contains q, preserving order.
func FilterUsers(users []User, q string) []User {
	if strings.TrimSpace(q) == "" {
		return users
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		if MatchesSearch(SearchKey(u), q) {
			out = append(out, u)
		}
	}
	return out
}

package matrix

import (
	"net/url"
	"strconv"
	"strings"
)

// URLs holds every link the table emits. The first block points at backend
// pages, the second at this server's action routes. All carry {id}.
type URLs struct {
	EditAufgabe     string
	EditUserAufgabe string
	DownloadAufgabe string
	AddAufgabe      string
	ListTable       string

	Assign        string
	AssignAll     string
	AssignCountry string
	UpdateStatus  string
	SendReminder  string
	DeleteFile    string
	Substeps      string
	ToggleSubstep string
}

// WithActionDefaults fills the action routes served by this module.
func (u URLs) WithActionDefaults() URLs {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&u.Assign, "/aufgaben/assign")
	def(&u.AssignAll, "/aufgaben/assign-all")
	def(&u.AssignCountry, "/aufgaben/assign-country")
	def(&u.UpdateStatus, "/aufgaben/{id}/status")
	def(&u.SendReminder, "/aufgaben/{id}/reminder")
	def(&u.DeleteFile, "/aufgaben/{id}/delete-file")
	def(&u.Substeps, "/aufgaben/{id}/zwischenschritte")
	def(&u.ToggleSubstep, "/aufgaben/{id}/zwischenschritte/")
	def(&u.ListTable, "/aufgaben")
	return u
}

// BuildURL substitutes the first {id} placeholder.
func BuildURL(template string, id int64) string {
	return strings.Replace(template, "{id}", strconv.FormatInt(id, 10), 1)
}

// BuildURLWithNext substitutes {id} and appends next as redirect target.
func BuildURLWithNext(template string, id int64, next string) string {
	return appendNext(BuildURL(template, id), next)
}

func appendNext(u, next string) string {
	if next == "" {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "next=" + url.QueryEscape(next)
}

package matrix

import (
	"html/template"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func testURLs() URLs {
	return URLs{
		EditAufgabe:     "/org/edit/aufgabe/{id}",
		EditUserAufgabe: "/org/edit/useraufgaben/{id}",
		DownloadAufgabe: "/org/download-aufgabe/{id}",
		AddAufgabe:      "/org/add/aufgabe/",
	}.WithActionDefaults()
}

// parseCell wraps a <td> in table context, otherwise the HTML parser drops it.
func parseCell(t *testing.T, h template.HTML) *goquery.Document {
	t.Helper()
	return parseHTML(t, "<table><tbody><tr>"+string(h)+"</tr></tbody></table>")
}

func parseHTML(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func visible(doc *goquery.Document, sel string) bool {
	s := doc.Find(sel)
	return s.Length() == 1 && !s.HasClass("d-none")
}

func renderAssigned(t *testing.T, ua UserAufgabe, today string) *goquery.Document {
	t.Helper()
	u := User{ID: 7, FirstName: "Ana", LastName: "Bilic"}
	a := Aufgabe{ID: 1, Name: "Pass hochladen", MitUpload: true}
	h, err := RenderCell(u, a, CellInput{Kind: Assigned, Assignment: Assignment{UserAufgabe: ua}}, today, testURLs(), Options{CSRF: "tok"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return parseCell(t, h)
}

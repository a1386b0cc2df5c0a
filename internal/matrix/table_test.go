package matrix

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const snapshotJSON = `{
  "success": true,
  "data": {
    "users": [
      {"id": 7, "username": "ana", "first_name": "Ana", "last_name": "Bilic"},
      {"id": 8, "username": "bo", "first_name": "<script>alert(1)</script>", "last_name": ""}
    ],
    "aufgaben": [
      {"id": 1, "name": "Pass hochladen", "beschreibung": "Bitte **PDF**", "mitupload": true, "wiederholung": false},
      {"id": 2, "name": "Impfung", "beschreibung": null, "mitupload": false, "wiederholung": true}
    ],
    "user_aufgaben_assigned": {
      "7": {"1": {"user_aufgabe": {"id": 101, "erledigt": false, "pending": true, "faellig": "2024-01-01", "file": false, "mail_notifications": true, "currently_sending": false}, "zwischenschritte_done_open": "1/2", "zwischenschritte_done": false}}
    },
    "user_aufgaben_eligible": {"7": [2], "8": [1]},
    "countries": [{"id": 3, "name": "Peru"}],
    "today": "2024-06-01",
    "current_person_cluster": 4
  }
}`

func decodeTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s, err := DecodeSnapshot(strings.NewReader(snapshotJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return s
}

func TestBuildTable_Deterministic(t *testing.T) {
	s := decodeTestSnapshot(t)
	a, err := BuildTable(s, testURLs(), Options{CSRF: "x"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildTable(s, testURLs(), Options{CSRF: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("two renders of the same snapshot differ")
	}
}

func TestBuildTable_OrderAndCells(t *testing.T) {
	s := decodeTestSnapshot(t)
	h, err := BuildTable(s, testURLs(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	doc := parseHTML(t, string(h))

	names := doc.Find("thead th p.text-wrap").Map(func(_ int, sel *goquery.Selection) string { return sel.Text() })
	if strings.Join(names, ",") != "Pass hochladen,Impfung" {
		t.Fatalf("column order %v", names)
	}
	rows := doc.Find("tbody tr[data-search-term]")
	if rows.Length() != 2 {
		t.Fatalf("expected 2 user rows, got %d", rows.Length())
	}
	if rows.First().AttrOr("data-user-id", "") != "7" {
		t.Fatalf("row order broken")
	}
	// Ana: Aufgabe 1 zugewiesen (pending), Aufgabe 2 zuweisbar
	first := rows.First().Find("td")
	if first.Eq(0).AttrOr("data-state", "") != "pending" {
		t.Fatalf("expected pending cell, got %q", first.Eq(0).AttrOr("data-state", ""))
	}
	if first.Eq(1).Find("form[action='/aufgaben/assign']").Length() != 1 {
		t.Fatalf("expected assign button for eligible task")
	}
	// Bo: Aufgabe 2 weder zugewiesen noch zuweisbar
	second := rows.Eq(1).Find("td")
	if second.Eq(1).Find(".bi-x-lg.text-danger").Length() != 1 {
		t.Fatalf("expected ineligible marker")
	}
	// N Aufgaben + Abschlusszelle
	if first.Length() != 3 {
		t.Fatalf("expected 3 td per row, got %d", first.Length())
	}
}

func TestBuildTable_EscapesNames(t *testing.T) {
	s := decodeTestSnapshot(t)
	h, err := BuildTable(s, testURLs(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(h), "<script>") {
		t.Fatalf("user name rendered as markup")
	}
	if !strings.Contains(string(h), "&lt;script&gt;alert(1)&lt;/script&gt; bo") {
		t.Fatalf("escaped name missing")
	}
}

func TestBuildTable_HeaderMetadataAndActions(t *testing.T) {
	s := decodeTestSnapshot(t)
	h, err := BuildTable(s, testURLs(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	doc := parseHTML(t, string(h))
	ths := doc.Find("thead th.sticky-top")
	first := ths.Eq(0)
	if first.Find(".bi-info-circle").Length() != 1 || first.Find(".bi-file-earmark-arrow-up").Length() != 1 {
		t.Fatalf("expected description and upload icons")
	}
	if first.Find(".notes-content strong").Text() != "PDF" {
		t.Fatalf("description markdown not rendered")
	}
	if ths.Eq(1).Find(".bi-repeat").Length() != 1 || ths.Eq(1).Find(".bi-info-circle").Length() != 0 {
		t.Fatalf("expected only recurring icon on second task")
	}
	if first.Find("a[href='/org/edit/aufgabe/1?next=%2Faufgaben']").Length() != 1 {
		t.Fatalf("edit link with next missing")
	}
	if first.Find("form[action='/aufgaben/assign-all'] input[name=person_cluster]").AttrOr("value", "") != "4" {
		t.Fatalf("assign-all must carry the person cluster")
	}
	if first.Find("form[action='/aufgaben/assign-country'] option[value='3']").Text() != "Peru" {
		t.Fatalf("country option missing")
	}
	if doc.Find("thead a[href='/org/add/aufgabe/?next=%2Faufgaben']").Length() != 1 {
		t.Fatalf("add task link missing")
	}
}

func TestBuildTable_QueryHidesRows(t *testing.T) {
	s := decodeTestSnapshot(t)
	h, err := BuildTable(s, testURLs(), Options{Query: "BILIC"})
	if err != nil {
		t.Fatal(err)
	}
	doc := parseHTML(t, string(h))
	rows := doc.Find("tbody tr[data-search-term]")
	if rows.Eq(0).HasClass("d-none") || !rows.Eq(1).HasClass("d-none") {
		t.Fatalf("search should only keep Ana visible")
	}
	if rows.Eq(0).AttrOr("data-search-term", "") != "ana bilic" {
		t.Fatalf("unexpected search key %q", rows.Eq(0).AttrOr("data-search-term", ""))
	}
	if doc.Find("#userSearch").AttrOr("value", "") != "BILIC" {
		t.Fatalf("query not prefilled")
	}
}

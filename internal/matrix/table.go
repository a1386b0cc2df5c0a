package matrix

import (
	"bytes"
	"html/template"
)

type headerView struct {
	Aufgabe   Aufgabe
	URLs      URLs
	CSRF      string
	Next      string
	Cluster   Label
	Countries []Country
}

type rowView struct {
	User      User
	SearchKey string
	Hidden    bool
	Cells     []cellView
}

type tableView struct {
	URLs    URLs
	Query   string
	Today   string
	Cluster Label
	Headers []headerView
	Rows    []rowView
}

func newTableView(s *Snapshot, urls URLs, opts Options) tableView {
	next := opts.Next
	if next == "" {
		next = urls.ListTable
	}
	tv := tableView{
		URLs:    urls,
		Query:   opts.Query,
		Today:   s.Today,
		Cluster: s.CurrentPersonCluster,
		Headers: make([]headerView, 0, len(s.Aufgaben)),
		Rows:    make([]rowView, 0, len(s.Users)),
	}
	for _, a := range s.Aufgaben {
		tv.Headers = append(tv.Headers, headerView{
			Aufgabe:   a,
			URLs:      urls,
			CSRF:      opts.CSRF,
			Next:      next,
			Cluster:   s.CurrentPersonCluster,
			Countries: s.Countries,
		})
	}
	for _, u := range s.Users {
		key := SearchKey(u)
		row := rowView{
			User:      u,
			SearchKey: key,
			Hidden:    !MatchesSearch(key, opts.Query),
			Cells:     make([]cellView, 0, len(s.Aufgaben)),
		}
		for _, a := range s.Aufgaben {
			row.Cells = append(row.Cells, newCellView(u, a, s.Lookup(u.ID, a.ID), s.Today, urls, opts))
		}
		tv.Rows = append(tv.Rows, row)
	}
	return tv
}

// BuildTable renders the full assignment table. Columns follow task order,
// rows follow user order; equal input gives equal output.
func BuildTable(s *Snapshot, urls URLs, opts Options) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "table", newTableView(s, urls, opts)); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

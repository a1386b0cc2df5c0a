package matrix

import (
	"bytes"
	"html/template"
)

// Options are per-request render inputs that do not come from the snapshot.
type Options struct {
	CSRF  string // Token für versteckte Formularfelder
	Next  string // Rücksprung nach Aktionen; leer = URLs.ListTable
	Query string // vorbelegter Suchbegriff
}

type badgeView struct {
	ID       int64
	DoneOpen DoneOpen
	Done     bool
}

type statusButton struct {
	Action   string
	Pending  bool
	Erledigt bool
	Label    string
	Class    string
	Icon     string
	CSRF     string
	Next     string
}

type cellView struct {
	Kind    CellKind
	User    User
	Aufgabe Aufgabe
	URLs    URLs
	CSRF    string
	Next    string

	UA            UserAufgabe
	DoneOpen      DoneOpen
	SubstepsDone  bool
	State         State
	BgClass       string
	UpcomingBadge string
}

func (c cellView) ShowCompleted() bool { return c.State == Completed }
func (c cellView) ShowPending() bool   { return c.State == Pending }
func (c cellView) ShowUpcoming() bool  { return c.State == Upcoming }

func (c cellView) ReminderEnabled() bool {
	return c.UA.MailNotifications && !c.UA.CurrentlySending
}

func (c cellView) DownloadedBy() string {
	if c.UA.FileDownloadedOfNames != "" {
		return "Heruntergeladen von " + c.UA.FileDownloadedOfNames
	}
	return "Noch nicht heruntergeladen"
}

func (c cellView) Badge() badgeView {
	return badgeView{ID: c.UA.ID, DoneOpen: c.DoneOpen, Done: c.SubstepsDone}
}

func (c cellView) Status(pending, erledigt bool, label, class, icon string) statusButton {
	return statusButton{
		Action:   BuildURL(c.URLs.UpdateStatus, c.UA.ID),
		Pending:  pending,
		Erledigt: erledigt,
		Label:    label,
		Class:    class,
		Icon:     icon,
		CSRF:     c.CSRF,
		Next:     c.Next,
	}
}

// BackgroundClass shades a cell: done, pending, overdue, then not yet due.
func BackgroundClass(ua UserAufgabe, today string) string {
	switch ua.State() {
	case Completed:
		return "bg-success bg-opacity-25"
	case Pending:
		return "bg-warning bg-opacity-25"
	}
	if IsDateBeforeOrEqual(ua.Faellig, today) {
		return "bg-danger bg-opacity-25"
	}
	return "bg-dark bg-opacity-10"
}

// UpcomingBadgeClass is bg-danger iff the due date is today or earlier.
func UpcomingBadgeClass(ua UserAufgabe, today string) string {
	if IsDateBeforeOrEqual(ua.Faellig, today) {
		return "bg-danger"
	}
	return "bg-dark"
}

func newCellView(user User, aufgabe Aufgabe, in CellInput, today string, urls URLs, opts Options) cellView {
	c := cellView{
		Kind:    in.Kind,
		User:    user,
		Aufgabe: aufgabe,
		URLs:    urls,
		CSRF:    opts.CSRF,
		Next:    opts.Next,
	}
	if c.Next == "" {
		c.Next = urls.ListTable
	}
	if in.Kind != Assigned {
		return c
	}
	ua := in.Assignment.UserAufgabe
	if ua.AufgabeName == "" {
		ua.AufgabeName = aufgabe.Name
	}
	c.UA = ua
	c.DoneOpen = in.Assignment.SubstepsDoneOpen
	c.SubstepsDone = in.Assignment.SubstepsDone
	c.State = ua.State()
	c.BgClass = BackgroundClass(ua, today)
	if c.State == Pending && c.SubstepsDone {
		c.BgClass += " table-success"
	}
	c.UpcomingBadge = UpcomingBadgeClass(ua, today)
	return c
}

// RenderCell renders one (user, task) cell.
func RenderCell(user User, aufgabe Aufgabe, in CellInput, today string, urls URLs, opts Options) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "cell", newCellView(user, aufgabe, in, today, urls, opts)); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderPendingBadge renders the badge that replaces #pending-badge-{id} after a toggle.
func RenderPendingBadge(id int64, doneOpen DoneOpen, done bool) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "badge", badgeView{ID: id, DoneOpen: doneOpen, Done: done}); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

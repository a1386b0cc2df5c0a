package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fwmsg/aufgaben-web/internal/validate"
)

type User struct {
	ID        int64  `json:"id" validate:"gt=0"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName is first name plus last name, or the username when no last name is set.
func (u User) DisplayName() string {
	last := u.LastName
	if last == "" {
		last = u.Username
	}
	return u.FirstName + " " + last
}

type Aufgabe struct {
	ID           int64  `json:"id" validate:"gt=0"`
	Name         string `json:"name" validate:"required"`
	Beschreibung string `json:"beschreibung"`
	MitUpload    bool   `json:"mitupload"`
	Wiederholung bool   `json:"wiederholung"`
}

type UserAufgabe struct {
	ID                    int64  `json:"id" validate:"gt=0"`
	AufgabeName           string `json:"aufgabe_name"`
	Erledigt              bool   `json:"erledigt"`
	ErledigtAm            string `json:"erledigt_am" validate:"isodate"`
	Pending               bool   `json:"pending"`
	Faellig               string `json:"faellig" validate:"isodate"`
	File                  bool   `json:"file"`
	FileName              string `json:"file_name"`
	FileDownloadedOfNames string `json:"file_downloaded_of_names"`
	MailNotifications     bool   `json:"mail_notifications"`
	LastReminder          string `json:"last_reminder" validate:"isodate"`
	CurrentlySending      bool   `json:"currently_sending"`
}

// State is the visible display state of an assignment.
type State int

const (
	Upcoming State = iota
	Pending
	Completed
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Pending:
		return "pending"
	default:
		return "upcoming"
	}
}

// State applies the precedence erledigt > pending > upcoming.
func (ua UserAufgabe) State() State {
	switch {
	case ua.Erledigt:
		return Completed
	case ua.Pending:
		return Pending
	default:
		return Upcoming
	}
}

// DoneOpen is the "done/total" sub-step counter. The backend sends either a
// string like "2/3" or false when the task has no sub-steps.
type DoneOpen string

func (d *DoneOpen) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")), bytes.Equal(b, []byte("true")):
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("zwischenschritte_done_open: %w", err)
	}
	// toggle-Antworten enthalten bereits das Präfix
	*d = DoneOpen(strings.TrimSpace(strings.TrimPrefix(s, "Pending")))
	return nil
}

func (d DoneOpen) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("false"), nil
	}
	return json.Marshal(string(d))
}

type Assignment struct {
	UserAufgabe      UserAufgabe `json:"user_aufgabe"`
	SubstepsDoneOpen DoneOpen    `json:"zwischenschritte_done_open"`
	SubstepsDone     bool        `json:"zwischenschritte_done"`
}

type Zwischenschritt struct {
	ID           int64  `json:"id" validate:"gt=0"`
	Name         string `json:"name" validate:"required"`
	Beschreibung string `json:"beschreibung"`
	Erledigt     bool   `json:"erledigt"`
}

// SubstepList is the lazily loaded sub-step panel of one assignment.
type SubstepList struct {
	TaskID   int64             `json:"-"`
	TaskName string            `json:"task_name"`
	UserName string            `json:"user_name"`
	Steps    []Zwischenschritt `json:"zwischenschritte" validate:"dive"`
}

// Progress reports the counter text and whether every step is done.
func (l SubstepList) Progress() (DoneOpen, bool) {
	if len(l.Steps) == 0 {
		return "", false
	}
	done := 0
	for _, s := range l.Steps {
		if s.Erledigt {
			done++
		}
	}
	return DoneOpen(strconv.Itoa(done) + "/" + strconv.Itoa(len(l.Steps))), done == len(l.Steps)
}

type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Label is the current person cluster. The backend sends an id, a name or null.
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("current_person_cluster: %w", err)
	}
	*l = Label(n.String())
	return nil
}

// Snapshot is the full input of one table render.
type Snapshot struct {
	Users                []User                         `json:"users" validate:"dive"`
	Aufgaben             []Aufgabe                      `json:"aufgaben" validate:"dive"`
	Assigned             map[int64]map[int64]Assignment `json:"user_aufgaben_assigned" validate:"dive,dive"`
	Eligible             map[int64][]int64              `json:"user_aufgaben_eligible"`
	Countries            []Country                      `json:"countries"`
	Today                string                         `json:"today" validate:"required,isodate"`
	CurrentPersonCluster Label                          `json:"current_person_cluster"`
}

// CellKind says how a (user, task) pair renders.
type CellKind int

const (
	Ineligible CellKind = iota
	Assignable
	Assigned
)

// CellInput is the resolved input of one cell.
type CellInput struct {
	Kind       CellKind
	Assignment Assignment
}

// Lookup resolves the cell for userID and aufgabeID. Assigned wins over eligible.
func (s *Snapshot) Lookup(userID, aufgabeID int64) CellInput {
	if a, ok := s.Assigned[userID][aufgabeID]; ok {
		return CellInput{Kind: Assigned, Assignment: a}
	}
	for _, id := range s.Eligible[userID] {
		if id == aufgabeID {
			return CellInput{Kind: Assignable}
		}
	}
	return CellInput{Kind: Ineligible}
}

// FindAssignment returns the assignment with the given UserAufgabe id.
func (s *Snapshot) FindAssignment(id int64) (User, Aufgabe, Assignment, bool) {
	for _, u := range s.Users {
		row := s.Assigned[u.ID]
		if row == nil {
			continue
		}
		for _, a := range s.Aufgaben {
			if as, ok := row[a.ID]; ok && as.UserAufgabe.ID == id {
				return u, a, as, true
			}
		}
	}
	return User{}, Aufgabe{}, Assignment{}, false
}

type snapshotWire struct {
	Snapshot
	Matrix map[int64]map[int64]json.RawMessage `json:"user_aufgaben_matrix"`
}

type envelope struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// DecodeSnapshot reads a snapshot either bare or wrapped in {success, data}.
// The dense user_aufgaben_matrix variant (object | task id | null per cell) is
// folded into Assigned and Eligible.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		if !*env.Success {
			if env.Error == "" {
				env.Error = "backend reported failure"
			}
			return nil, fmt.Errorf("snapshot: %s", env.Error)
		}
		if len(env.Data) > 0 {
			raw = env.Data
		}
	}
	var w snapshotWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	s := w.Snapshot
	if s.Assigned == nil {
		s.Assigned = map[int64]map[int64]Assignment{}
	}
	if s.Eligible == nil {
		s.Eligible = map[int64][]int64{}
	}
	for uid, row := range w.Matrix {
		for aid, cell := range row {
			cell = bytes.TrimSpace(cell)
			switch {
			case len(cell) == 0 || bytes.Equal(cell, []byte("null")):
			case cell[0] == '{':
				var a Assignment
				if err := json.Unmarshal(cell, &a); err != nil {
					return nil, fmt.Errorf("snapshot: matrix[%d][%d]: %w", uid, aid, err)
				}
				if s.Assigned[uid] == nil {
					s.Assigned[uid] = map[int64]Assignment{}
				}
				s.Assigned[uid][aid] = a
			default:
				s.Eligible[uid] = append(s.Eligible[uid], aid)
			}
		}
	}
	if err := validate.Struct(s); err != nil {
		return nil, err
	}
	return &s, nil
}

package matrix

import (
	"bytes"
	"html/template"
	"strconv"
)

type stepView struct {
	Zwischenschritt
	ToggleURL string
}

type substepsView struct {
	TaskID   int64
	TaskName string
	UserName string
	Steps    []stepView
}

// RenderSubsteps renders the sub-step panel of one assignment.
func RenderSubsteps(l SubstepList, urls URLs) (template.HTML, error) {
	v := substepsView{TaskID: l.TaskID, TaskName: l.TaskName, UserName: l.UserName}
	base := BuildURL(urls.ToggleSubstep, l.TaskID)
	for _, s := range l.Steps {
		v.Steps = append(v.Steps, stepView{Zwischenschritt: s, ToggleURL: base + strconv.FormatInt(s.ID, 10)})
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "substeps", v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// SetStep updates one step in place; false if the id is unknown.
func (l *SubstepList) SetStep(stepID int64, done bool) bool {
	for i := range l.Steps {
		if l.Steps[i].ID == stepID {
			l.Steps[i].Erledigt = done
			return true
		}
	}
	return false
}

// Clone copies the list so cached state is never shared with a renderer.
func (l SubstepList) Clone() SubstepList {
	out := l
	out.Steps = append([]Zwischenschritt(nil), l.Steps...)
	return out
}

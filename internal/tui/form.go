package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"profilereview/internal/session"
	"profilereview/pkg/domain"
)

const dateLayout = "2006-01-02"

type formKind int

const (
	formProject formKind = iota
	formSkill
	formScalar
)

// form collects operator input for one add or header update.
type form struct {
	kind   formKind
	field  domain.Field
	title  string
	labels []string
	inputs []textinput.Model
	index  int
}

func newForm(kind formKind, title string, labels ...string) *form {
	f := &form{kind: kind, title: title, labels: labels}
	for i := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		if i == 0 {
			in.Focus()
		}
		f.inputs = append(f.inputs, in)
	}
	return f
}

func newProjectForm() *form {
	f := newForm(formProject, "New project experience",
		"Start date", "End date", "Consulting level", "Project", "Description")
	f.inputs[0].Placeholder = dateLayout
	f.inputs[1].Placeholder = dateLayout
	return f
}

func newSkillForm() *form {
	return newForm(formSkill, "New skill", "Name", "Area")
}

func newScalarForm(field domain.Field, current string) *form {
	f := newForm(formScalar, "Update "+fieldLabel(field), fieldLabel(field))
	f.field = field
	f.inputs[0].SetValue(current)
	return f
}

// update moves focus on tab/enter and reports done when enter is pressed on
// the last input.
func (f *form) update(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.focus(f.index + 1)
		return false, nil
	case "shift+tab", "up":
		f.focus(f.index - 1)
		return false, nil
	case "enter":
		if f.index == len(f.inputs)-1 {
			return true, nil
		}
		f.focus(f.index + 1)
		return false, nil
	}
	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	return false, cmd
}

func (f *form) focus(i int) {
	if i < 0 || i >= len(f.inputs) {
		return
	}
	f.inputs[f.index].Blur()
	f.index = i
	f.inputs[f.index].Focus()
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// projectForm parses the inputs. Blank dates stay zero so the session treats
// the form as incomplete.
func (f *form) projectForm(loc *time.Location) (session.ProjectForm, error) {
	start, err := parseDate(f.value(0), loc)
	if err != nil {
		return session.ProjectForm{}, fmt.Errorf("start date: %w", err)
	}
	end, err := parseDate(f.value(1), loc)
	if err != nil {
		return session.ProjectForm{}, fmt.Errorf("end date: %w", err)
	}
	return session.ProjectForm{
		StartDate:       start,
		EndDate:         end,
		ConsultingLevel: f.value(2),
		Project:         f.value(3),
		Description:     f.value(4),
	}, nil
}

func (f *form) skillForm() session.SkillForm {
	return session.SkillForm{Name: f.value(0), Area: f.value(1)}
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteByte('\n')
	for i, in := range f.inputs {
		label := f.labels[i]
		if i == f.index {
			label = focusStyle.Render("> " + label)
		} else {
			label = "  " + label
		}
		fmt.Fprintf(&b, "%-20s %s\n", label, in.View())
	}
	b.WriteString(dimStyle.Render("enter next/submit · tab move · esc cancel"))
	return b.String()
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, value, loc)
}

func fieldLabel(field domain.Field) string {
	switch field {
	case domain.FieldFirstName:
		return "first name"
	case domain.FieldLastName:
		return "last name"
	case domain.FieldConsultingLevel:
		return "consulting level"
	case domain.FieldRegion:
		return "region"
	}
	return strings.ToLower(string(field))
}

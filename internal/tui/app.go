// Package tui is the operator console: a bubbletea program driving one
// editing session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"profilereview/internal/session"
	"profilereview/pkg/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	modifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	localStyle    = modifiedStyle.Bold(true).Underline(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const helpLine = "e edit · esc cancel · p project · k skill · f/l/c/g header · del remove · s save · a accept · x discard · d diff · r reload · tab focus · q quit"

type focusPane int

const (
	focusProjects focusPane = iota
	focusSkills
)

// opDoneMsg reports the end of a network-bound session operation.
type opDoneMsg struct {
	op  string
	err error
}

// App is the console model.
type App struct {
	ctx     context.Context
	session *session.Session
	loc     *time.Location

	view       session.View
	loaded     bool
	projects   table.Model
	projectIDs []string
	skills     table.Model
	skillIDs   []string
	focus      focusPane
	form       *form

	busy   string
	status string
	err    error
	width  int
	height int
}

// NewApp builds the console for s. Dates typed into forms are read in loc.
func NewApp(ctx context.Context, s *session.Session, loc *time.Location) *App {
	if loc == nil {
		loc = time.UTC
	}
	projects := table.New(table.WithColumns([]table.Column{
		{Title: "State", Width: 9},
		{Title: "Project", Width: 20},
		{Title: "Start", Width: 10},
		{Title: "End", Width: 10},
		{Title: "Level", Width: 12},
		{Title: "Client", Width: 16},
	}), table.WithHeight(8), table.WithFocused(true))
	skills := table.New(table.WithColumns([]table.Column{
		{Title: "State", Width: 9},
		{Title: "Skill", Width: 20},
		{Title: "Area", Width: 14},
	}), table.WithHeight(8))
	return &App{ctx: ctx, session: s, loc: loc, projects: projects, skills: skills, width: 100}
}

// Init loads the profile.
func (a *App) Init() tea.Cmd {
	return a.run("load", a.session.Load)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		rows := max(3, (msg.Height-16)/2)
		a.projects.SetHeight(rows)
		a.skills.SetHeight(rows)
		return a, nil
	case opDoneMsg:
		a.busy = ""
		a.report(msg.op, msg.err)
		a.refresh()
		return a, nil
	case tea.KeyMsg:
		if a.form != nil {
			return a, a.updateForm(msg)
		}
		return a.updateBrowse(msg)
	}
	return a, nil
}

func (a *App) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "tab":
		a.toggleFocus()
		return a, nil
	}
	if a.busy != "" {
		return a, nil
	}
	switch msg.String() {
	case "r":
		return a, a.run("reload", a.session.Load)
	case "d":
		enabled := !a.session.DiffMode()
		return a, a.run("diff", func(ctx context.Context) error { return a.session.SetDiffMode(ctx, enabled) })
	case "s":
		return a, a.run("save", a.session.Save)
	case "a":
		return a, a.run("accept", a.session.Accept)
	case "x":
		return a, a.run("discard", a.session.Discard)
	case "e":
		a.apply("edit", a.session.BeginEdit())
	case "esc":
		a.apply("cancel", a.session.CancelEdit())
	case "delete", "backspace", "D":
		a.apply("delete", a.deleteSelected())
	case "p", "k", "f", "l", "c", "g":
		a.openForm(msg.String())
	default:
		var cmd tea.Cmd
		if a.focus == focusProjects {
			a.projects, cmd = a.projects.Update(msg)
		} else {
			a.skills, cmd = a.skills.Update(msg)
		}
		return a, cmd
	}
	return a, nil
}

func (a *App) openForm(key string) {
	if a.session.State() != session.StateEditing {
		a.report("edit", session.ErrNotEditing)
		return
	}
	switch key {
	case "p":
		a.form = newProjectForm()
	case "k":
		a.form = newSkillForm()
	case "f":
		a.form = newScalarForm(domain.FieldFirstName, a.view.Header.FirstName)
	case "l":
		a.form = newScalarForm(domain.FieldLastName, a.view.Header.LastName)
	case "c":
		a.form = newScalarForm(domain.FieldConsultingLevel, a.view.Header.ConsultingLevel)
	case "g":
		a.form = newScalarForm(domain.FieldRegion, a.view.Header.Region)
	}
}

func (a *App) updateForm(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		a.form = nil
		return nil
	}
	done, cmd := a.form.update(msg)
	if !done {
		return cmd
	}
	f := a.form
	a.form = nil
	switch f.kind {
	case formProject:
		pf, err := f.projectForm(a.loc)
		if err != nil {
			a.report("add project", err)
			return nil
		}
		return a.run("add project", func(ctx context.Context) error {
			return requireComplete(a.session.AddProject(ctx, pf))
		})
	case formSkill:
		sf := f.skillForm()
		return a.run("add skill", func(ctx context.Context) error {
			return requireComplete(a.session.AddSkill(ctx, sf))
		})
	default:
		a.apply("update "+fieldLabel(f.field), a.updateScalar(f.field, f.value(0)))
	}
	return nil
}

var errIncompleteForm = errors.New("every field is required")

func requireComplete(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return errIncompleteForm
	}
	return nil
}

func (a *App) updateScalar(field domain.Field, value string) error {
	switch field {
	case domain.FieldFirstName:
		return a.session.UpdateFirstName(value)
	case domain.FieldLastName:
		return a.session.UpdateLastName(value)
	case domain.FieldConsultingLevel:
		return a.session.UpdateConsultingLevel(value)
	default:
		return a.session.UpdateRegion(value)
	}
}

func (a *App) deleteSelected() error {
	if a.focus == focusProjects {
		if i := a.projects.Cursor(); i >= 0 && i < len(a.projectIDs) {
			return a.session.DeleteProject(a.projectIDs[i])
		}
		return nil
	}
	if i := a.skills.Cursor(); i >= 0 && i < len(a.skillIDs) {
		return a.session.DeleteSkill(a.skillIDs[i])
	}
	return nil
}

func (a *App) toggleFocus() {
	if a.focus == focusProjects {
		a.focus = focusSkills
		a.projects.Blur()
		a.skills.Focus()
		return
	}
	a.focus = focusProjects
	a.skills.Blur()
	a.projects.Focus()
}

// run executes fn off the update loop and reports back with opDoneMsg.
func (a *App) run(op string, fn func(context.Context) error) tea.Cmd {
	a.busy = op
	a.err = nil
	ctx := a.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (a *App) apply(op string, err error) {
	a.report(op, err)
	a.refresh()
}

func (a *App) report(op string, err error) {
	a.err = err
	if err != nil {
		a.status = ""
		return
	}
	a.status = op + " ok"
}

func (a *App) refresh() {
	view, err := a.session.View()
	if err != nil {
		return
	}
	a.view = view
	a.loaded = true
	rows := make([]table.Row, 0, len(view.Projects))
	a.projectIDs = a.projectIDs[:0]
	for _, p := range view.Projects {
		rows = append(rows, table.Row{string(p.ItemState), p.ProjectName, p.StartDate, p.EndDate, p.ConsultingLevel, p.ClientName})
		a.projectIDs = append(a.projectIDs, p.ID)
	}
	a.projects.SetRows(rows)
	rows = make([]table.Row, 0, len(view.Skills))
	a.skillIDs = a.skillIDs[:0]
	for _, s := range view.Skills {
		rows = append(rows, table.Row{string(s.ItemState), s.Name, s.Area})
		a.skillIDs = append(a.skillIDs, s.ID)
	}
	a.skills.SetRows(rows)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.form != nil {
		return panelStyle.Render(a.form.view())
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile review · " + a.session.Email()))
	b.WriteByte('\n')
	if !a.loaded {
		b.WriteString(dimStyle.Render("loading…"))
		b.WriteString("\n")
		b.WriteString(a.footer())
		return b.String()
	}
	b.WriteString(a.headerLine())
	b.WriteByte('\n')
	mode := "read"
	if a.view.EditMode {
		mode = "edit"
	}
	diff := "off"
	if a.view.DiffMode {
		diff = "on"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("state %s · mode %s · diff %s · %d staged", a.view.State, mode, diff, a.view.Pending)))
	b.WriteByte('\n')
	b.WriteString(panelStyle.Render(a.projects.View()))
	b.WriteByte('\n')
	skills := panelStyle.Render(a.skills.View())
	chart := panelStyle.Render(renderAreaChart(a.view.Areas, max(20, a.width-lipgloss.Width(skills)-6)))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, skills, chart))
	b.WriteByte('\n')
	b.WriteString(a.footer())
	return b.String()
}

func (a *App) headerLine() string {
	parts := make([]string, 0, len(domain.ScalarFields))
	for _, field := range domain.ScalarFields {
		text := fmt.Sprintf("%s: %s", fieldLabel(field), a.view.Header.Value(field))
		switch {
		case a.view.LocallyModified(field):
			text = localStyle.Render(text)
		case a.view.Modified(field):
			text = modifiedStyle.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "  ")
}

func (a *App) footer() string {
	var status string
	switch {
	case a.busy != "":
		status = dimStyle.Render(a.busy + "…")
	case a.err != nil:
		status = errStyle.Render(a.err.Error())
	default:
		status = a.status
	}
	return status + "\n" + dimStyle.Render(helpLine)
}

package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"profilereview/internal/infra/persistence/memory"
	"profilereview/internal/profile"
	"profilereview/internal/session"
	"profilereview/pkg/domain"
)

const email = "ana@example.com"

func newTestApp(t *testing.T) (*App, *profile.Service) {
	t.Helper()
	ids := 0
	svc := profile.NewService(memory.NewStore(), profile.WithIDGenerator(func() string {
		ids++
		return "srv-" + strings.Repeat("x", ids)
	}))
	err := svc.Seed(context.Background(), domain.ProfileSpecification{
		ProfileHeader: domain.ProfileHeader{Email: email, FirstName: "Ana", LastName: "Pop", Region: "Cluj"},
		ProjectExperience: []domain.ProjectExperienceTransport{
			{ID: "p1", ProjectName: "Atlas", StartDate: 1609459200, EndDate: 1612137600},
		},
		Skills: []domain.Skill{{ID: "s1", Name: "Go", Area: "backend"}, {ID: "s2", Name: "SQL", Area: "data"}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := session.New(email, profile.Local{Service: svc})
	app := NewApp(context.Background(), s, time.UTC)
	drain(t, app, app.Init())
	return app, svc
}

// drain runs cmd synchronously when it is a session operation (the app is
// busy) and feeds its result back. Other commands, such as the text input
// cursor blink, are dropped.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil || app.busy == "" {
		return
	}
	if msg, ok := cmd().(opDoneMsg); ok {
		_, _ = app.Update(msg)
	}
}

// typeText presses each rune of text.
func typeText(t *testing.T, app *App, text string) {
	t.Helper()
	for _, r := range text {
		press(t, app, string(r))
	}
}

func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "delete":
			msg = tea.KeyMsg{Type: tea.KeyDelete}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := app.Update(msg)
		drain(t, app, cmd)
	}
}

func TestAppLoadsAndRenders(t *testing.T) {
	app, _ := newTestApp(t)
	if !app.loaded {
		t.Fatalf("expected view loaded after init, err=%v", app.err)
	}
	out := app.View()
	for _, want := range []string{"Profile review · " + email, "Atlas", "backend", "first name: Ana"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestAppEditSaveFlow(t *testing.T) {
	app, svc := newTestApp(t)

	press(t, app, "k")
	if app.form != nil {
		t.Fatalf("forms require edit mode")
	}
	if app.err != session.ErrNotEditing {
		t.Fatalf("expected ErrNotEditing, got %v", app.err)
	}

	press(t, app, "e", "k", "R", "u", "s", "t", "enter", "b", "a", "c", "k", "enter")
	if app.err != nil {
		t.Fatalf("add skill: %v", app.err)
	}
	if len(app.skillIDs) != 3 || app.skillIDs[2] != "srv-x" {
		t.Fatalf("expected echoed skill appended, got %v", app.skillIDs)
	}

	press(t, app, "tab", "delete")
	if app.view.Pending != 2 {
		t.Fatalf("expected add and delete staged, got %d", app.view.Pending)
	}

	press(t, app, "g", "esc")
	if app.form != nil {
		t.Fatalf("esc should close the form")
	}
	press(t, app, "s")
	if app.err != nil || app.view.State != session.StateReady {
		t.Fatalf("save: state=%s err=%v", app.view.State, app.err)
	}
	record, _ := svc.Store().GetProfile(email)
	if len(record.Pending) != 2 {
		t.Fatalf("expected 2 pending records on the backend, got %d", len(record.Pending))
	}
}

func TestAppIncompleteProjectForm(t *testing.T) {
	app, _ := newTestApp(t)
	press(t, app, "e", "p", "enter", "enter", "enter", "enter", "enter")
	if app.err != errIncompleteForm {
		t.Fatalf("expected incomplete form error, got %v", app.err)
	}
	press(t, app, "p")
	typeText(t, app, "2021-01-01")
	press(t, app, "enter")
	typeText(t, app, "2021-13-01")
	press(t, app, "enter", "enter", "enter", "enter")
	if app.err == nil || !strings.Contains(app.err.Error(), "end date") {
		t.Fatalf("expected end date parse error, got %v", app.err)
	}
	if app.form != nil || app.busy != "" {
		t.Fatalf("a rejected form closes without starting an operation")
	}

	press(t, app, "p")
	typeText(t, app, "01/02/2021")
	press(t, app, "enter", "enter", "enter", "enter", "enter")
	if app.err == nil || !strings.Contains(app.err.Error(), "start date") {
		t.Fatalf("expected start date parse error, got %v", app.err)
	}
}

func TestAppHeaderUpdateMarksField(t *testing.T) {
	app, _ := newTestApp(t)
	press(t, app, "e", "f")
	if app.form == nil || app.form.value(0) != "Ana" {
		t.Fatalf("expected scalar form prefilled with current value")
	}
	app.form.inputs[0].SetValue("Anca")
	press(t, app, "enter")
	if !app.view.LocallyModified(domain.FieldFirstName) || app.view.Header.FirstName != "Anca" {
		t.Fatalf("expected first name staged, got %+v", app.view.Header)
	}
}

func TestRenderAreaChart(t *testing.T) {
	out := renderAreaChart([]session.AreaCount{{Area: "backend", Count: 4}, {Area: "data", Count: 1}}, 30)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per area, got %q", out)
	}
	if strings.Count(lines[0], "█") != 17 || strings.Count(lines[1], "█") != 4 {
		t.Fatalf("unexpected bar lengths:\n%s", out)
	}
	if !strings.HasSuffix(lines[1], " 1") || !strings.HasPrefix(lines[1], "data    ") {
		t.Fatalf("unexpected label layout: %q", lines[1])
	}
	if got := renderAreaChart(nil, 30); !strings.Contains(got, "no skills") {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

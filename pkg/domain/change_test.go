package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestChangeRecordWireShape(t *testing.T) {
	rec := NewAddProject(AddProjectArgs{
		NewID:             "p-9",
		ConsultingLevelID: "L3",
		Description:       "rollout",
		StartDate:         100,
		EndDate:           200,
		ProjectID:         "prj-1",
	})
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("decode generic: %v", err)
	}
	if generic["changeType"] != "ADD" || generic["resource"] != "PROJECT" {
		t.Fatalf("unexpected envelope: %s", data)
	}
	args, ok := generic["args"].(map[string]any)
	if !ok {
		t.Fatalf("expected args object: %s", data)
	}
	for _, key := range []string{"newId", "consultingLevelId", "description", "startDate", "endDate", "projectId"} {
		if _, ok := args[key]; !ok {
			t.Fatalf("missing args key %s in %s", key, data)
		}
	}

	var decoded ChangeRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Args != rec.Args || decoded.Type != rec.Type {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, rec)
	}
}

func TestChangeRecordDecodesScalarUpdate(t *testing.T) {
	var rec ChangeRecord
	raw := `{"changeType":"UPDATE","resource":"REGION","args":{"region":"Cluj"}}`
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	field, value, ok := rec.ScalarValue()
	if !ok || field != FieldRegion || value != "Cluj" {
		t.Fatalf("unexpected scalar payload %s=%q ok=%v", field, value, ok)
	}
	if rec.EntityID() != "" {
		t.Fatalf("scalar updates carry no entity id")
	}
}

func TestChangeRecordRejectsMismatchedTypes(t *testing.T) {
	cases := []string{
		`{"changeType":"UPDATE","resource":"PROJECT","args":{"id":"p1"}}`,
		`{"changeType":"DELETE","resource":"FIRST_NAME","args":{"firstName":"x"}}`,
		`{"changeType":"ADD","resource":"CERTIFICATION","args":{}}`,
	}
	for _, raw := range cases {
		var rec ChangeRecord
		err := json.Unmarshal([]byte(raw), &rec)
		if !errors.Is(err, ErrInvalidChange) {
			t.Fatalf("expected ErrInvalidChange for %s, got %v", raw, err)
		}
	}

	bad := ChangeRecord{Type: ChangeAdd, Args: DeleteSkillArgs{ID: "s1"}}
	if _, err := json.Marshal(bad); err == nil || !strings.Contains(err.Error(), "invalid change record") {
		t.Fatalf("expected marshal to reject mismatched record, got %v", err)
	}
	if err := (ChangeRecord{Type: ChangeAdd}).Validate(); !errors.Is(err, ErrInvalidChange) {
		t.Fatalf("expected missing args to be invalid, got %v", err)
	}
}

func TestNewScalarUpdateUnknownField(t *testing.T) {
	rec := NewScalarUpdate(Field("NICKNAME"), "bob")
	if err := rec.Validate(); err == nil {
		t.Fatalf("expected unknown field to produce invalid record")
	}
	if rec.Resource() != "" {
		t.Fatalf("expected empty resource, got %s", rec.Resource())
	}
}

func TestChangeRecordEntityIDs(t *testing.T) {
	cases := []struct {
		rec  ChangeRecord
		want string
	}{
		{NewAddProject(AddProjectArgs{NewID: "p1"}), "p1"},
		{NewDeleteProject("p2"), "p2"},
		{NewAddSkill(AddSkillArgs{NewID: "s1"}), "s1"},
		{NewDeleteSkill("s2"), "s2"},
	}
	for _, tc := range cases {
		if got := tc.rec.EntityID(); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}

type stubRule struct {
	name string
	res  Result
	err  error
}

func (r stubRule) Name() string { return r.name }

func (r stubRule) Evaluate(context.Context, RuleView, []ChangeRecord) (Result, error) {
	return r.res, r.err
}

func TestRulesEngineMergesResults(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "a", res: Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}}})
	engine.Register(stubRule{name: "b", res: Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 || !res.HasBlocking() {
		t.Fatalf("expected merged blocking result, got %+v", res)
	}
	if len(engine.Rules()) != 2 {
		t.Fatalf("expected two registered rules")
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "fails", err: boom})
	engine.Register(stubRule{name: "never", res: Result{Violations: []Violation{{Severity: SeverityBlock}}}})
	if _, err := engine.Evaluate(context.Background(), nil, nil); !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}

	var nilEngine *RulesEngine
	res, err := nilEngine.Evaluate(context.Background(), nil, nil)
	if err != nil || len(res.Violations) != 0 {
		t.Fatalf("nil engine should evaluate to empty result")
	}
}

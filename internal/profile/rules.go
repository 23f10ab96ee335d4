package profile

import (
	"context"
	"fmt"
	"strings"

	"profilereview/pkg/domain"
)

// Rule names.
const (
	RuleDateWindow       = "date_window"
	RuleUnknownReference = "unknown_reference"
	RuleScalarValue      = "scalar_value"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(DateWindowRule())
	engine.Register(UnknownReferenceRule())
	engine.Register(ScalarValueRule())
	return engine
}

// DateWindowRule warns when an added project entry ends before it starts.
func DateWindowRule() domain.Rule {
	return dateWindowRule{}
}

type dateWindowRule struct{}

func (dateWindowRule) Name() string { return RuleDateWindow }

func (dateWindowRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.ChangeRecord) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		args, ok := change.Args.(domain.AddProjectArgs)
		if !ok || args.EndDate == 0 || args.StartDate <= args.EndDate {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleDateWindow,
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("project entry %s ends before it starts", args.NewID),
			Resource: domain.ResourceProject,
			EntityID: args.NewID,
		})
	}
	return res, nil
}

// UnknownReferenceRule warns when a DELETE targets an entity that is neither
// committed nor added earlier in the log.
func UnknownReferenceRule() domain.Rule {
	return unknownReferenceRule{}
}

type unknownReferenceRule struct{}

func (unknownReferenceRule) Name() string { return RuleUnknownReference }

func (unknownReferenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.ChangeRecord) (domain.Result, error) {
	res := domain.Result{}
	added := make(map[domain.Resource]map[string]struct{})
	for _, change := range changes {
		if change.Type == domain.ChangeAdd {
			if added[change.Resource()] == nil {
				added[change.Resource()] = make(map[string]struct{})
			}
			added[change.Resource()][change.EntityID()] = struct{}{}
			continue
		}
		if change.Type != domain.ChangeDelete {
			continue
		}
		id := change.EntityID()
		if _, ok := added[change.Resource()][id]; ok {
			continue
		}
		var found bool
		switch change.Resource() {
		case domain.ResourceProject:
			_, found = view.FindProject(id)
		case domain.ResourceSkill:
			_, found = view.FindSkill(id)
		}
		if found {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleUnknownReference,
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("%s %s does not exist", strings.ToLower(string(change.Resource())), id),
			Resource: change.Resource(),
			EntityID: id,
		})
	}
	return res, nil
}

// ScalarValueRule blocks header updates that would clear a field.
func ScalarValueRule() domain.Rule {
	return scalarValueRule{}
}

type scalarValueRule struct{}

func (scalarValueRule) Name() string { return RuleScalarValue }

func (scalarValueRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.ChangeRecord) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		field, value, ok := change.ScalarValue()
		if !ok || strings.TrimSpace(value) != "" {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     RuleScalarValue,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("%s cannot be empty", field),
			Resource: change.Resource(),
		})
	}
	return res, nil
}

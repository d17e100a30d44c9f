package core

import (
	"context"
	"fmt"
	"strings"

	"annexcore/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewDuplicateSiblingNameRule())
	engine.Register(NewUniqueUserEmailRule())
	return engine
}

// NewDuplicateSiblingNameRule warns when a created or renamed province,
// district or university shares its name with a sibling under the same parent.
func NewDuplicateSiblingNameRule() domain.Rule {
	return duplicateSiblingNameRule{}
}

type duplicateSiblingNameRule struct{}

func (duplicateSiblingNameRule) Name() string { return "duplicate_sibling_name" }

func (r duplicateSiblingNameRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action == domain.ActionDelete {
			continue
		}
		var entity domain.EntityType
		var id, name, parent string
		var siblings []sibling
		switch after := change.After.(type) {
		case domain.Province:
			entity, id, name = domain.EntityProvince, after.ID, after.Name
			for _, p := range view.ListProvinces() {
				siblings = append(siblings, sibling{p.ID, p.Name})
			}
		case domain.District:
			entity, id, name, parent = domain.EntityDistrict, after.ID, after.Name, after.ProvinceID
			for _, d := range view.ListDistricts() {
				if d.ProvinceID == parent {
					siblings = append(siblings, sibling{d.ID, d.Name})
				}
			}
		case domain.University:
			entity, id, name, parent = domain.EntityUniversity, after.ID, after.Name, after.DistrictID
			for _, u := range view.ListUniversities() {
				if u.DistrictID == parent {
					siblings = append(siblings, sibling{u.ID, u.Name})
				}
			}
		default:
			continue
		}
		for _, s := range siblings {
			if s.id != id && strings.EqualFold(s.name, name) {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     r.Name(),
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("%s %s shares the name %q with %s", entity, id, name, s.id),
					Entity:   entity,
					EntityID: id,
				})
				break
			}
		}
	}
	return res, nil
}

type sibling struct {
	id, name string
}

// NewUniqueUserEmailRule blocks two accounts from sharing an email address.
func NewUniqueUserEmailRule() domain.Rule {
	return uniqueUserEmailRule{}
}

type uniqueUserEmailRule struct{}

func (uniqueUserEmailRule) Name() string { return "unique_user_email" }

func (r uniqueUserEmailRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	owners := make(map[string]string)
	res := domain.Result{}
	for _, u := range view.ListUsers() {
		key := strings.ToLower(u.Email)
		if first, ok := owners[key]; ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("user %s reuses the email of %s", u.ID, first),
				Entity:   domain.EntityUser,
				EntityID: u.ID,
			})
			continue
		}
		owners[key] = u.ID
	}
	return res, nil
}

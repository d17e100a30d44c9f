package domain

import (
	"fmt"
	"strings"
)

// ReferenceKind tags the variant carried by a ReferenceInput.
type ReferenceKind string

// Reference data variants, ordered from the root of the hierarchy down.
const (
	KindProvince   ReferenceKind = "province"
	KindDistrict   ReferenceKind = "district"
	KindUniversity ReferenceKind = "university"
)

// ParseReferenceKind maps user input onto a ReferenceKind.
func ParseReferenceKind(raw string) (ReferenceKind, error) {
	switch kind := ReferenceKind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case KindProvince, KindDistrict, KindUniversity:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown reference kind %q", raw)
	}
}

// Entity returns the entity type stored for the variant.
func (k ReferenceKind) Entity() EntityType {
	switch k {
	case KindDistrict:
		return EntityDistrict
	case KindUniversity:
		return EntityUniversity
	default:
		return EntityProvince
	}
}

// ParentField names the foreign key the variant requires, or "" for provinces.
func (k ReferenceKind) ParentField() string {
	switch k {
	case KindDistrict:
		return "province_id"
	case KindUniversity:
		return "district_id"
	default:
		return ""
	}
}

// ReferenceInput is the tagged payload submitted by reference data forms.
// Provinces carry only a name; districts and universities also carry the id
// of their parent.
type ReferenceInput struct {
	Kind     ReferenceKind `json:"kind"`
	Name     string        `json:"name"`
	ParentID string        `json:"parent_id,omitempty"`
}

// Normalize trims whitespace from every field.
func (in ReferenceInput) Normalize() ReferenceInput {
	in.Name = strings.TrimSpace(in.Name)
	in.ParentID = strings.TrimSpace(in.ParentID)
	return in
}

// Validate checks the per-variant required fields. Parent existence is
// checked by the store, which is the only place that can see it.
func (in ReferenceInput) Validate() error {
	switch in.Kind {
	case KindProvince, KindDistrict, KindUniversity:
	default:
		return ValidationError{
			Entity:  EntityType(in.Kind),
			Message: "unknown reference kind",
			Fields:  []FieldError{{Field: "kind", Message: fmt.Sprintf("unsupported value %q", in.Kind)}},
		}
	}
	var fields []FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "is required"})
	}
	if parent := in.Kind.ParentField(); parent != "" && strings.TrimSpace(in.ParentID) == "" {
		fields = append(fields, FieldError{Field: parent, Message: "is required"})
	}
	if in.Kind == KindProvince && strings.TrimSpace(in.ParentID) != "" {
		fields = append(fields, FieldError{Field: "parent_id", Message: "must be empty for provinces"})
	}
	if len(fields) == 0 {
		return nil
	}
	return ValidationError{Entity: in.Kind.Entity(), Message: "missing required fields", Fields: fields}
}

package core

import (
	"context"
	"strings"

	"annexcore/pkg/domain"
)

// Selector answers the cascading option queries behind the province and
// district pickers.
type Selector struct {
	store PersistentStore
}

// Selector returns a selector over the service's store.
func (s *Service) Selector() Selector {
	return Selector{store: s.store}
}

// DistrictsOf lists the districts of a province in insertion order. An
// empty or unknown province yields an empty list.
func (sel Selector) DistrictsOf(provinceID string) []District {
	out := []District{}
	if provinceID == "" {
		return out
	}
	for _, d := range sel.store.ListDistricts() {
		if d.ProvinceID == provinceID {
			out = append(out, d)
		}
	}
	return out
}

// UniversitiesOf lists the universities of a district in insertion order.
func (sel Selector) UniversitiesOf(districtID string) []University {
	out := []University{}
	if districtID == "" {
		return out
	}
	for _, u := range sel.store.ListUniversities() {
		if u.DistrictID == districtID {
			out = append(out, u)
		}
	}
	return out
}

// UniversityForm holds the transient state of the add or edit university
// form. The district selection is cleared whenever the province changes so
// it can never point outside the selected province.
type UniversityForm struct {
	svc        *Service
	id         string
	name       string
	provinceID string
	districtID string
}

// NewUniversityForm returns an empty form that creates a university on submit.
func (s *Service) NewUniversityForm() *UniversityForm {
	return &UniversityForm{svc: s}
}

// EditUniversity returns a form prefilled from an existing university.
func (s *Service) EditUniversity(id string) (*UniversityForm, error) {
	u, err := s.GetUniversity(id)
	if err != nil {
		return nil, err
	}
	form := &UniversityForm{svc: s, id: u.ID, name: u.Name, districtID: u.DistrictID}
	if d, ok := s.store.GetDistrict(u.DistrictID); ok {
		form.provinceID = d.ProvinceID
	}
	return form, nil
}

// SetName sets the university name.
func (f *UniversityForm) SetName(name string) { f.name = name }

// Name returns the current name.
func (f *UniversityForm) Name() string { return f.name }

// ProvinceID returns the selected province, or "".
func (f *UniversityForm) ProvinceID() string { return f.provinceID }

// DistrictID returns the selected district, or "".
func (f *UniversityForm) DistrictID() string { return f.districtID }

// SelectProvince sets the province and clears the district when the
// province actually changes.
func (f *UniversityForm) SelectProvince(id string) {
	if id == f.provinceID {
		return
	}
	f.provinceID = id
	f.districtID = ""
}

// SelectDistrict accepts only a district of the selected province. An empty
// id clears the selection.
func (f *UniversityForm) SelectDistrict(id string) error {
	if id == "" {
		f.districtID = ""
		return nil
	}
	if f.provinceID == "" {
		return domain.NewValidationError(EntityUniversity, "province_id", "select a province first")
	}
	d, ok := f.svc.store.GetDistrict(id)
	if !ok {
		return domain.NewValidationError(EntityUniversity, "district_id", "unknown district "+id)
	}
	if d.ProvinceID != f.provinceID {
		return domain.NewValidationError(EntityUniversity, "district_id", "district "+id+" is not in province "+f.provinceID)
	}
	f.districtID = id
	return nil
}

// DistrictOptions lists the districts selectable for the current province.
func (f *UniversityForm) DistrictOptions() []District {
	return f.svc.Selector().DistrictsOf(f.provinceID)
}

// ProvinceOptions lists every province.
func (f *UniversityForm) ProvinceOptions() []Province {
	return f.svc.ListProvinces()
}

// Submit creates or updates the university. The form is reset after a
// successful create.
func (f *UniversityForm) Submit(ctx context.Context) (University, Result, error) {
	var fields []domain.FieldError
	if strings.TrimSpace(f.name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "is required"})
	}
	if f.provinceID == "" {
		fields = append(fields, domain.FieldError{Field: "province_id", Message: "is required"})
	}
	if f.districtID == "" {
		fields = append(fields, domain.FieldError{Field: "district_id", Message: "is required"})
	}
	if len(fields) > 0 {
		return University{}, Result{}, domain.ValidationError{Entity: EntityUniversity, Message: "missing required fields", Fields: fields}
	}
	if f.id != "" {
		return f.svc.UpdateUniversity(ctx, f.id, f.name, f.districtID)
	}
	u, res, err := f.svc.AddUniversity(ctx, f.name, f.districtID)
	if err != nil {
		return University{}, res, err
	}
	f.Reset()
	return u, res, nil
}

// Reset clears every field, including the edit target.
func (f *UniversityForm) Reset() {
	f.id = ""
	f.name = ""
	f.provinceID = ""
	f.districtID = ""
}

// DistrictForm holds the transient state of the add or edit district form.
type DistrictForm struct {
	svc        *Service
	id         string
	name       string
	provinceID string
}

// NewDistrictForm returns an empty form that creates a district on submit.
func (s *Service) NewDistrictForm() *DistrictForm {
	return &DistrictForm{svc: s}
}

// EditDistrict returns a form prefilled from an existing district.
func (s *Service) EditDistrict(id string) (*DistrictForm, error) {
	d, err := s.GetDistrict(id)
	if err != nil {
		return nil, err
	}
	return &DistrictForm{svc: s, id: d.ID, name: d.Name, provinceID: d.ProvinceID}, nil
}

// SetName sets the district name.
func (f *DistrictForm) SetName(name string) { f.name = name }

// SelectProvince sets the parent province.
func (f *DistrictForm) SelectProvince(id string) { f.provinceID = id }

// ProvinceID returns the selected province, or "".
func (f *DistrictForm) ProvinceID() string { return f.provinceID }

// ProvinceOptions lists every province.
func (f *DistrictForm) ProvinceOptions() []Province {
	return f.svc.ListProvinces()
}

// Submit creates or updates the district.
func (f *DistrictForm) Submit(ctx context.Context) (District, Result, error) {
	var fields []domain.FieldError
	if strings.TrimSpace(f.name) == "" {
		fields = append(fields, domain.FieldError{Field: "name", Message: "is required"})
	}
	if f.provinceID == "" {
		fields = append(fields, domain.FieldError{Field: "province_id", Message: "is required"})
	}
	if len(fields) > 0 {
		return District{}, Result{}, domain.ValidationError{Entity: EntityDistrict, Message: "missing required fields", Fields: fields}
	}
	if f.id != "" {
		return f.svc.UpdateDistrict(ctx, f.id, f.name, f.provinceID)
	}
	d, res, err := f.svc.AddDistrict(ctx, f.name, f.provinceID)
	if err != nil {
		return District{}, res, err
	}
	f.id, f.name, f.provinceID = "", "", ""
	return d, res, nil
}

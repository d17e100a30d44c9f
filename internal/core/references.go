package core

import (
	"context"
	"strings"

	"annexcore/pkg/domain"
)

// AddProvince creates a province with the supplied name.
func (s *Service) AddProvince(ctx context.Context, name string) (Province, Result, error) {
	var created Province
	res, err := s.run(ctx, "create_province", func(tx Transaction) (string, error) {
		var err error
		created, err = tx.CreateProvince(Province{Name: name})
		return created.ID, err
	})
	if err != nil {
		return Province{}, res, err
	}
	return created, res, nil
}

// AddDistrict creates a district under an existing province.
func (s *Service) AddDistrict(ctx context.Context, name, provinceID string) (District, Result, error) {
	var created District
	res, err := s.run(ctx, "create_district", func(tx Transaction) (string, error) {
		var err error
		created, err = tx.CreateDistrict(District{Name: name, ProvinceID: strings.TrimSpace(provinceID)})
		return created.ID, err
	})
	if err != nil {
		return District{}, res, err
	}
	return created, res, nil
}

// AddUniversity creates a university under an existing district.
func (s *Service) AddUniversity(ctx context.Context, name, districtID string) (University, Result, error) {
	var created University
	res, err := s.run(ctx, "create_university", func(tx Transaction) (string, error) {
		var err error
		created, err = tx.CreateUniversity(University{Name: name, DistrictID: strings.TrimSpace(districtID)})
		return created.ID, err
	})
	if err != nil {
		return University{}, res, err
	}
	return created, res, nil
}

// UpdateProvince renames a province.
func (s *Service) UpdateProvince(ctx context.Context, id, name string) (Province, Result, error) {
	var updated Province
	res, err := s.run(ctx, "update_province", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateProvince(id, func(p *Province) error {
			p.Name = name
			return nil
		})
		return id, err
	})
	if err != nil {
		return Province{}, res, err
	}
	return updated, res, nil
}

// UpdateDistrict renames a district and may move it to another province.
func (s *Service) UpdateDistrict(ctx context.Context, id, name, provinceID string) (District, Result, error) {
	var updated District
	res, err := s.run(ctx, "update_district", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateDistrict(id, func(d *District) error {
			d.Name = name
			d.ProvinceID = strings.TrimSpace(provinceID)
			return nil
		})
		return id, err
	})
	if err != nil {
		return District{}, res, err
	}
	return updated, res, nil
}

// UpdateUniversity renames a university and may move it to another district.
func (s *Service) UpdateUniversity(ctx context.Context, id, name, districtID string) (University, Result, error) {
	var updated University
	res, err := s.run(ctx, "update_university", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateUniversity(id, func(u *University) error {
			u.Name = name
			u.DistrictID = strings.TrimSpace(districtID)
			return nil
		})
		return id, err
	})
	if err != nil {
		return University{}, res, err
	}
	return updated, res, nil
}

// DeleteProvince removes a province, its districts and their universities.
func (s *Service) DeleteProvince(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_province", func(tx Transaction) (string, error) {
		return id, tx.DeleteProvince(id)
	})
}

// DeleteDistrict removes a district and its universities.
func (s *Service) DeleteDistrict(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_district", func(tx Transaction) (string, error) {
		return id, tx.DeleteDistrict(id)
	})
}

// DeleteUniversity removes a university. Annexes linked to it keep their
// record but lose the link.
func (s *Service) DeleteUniversity(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_university", func(tx Transaction) (string, error) {
		return id, tx.DeleteUniversity(id)
	})
}

// SaveReference adds the record described by in when id is empty and
// updates the record with that id otherwise.
func (s *Service) SaveReference(ctx context.Context, id string, in ReferenceInput) (ReferenceRecord, Result, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return ReferenceRecord{}, Result{}, err
	}
	id = strings.TrimSpace(id)
	switch in.Kind {
	case domain.KindProvince:
		var p Province
		var res Result
		var err error
		if id == "" {
			p, res, err = s.AddProvince(ctx, in.Name)
		} else {
			p, res, err = s.UpdateProvince(ctx, id, in.Name)
		}
		if err != nil {
			return ReferenceRecord{}, res, err
		}
		return ReferenceRecord{Kind: in.Kind, ID: p.ID, Name: p.Name}, res, nil
	case domain.KindDistrict:
		var d District
		var res Result
		var err error
		if id == "" {
			d, res, err = s.AddDistrict(ctx, in.Name, in.ParentID)
		} else {
			d, res, err = s.UpdateDistrict(ctx, id, in.Name, in.ParentID)
		}
		if err != nil {
			return ReferenceRecord{}, res, err
		}
		return ReferenceRecord{Kind: in.Kind, ID: d.ID, Name: d.Name, ParentID: d.ProvinceID}, res, nil
	default:
		var u University
		var res Result
		var err error
		if id == "" {
			u, res, err = s.AddUniversity(ctx, in.Name, in.ParentID)
		} else {
			u, res, err = s.UpdateUniversity(ctx, id, in.Name, in.ParentID)
		}
		if err != nil {
			return ReferenceRecord{}, res, err
		}
		return ReferenceRecord{Kind: in.Kind, ID: u.ID, Name: u.Name, ParentID: u.DistrictID}, res, nil
	}
}

// ReferenceRecord is the kind-agnostic view of a saved province, district or university.
type ReferenceRecord struct {
	Kind     ReferenceKind `json:"kind"`
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ParentID string        `json:"parent_id,omitempty"`
}

// GetProvince returns the province with the given id.
func (s *Service) GetProvince(id string) (Province, error) {
	p, ok := s.store.GetProvince(id)
	if !ok {
		return Province{}, notFound(EntityProvince, id)
	}
	return p, nil
}

// GetDistrict returns the district with the given id.
func (s *Service) GetDistrict(id string) (District, error) {
	d, ok := s.store.GetDistrict(id)
	if !ok {
		return District{}, notFound(EntityDistrict, id)
	}
	return d, nil
}

// GetUniversity returns the university with the given id.
func (s *Service) GetUniversity(id string) (University, error) {
	u, ok := s.store.GetUniversity(id)
	if !ok {
		return University{}, notFound(EntityUniversity, id)
	}
	return u, nil
}

// ListProvinces returns every province in insertion order.
func (s *Service) ListProvinces() []Province { return s.store.ListProvinces() }

// ListDistricts returns every district in insertion order.
func (s *Service) ListDistricts() []District { return s.store.ListDistricts() }

// ListUniversities returns every university in insertion order.
func (s *Service) ListUniversities() []University { return s.store.ListUniversities() }

// ResolveProvinceName returns the province name, or "N/A" when id does not
// resolve to a named province.
func (s *Service) ResolveProvinceName(id string) string {
	if p, ok := s.store.GetProvince(id); ok && p.Name != "" {
		return p.Name
	}
	return domain.NameUnavailable
}

// ResolveDistrictName returns the district name, or "N/A".
func (s *Service) ResolveDistrictName(id string) string {
	if d, ok := s.store.GetDistrict(id); ok && d.Name != "" {
		return d.Name
	}
	return domain.NameUnavailable
}

// ResolveUniversityName returns the university name, or "N/A".
func (s *Service) ResolveUniversityName(id string) string {
	if u, ok := s.store.GetUniversity(id); ok && u.Name != "" {
		return u.Name
	}
	return domain.NameUnavailable
}

package core

import (
	"fmt"
	"sort"
	"strings"

	"annexcore/pkg/domain"
)

// AllFilter is the category value that disables a category filter.
const AllFilter = "All"

// Query combines a free-text search with exact-match category filters.
// An empty search matches everything; a category value of "All" or ""
// disables that category.
type Query struct {
	Search     string
	Categories map[string]string
}

// Fields describes how Filter reads a record type.
type Fields[T any] struct {
	Entity     EntityType
	Search     []func(T) string
	Categories map[string]func(T) string
}

// Filter returns the items matching q in their original order. The source
// slice is not modified and the result is never nil.
func Filter[T any](items []T, q Query, fields Fields[T]) ([]T, error) {
	keys := make([]string, 0, len(q.Categories))
	for key, value := range q.Categories {
		if _, ok := fields.Categories[key]; !ok {
			return nil, domain.NewValidationError(fields.Entity, key, fmt.Sprintf("unknown filter category %q", key))
		}
		if value == "" || value == AllFilter {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	needle := strings.ToLower(q.Search)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle != "" && !matchesSearch(item, needle, fields.Search) {
			continue
		}
		matched := true
		for _, key := range keys {
			if fields.Categories[key](item) != q.Categories[key] {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, item)
		}
	}
	return out, nil
}

func matchesSearch[T any](item T, needle string, getters []func(T) string) bool {
	for _, get := range getters {
		if strings.Contains(strings.ToLower(get(item)), needle) {
			return true
		}
	}
	return false
}

// UserFields searches name and email and filters by role and status.
var UserFields = Fields[User]{
	Entity: EntityUser,
	Search: []func(User) string{
		func(u User) string { return u.Name },
		func(u User) string { return u.Email },
	},
	Categories: map[string]func(User) string{
		"role":   func(u User) string { return string(u.Role) },
		"status": func(u User) string { return string(u.Status) },
	},
}

// AnnexFields searches title, campus and contact name and filters by status.
var AnnexFields = Fields[Annex]{
	Entity: EntityAnnex,
	Search: []func(Annex) string{
		func(a Annex) string { return a.Title },
		func(a Annex) string { return a.Campus },
		func(a Annex) string { return a.ContactName },
	},
	Categories: map[string]func(Annex) string{
		"status": func(a Annex) string { return string(a.Status) },
	},
}

// AnnouncementFields searches title and content.
var AnnouncementFields = Fields[Announcement]{
	Entity: EntityAnnouncement,
	Search: []func(Announcement) string{
		func(a Announcement) string { return a.Title },
		func(a Announcement) string { return a.Content },
	},
}

// ProvinceFields searches the province name.
var ProvinceFields = Fields[Province]{
	Entity: EntityProvince,
	Search: []func(Province) string{func(p Province) string { return p.Name }},
}

// DistrictFields searches the district name and filters by province id.
var DistrictFields = Fields[District]{
	Entity: EntityDistrict,
	Search: []func(District) string{func(d District) string { return d.Name }},
	Categories: map[string]func(District) string{
		"province": func(d District) string { return d.ProvinceID },
	},
}

// UniversityFields searches the university name and filters by district id.
var UniversityFields = Fields[University]{
	Entity: EntityUniversity,
	Search: []func(University) string{func(u University) string { return u.Name }},
	Categories: map[string]func(University) string{
		"district": func(u University) string { return u.DistrictID },
	},
}

// FilterUsers filters the current users.
func (s *Service) FilterUsers(q Query) ([]User, error) {
	return Filter(s.store.ListUsers(), q, UserFields)
}

// FilterAnnexes filters the current annexes.
func (s *Service) FilterAnnexes(q Query) ([]Annex, error) {
	return Filter(s.store.ListAnnexes(), q, AnnexFields)
}

// FilterAnnouncements filters the current announcements.
func (s *Service) FilterAnnouncements(q Query) ([]Announcement, error) {
	return Filter(s.store.ListAnnouncements(), q, AnnouncementFields)
}

// FilterProvinces filters the current provinces.
func (s *Service) FilterProvinces(q Query) ([]Province, error) {
	return Filter(s.store.ListProvinces(), q, ProvinceFields)
}

// FilterDistricts filters the current districts.
func (s *Service) FilterDistricts(q Query) ([]District, error) {
	return Filter(s.store.ListDistricts(), q, DistrictFields)
}

// FilterUniversities filters the current universities.
func (s *Service) FilterUniversities(q Query) ([]University, error) {
	return Filter(s.store.ListUniversities(), q, UniversityFields)
}

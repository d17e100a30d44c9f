package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Deletes on reference data cascade to
// dependent records inside the same transaction.
type Transaction interface {
	Snapshot() TransactionView
	CreateProvince(Province) (Province, error)
	UpdateProvince(id string, mutator func(*Province) error) (Province, error)
	DeleteProvince(id string) error
	CreateDistrict(District) (District, error)
	UpdateDistrict(id string, mutator func(*District) error) (District, error)
	DeleteDistrict(id string) error
	CreateUniversity(University) (University, error)
	UpdateUniversity(id string, mutator func(*University) error) (University, error)
	DeleteUniversity(id string) error
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	DeleteUser(id string) error
	CreateAnnex(Annex) (Annex, error)
	UpdateAnnex(id string, mutator func(*Annex) error) (Annex, error)
	DeleteAnnex(id string) error
	CreateAnnouncement(Announcement) (Announcement, error)
	UpdateAnnouncement(id string, mutator func(*Announcement) error) (Announcement, error)
	DeleteAnnouncement(id string) error
	FindProvince(id string) (Province, bool)
	FindDistrict(id string) (District, bool)
	FindUniversity(id string) (University, bool)
	FindAnnex(id string) (Annex, bool)
}

// TransactionView provides read-only access to snapshot data for rules and queries.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetProvince(id string) (Province, bool)
	ListProvinces() []Province
	GetDistrict(id string) (District, bool)
	ListDistricts() []District
	GetUniversity(id string) (University, bool)
	ListUniversities() []University
	GetUser(id string) (User, bool)
	ListUsers() []User
	GetAnnex(id string) (Annex, bool)
	ListAnnexes() []Annex
	GetAnnouncement(id string) (Announcement, bool)
	ListAnnouncements() []Announcement
}

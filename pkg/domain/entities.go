// Package domain defines the persistent entities, value types, error taxonomy and
// rule evaluation primitives used by annexcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records, errors and snapshot buckets.
const (
	// EntityProvince identifies a province, the root of the location hierarchy.
	EntityProvince EntityType = "province"
	// EntityDistrict identifies a district belonging to a province.
	EntityDistrict EntityType = "district"
	// EntityUniversity identifies a university located in a district.
	EntityUniversity EntityType = "university"
	// EntityUser identifies a platform user account.
	EntityUser EntityType = "user"
	// EntityAnnex identifies a rental listing.
	EntityAnnex EntityType = "annex"
	// EntityAnnouncement identifies a dashboard announcement.
	EntityAnnouncement EntityType = "announcement"
)

// NameUnavailable is the display sentinel returned when a referenced record cannot be resolved.
const NameUnavailable = "N/A"

// UserRole enumerates platform account roles.
type UserRole string

// Canonical user roles.
const (
	RoleStudent UserRole = "Student"
	RoleOwner   UserRole = "Owner"
	RoleAdmin   UserRole = "Admin"
)

// UserStatus enumerates account states.
type UserStatus string

// Canonical user statuses.
const (
	UserStatusActive    UserStatus = "Active"
	UserStatusSuspended UserStatus = "Suspended"
)

// AnnexStatus enumerates listing moderation states.
type AnnexStatus string

// Canonical annex statuses. Pending is the only state moderation can leave.
const (
	AnnexStatusPending  AnnexStatus = "Pending"
	AnnexStatusActive   AnnexStatus = "Active"
	AnnexStatusRejected AnnexStatus = "Rejected"
	AnnexStatusExpired  AnnexStatus = "Expired"
)

// AnnexStatuses lists every annex status in display order.
func AnnexStatuses() []AnnexStatus {
	return []AnnexStatus{AnnexStatusActive, AnnexStatusPending, AnnexStatusRejected, AnnexStatusExpired}
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Province is the root of the location hierarchy.
type Province struct {
	Base
	Name string `json:"name"`
}

// District belongs to exactly one province.
type District struct {
	Base
	Name       string `json:"name"`
	ProvinceID string `json:"province_id"`
}

// University is located in exactly one district.
type University struct {
	Base
	Name       string `json:"name"`
	DistrictID string `json:"district_id"`
}

// User is a student, owner or administrator account.
type User struct {
	Base
	Name         string     `json:"name" validate:"notblank"`
	Email        string     `json:"email" validate:"notblank,email"`
	Role         UserRole   `json:"role" validate:"required,oneof=Student Owner Admin"`
	Status       UserStatus `json:"status" validate:"required,oneof=Active Suspended"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// Annex is a rental listing near a campus.
type Annex struct {
	Base
	Title        string      `json:"title" validate:"notblank"`
	Campus       string      `json:"campus" validate:"notblank"`
	UniversityID *string     `json:"university_id,omitempty"`
	Price        string      `json:"price"`
	Status       AnnexStatus `json:"status" validate:"required,oneof=Pending Active Rejected Expired"`
	PostedAt     time.Time   `json:"posted_at"`
	Description  string      `json:"description"`
	Address      string      `json:"address"`
	Features     []string    `json:"features"`
	ContactName  string      `json:"contact_name" validate:"notblank"`
	ContactPhone string      `json:"contact_phone,omitempty"`
	ContactEmail string      `json:"contact_email,omitempty" validate:"omitempty,email"`
	Images       []string    `json:"images"`
}

// Announcement is a dashboard notice with an optional image.
type Announcement struct {
	Base
	Title    string    `json:"title" validate:"notblank"`
	Content  string    `json:"content" validate:"notblank"`
	PostedAt time.Time `json:"posted_at"`
	ImageURL string    `json:"image_url,omitempty" validate:"omitempty,url"`
	ImageKey string    `json:"image_key,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

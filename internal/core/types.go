package core

import (
	"annexcore/internal/infra/persistence/memory"
	"annexcore/pkg/domain"
)

// Domain aliases keep callers of the service free of a direct domain import
// for the common types.
type (
	EntityType      = domain.EntityType
	Province        = domain.Province
	District        = domain.District
	University      = domain.University
	User            = domain.User
	Annex           = domain.Annex
	Announcement    = domain.Announcement
	Change          = domain.Change
	Result          = domain.Result
	Violation       = domain.Violation
	Rule            = domain.Rule
	RuleView        = domain.RuleView
	RulesEngine     = domain.RulesEngine
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
	ReferenceInput  = domain.ReferenceInput
	ReferenceKind   = domain.ReferenceKind
	Snapshot        = memory.Snapshot
	// MemoryStore is the in-memory transactional engine shared by every backend.
	MemoryStore = memory.Store
)

const (
	EntityProvince     = domain.EntityProvince
	EntityDistrict     = domain.EntityDistrict
	EntityUniversity   = domain.EntityUniversity
	EntityUser         = domain.EntityUser
	EntityAnnex        = domain.EntityAnnex
	EntityAnnouncement = domain.EntityAnnouncement
)

// NewMemoryStore constructs an in-memory store.
func NewMemoryStore(engine *RulesEngine) *MemoryStore {
	return memory.NewStore(engine)
}

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

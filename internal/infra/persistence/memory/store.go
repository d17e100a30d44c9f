// Package memory provides the in-memory implementation of the annexcore
// persistence store. It is the transactional engine behind every backend:
// durable stores embed it and write its state through before each commit.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"annexcore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var (
	_ domain.PersistentStore = (*Store)(nil)
	_ domain.Transaction     = (*transaction)(nil)
	_ domain.TransactionView = transactionView{}
)

type (
	// Province aliases domain.Province for in-memory persistence operations.
	Province = domain.Province
	// District aliases domain.District.
	District = domain.District
	// University aliases domain.University.
	University = domain.University
	// User aliases domain.User.
	User = domain.User
	// Annex aliases domain.Annex.
	Annex = domain.Annex
	// Announcement aliases domain.Announcement.
	Announcement = domain.Announcement
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// CommitHook receives the state a transaction is about to commit. Returning an
// error discards the transaction and leaves the committed state untouched.
type CommitHook func(ctx context.Context, next Snapshot) error

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	commit CommitHook
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot after
// repairing dangling references.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc replaces the time provider used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces committed state only when fn succeeds and no rule blocks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if s.commit != nil {
		if err := s.commit(ctx, snapshotFromMemoryState(tx.state)); err != nil {
			return result, err
		}
	}
	s.state = tx.state
	return result, nil
}

// SetCommitHook installs fn to run inside every successful transaction,
// after rule evaluation and before the new state becomes visible.
func (s *Store) SetCommitHook(fn CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit = fn
}

// ReplaceState swaps in snapshot after passing it through the commit hook, so
// a failing hook leaves the previous state in place.
func (s *Store) ReplaceState(ctx context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := memoryStateFromSnapshot(migrateSnapshot(snapshot))
	if s.commit != nil {
		if err := s.commit(ctx, snapshotFromMemoryState(next)); err != nil {
			return err
		}
	}
	s.state = next
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTransactionView(&snapshot))
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func unknownParent(entity domain.EntityType, field string, parent domain.EntityType, id string) domain.ValidationError {
	msg := fmt.Sprintf("references unknown %s %q", parent, id)
	if id == "" {
		msg = "is required"
	}
	return domain.ValidationError{
		Entity:  entity,
		Message: "invalid reference",
		Fields:  []domain.FieldError{{Field: field, Message: msg}},
	}
}

// Provinces -----------------------------------------------------------------

func (tx *transaction) validateProvince(p Province) error {
	if blank(p.Name) {
		return domain.NewValidationError(domain.EntityProvince, "name", "is required")
	}
	return nil
}

// CreateProvince appends a new province.
func (tx *transaction) CreateProvince(p Province) (Province, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := tx.validateProvince(p); err != nil {
		return Province{}, err
	}
	if p.ID == "" {
		p.ID = tx.state.nextID(domain.EntityProvince, tx.state.provinces.has)
	} else if tx.state.provinces.has(p.ID) {
		return Province{}, fmt.Errorf("province %q already exists", p.ID)
	}
	tx.state.observeID(domain.EntityProvince, p.ID)
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.provinces.put(p.ID, p)
	tx.recordChange(Change{Entity: domain.EntityProvince, Action: domain.ActionCreate, After: cloneProvince(p)})
	return cloneProvince(p), nil
}

// UpdateProvince mutates an existing province.
func (tx *transaction) UpdateProvince(id string, mutator func(*Province) error) (Province, error) {
	current, ok := tx.state.provinces.get(id)
	if !ok {
		return Province{}, domain.NotFoundError{Entity: domain.EntityProvince, ID: id}
	}
	before := cloneProvince(current)
	if err := mutator(&current); err != nil {
		return Province{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.Name = strings.TrimSpace(current.Name)
	if err := tx.validateProvince(current); err != nil {
		return Province{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.provinces.put(id, current)
	tx.recordChange(Change{Entity: domain.EntityProvince, Action: domain.ActionUpdate, Before: before, After: cloneProvince(current)})
	return cloneProvince(current), nil
}

// DeleteProvince removes a province together with its districts and their universities.
func (tx *transaction) DeleteProvince(id string) error {
	current, ok := tx.state.provinces.get(id)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityProvince, ID: id}
	}
	for _, d := range tx.state.districts.values(cloneDistrict) {
		if d.ProvinceID == id {
			tx.deleteDistrict(d)
		}
	}
	tx.state.provinces.remove(id)
	tx.recordChange(Change{Entity: domain.EntityProvince, Action: domain.ActionDelete, Before: cloneProvince(current)})
	return nil
}

// Districts -----------------------------------------------------------------

func (tx *transaction) validateDistrict(d District) error {
	if blank(d.Name) {
		return domain.NewValidationError(domain.EntityDistrict, "name", "is required")
	}
	if !tx.state.provinces.has(d.ProvinceID) {
		return unknownParent(domain.EntityDistrict, "province_id", domain.EntityProvince, d.ProvinceID)
	}
	return nil
}

// CreateDistrict appends a district under an existing province.
func (tx *transaction) CreateDistrict(d District) (District, error) {
	d.Name = strings.TrimSpace(d.Name)
	if err := tx.validateDistrict(d); err != nil {
		return District{}, err
	}
	if d.ID == "" {
		d.ID = tx.state.nextID(domain.EntityDistrict, tx.state.districts.has)
	} else if tx.state.districts.has(d.ID) {
		return District{}, fmt.Errorf("district %q already exists", d.ID)
	}
	tx.state.observeID(domain.EntityDistrict, d.ID)
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.districts.put(d.ID, d)
	tx.recordChange(Change{Entity: domain.EntityDistrict, Action: domain.ActionCreate, After: cloneDistrict(d)})
	return cloneDistrict(d), nil
}

// UpdateDistrict mutates an existing district; the province must still resolve.
func (tx *transaction) UpdateDistrict(id string, mutator func(*District) error) (District, error) {
	current, ok := tx.state.districts.get(id)
	if !ok {
		return District{}, domain.NotFoundError{Entity: domain.EntityDistrict, ID: id}
	}
	before := cloneDistrict(current)
	if err := mutator(&current); err != nil {
		return District{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.Name = strings.TrimSpace(current.Name)
	if err := tx.validateDistrict(current); err != nil {
		return District{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.districts.put(id, current)
	tx.recordChange(Change{Entity: domain.EntityDistrict, Action: domain.ActionUpdate, Before: before, After: cloneDistrict(current)})
	return cloneDistrict(current), nil
}

// DeleteDistrict removes a district and its universities.
func (tx *transaction) DeleteDistrict(id string) error {
	current, ok := tx.state.districts.get(id)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityDistrict, ID: id}
	}
	tx.deleteDistrict(current)
	return nil
}

func (tx *transaction) deleteDistrict(d District) {
	for _, u := range tx.state.universities.values(cloneUniversity) {
		if u.DistrictID == d.ID {
			tx.deleteUniversity(u)
		}
	}
	tx.state.districts.remove(d.ID)
	tx.recordChange(Change{Entity: domain.EntityDistrict, Action: domain.ActionDelete, Before: cloneDistrict(d)})
}

// Universities --------------------------------------------------------------

func (tx *transaction) validateUniversity(u University) error {
	if blank(u.Name) {
		return domain.NewValidationError(domain.EntityUniversity, "name", "is required")
	}
	if !tx.state.districts.has(u.DistrictID) {
		return unknownParent(domain.EntityUniversity, "district_id", domain.EntityDistrict, u.DistrictID)
	}
	return nil
}

// CreateUniversity appends a university under an existing district.
func (tx *transaction) CreateUniversity(u University) (University, error) {
	u.Name = strings.TrimSpace(u.Name)
	if err := tx.validateUniversity(u); err != nil {
		return University{}, err
	}
	if u.ID == "" {
		u.ID = tx.state.nextID(domain.EntityUniversity, tx.state.universities.has)
	} else if tx.state.universities.has(u.ID) {
		return University{}, fmt.Errorf("university %q already exists", u.ID)
	}
	tx.state.observeID(domain.EntityUniversity, u.ID)
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.universities.put(u.ID, u)
	tx.recordChange(Change{Entity: domain.EntityUniversity, Action: domain.ActionCreate, After: cloneUniversity(u)})
	return cloneUniversity(u), nil
}

// UpdateUniversity mutates an existing university; the district must still resolve.
func (tx *transaction) UpdateUniversity(id string, mutator func(*University) error) (University, error) {
	current, ok := tx.state.universities.get(id)
	if !ok {
		return University{}, domain.NotFoundError{Entity: domain.EntityUniversity, ID: id}
	}
	before := cloneUniversity(current)
	if err := mutator(&current); err != nil {
		return University{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.Name = strings.TrimSpace(current.Name)
	if err := tx.validateUniversity(current); err != nil {
		return University{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.universities.put(id, current)
	tx.recordChange(Change{Entity: domain.EntityUniversity, Action: domain.ActionUpdate, Before: before, After: cloneUniversity(current)})
	return cloneUniversity(current), nil
}

// DeleteUniversity removes a university and clears annex links pointing at it.
func (tx *transaction) DeleteUniversity(id string) error {
	current, ok := tx.state.universities.get(id)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityUniversity, ID: id}
	}
	tx.deleteUniversity(current)
	return nil
}

func (tx *transaction) deleteUniversity(u University) {
	for _, a := range tx.state.annexes.values(cloneAnnex) {
		if a.UniversityID == nil || *a.UniversityID != u.ID {
			continue
		}
		before := cloneAnnex(a)
		a.UniversityID = nil
		a.UpdatedAt = tx.now
		tx.state.annexes.put(a.ID, a)
		tx.recordChange(Change{Entity: domain.EntityAnnex, Action: domain.ActionUpdate, Before: before, After: cloneAnnex(a)})
	}
	tx.state.universities.remove(u.ID)
	tx.recordChange(Change{Entity: domain.EntityUniversity, Action: domain.ActionDelete, Before: cloneUniversity(u)})
}

// Users ---------------------------------------------------------------------

// CreateUser stores a new account. Status defaults to Active and the
// registration time to the transaction time.
func (tx *transaction) CreateUser(u User) (User, error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	if err := domain.ValidateStruct(domain.EntityUser, u); err != nil {
		return User{}, err
	}
	if u.ID == "" {
		u.ID = tx.state.nextID(domain.EntityUser, tx.state.users.has)
	} else if tx.state.users.has(u.ID) {
		return User{}, fmt.Errorf("user %q already exists", u.ID)
	}
	tx.state.observeID(domain.EntityUser, u.ID)
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = tx.now
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.users.put(u.ID, u)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: cloneUser(u)})
	return cloneUser(u), nil
}

// UpdateUser mutates an existing account.
func (tx *transaction) UpdateUser(id string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users.get(id)
	if !ok {
		return User{}, domain.NotFoundError{Entity: domain.EntityUser, ID: id}
	}
	before := cloneUser(current)
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.Name = strings.TrimSpace(current.Name)
	current.Email = strings.TrimSpace(current.Email)
	if err := domain.ValidateStruct(domain.EntityUser, current); err != nil {
		return User{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.users.put(id, current)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})
	return cloneUser(current), nil
}

// DeleteUser removes an account.
func (tx *transaction) DeleteUser(id string) error {
	current, ok := tx.state.users.get(id)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityUser, ID: id}
	}
	tx.state.users.remove(id)
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionDelete, Before: cloneUser(current)})
	return nil
}

// Annexes -------------------------------------------------------------------

func (tx *transaction) validateAnnex(a Annex) error {
	if err := domain.ValidateStruct(domain.EntityAnnex, a); err != nil {
		return err
	}
	if a.UniversityID != nil && !tx.state.universities.has(*a.UniversityID) {
		return unknownParent(domain.EntityAnnex, "university_id", domain.EntityUniversity, *a.UniversityID)
	}
	return nil
}

func normalizeAnnex(a *Annex) {
	a.Title = strings.TrimSpace(a.Title)
	a.Campus = strings.TrimSpace(a.Campus)
	a.ContactName = strings.TrimSpace(a.ContactName)
	if a.UniversityID != nil && strings.TrimSpace(*a.UniversityID) == "" {
		a.UniversityID = nil
	}
}

// CreateAnnex stores a new listing. Listings enter moderation as Pending
// unless a status is supplied.
func (tx *transaction) CreateAnnex(a Annex) (Annex, error) {
	normalizeAnnex(&a)
	if a.Status == "" {
		a.Status = domain.AnnexStatusPending
	}
	if err := tx.validateAnnex(a); err != nil {
		return Annex{}, err
	}
	if a.ID == "" {
		a.ID = tx.state.nextID(domain.EntityAnnex, tx.state.annexes.has)
	} else if tx.state.annexes.has(a.ID) {
		return Annex{}, fmt.Errorf("annex %q already exists", a.ID)
	}
	tx.state.observeID(domain.EntityAnnex, a.ID)
	if a.PostedAt.IsZero() {
		a.PostedAt = tx.now
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.annexes.put(a.ID, cloneAnnex(a))
	tx.recordChange(Change{Entity: domain.EntityAnnex, Action: domain.ActionCreate, After: cloneAnnex(a)})
	return cloneAnnex(a), nil
}

// UpdateAnnex mutates an existing listing.
func (tx *transaction) UpdateAnnex(id string, mutator func(*Annex) error) (Annex, error) {
	current, ok := tx.state.annexes.get(id)
	if !ok {
		return Annex{}, domain.NotFoundError{Entity: domain.EntityAnnex, ID: id}
	}
	before := cloneAnnex(current)
	current = cloneAnnex(current)
	if err := mutator(&current); err != nil {
		return Annex{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	normalizeAnnex(&current)
	if err := tx.validateAnnex(current); err != nil {
		return Annex{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.annexes.put(id, cloneAnnex(current))
	tx.recordChange(Change{Entity: domain.EntityAnnex, Action: domain.ActionUpdate, Before: before, After: cloneAnnex(current)})
	return cloneAnnex(current), nil
}

// DeleteAnnex removes a listing.
func (tx *transaction) DeleteAnnex(id string) error {
	current, ok := tx.state.annexes.get(id)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAnnex, ID: id}
	}
	tx.state.annexes.remove(id)
	tx.recordChange(Change{Entity: domain.EntityAnnex, Action: domain.ActionDelete, Before: cloneAnnex(current)})
	return nil
}

// Announcements -------------------------------------------------------------

// CreateAnnouncement stores a new announcement.
func (tx *transaction) CreateAnnouncement(a Announcement) (Announcement, error) {
	a.Title = strings.TrimSpace(a.Title)
	if err := domain.ValidateStruct(domain.EntityAnnouncement, a); err != nil {
		return Announcement{}, err
	}
	if a.ID == "" {
		a.ID = tx.state.nextID(domain.EntityAnnouncement, tx.state.announcements.has)
	} else if tx.state.announcements.has(a.ID) {
		return Announcement{}, fmt.Errorf("announcement %q already exists", a.ID)
	}
	tx.state.observeID(domain.EntityAnnouncement, a.ID)
	if a.PostedAt.IsZero() {
		a.PostedAt = tx.now
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.announcements.put(a.ID, a)
	tx.recordChange(Change{Entity: domain.EntityAnnouncement, Action: domain.ActionCreate, After: cloneAnnouncement(a)})
	return cloneAnnouncement(a), nil
}

// UpdateAnnouncement mutates an existing announcement.
func (tx *transaction) UpdateAnnouncement(id string, mutator func(*Announcement) error) (Announcement, error) {
	current, ok := tx.state.announcements.get(id)
	if !ok {
		return Announcement{}, domain.NotFoundError{Entity: domain.EntityAnnouncement, ID: id}
	}
	before := cloneAnnouncement(current)
	if err := mutator(&current); err != nil {
		return Announcement{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.Title = strings.TrimSpace(current.Title)
	if err := domain.ValidateStruct(domain.EntityAnnouncement, current); err != nil {
		return Announcement{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.announcements.put(id, current)
	tx.recordChange(Change{Entity: domain.EntityAnnouncement, Action: domain.ActionUpdate, Before: before, After: cloneAnnouncement(current)})
	return cloneAnnouncement(current), nil
}

// DeleteAnnouncement removes an announcement.
func (tx *transaction) DeleteAnnouncement(id string) error {
	current, ok := tx.state.announcements.get(id)
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAnnouncement, ID: id}
	}
	tx.state.announcements.remove(id)
	tx.recordChange(Change{Entity: domain.EntityAnnouncement, Action: domain.ActionDelete, Before: cloneAnnouncement(current)})
	return nil
}

// Transaction scoped lookups ------------------------------------------------

// FindProvince exposes province lookup within the transaction scope.
func (tx *transaction) FindProvince(id string) (Province, bool) {
	return tx.Snapshot().FindProvince(id)
}

// FindDistrict exposes district lookup within the transaction scope.
func (tx *transaction) FindDistrict(id string) (District, bool) {
	return tx.Snapshot().FindDistrict(id)
}

// FindUniversity exposes university lookup within the transaction scope.
func (tx *transaction) FindUniversity(id string) (University, bool) {
	return tx.Snapshot().FindUniversity(id)
}

// FindAnnex exposes annex lookup within the transaction scope.
func (tx *transaction) FindAnnex(id string) (Annex, bool) {
	return tx.Snapshot().FindAnnex(id)
}

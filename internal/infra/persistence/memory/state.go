package memory

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"annexcore/pkg/domain"
)

// ordered keeps records indexed by id while remembering insertion order.
type ordered[T any] struct {
	items map[string]T
	order []string
}

func newOrdered[T any]() ordered[T] {
	return ordered[T]{items: make(map[string]T)}
}

func (o *ordered[T]) get(id string) (T, bool) {
	v, ok := o.items[id]
	return v, ok
}

func (o *ordered[T]) has(id string) bool {
	_, ok := o.items[id]
	return ok
}

// put inserts or replaces a record. New ids are appended to the order.
func (o *ordered[T]) put(id string, v T) {
	if _, exists := o.items[id]; !exists {
		o.order = append(o.order, id)
	}
	o.items[id] = v
}

func (o *ordered[T]) remove(id string) bool {
	if _, ok := o.items[id]; !ok {
		return false
	}
	delete(o.items, id)
	if idx := slices.Index(o.order, id); idx >= 0 {
		o.order = slices.Delete(o.order, idx, idx+1)
	}
	return true
}

func (o *ordered[T]) len() int { return len(o.order) }

func (o *ordered[T]) values(cloneFn func(T) T) []T {
	out := make([]T, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, cloneFn(o.items[id]))
	}
	return out
}

func (o ordered[T]) clone(cloneFn func(T) T) ordered[T] {
	cp := ordered[T]{
		items: make(map[string]T, len(o.items)),
		order: append([]string(nil), o.order...),
	}
	for k, v := range o.items {
		cp.items[k] = cloneFn(v)
	}
	return cp
}

// idPrefixes assigns the human readable prefix used for generated ids.
var idPrefixes = map[domain.EntityType]string{
	domain.EntityProvince:     "p",
	domain.EntityDistrict:     "d",
	domain.EntityUniversity:   "u",
	domain.EntityUser:         "usr",
	domain.EntityAnnex:        "a",
	domain.EntityAnnouncement: "ann",
}

// sequenceOf extracts the numeric suffix from an id carrying the entity prefix.
func sequenceOf(entity domain.EntityType, id string) (int, bool) {
	prefix, ok := idPrefixes[entity]
	if !ok || !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

type memoryState struct {
	provinces     ordered[Province]
	districts     ordered[District]
	universities  ordered[University]
	users         ordered[User]
	annexes       ordered[Annex]
	announcements ordered[Announcement]
	sequences     map[domain.EntityType]int
}

func newMemoryState() memoryState {
	return memoryState{
		provinces:     newOrdered[Province](),
		districts:     newOrdered[District](),
		universities:  newOrdered[University](),
		users:         newOrdered[User](),
		annexes:       newOrdered[Annex](),
		announcements: newOrdered[Announcement](),
		sequences:     make(map[domain.EntityType]int),
	}
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		provinces:     s.provinces.clone(cloneProvince),
		districts:     s.districts.clone(cloneDistrict),
		universities:  s.universities.clone(cloneUniversity),
		users:         s.users.clone(cloneUser),
		annexes:       s.annexes.clone(cloneAnnex),
		announcements: s.announcements.clone(cloneAnnouncement),
		sequences:     make(map[domain.EntityType]int, len(s.sequences)),
	}
	for k, v := range s.sequences {
		cloned.sequences[k] = v
	}
	return cloned
}

// nextID hands out the next unused id for the entity. Sequences only move
// forward so ids of deleted records are never handed out again.
func (s *memoryState) nextID(entity domain.EntityType, exists func(string) bool) string {
	prefix := idPrefixes[entity]
	for {
		s.sequences[entity]++
		id := prefix + strconv.Itoa(s.sequences[entity])
		if !exists(id) {
			return id
		}
	}
}

// observeID advances the sequence past explicitly supplied ids.
func (s *memoryState) observeID(entity domain.EntityType, id string) {
	if n, ok := sequenceOf(entity, id); ok && n > s.sequences[entity] {
		s.sequences[entity] = n
	}
}

func cloneProvince(p Province) Province       { return p }
func cloneDistrict(d District) District       { return d }
func cloneUniversity(u University) University { return u }
func cloneUser(u User) User                   { return u }

func cloneAnnex(a Annex) Annex {
	cp := a
	if a.UniversityID != nil {
		id := *a.UniversityID
		cp.UniversityID = &id
	}
	cp.Features = append([]string(nil), a.Features...)
	cp.Images = append([]string(nil), a.Images...)
	return cp
}

func cloneAnnouncement(a Announcement) Announcement { return a }

// Snapshot captures a point-in-time clone of the store state. Each collection
// is an array in insertion order; foreign keys are plain string ids.
type Snapshot struct {
	Provinces     []Province     `json:"provinces"`
	Districts     []District     `json:"districts"`
	Universities  []University   `json:"universities"`
	Users         []User         `json:"users"`
	Annexes       []Annex        `json:"annexes"`
	Announcements []Announcement `json:"announcements"`
	Sequences     map[string]int `json:"sequences,omitempty"`
}

// SnapshotBuckets lists the bucket names used by snapshotting backends.
var SnapshotBuckets = []string{"provinces", "districts", "universities", "users", "annexes", "announcements", "sequences"}

// EncodeBuckets serializes each collection as its own JSON document.
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	out := make(map[string][]byte, len(SnapshotBuckets))
	for _, bucket := range SnapshotBuckets {
		target, _ := s.bucketTarget(bucket)
		data, err := json.Marshal(target)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBucket loads one bucket payload into the snapshot. Unknown buckets are ignored.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	target, ok := s.bucketTarget(bucket)
	if !ok {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

func (s *Snapshot) bucketTarget(bucket string) (any, bool) {
	switch bucket {
	case "provinces":
		return &s.Provinces, true
	case "districts":
		return &s.Districts, true
	case "universities":
		return &s.Universities, true
	case "users":
		return &s.Users, true
	case "annexes":
		return &s.Annexes, true
	case "announcements":
		return &s.Announcements, true
	case "sequences":
		return &s.Sequences, true
	default:
		return nil, false
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Provinces:     state.provinces.values(cloneProvince),
		Districts:     state.districts.values(cloneDistrict),
		Universities:  state.universities.values(cloneUniversity),
		Users:         state.users.values(cloneUser),
		Annexes:       state.annexes.values(cloneAnnex),
		Announcements: state.announcements.values(cloneAnnouncement),
		Sequences:     make(map[string]int, len(state.sequences)),
	}
	for k, v := range state.sequences {
		s.Sequences[string(k)] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, v := range s.Provinces {
		state.provinces.put(v.ID, cloneProvince(v))
		state.observeID(domain.EntityProvince, v.ID)
	}
	for _, v := range s.Districts {
		state.districts.put(v.ID, cloneDistrict(v))
		state.observeID(domain.EntityDistrict, v.ID)
	}
	for _, v := range s.Universities {
		state.universities.put(v.ID, cloneUniversity(v))
		state.observeID(domain.EntityUniversity, v.ID)
	}
	for _, v := range s.Users {
		state.users.put(v.ID, cloneUser(v))
		state.observeID(domain.EntityUser, v.ID)
	}
	for _, v := range s.Annexes {
		state.annexes.put(v.ID, cloneAnnex(v))
		state.observeID(domain.EntityAnnex, v.ID)
	}
	for _, v := range s.Announcements {
		state.announcements.put(v.ID, cloneAnnouncement(v))
		state.observeID(domain.EntityAnnouncement, v.ID)
	}
	for k, v := range s.Sequences {
		entity := domain.EntityType(k)
		if _, known := idPrefixes[entity]; known && v > state.sequences[entity] {
			state.sequences[entity] = v
		}
	}
	return state
}

// migrateSnapshot repairs imported data so it satisfies the store invariants:
// blank and duplicate ids are dropped, districts and universities whose parent
// is missing are removed, and dangling annex university links are cleared.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	provinces := keepUnique(snapshot.Provinces, func(p Province) string { return p.ID })
	provinceExists := idSet(provinces, func(p Province) string { return p.ID })

	var districts []District
	for _, d := range keepUnique(snapshot.Districts, func(d District) string { return d.ID }) {
		if provinceExists[d.ProvinceID] {
			districts = append(districts, d)
		}
	}
	districtExists := idSet(districts, func(d District) string { return d.ID })

	var universities []University
	for _, u := range keepUnique(snapshot.Universities, func(u University) string { return u.ID }) {
		if districtExists[u.DistrictID] {
			universities = append(universities, u)
		}
	}
	universityExists := idSet(universities, func(u University) string { return u.ID })

	annexes := keepUnique(snapshot.Annexes, func(a Annex) string { return a.ID })
	for i := range annexes {
		if id := annexes[i].UniversityID; id != nil && !universityExists[*id] {
			annexes[i].UniversityID = nil
		}
		if annexes[i].Status == "" {
			annexes[i].Status = domain.AnnexStatusPending
		}
	}
	users := keepUnique(snapshot.Users, func(u User) string { return u.ID })
	for i := range users {
		if users[i].Status == "" {
			users[i].Status = domain.UserStatusActive
		}
	}

	return Snapshot{
		Provinces:     nonNil(provinces),
		Districts:     nonNil(districts),
		Universities:  nonNil(universities),
		Users:         nonNil(users),
		Annexes:       nonNil(annexes),
		Announcements: nonNil(keepUnique(snapshot.Announcements, func(a Announcement) string { return a.ID })),
		Sequences:     snapshot.Sequences,
	}
}

func keepUnique[T any](in []T, id func(T) string) []T {
	seen := make(map[string]bool, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		key := id(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func idSet[T any](in []T, id func(T) string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, v := range in {
		out[id(v)] = true
	}
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

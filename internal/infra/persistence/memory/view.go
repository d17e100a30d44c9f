package memory

// ListProvinces returns all provinces within the snapshot in insertion order.
func (v transactionView) ListProvinces() []Province {
	return v.state.provinces.values(cloneProvince)
}

// ListDistricts returns all districts within the snapshot in insertion order.
func (v transactionView) ListDistricts() []District {
	return v.state.districts.values(cloneDistrict)
}

// ListUniversities returns all universities within the snapshot in insertion order.
func (v transactionView) ListUniversities() []University {
	return v.state.universities.values(cloneUniversity)
}

// ListUsers returns all users within the snapshot.
func (v transactionView) ListUsers() []User {
	return v.state.users.values(cloneUser)
}

// ListAnnexes returns all annexes within the snapshot.
func (v transactionView) ListAnnexes() []Annex {
	return v.state.annexes.values(cloneAnnex)
}

// ListAnnouncements returns all announcements within the snapshot.
func (v transactionView) ListAnnouncements() []Announcement {
	return v.state.announcements.values(cloneAnnouncement)
}

// FindProvince retrieves a province by ID from the snapshot.
func (v transactionView) FindProvince(id string) (Province, bool) {
	p, ok := v.state.provinces.get(id)
	return cloneProvince(p), ok
}

// FindDistrict retrieves a district by ID from the snapshot.
func (v transactionView) FindDistrict(id string) (District, bool) {
	d, ok := v.state.districts.get(id)
	return cloneDistrict(d), ok
}

// FindUniversity retrieves a university by ID from the snapshot.
func (v transactionView) FindUniversity(id string) (University, bool) {
	u, ok := v.state.universities.get(id)
	return cloneUniversity(u), ok
}

// FindUser retrieves a user by ID from the snapshot.
func (v transactionView) FindUser(id string) (User, bool) {
	u, ok := v.state.users.get(id)
	return cloneUser(u), ok
}

// FindAnnex retrieves an annex by ID from the snapshot.
func (v transactionView) FindAnnex(id string) (Annex, bool) {
	a, ok := v.state.annexes.get(id)
	if !ok {
		return Annex{}, false
	}
	return cloneAnnex(a), true
}

// FindAnnouncement retrieves an announcement by ID from the snapshot.
func (v transactionView) FindAnnouncement(id string) (Announcement, bool) {
	a, ok := v.state.announcements.get(id)
	return cloneAnnouncement(a), ok
}

// Read helpers ---------------------------------------------------------------

// GetProvince retrieves a province by ID from committed state.
func (s *Store) GetProvince(id string) (Province, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.provinces.get(id)
	return cloneProvince(p), ok
}

// ListProvinces returns all provinces from committed state in insertion order.
func (s *Store) ListProvinces() []Province {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.provinces.values(cloneProvince)
}

// GetDistrict retrieves a district by ID.
func (s *Store) GetDistrict(id string) (District, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.state.districts.get(id)
	return cloneDistrict(d), ok
}

// ListDistricts returns all districts in insertion order.
func (s *Store) ListDistricts() []District {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.districts.values(cloneDistrict)
}

// GetUniversity retrieves a university by ID.
func (s *Store) GetUniversity(id string) (University, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.universities.get(id)
	return cloneUniversity(u), ok
}

// ListUniversities returns all universities in insertion order.
func (s *Store) ListUniversities() []University {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.universities.values(cloneUniversity)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users.get(id)
	return cloneUser(u), ok
}

// ListUsers returns all users in insertion order.
func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.users.values(cloneUser)
}

// GetAnnex retrieves an annex by ID.
func (s *Store) GetAnnex(id string) (Annex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.annexes.get(id)
	if !ok {
		return Annex{}, false
	}
	return cloneAnnex(a), true
}

// ListAnnexes returns all annexes in insertion order.
func (s *Store) ListAnnexes() []Annex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.annexes.values(cloneAnnex)
}

// GetAnnouncement retrieves an announcement by ID.
func (s *Store) GetAnnouncement(id string) (Announcement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.announcements.get(id)
	return cloneAnnouncement(a), ok
}

// ListAnnouncements returns all announcements in insertion order.
func (s *Store) ListAnnouncements() []Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.announcements.values(cloneAnnouncement)
}

// Package memory provides the in-memory implementation of the persistence
// store, used directly for tests and ephemeral environments and embedded by
// the durable backends.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"tolsubmissions/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Manifest aliases domain.Manifest for in-memory persistence operations.
	Manifest = domain.Manifest
	// Specimen aliases domain.Specimen.
	Specimen = domain.Specimen
	// User aliases domain.User.
	User = domain.User
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	manifests map[string]Manifest
	specimens map[string]Specimen
	users     map[string]User
}

// Snapshot captures a point-in-time clone of the store state. Specimens are
// keyed by specimen ID, the other buckets by record ID.
type Snapshot struct {
	Manifests map[string]Manifest `json:"manifests"`
	Specimens map[string]Specimen `json:"specimens"`
	Users     map[string]User     `json:"users"`
}

func newMemoryState() memoryState {
	return memoryState{
		manifests: make(map[string]Manifest),
		specimens: make(map[string]Specimen),
		users:     make(map[string]User),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Manifests: make(map[string]Manifest, len(state.manifests)),
		Specimens: make(map[string]Specimen, len(state.specimens)),
		Users:     make(map[string]User, len(state.users)),
	}
	for k, v := range state.manifests {
		s.Manifests[k] = cloneManifest(v)
	}
	for k, v := range state.specimens {
		s.Specimens[k] = v
	}
	for k, v := range state.users {
		s.Users[k] = cloneUser(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Manifests {
		state.manifests[k] = cloneManifest(v)
	}
	for k, v := range s.Specimens {
		state.specimens[k] = v
	}
	for k, v := range s.Users {
		state.users[k] = cloneUser(v)
	}
	return state
}

func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Manifests == nil {
		snapshot.Manifests = map[string]Manifest{}
	}
	if snapshot.Specimens == nil {
		snapshot.Specimens = map[string]Specimen{}
	}
	if snapshot.Users == nil {
		snapshot.Users = map[string]User{}
	}
	return snapshot
}

func (s memoryState) clone() memoryState {
	out := newMemoryState()
	for k, v := range s.manifests {
		out.manifests[k] = cloneManifest(v)
	}
	for k, v := range s.specimens {
		out.specimens[k] = v
	}
	for k, v := range s.users {
		out.users[k] = cloneUser(v)
	}
	return out
}

func cloneManifest(m Manifest) Manifest {
	out := m
	if m.SubmissionStatus != nil {
		status := *m.SubmissionStatus
		out.SubmissionStatus = &status
	}
	if m.Samples != nil {
		out.Samples = make([]domain.Sample, len(m.Samples))
		for i, sample := range m.Samples {
			out.Samples[i] = cloneSample(sample)
		}
	}
	return out
}

func cloneSample(s domain.Sample) domain.Sample {
	out := s
	if s.Extra != nil {
		out.Extra = append([]domain.ExtraField(nil), s.Extra...)
	}
	return out
}

func cloneUser(u User) User {
	out := u
	if u.Roles != nil {
		out.Roles = append([]string(nil), u.Roles...)
	}
	return out
}

// Store is the in-memory persistence backend. Transactions run against a
// clone of the state which replaces it only when the transaction function
// returns nil.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state: newMemoryState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider. Test hook.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

type transaction struct {
	store *Store
	state memoryState
	now   time.Time
}

type transactionView struct {
	state *memoryState
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy is published only when fn returns nil.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(transactionView{state: &snapshot})
}

func (v transactionView) ListManifests() []Manifest {
	out := make([]Manifest, 0, len(v.state.manifests))
	for _, m := range v.state.manifests {
		out = append(out, cloneManifest(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (v transactionView) FindManifest(id string) (Manifest, bool) {
	m, ok := v.state.manifests[id]
	if !ok {
		return Manifest{}, false
	}
	return cloneManifest(m), true
}

func (v transactionView) FindSpecimen(specimenID string) (Specimen, bool) {
	sp, ok := v.state.specimens[specimenID]
	return sp, ok
}

func (v transactionView) ListSpecimens() []Specimen {
	out := make([]Specimen, 0, len(v.state.specimens))
	for _, sp := range v.state.specimens {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpecimenID < out[j].SpecimenID })
	return out
}

func (v transactionView) ListUsers() []User {
	out := make([]User, 0, len(v.state.users))
	for _, u := range v.state.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v transactionView) FindUserByAPIKey(key string) (User, bool) {
	if key == "" {
		return User{}, false
	}
	for _, u := range v.state.users {
		if u.APIKey == key {
			return cloneUser(u), true
		}
	}
	return User{}, false
}

// CreateManifest stores a new manifest, assigning IDs to the manifest and
// to every sample that lacks one.
func (tx *transaction) CreateManifest(m Manifest) (Manifest, error) {
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.manifests[m.ID]; exists {
		return Manifest{}, fmt.Errorf("manifest %q already exists", m.ID)
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	for i := range m.Samples {
		if m.Samples[i].ID == "" {
			m.Samples[i].ID = tx.store.newID()
		}
		m.Samples[i].CreatedAt = tx.now
		m.Samples[i].UpdatedAt = tx.now
	}
	tx.state.manifests[m.ID] = cloneManifest(m)
	return cloneManifest(m), nil
}

// UpdateManifest mutates a manifest using the provided mutator function.
func (tx *transaction) UpdateManifest(id string, mutator func(*Manifest) error) (Manifest, error) {
	current, ok := tx.state.manifests[id]
	if !ok {
		return Manifest{}, fmt.Errorf("manifest %q not found", id)
	}
	current = cloneManifest(current)
	if err := mutator(&current); err != nil {
		return Manifest{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	for i := range current.Samples {
		if current.Samples[i].ID == "" {
			current.Samples[i].ID = tx.store.newID()
			current.Samples[i].CreatedAt = tx.now
		}
		current.Samples[i].UpdatedAt = tx.now
	}
	tx.state.manifests[id] = cloneManifest(current)
	return cloneManifest(current), nil
}

// CreateSpecimen records a registered specimen under its specimen ID.
func (tx *transaction) CreateSpecimen(sp Specimen) (Specimen, error) {
	if sp.SpecimenID == "" {
		return Specimen{}, fmt.Errorf("specimen ID must be given")
	}
	if _, exists := tx.state.specimens[sp.SpecimenID]; exists {
		return Specimen{}, fmt.Errorf("specimen %q already exists", sp.SpecimenID)
	}
	if sp.ID == "" {
		sp.ID = tx.store.newID()
	}
	sp.CreatedAt = tx.now
	sp.UpdatedAt = tx.now
	tx.state.specimens[sp.SpecimenID] = sp
	return sp, nil
}

// CreateUser stores a new user.
func (tx *transaction) CreateUser(u User) (User, error) {
	if u.ID == "" {
		u.ID = tx.store.newID()
	}
	if _, exists := tx.state.users[u.ID]; exists {
		return User{}, fmt.Errorf("user %q already exists", u.ID)
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.users[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

// UpdateUser mutates a user using the provided mutator function.
func (tx *transaction) UpdateUser(id string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %q not found", id)
	}
	current = cloneUser(current)
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.users[id] = cloneUser(current)
	return cloneUser(current), nil
}

func (tx *transaction) FindManifest(id string) (Manifest, bool) {
	m, ok := tx.state.manifests[id]
	if !ok {
		return Manifest{}, false
	}
	return cloneManifest(m), true
}

func (tx *transaction) FindSpecimen(specimenID string) (Specimen, bool) {
	sp, ok := tx.state.specimens[specimenID]
	return sp, ok
}

// GetManifest returns a manifest by ID from the committed state.
func (s *Store) GetManifest(id string) (Manifest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.manifests[id]
	if !ok {
		return Manifest{}, false
	}
	return cloneManifest(m), true
}

// ListManifests returns all committed manifests ordered by creation time.
func (s *Store) ListManifests() []Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Manifest, 0, len(s.state.manifests))
	for _, m := range s.state.manifests {
		out = append(out, cloneManifest(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// GetSpecimen returns a registered specimen by specimen ID.
func (s *Store) GetSpecimen(specimenID string) (Specimen, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.state.specimens[specimenID]
	return sp, ok
}

// ListSpecimens returns all registered specimens ordered by specimen ID.
func (s *Store) ListSpecimens() []Specimen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Specimen, 0, len(s.state.specimens))
	for _, sp := range s.state.specimens {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpecimenID < out[j].SpecimenID })
	return out
}

// FindUserByAPIKey returns the user carrying the given API key.
func (s *Store) FindUserByAPIKey(key string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if key == "" {
		return User{}, false
	}
	for _, u := range s.state.users {
		if u.APIKey == key {
			return cloneUser(u), true
		}
	}
	return User{}, false
}

// ListUsers returns all committed users ordered by ID.
func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.state.users))
	for _, u := range s.state.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

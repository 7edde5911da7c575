package domain

import "context"

// Transaction exposes the domain operations that a persistence
// implementation must support within an atomic scope.
type Transaction interface {
	CreateManifest(Manifest) (Manifest, error)
	UpdateManifest(id string, mutator func(*Manifest) error) (Manifest, error)
	CreateSpecimen(Specimen) (Specimen, error)
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	FindManifest(id string) (Manifest, bool)
	FindSpecimen(specimenID string) (Specimen, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	ListManifests() []Manifest
	FindManifest(id string) (Manifest, bool)
	FindSpecimen(specimenID string) (Specimen, bool)
	ListSpecimens() []Specimen
	ListUsers() []User
	FindUserByAPIKey(key string) (User, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	GetManifest(id string) (Manifest, bool)
	ListManifests() []Manifest
	GetSpecimen(specimenID string) (Specimen, bool)
	ListSpecimens() []Specimen
	FindUserByAPIKey(key string) (User, bool)
	ListUsers() []User
}

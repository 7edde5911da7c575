package core

import (
	"context"
	"errors"
	"fmt"

	"tolsubmissions/pkg/domain"
)

// ErrManifestNotFound is returned when a manifest ID does not exist.
var ErrManifestNotFound = errors.New("manifest does not exist")

// errPipelineAborted rolls the generation transaction back when a stage
// fails; the caller gets the stage report instead of the error.
var errPipelineAborted = errors.New("pipeline aborted")

// Service is the facade over the store, the validation engines and the
// identifier pipeline.
type Service struct {
	store        domain.PersistentStore
	engine       *domain.ValidationEngine
	requiredOnly *domain.ValidationEngine
	pipeline     *Pipeline
}

// NewService constructs the service.
func NewService(store domain.PersistentStore, engine *domain.ValidationEngine, pipeline *Pipeline) *Service {
	return &Service{
		store:        store,
		engine:       engine,
		requiredOnly: NewRequiredOnlyEngine(),
		pipeline:     pipeline,
	}
}

// Store exposes the underlying store for read-side adapters.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// CreateManifest persists a new manifest owned by the user.
func (s *Service) CreateManifest(ctx context.Context, manifest domain.Manifest, user domain.User) (domain.Manifest, error) {
	manifest.CreatedBy = user.ID
	if manifest.ProjectName == "" {
		manifest.ProjectName = domain.DefaultProjectName
	}
	var created domain.Manifest
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateManifest(manifest)
		return err
	})
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("create manifest: %w", err)
	}
	return created, nil
}

// GetManifest fetches a manifest by ID.
func (s *Service) GetManifest(ctx context.Context, id string) (domain.Manifest, error) {
	manifest, ok := s.store.GetManifest(id)
	if !ok {
		return domain.Manifest{}, ErrManifestNotFound
	}
	return manifest, nil
}

// ListManifests returns all manifests.
func (s *Service) ListManifests(ctx context.Context) []domain.Manifest {
	return s.store.ListManifests()
}

// ValidateManifest runs the full validation pass over a stored manifest.
func (s *Service) ValidateManifest(ctx context.Context, id string) (domain.Report, error) {
	manifest, ok := s.store.GetManifest(id)
	if !ok {
		return domain.Report{}, ErrManifestNotFound
	}
	return s.Validate(ctx, &manifest)
}

// Validate runs the full validation pass over an in-memory manifest,
// rebuilding the cross-record trackers first.
func (s *Service) Validate(ctx context.Context, manifest *domain.Manifest) (domain.Report, error) {
	manifest.RebuildTrackers()
	return s.engine.Evaluate(ctx, manifest)
}

// ValidateRequired runs the required-fields-only fast path, which never
// calls a remote authority.
func (s *Service) ValidateRequired(ctx context.Context, manifest *domain.Manifest) (domain.Report, error) {
	return s.requiredOnly.Evaluate(ctx, manifest)
}

// GenerateIdentifiers drives the identifier pipeline for a stored
// manifest inside one transaction. A stage failure rolls everything back
// and is returned as the stage's report; only a fully successful run
// commits.
func (s *Service) GenerateIdentifiers(ctx context.Context, id string) (domain.Manifest, domain.Report, error) {
	var (
		manifest domain.Manifest
		report   domain.Report
	)
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.FindManifest(id)
		if !ok {
			return ErrManifestNotFound
		}
		stageReport, err := s.pipeline.GenerateIdentifiers(ctx, tx, &current)
		if err != nil {
			return err
		}
		if stageFailed(stageReport) {
			report = stageReport
			return errPipelineAborted
		}
		updated, err := tx.UpdateManifest(id, func(m *domain.Manifest) error {
			m.Samples = current.Samples
			m.SubmissionStatus = current.SubmissionStatus
			return nil
		})
		if err != nil {
			return err
		}
		manifest = updated
		return nil
	})
	if errors.Is(err, errPipelineAborted) {
		return domain.Manifest{}, report, nil
	}
	if err != nil {
		return domain.Manifest{}, domain.Report{}, err
	}
	return manifest, domain.Report{}, nil
}

// AttachExcel records the blob key of the spreadsheet a manifest was
// uploaded from.
func (s *Service) AttachExcel(ctx context.Context, id, objectKey string) error {
	return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateManifest(id, func(m *domain.Manifest) error {
			m.ExcelObjectKey = objectKey
			return nil
		})
		return err
	})
}

// CreateUser registers a submitting user.
func (s *Service) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	var created domain.User
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateUser(user)
		return err
	})
	return created, err
}

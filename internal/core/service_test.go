package core

import (
	"context"
	"errors"
	"testing"

	"tolsubmissions/internal/infra/persistence/memory"
	"tolsubmissions/pkg/domain"
)

func newTestService(archive AccessionService) (*Service, *memory.Store) {
	store := memory.NewStore()
	naming := &fakeNaming{}
	taxonomy := &fakeTaxonomy{records: map[int]TaxonomyRecord{
		6344: {TaxID: "6344", ScientificName: "Arenicola marina", Submittable: "true"},
	}}
	engine := NewValidationEngine(naming, taxonomy)
	pipeline := NewPipeline(naming, &fakeRegistry{}, archive, testContact)
	return NewService(store, engine, pipeline), store
}

func TestServiceCreateAndGetManifest(t *testing.T) {
	svc, _ := newTestService(&echoArchive{})
	ctx := context.Background()

	created, err := svc.CreateManifest(ctx, domain.Manifest{Samples: []domain.Sample{validSample(1)}}, domain.User{Base: domain.Base{ID: "user-1"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ProjectName != domain.DefaultProjectName || created.CreatedBy != "user-1" {
		t.Fatalf("manifest defaults: %+v", created)
	}

	got, err := svc.GetManifest(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Samples) != 1 {
		t.Fatalf("samples: %+v", got.Samples)
	}

	if _, err := svc.GetManifest(ctx, "missing"); !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
	if got := svc.ListManifests(ctx); len(got) != 1 {
		t.Fatalf("expected one manifest, got %d", len(got))
	}
}

func TestServiceValidateManifest(t *testing.T) {
	svc, _ := newTestService(&echoArchive{})
	ctx := context.Background()

	bad := validSample(1)
	bad.Sex = "UNKNOWN"
	created, err := svc.CreateManifest(ctx, domain.Manifest{Samples: []domain.Sample{bad}}, domain.User{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	report, err := svc.ValidateManifest(ctx, created.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.ErrorCount() != 1 {
		t.Fatalf("expected one error, got %+v", report)
	}

	if _, err := svc.ValidateManifest(ctx, "missing"); !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestServiceValidateRequired(t *testing.T) {
	svc, _ := newTestService(&echoArchive{})

	m := domain.Manifest{Samples: []domain.Sample{{Row: 1, SpecimenID: "SAN0000100"}}}
	report, err := svc.ValidateRequired(context.Background(), &m)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.ErrorCount() == 0 {
		t.Fatalf("expected missing-field errors")
	}
	for _, f := range report.Rows[0].Findings {
		if f.Message != "A value must be given" {
			t.Fatalf("unexpected finding from fast path: %+v", f)
		}
	}
}

func TestServiceGenerateIdentifiersCommits(t *testing.T) {
	svc, store := newTestService(&echoArchive{})
	ctx := context.Background()

	created, err := svc.CreateManifest(ctx, domain.Manifest{Samples: []domain.Sample{validSample(1)}}, domain.User{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, report, err := svc.GenerateIdentifiers(ctx, created.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Fatalf("expected clean run, got %+v", report.Rows)
	}
	if updated.Samples[0].ToLID == "" || updated.Samples[0].BiosampleAccession == "" {
		t.Fatalf("identifiers not assigned: %+v", updated.Samples[0])
	}

	// Persisted, including the specimen registered along the way.
	stored, _ := store.GetManifest(created.ID)
	if stored.Samples[0].ToLID != updated.Samples[0].ToLID {
		t.Fatalf("manifest not persisted: %+v", stored.Samples[0])
	}
	if _, ok := store.GetSpecimen("SAN0000100"); !ok {
		t.Fatalf("specimen not persisted")
	}
}

func TestServiceGenerateIdentifiersRollsBackOnFailure(t *testing.T) {
	svc, store := newTestService(&cannedArchive{err: StatusError{Code: 500}})
	ctx := context.Background()

	created, err := svc.CreateManifest(ctx, domain.Manifest{Samples: []domain.Sample{validSample(1)}}, domain.User{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, report, err := svc.GenerateIdentifiers(ctx, created.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(report.Rows) == 0 {
		t.Fatalf("expected failure report")
	}

	// Nothing from the aborted run is visible: no specimen, no names.
	if _, ok := store.GetSpecimen("SAN0000100"); ok {
		t.Fatalf("specimen must not survive an aborted pipeline")
	}
	stored, _ := store.GetManifest(created.ID)
	if stored.Samples[0].ToLID != "" {
		t.Fatalf("name must not survive an aborted pipeline: %+v", stored.Samples[0])
	}

	if _, _, err := svc.GenerateIdentifiers(ctx, "missing"); !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestServiceAttachExcel(t *testing.T) {
	svc, store := newTestService(&echoArchive{})
	ctx := context.Background()

	created, err := svc.CreateManifest(ctx, domain.Manifest{}, domain.User{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.AttachExcel(ctx, created.ID, "manifests/abc.xlsx"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	stored, _ := store.GetManifest(created.ID)
	if stored.ExcelObjectKey != "manifests/abc.xlsx" {
		t.Fatalf("object key: %q", stored.ExcelObjectKey)
	}
}

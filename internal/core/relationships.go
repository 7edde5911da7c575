package core

import (
	"context"
	"fmt"

	"tolsubmissions/pkg/domain"
)

// maxSpecimenDepth bounds the specimen-manifest recursion. Specimen
// samples are whole organisms and never need further specimens, so one
// level is all current business rules require.
const maxSpecimenDepth = 1

// resolveRelationships links every sample to its specimen. Samples whose
// specimen is not yet registered anywhere are collected into a synthetic
// specimen manifest, which is persisted and driven through accession
// issuance; on success the new specimens are recorded and the original
// samples re-resolved against them.
func (p *Pipeline) resolveRelationships(ctx context.Context, tx domain.Transaction, m *domain.Manifest, depth int) (domain.Report, error) {
	for i := range m.Samples {
		if err := p.resolveSampleRelationship(ctx, tx, &m.Samples[i]); err != nil {
			return domain.Report{}, err
		}
	}

	var newSpecimens []*domain.Sample
	seen := map[string]struct{}{}
	for i := range m.Samples {
		s := &m.Samples[i]
		if s.Relationship.IsSet() {
			continue
		}
		if _, ok := seen[s.SpecimenID]; ok {
			continue
		}
		seen[s.SpecimenID] = struct{}{}
		newSpecimens = append(newSpecimens, s)
	}
	if len(newSpecimens) == 0 {
		return domain.Report{}, nil
	}
	if depth >= maxSpecimenDepth {
		return domain.Report{}, fmt.Errorf("specimen manifest nesting exceeds depth %d", maxSpecimenDepth)
	}

	specimenManifest := domain.Manifest{
		ProjectName: m.ProjectName,
		CreatedBy:   m.CreatedBy,
	}
	for _, s := range newSpecimens {
		specimenManifest.Samples = append(specimenManifest.Samples, specimenSample(s))
	}
	created, err := tx.CreateManifest(specimenManifest)
	if err != nil {
		return domain.Report{}, err
	}

	report, err := p.issueAccessions(ctx, &created)
	if err != nil {
		return domain.Report{}, err
	}
	if _, err := tx.UpdateManifest(created.ID, func(mm *domain.Manifest) error {
		mm.Samples = created.Samples
		mm.SubmissionStatus = created.SubmissionStatus
		return nil
	}); err != nil {
		return domain.Report{}, err
	}
	if stageFailed(report) {
		return report, nil
	}

	for i := range created.Samples {
		s := &created.Samples[i]
		if _, err := tx.CreateSpecimen(domain.Specimen{
			SpecimenID:         s.SpecimenID,
			BiosampleAccession: s.BiosampleAccession,
		}); err != nil {
			return domain.Report{}, err
		}
	}

	// The new specimens are visible now, so the original samples resolve.
	for i := range m.Samples {
		if err := p.resolveSampleRelationship(ctx, tx, &m.Samples[i]); err != nil {
			return domain.Report{}, err
		}
	}
	return report, nil
}

// resolveSampleRelationship looks the sample's specimen up in the local
// store first and the external specimen registry second, then assigns the
// single relationship kind the sample's shape dictates.
func (p *Pipeline) resolveSampleRelationship(ctx context.Context, tx domain.Transaction, s *domain.Sample) error {
	accession := ""
	if specimen, ok := tx.FindSpecimen(s.SpecimenID); ok {
		accession = specimen.BiosampleAccession
	} else {
		record, err := p.registry.GetSpecimen(ctx, s.SpecimenID)
		if err != nil {
			return err
		}
		if record != nil {
			accession = record.BiosampleAccession
		}
	}
	if accession == "" {
		return nil
	}
	switch {
	case s.IsSymbiont():
		s.SetRelationship(domain.RelationSymbiontOf, accession)
	case s.OrganismPart == "WHOLE_ORGANISM":
		s.SetRelationship(domain.RelationSameAs, accession)
	default:
		s.SetRelationship(domain.RelationDerivedFrom, accession)
	}
	return nil
}

// specimenSample projects a sample into the whole-organism shape used to
// register its specimen.
func specimenSample(s *domain.Sample) domain.Sample {
	return domain.Sample{
		Row:                   s.Row,
		SpecimenID:            s.SpecimenID,
		TaxonomyID:            s.TaxonomyID,
		ScientificName:        s.ScientificName,
		Family:                s.Family,
		Genus:                 s.Genus,
		OrderOrGroup:          s.OrderOrGroup,
		CommonName:            s.CommonName,
		Lifestage:             s.Lifestage,
		Sex:                   s.Sex,
		OrganismPart:          "WHOLE_ORGANISM",
		GAL:                   s.GAL,
		GALSampleID:           "NOT_PROVIDED",
		CollectedBy:           s.CollectedBy,
		CollectorAffiliation:  s.CollectorAffiliation,
		DateOfCollection:      s.DateOfCollection,
		CollectionLocation:    s.CollectionLocation,
		DecimalLatitude:       s.DecimalLatitude,
		DecimalLongitude:      s.DecimalLongitude,
		Habitat:               s.Habitat,
		IdentifiedBy:          s.IdentifiedBy,
		IdentifierAffiliation: s.IdentifierAffiliation,
		VoucherID:             s.VoucherID,
		Elevation:             s.Elevation,
		Depth:                 s.Depth,
		RelationshipNote:      s.RelationshipNote,
		Symbiont:              s.Symbiont,
		CultureOrStrainID:     s.CultureOrStrainID,
		ToLID:                 s.ToLID,
	}
}

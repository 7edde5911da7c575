// Package testutil provides in-memory fakes of the remote authorities and
// a canonical valid sample, shared by tests across packages.
package testutil

import (
	"context"
	"encoding/xml"
	"fmt"

	"tolsubmissions/internal/core"
	"tolsubmissions/pkg/domain"
)

// ValidSample returns a sample that passes every validator which needs no
// remote authority, including the ENA checklist.
func ValidSample(row int) domain.Sample {
	return domain.Sample{
		Row:                   row,
		SpecimenID:            "SAN0000100",
		TaxonomyID:            6344,
		ScientificName:        "Arenicola marina",
		Family:                "Arenicolidae",
		Genus:                 "Arenicola",
		OrderOrGroup:          "None",
		Lifestage:             "ADULT",
		Sex:                   "NOT_COLLECTED",
		OrganismPart:          "MUSCLE",
		GAL:                   "SANGER INSTITUTE",
		GALSampleID:           "SAN0000100",
		CollectedBy:           "ALEX COLLECTOR",
		CollectorAffiliation:  "THE COLLECTOR INSTITUTE",
		DateOfCollection:      "2020-09-01",
		CollectionLocation:    "UNITED KINGDOM | DARK FOREST",
		DecimalLatitude:       "50.12345678",
		DecimalLongitude:      "-1.98765432",
		Habitat:               "Woodland",
		IdentifiedBy:          "JO IDENTIFIER",
		IdentifierAffiliation: "THE IDENTIFIER INSTITUTE",
		VoucherID:             "voucher1",
	}
}

// ManifestWith wraps samples into a manifest with rebuilt trackers.
func ManifestWith(samples ...domain.Sample) *domain.Manifest {
	m := &domain.Manifest{ProjectName: domain.DefaultProjectName, Samples: samples}
	m.RebuildTrackers()
	return m
}

// FakeNaming fakes the ToLID authority. Unset hooks fall back to: the
// species exists, the specimen was never used, and names are issued as
// wuAreMariN in request order.
type FakeNaming struct {
	SpeciesFn   func(int) error
	TaxonsFn    func(string) ([]int, error)
	AssignFn    func([]core.NameRequest) ([]core.NameAssignment, error)
	AssignCalls [][]core.NameRequest
}

func (f *FakeNaming) SpeciesExists(_ context.Context, taxonomyID int) error {
	if f.SpeciesFn != nil {
		return f.SpeciesFn(taxonomyID)
	}
	return nil
}

func (f *FakeNaming) SpecimenTaxonomies(_ context.Context, specimenID string) ([]int, error) {
	if f.TaxonsFn != nil {
		return f.TaxonsFn(specimenID)
	}
	return nil, core.ErrNotFound
}

func (f *FakeNaming) AssignNames(_ context.Context, requests []core.NameRequest) ([]core.NameAssignment, error) {
	f.AssignCalls = append(f.AssignCalls, requests)
	if f.AssignFn != nil {
		return f.AssignFn(requests)
	}
	out := make([]core.NameAssignment, 0, len(requests))
	for i, req := range requests {
		out = append(out, core.NameAssignment{
			TaxonomyID: req.TaxonomyID,
			SpecimenID: req.SpecimenID,
			ToLID:      fmt.Sprintf("wuAreMari%d", i+1),
		})
	}
	return out, nil
}

// FakeRegistry fakes the specimen tracking service with a fixed record set.
type FakeRegistry struct {
	Records map[string]core.SpecimenRecord
	Err     error
}

func (f *FakeRegistry) GetSpecimen(_ context.Context, specimenID string) (*core.SpecimenRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if record, ok := f.Records[specimenID]; ok {
		return &record, nil
	}
	return nil, nil
}

// FakeTaxonomy fakes the ENA taxonomy service; taxa absent from Records
// are unknown.
type FakeTaxonomy struct {
	Records map[int]core.TaxonomyRecord
	Err     error
}

func (f *FakeTaxonomy) Taxonomy(_ context.Context, taxonomyID int) (core.TaxonomyRecord, error) {
	if f.Err != nil {
		return core.TaxonomyRecord{}, f.Err
	}
	if record, ok := f.Records[taxonomyID]; ok {
		return record, nil
	}
	return core.TaxonomyRecord{}, core.ErrUnknownTaxon
}

// SubmittableTaxonomy returns a FakeTaxonomy knowing the ValidSample taxon
// as submittable.
func SubmittableTaxonomy() *FakeTaxonomy {
	return &FakeTaxonomy{Records: map[int]core.TaxonomyRecord{
		6344: {TaxID: "6344", ScientificName: "Arenicola marina", Submittable: "true"},
	}}
}

// EchoArchive answers every submission with a success receipt accessioning
// each bundled sample in order.
type EchoArchive struct {
	next    int
	Submits [][]byte
}

func (f *EchoArchive) Submit(_ context.Context, sampleXML, _ []byte) ([]byte, error) {
	f.Submits = append(f.Submits, sampleXML)
	var set struct {
		Samples []struct {
			Alias string `xml:"alias,attr"`
		} `xml:"SAMPLE"`
	}
	if err := xml.Unmarshal(sampleXML, &set); err != nil {
		return nil, err
	}
	out := `<RECEIPT success="true">`
	for _, s := range set.Samples {
		f.next++
		out += fmt.Sprintf(`<SAMPLE alias=%q accession="ERS%d"><EXT_ID accession="SAMEA%d" type="biosample"/></SAMPLE>`, s.Alias, f.next, f.next)
	}
	out += `<SUBMISSION accession="ERA100"/></RECEIPT>`
	return []byte(out), nil
}

// CannedArchive answers every submission with a fixed payload or error.
type CannedArchive struct {
	Receipt []byte
	Err     error
}

func (f *CannedArchive) Submit(context.Context, []byte, []byte) ([]byte, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Receipt, nil
}

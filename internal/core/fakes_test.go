package core

import (
	"context"
	"encoding/xml"
	"fmt"

	"tolsubmissions/pkg/domain"
)

func validSample(row int) domain.Sample {
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

func manifestWith(samples ...domain.Sample) *domain.Manifest {
	m := &domain.Manifest{ProjectName: domain.DefaultProjectName, Samples: samples}
	m.RebuildTrackers()
	return m
}

type fakeNaming struct {
	speciesFn   func(int) error
	taxonsFn    func(string) ([]int, error)
	assignFn    func([]NameRequest) ([]NameAssignment, error)
	assignCalls [][]NameRequest
}

func (f *fakeNaming) SpeciesExists(_ context.Context, taxonomyID int) error {
	if f.speciesFn != nil {
		return f.speciesFn(taxonomyID)
	}
	return nil
}

func (f *fakeNaming) SpecimenTaxonomies(_ context.Context, specimenID string) ([]int, error) {
	if f.taxonsFn != nil {
		return f.taxonsFn(specimenID)
	}
	return nil, ErrNotFound
}

func (f *fakeNaming) AssignNames(_ context.Context, requests []NameRequest) ([]NameAssignment, error) {
	f.assignCalls = append(f.assignCalls, requests)
	if f.assignFn != nil {
		return f.assignFn(requests)
	}
	out := make([]NameAssignment, 0, len(requests))
	for i, req := range requests {
		out = append(out, NameAssignment{
			TaxonomyID: req.TaxonomyID,
			SpecimenID: req.SpecimenID,
			ToLID:      fmt.Sprintf("wuAreMari%d", i+1),
		})
	}
	return out, nil
}

type fakeRegistry struct {
	records map[string]SpecimenRecord
	err     error
}

func (f *fakeRegistry) GetSpecimen(_ context.Context, specimenID string) (*SpecimenRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if record, ok := f.records[specimenID]; ok {
		return &record, nil
	}
	return nil, nil
}

type fakeTaxonomy struct {
	records map[int]TaxonomyRecord
	err     error
}

func (f *fakeTaxonomy) Taxonomy(_ context.Context, taxonomyID int) (TaxonomyRecord, error) {
	if f.err != nil {
		return TaxonomyRecord{}, f.err
	}
	if record, ok := f.records[taxonomyID]; ok {
		return record, nil
	}
	return TaxonomyRecord{}, ErrUnknownTaxon
}

// echoArchive answers every submission with a success receipt accessioning
// each bundled sample in order.
type echoArchive struct {
	next    int
	submits [][]byte
}

func (f *echoArchive) Submit(_ context.Context, sampleXML, _ []byte) ([]byte, error) {
	f.submits = append(f.submits, sampleXML)
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

// cannedArchive answers every submission with a fixed payload or error.
type cannedArchive struct {
	receipt []byte
	err     error
}

func (f *cannedArchive) Submit(context.Context, []byte, []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

package core

import (
	"context"
	"strconv"
	"strings"

	"tolsubmissions/internal/ena"
	"tolsubmissions/pkg/domain"
)

// Pipeline drives identifier generation for a manifest: ToLID issuance,
// relationship resolution, then archival accession issuance. Each stage's
// failure aborts before the next stage runs.
type Pipeline struct {
	naming   NamingService
	registry SpecimenRegistry
	archive  AccessionService
	contact  ena.Contact
}

// NewPipeline constructs a pipeline over the given remote authorities.
func NewPipeline(naming NamingService, registry SpecimenRegistry, archive AccessionService, contact ena.Contact) *Pipeline {
	return &Pipeline{naming: naming, registry: registry, archive: archive, contact: contact}
}

// stageFailed reports whether a pipeline stage produced findings. Stages
// only emit rows on failure, including the WARNING-level empty-bundle
// abort.
func stageFailed(r domain.Report) bool {
	return len(r.Rows) > 0
}

// GenerateIdentifiers runs the three stages against the manifest inside
// the caller's transaction. A non-empty report means the pipeline aborted
// at the stage that produced it and nothing should be committed.
func (p *Pipeline) GenerateIdentifiers(ctx context.Context, tx domain.Transaction, m *domain.Manifest) (domain.Report, error) {
	report, err := p.issueToLIDs(ctx, m)
	if err != nil {
		return domain.Report{}, err
	}
	if stageFailed(report) {
		return report, nil
	}

	report, err = p.resolveRelationships(ctx, tx, m, 0)
	if err != nil {
		return domain.Report{}, err
	}
	if stageFailed(report) {
		return report, nil
	}

	report, err = p.issueAccessions(ctx, m)
	if err != nil {
		return domain.Report{}, err
	}
	if stageFailed(report) {
		return report, nil
	}
	return domain.Report{}, nil
}

// issueToLIDs batches de-duplicated taxon/specimen pairs to the naming
// service and copies each issued name onto every matching sample. An
// assignment without a name means a manual request was raised upstream,
// which fails the row.
func (p *Pipeline) issueToLIDs(ctx context.Context, m *domain.Manifest) (domain.Report, error) {
	var requests []NameRequest
	seen := map[NameRequest]struct{}{}
	for i := range m.Samples {
		s := &m.Samples[i]
		if s.IsSymbiont() || s.TaxonomyID == domain.UnidentifiedTaxonomyID {
			continue
		}
		req := NameRequest{TaxonomyID: s.TaxonomyID, SpecimenID: s.SpecimenID}
		if _, ok := seen[req]; ok {
			continue
		}
		seen[req] = struct{}{}
		requests = append(requests, req)
	}

	assignments, err := p.naming.AssignNames(ctx, requests)
	if err != nil {
		if _, ok := statusCode(err); ok {
			var report domain.Report
			report.AddRow(1, []domain.Finding{{
				Field:    "TAXON_ID",
				Message:  "Cannot connect to ToLID service",
				Severity: domain.SeverityError,
			}})
			return report, nil
		}
		return domain.Report{}, err
	}

	var report domain.Report
	for _, assignment := range assignments {
		for i := range m.Samples {
			s := &m.Samples[i]
			if s.SpecimenID != assignment.SpecimenID || s.TaxonomyID != assignment.TaxonomyID {
				continue
			}
			if assignment.ToLID == "" {
				report.AddRow(s.Row, []domain.Finding{{
					Field:    "TAXON_ID",
					Message:  "A ToLID has not been generated",
					Severity: domain.SeverityError,
				}})
				continue
			}
			s.ToLID = assignment.ToLID
		}
	}
	return report, nil
}

// issueAccessions submits the manifest's sample bundle to the archival
// drop box and copies the receipt's accessions back onto the samples.
func (p *Pipeline) issueAccessions(ctx context.Context, m *domain.Manifest) (domain.Report, error) {
	bundle, count, err := ena.BuildSampleBundle(m)
	if err != nil {
		return domain.Report{}, err
	}
	if count == 0 {
		return stageReport(domain.Finding{
			Field:    "TAXON_ID",
			Message:  "All samples have unknown taxonomy ID",
			Severity: domain.SeverityWarning,
		}), nil
	}
	submission, err := ena.BuildSubmission(p.contact)
	if err != nil {
		return domain.Report{}, err
	}

	receiptXML, err := p.archive.Submit(ctx, bundle, submission)
	if err != nil {
		if code, ok := statusCode(err); ok {
			return stageReport(domain.Finding{
				Field:    "TAXON_ID",
				Message:  "Cannot connect to ENA service (status code " + strconv.Itoa(code) + ")",
				Severity: domain.SeverityError,
			}), nil
		}
		return domain.Report{}, err
	}

	receipt, err := ena.ParseReceipt(receiptXML)
	if err != nil {
		// Unrecognised responses are handled like a service failure.
		return stageReport(domain.Finding{
			Field:    "TAXON_ID",
			Message:  "Error returned from ENA service",
			Severity: domain.SeverityError,
		}), nil
	}

	if !receipt.Success {
		m.SubmissionStatus = boolPtr(false)
		msg := strings.Join(receipt.Errors, "<br>")
		if msg == "" {
			msg = "Undefined error"
		}
		for _, rs := range receipt.Samples {
			if s := m.FindSample(rs.Alias); s != nil {
				s.SubmissionError = msg
			}
		}
		return stageReport(domain.Finding{
			Field:    "TAXON_ID",
			Message:  "Error returned from ENA service",
			Severity: domain.SeverityError,
		}), nil
	}

	m.SubmissionStatus = boolPtr(true)
	for _, rs := range receipt.Samples {
		s := m.FindSample(rs.Alias)
		if s == nil {
			continue
		}
		s.BiosampleAccession = rs.BiosampleAccession
		s.SRAAccession = rs.SRAAccession
		s.SubmissionAccession = receipt.SubmissionAccession
	}
	return domain.Report{}, nil
}

func stageReport(finding domain.Finding) domain.Report {
	var report domain.Report
	report.AddRow(1, []domain.Finding{finding})
	return report
}

func boolPtr(v bool) *bool { return &v }

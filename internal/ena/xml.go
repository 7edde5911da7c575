package ena

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"tolsubmissions/pkg/domain"
)

// CenterName identifies the submitting centre on every bundled sample.
const CenterName = "SangerInstitute"

// Contact is the broker contact written into the submission envelope.
type Contact struct {
	Name  string
	Email string
}

type bundleAttribute struct {
	Tag   string `xml:"TAG"`
	Value string `xml:"VALUE"`
	Units string `xml:"UNITS,omitempty"`
}

type bundleSampleName struct {
	TaxonID string `xml:"TAXON_ID"`
}

type bundleSample struct {
	Alias      string            `xml:"alias,attr"`
	CenterName string            `xml:"center_name,attr"`
	Title      string            `xml:"TITLE"`
	SampleName bundleSampleName  `xml:"SAMPLE_NAME"`
	Attributes []bundleAttribute `xml:"SAMPLE_ATTRIBUTES>SAMPLE_ATTRIBUTE"`
}

type sampleSet struct {
	XMLName xml.Name       `xml:"SAMPLE_SET"`
	Samples []bundleSample `xml:"SAMPLE"`
}

// BuildSampleBundle serialises the manifest's samples into the SAMPLE
// document. Samples with the unidentified placeholder taxon are skipped;
// the returned count is the number of samples actually bundled.
func BuildSampleBundle(m *domain.Manifest) ([]byte, int, error) {
	set := sampleSet{}
	for i := range m.Samples {
		s := &m.Samples[i]
		if s.TaxonomyID == domain.UnidentifiedTaxonomyID {
			continue
		}
		sample := bundleSample{
			Alias:      s.ID,
			CenterName: CenterName,
			Title:      s.ID + "-tol",
			SampleName: bundleSampleName{TaxonID: strconv.Itoa(s.TaxonomyID)},
		}
		for _, attr := range Attributes(m.ProjectName, s) {
			sample.Attributes = append(sample.Attributes, bundleAttribute{
				Tag:   attr.Tag,
				Value: attr.Value,
				Units: attr.Units,
			})
		}
		set.Samples = append(set.Samples, sample)
	}
	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal sample bundle: %w", err)
	}
	return append([]byte(xml.Header), data...), len(set.Samples), nil
}

type submissionContact struct {
	Name           string `xml:"name,attr"`
	InformOnError  string `xml:"inform_on_error,attr"`
	InformOnStatus string `xml:"inform_on_status,attr"`
}

type submissionAction struct {
	Add     *struct{} `xml:"ADD,omitempty"`
	Release *struct{} `xml:"RELEASE,omitempty"`
}

type submissionDoc struct {
	XMLName  xml.Name            `xml:"SUBMISSION"`
	Contacts []submissionContact `xml:"CONTACTS>CONTACT"`
	Actions  []submissionAction  `xml:"ACTIONS>ACTION"`
}

// BuildSubmission serialises the submission envelope: the broker contact
// plus an ADD action and an immediate RELEASE.
func BuildSubmission(contact Contact) ([]byte, error) {
	doc := submissionDoc{
		Contacts: []submissionContact{{
			Name:           contact.Name,
			InformOnError:  contact.Email,
			InformOnStatus: contact.Email,
		}},
		Actions: []submissionAction{
			{Add: &struct{}{}},
			{Release: &struct{}{}},
		},
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// ReceiptSample is one accessioned sample from a receipt.
type ReceiptSample struct {
	Alias              string
	SRAAccession       string
	BiosampleAccession string
}

// Receipt is the parsed response of a drop-box submission.
type Receipt struct {
	Success             bool
	Errors              []string
	Samples             []ReceiptSample
	SubmissionAccession string
}

type receiptDoc struct {
	Success  string `xml:"success,attr"`
	Messages struct {
		Errors []string `xml:"ERROR"`
	} `xml:"MESSAGES"`
	Samples []struct {
		Alias     string `xml:"alias,attr"`
		Accession string `xml:"accession,attr"`
		ExtID     struct {
			Accession string `xml:"accession,attr"`
		} `xml:"EXT_ID"`
	} `xml:"SAMPLE"`
	Submission struct {
		Accession string `xml:"accession,attr"`
	} `xml:"SUBMISSION"`
}

// ParseReceipt decodes the archival service's XML receipt. A document that
// does not parse is reported as an error so callers treat it like a failed
// exchange.
func ParseReceipt(data []byte) (Receipt, error) {
	var doc receiptDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Receipt{}, fmt.Errorf("parse receipt: %w", err)
	}
	receipt := Receipt{
		Success:             doc.Success != "false",
		Errors:              doc.Messages.Errors,
		SubmissionAccession: doc.Submission.Accession,
	}
	for _, s := range doc.Samples {
		receipt.Samples = append(receipt.Samples, ReceiptSample{
			Alias:              s.Alias,
			SRAAccession:       s.Accession,
			BiosampleAccession: s.ExtID.Accession,
		})
	}
	return receipt, nil
}

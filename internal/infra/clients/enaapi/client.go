// Package enaapi is the client of the ENA REST services: the public
// taxonomy lookup and the authenticated drop-box submission endpoint.
package enaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/resty.v1"

	"tolsubmissions/internal/core"
)

var (
	_ core.TaxonomyService  = (*Client)(nil)
	_ core.AccessionService = (*Client)(nil)
)

// Default endpoints of the production ENA services.
const (
	DefaultTaxonomyURL   = "https://www.ebi.ac.uk/ena/taxonomy/rest"
	DefaultSubmissionURL = "https://www.ebi.ac.uk/ena/submit/drop-box"
)

// Config carries the endpoints and drop-box credentials.
type Config struct {
	TaxonomyURL   string
	SubmissionURL string
	User          string
	Password      string
}

// Client talks to ENA. The taxonomy lookup is unauthenticated; submissions
// use HTTP basic auth against the drop box.
type Client struct {
	taxonomy   *resty.Client
	submission *resty.Client
}

// New constructs a client, filling unset endpoints with the production
// defaults.
func New(cfg Config) *Client {
	if cfg.TaxonomyURL == "" {
		cfg.TaxonomyURL = DefaultTaxonomyURL
	}
	if cfg.SubmissionURL == "" {
		cfg.SubmissionURL = DefaultSubmissionURL
	}
	return &Client{
		taxonomy:   resty.New().SetHostURL(cfg.TaxonomyURL),
		submission: resty.New().SetHostURL(cfg.SubmissionURL).SetBasicAuth(cfg.User, cfg.Password),
	}
}

// Taxonomy looks up one taxon. The service answers unknown taxa with the
// literal body "No results.", mapped to core.ErrUnknownTaxon.
func (c *Client) Taxonomy(ctx context.Context, taxonomyID int) (core.TaxonomyRecord, error) {
	resp, err := c.taxonomy.R().SetContext(ctx).Get("/tax-id/" + strconv.Itoa(taxonomyID))
	if err != nil {
		return core.TaxonomyRecord{}, errors.Wrap(err, "ena taxonomy lookup")
	}
	if resp.StatusCode() != http.StatusOK {
		return core.TaxonomyRecord{}, core.StatusError{Code: resp.StatusCode()}
	}
	if strings.TrimSpace(string(resp.Body())) == "No results." {
		return core.TaxonomyRecord{}, core.ErrUnknownTaxon
	}
	var record core.TaxonomyRecord
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return core.TaxonomyRecord{}, errors.Wrap(err, "ena taxonomy response")
	}
	return record, nil
}

// Submit posts the sample and submission documents as a multipart request
// and returns the raw receipt. Non-200 responses become core.StatusError;
// the receipt itself may still report failure and is left to the caller to
// interpret.
func (c *Client) Submit(ctx context.Context, sampleXML, submissionXML []byte) ([]byte, error) {
	resp, err := c.submission.R().
		SetContext(ctx).
		SetFileReader("SUBMISSION", "submission.xml", bytes.NewReader(submissionXML)).
		SetFileReader("SAMPLE", "sample.xml", bytes.NewReader(sampleXML)).
		Post("/submit/")
	if err != nil {
		return nil, errors.Wrap(err, "ena submission")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, core.StatusError{Code: resp.StatusCode()}
	}
	return resp.Body(), nil
}

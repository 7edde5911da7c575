// Package sts is the client of the specimen tracking service, consulted for
// specimens registered before this service existed.
package sts

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"gopkg.in/resty.v1"

	"tolsubmissions/internal/core"
)

var _ core.SpecimenRegistry = (*Client)(nil)

// Client talks to a specimen tracking service instance.
type Client struct {
	http   *resty.Client
	apiKey string
}

// New constructs a client for the service at baseURL.
func New(baseURL, apiKey string) *Client {
	c := resty.New().SetHostURL(baseURL)
	return &Client{http: c, apiKey: apiKey}
}

// GetSpecimen looks up a specimen across all projects. A specimen the
// service does not hold is reported as nil with no error; any non-200
// response is a core.StatusError.
func (c *Client) GetSpecimen(ctx context.Context, specimenID string) (*core.SpecimenRecord, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Project", "ALL").
		SetHeader("Authorization", c.apiKey).
		SetQueryParam("specimen_id", specimenID).
		Get("/specimens")
	if err != nil {
		return nil, errors.Wrap(err, "sts specimen lookup")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, core.StatusError{Code: resp.StatusCode()}
	}

	var payload struct {
		Data struct {
			List []struct {
				SpecimenID    string `json:"specimen_id"`
				BioSpecimenID string `json:"bio_specimen_id"`
			} `json:"list"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, errors.Wrap(err, "sts specimen response")
	}
	if len(payload.Data.List) == 0 {
		return nil, nil
	}
	entry := payload.Data.List[0]
	if entry.BioSpecimenID == "" {
		return nil, nil
	}
	return &core.SpecimenRecord{
		SpecimenID:         entry.SpecimenID,
		BiosampleAccession: entry.BioSpecimenID,
	}, nil
}

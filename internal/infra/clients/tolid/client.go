// Package tolid is the client of the ToLID service: species and specimen
// lookups plus batch name issuance.
package tolid

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/resty.v1"

	"tolsubmissions/internal/core"
)

var _ core.NamingService = (*Client)(nil)

// Client talks to a ToLID service instance.
type Client struct {
	http   *resty.Client
	apiKey string
}

// New constructs a client for the service at baseURL. The API key is only
// required for name issuance.
func New(baseURL, apiKey string) *Client {
	c := resty.New().SetHostURL(baseURL)
	return &Client{http: c, apiKey: apiKey}
}

// SpeciesExists returns nil when the species is known, core.ErrNotFound on
// 404, and a core.StatusError on any other non-200 response.
func (c *Client) SpeciesExists(ctx context.Context, taxonomyID int) error {
	resp, err := c.http.R().SetContext(ctx).Get("/species/" + strconv.Itoa(taxonomyID))
	if err != nil {
		return errors.Wrap(err, "tolid species lookup")
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return core.ErrNotFound
	default:
		return core.StatusError{Code: resp.StatusCode()}
	}
}

// SpecimenTaxonomies returns the taxonomy IDs previously registered for a
// specimen ID, de-duplicated in response order. core.ErrNotFound means the
// specimen was never used.
func (c *Client) SpecimenTaxonomies(ctx context.Context, specimenID string) ([]int, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/specimens/" + specimenID)
	if err != nil {
		return nil, errors.Wrap(err, "tolid specimen lookup")
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, core.ErrNotFound
	default:
		return nil, core.StatusError{Code: resp.StatusCode()}
	}

	var payload []struct {
		TolIDs []struct {
			Species struct {
				TaxonomyID int `json:"taxonomyId"`
			} `json:"species"`
		} `json:"tolIds"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, errors.Wrap(err, "tolid specimen response")
	}
	var taxons []int
	seen := map[int]struct{}{}
	for _, specimen := range payload {
		for _, entry := range specimen.TolIDs {
			id := entry.Species.TaxonomyID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			taxons = append(taxons, id)
		}
	}
	return taxons, nil
}

// AssignNames issues ToLIDs for a batch of taxon/specimen pairs. An entry
// answered without a tolId means the service raised a manual request; the
// assignment is returned with an empty name.
func (c *Client) AssignNames(ctx context.Context, requests []core.NameRequest) ([]core.NameAssignment, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-key", c.apiKey).
		SetBody(requests).
		Post("/tol-ids")
	if err != nil {
		return nil, errors.Wrap(err, "tolid name issuance")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, core.StatusError{Code: resp.StatusCode()}
	}

	var payload []struct {
		TolID   string `json:"tolId"`
		Species struct {
			TaxonomyID int `json:"taxonomyId"`
		} `json:"species"`
		Specimen struct {
			SpecimenID string `json:"specimenId"`
		} `json:"specimen"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, errors.Wrap(err, "tolid name response")
	}
	assignments := make([]core.NameAssignment, 0, len(payload))
	for _, entry := range payload {
		assignments = append(assignments, core.NameAssignment{
			TaxonomyID: entry.Species.TaxonomyID,
			SpecimenID: entry.Specimen.SpecimenID,
			ToLID:      entry.TolID,
		})
	}
	return assignments, nil
}

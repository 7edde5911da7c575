// Package api exposes the submissions service over HTTP. All routes live
// under /api/v1 and authenticate with the api-key header; manifest routes
// additionally require the submitter or admin role.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	blobcore "tolsubmissions/internal/blob/core"
	"tolsubmissions/internal/core"
	"tolsubmissions/internal/spreadsheet"
	"tolsubmissions/pkg/domain"
)

const (
	apiKeyHeader = "api-key"

	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// Response details mirrored by API clients; do not reword.
	detailNoPermission   = "User does not have permission to use this function"
	detailNoManifest     = "Manifest does not exist"
	detailNoSpecimen     = "Specimen does not exist"
	detailNoSample       = "Sample does not exist"
	detailInvalidAPIKey  = "Invalid API key"
	detailExcelFileError = "Excel file cannot be read"
)

type contextKey int

const userContextKey contextKey = iota

// Handler routes HTTP requests onto the service.
type Handler struct {
	service *core.Service
	blobs   blobcore.Store
	router  *mux.Router
}

// NewHandler constructs the HTTP handler. The blob store holds uploaded
// manifest workbooks; pass nil to disable the Excel endpoints.
func NewHandler(service *core.Service, blobs blobcore.Store) *Handler {
	h := &Handler{service: service, blobs: blobs}
	h.routes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router = mux.NewRouter()
	h.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := h.router.PathPrefix("/api/v1").Subrouter()
	api.Use(metricsMiddleware)
	api.HandleFunc("/environment", h.handleEnvironment).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(h.authMiddleware)
	authed.HandleFunc("/manifests", h.handleListManifests).Methods(http.MethodGet)
	authed.HandleFunc("/manifests", h.handleCreateManifest).Methods(http.MethodPost)
	authed.HandleFunc("/manifests/validate", h.handleCreateAndValidate).Methods(http.MethodPost)
	authed.HandleFunc("/manifests/generate", h.handleCreateAndGenerate).Methods(http.MethodPost)
	authed.HandleFunc("/manifests/excel", h.handleUploadExcel).Methods(http.MethodPost)
	authed.HandleFunc("/manifests/{manifestID}", h.handleGetManifest).Methods(http.MethodGet)
	authed.HandleFunc("/manifests/{manifestID}/validate", h.handleValidateManifest).Methods(http.MethodPost)
	authed.HandleFunc("/manifests/{manifestID}/generate", h.handleGenerateManifest).Methods(http.MethodPost)
	authed.HandleFunc("/manifests/{manifestID}/excel", h.handleDownloadExcel).Methods(http.MethodGet)
	authed.HandleFunc("/specimens/{specimenID}/samples", h.handleSamplesBySpecimen).Methods(http.MethodGet)
	authed.HandleFunc("/biospecimens/{biospecimenID}/samples", h.handleSamplesByBiospecimen).Methods(http.MethodGet)
	authed.HandleFunc("/samples/{biosampleID}", h.handleGetSample).Methods(http.MethodGet)
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.service.Store().FindUserByAPIKey(r.Header.Get(apiKeyHeader))
		if !ok {
			writeError(w, http.StatusUnauthorized, detailInvalidAPIKey)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

func userFrom(r *http.Request) domain.User {
	user, _ := r.Context().Value(userContextKey).(domain.User)
	return user
}

// submitter resolves the authenticated user and enforces the submitter or
// admin role. A false return means the response has been written.
func (h *Handler) submitter(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user := userFrom(r)
	if !user.HasRole(domain.RoleSubmitter, domain.RoleAdmin) {
		writeError(w, http.StatusForbidden, detailNoPermission)
		return domain.User{}, false
	}
	return user, true
}

type validationResponse struct {
	ManifestID     string             `json:"manifestId"`
	NumberOfErrors int                `json:"number_of_errors"`
	Validations    []domain.RowResult `json:"validations"`
}

func validationResponseFor(manifestID string, report domain.Report) validationResponse {
	return validationResponse{
		ManifestID:     manifestID,
		NumberOfErrors: report.ErrorCount(),
		Validations:    report.Rows,
	}
}

type manifestSummary struct {
	ManifestID       string `json:"manifestId"`
	ProjectName      string `json:"projectName"`
	STSManifestID    string `json:"stsManifestId,omitempty"`
	SubmissionStatus *bool  `json:"submissionStatus"`
	SampleCount      int    `json:"sampleCount"`
}

func (h *Handler) handleListManifests(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.submitter(w, r); !ok {
		return
	}
	manifests := h.service.ListManifests(r.Context())
	summaries := make([]manifestSummary, 0, len(manifests))
	for _, m := range manifests {
		summaries = append(summaries, manifestSummary{
			ManifestID:       m.ID,
			ProjectName:      m.ProjectName,
			STSManifestID:    m.STSManifestID,
			SubmissionStatus: m.SubmissionStatus,
			SampleCount:      len(m.Samples),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// decodeAndCreate maps the JSON payload onto a manifest and persists it.
func (h *Handler) decodeAndCreate(w http.ResponseWriter, r *http.Request, user domain.User) (domain.Manifest, bool) {
	var payload core.ManifestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("cannot parse manifest: %v", err))
		return domain.Manifest{}, false
	}
	manifest, err := core.ManifestFromPayload(payload, user)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Manifest{}, false
	}
	created, err := h.service.CreateManifest(r.Context(), manifest, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return domain.Manifest{}, false
	}
	return created, true
}

func (h *Handler) handleCreateManifest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.submitter(w, r)
	if !ok {
		return
	}
	manifest, ok := h.decodeAndCreate(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func (h *Handler) handleCreateAndValidate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.submitter(w, r)
	if !ok {
		return
	}
	manifest, ok := h.decodeAndCreate(w, r, user)
	if !ok {
		return
	}
	h.validate(w, r, manifest.ID)
}

func (h *Handler) handleCreateAndGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.submitter(w, r)
	if !ok {
		return
	}
	manifest, ok := h.decodeAndCreate(w, r, user)
	if !ok {
		return
	}
	h.generate(w, r, manifest.ID)
}

func (h *Handler) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.submitter(w, r); !ok {
		return
	}
	manifest, err := h.service.GetManifest(r.Context(), mux.Vars(r)["manifestID"])
	if err != nil {
		writeError(w, http.StatusNotFound, detailNoManifest)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

func (h *Handler) handleValidateManifest(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.submitter(w, r); !ok {
		return
	}
	h.validate(w, r, mux.Vars(r)["manifestID"])
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, manifestID string) {
	report, err := h.service.ValidateManifest(r.Context(), manifestID)
	if errors.Is(err, core.ErrManifestNotFound) {
		writeError(w, http.StatusNotFound, detailNoManifest)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	countFindings(report)
	writeJSON(w, http.StatusOK, validationResponseFor(manifestID, report))
}

func (h *Handler) handleGenerateManifest(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.submitter(w, r); !ok {
		return
	}
	h.generate(w, r, mux.Vars(r)["manifestID"])
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, manifestID string) {
	started := time.Now()
	manifest, report, err := h.service.GenerateIdentifiers(r.Context(), manifestID)
	generationDuration.Observe(time.Since(started).Seconds())
	if errors.Is(err, core.ErrManifestNotFound) {
		writeError(w, http.StatusNotFound, detailNoManifest)
		return
	}
	if err != nil {
		generationRuns.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(report.Rows) > 0 {
		generationRuns.WithLabelValues("rejected").Inc()
		countFindings(report)
		writeJSON(w, http.StatusOK, validationResponseFor(manifestID, report))
		return
	}
	generationRuns.WithLabelValues("submitted").Inc()
	writeJSON(w, http.StatusOK, manifest)
}

func (h *Handler) handleUploadExcel(w http.ResponseWriter, r *http.Request) {
	user, ok := h.submitter(w, r)
	if !ok {
		return
	}
	file, _, err := r.FormFile("excelFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, detailExcelFileError)
		return
	}
	defer func() { _ = file.Close() }()

	// The workbook is parsed and archived, so buffer it once.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeError(w, http.StatusBadRequest, detailExcelFileError)
		return
	}
	manifest, err := spreadsheet.Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		writeError(w, http.StatusBadRequest, detailExcelFileError)
		return
	}
	if projectName := r.FormValue("projectName"); projectName != "" {
		manifest.ProjectName = projectName
	}

	// Required fields gate before anything is persisted.
	report, err := h.service.ValidateRequired(r.Context(), manifest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report.ErrorCount() > 0 {
		countFindings(report)
		writeJSON(w, http.StatusBadRequest, validationResponseFor("", report))
		return
	}

	created, err := h.service.CreateManifest(r.Context(), *manifest, user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.blobs != nil {
		key := "manifests/" + uuid.NewString() + ".xlsx"
		_, err := h.blobs.Put(r.Context(), key, bytes.NewReader(buf.Bytes()), blobcore.PutOptions{
			ContentType: excelContentType,
			Metadata:    map[string]string{"manifest-id": created.ID},
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := h.service.AttachExcel(r.Context(), created.ID, key); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		created.ExcelObjectKey = key
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) handleDownloadExcel(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.submitter(w, r); !ok {
		return
	}
	manifest, err := h.service.GetManifest(r.Context(), mux.Vars(r)["manifestID"])
	if err != nil {
		writeError(w, http.StatusNotFound, detailNoManifest)
		return
	}

	var out bytes.Buffer
	if h.blobs != nil && manifest.ExcelObjectKey != "" {
		// Return the uploaded workbook with identifier columns appended.
		_, rc, err := h.blobs.Get(r.Context(), manifest.ExcelObjectKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer func() { _ = rc.Close() }()
		if err := spreadsheet.AppendIdentifiers(rc, &manifest, &out); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	} else if err := spreadsheet.Write(&manifest, &out); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", excelContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="manifest.xlsx"`)
	_, _ = w.Write(out.Bytes())
}

type specimenSamplesResponse struct {
	SpecimenID    string          `json:"specimenId"`
	BiospecimenID string          `json:"biospecimenId"`
	Samples       []domain.Sample `json:"samples"`
}

// samplesRelatedTo collects every sample whose resolved relationship points
// at the given biospecimen accession.
func (h *Handler) samplesRelatedTo(accession string) []domain.Sample {
	samples := []domain.Sample{}
	for _, manifest := range h.service.ListManifests(context.Background()) {
		for _, sample := range manifest.Samples {
			if sample.SameAs() == accession ||
				sample.DerivedFrom() == accession ||
				sample.SymbiontOf() == accession {
				samples = append(samples, sample)
			}
		}
	}
	return samples
}

func (h *Handler) handleSamplesBySpecimen(w http.ResponseWriter, r *http.Request) {
	specimen, ok := h.service.Store().GetSpecimen(mux.Vars(r)["specimenID"])
	if !ok {
		writeError(w, http.StatusNotFound, detailNoSpecimen)
		return
	}
	writeJSON(w, http.StatusOK, specimenSamplesResponse{
		SpecimenID:    specimen.SpecimenID,
		BiospecimenID: specimen.BiosampleAccession,
		Samples:       h.samplesRelatedTo(specimen.BiosampleAccession),
	})
}

func (h *Handler) handleSamplesByBiospecimen(w http.ResponseWriter, r *http.Request) {
	accession := mux.Vars(r)["biospecimenID"]
	for _, specimen := range h.service.Store().ListSpecimens() {
		if specimen.BiosampleAccession == accession {
			writeJSON(w, http.StatusOK, specimenSamplesResponse{
				SpecimenID:    specimen.SpecimenID,
				BiospecimenID: specimen.BiosampleAccession,
				Samples:       h.samplesRelatedTo(specimen.BiosampleAccession),
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, detailNoSpecimen)
}

func (h *Handler) handleGetSample(w http.ResponseWriter, r *http.Request) {
	accession := mux.Vars(r)["biosampleID"]
	for _, manifest := range h.service.ListManifests(r.Context()) {
		for _, sample := range manifest.Samples {
			if sample.BiosampleAccession == accession {
				writeJSON(w, http.StatusOK, sample)
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, detailNoSample)
}

func (h *Handler) handleEnvironment(w http.ResponseWriter, _ *http.Request) {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}
	writeJSON(w, http.StatusOK, map[string]string{"environment": environment})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

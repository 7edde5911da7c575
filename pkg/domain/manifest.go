package domain

// Manifest is an ordered batch of samples sharing one submission context.
// Cross-record trackers are transient: they live only on the instance and
// must be rebuilt with RebuildTrackers before any validator that consults
// them runs.
type Manifest struct {
	Base
	ProjectName      string   `json:"project_name"`
	STSManifestID    string   `json:"sts_manifest_id,omitempty"`
	SubmissionStatus *bool    `json:"submission_status"`
	CreatedBy        string   `json:"created_by,omitempty"`
	ExcelObjectKey   string   `json:"excel_object_key,omitempty"`
	Samples          []Sample `json:"samples"`

	targetContainers    map[string]struct{}
	duplicateContainers map[string]struct{}
	specimenTaxons      map[string]int
	wholeOrganisms      map[string]struct{}
	duplicateOrganisms  map[string]struct{}
}

// ContainerKey is the rack/plate + tube/well concatenation used for
// duplicate and orphan detection.
func ContainerKey(rackOrPlateID, tubeOrWellID string) string {
	return rackOrPlateID + "/" + tubeOrWellID
}

// RebuildTrackers recomputes every cross-record tracker from the current
// samples. Rebuilding twice without data changes yields identical sets.
func (m *Manifest) RebuildTrackers() {
	m.targetContainers = map[string]struct{}{}
	m.duplicateContainers = map[string]struct{}{}
	m.specimenTaxons = map[string]int{}
	m.wholeOrganisms = map[string]struct{}{}
	m.duplicateOrganisms = map[string]struct{}{}

	for i := range m.Samples {
		s := &m.Samples[i]
		if !s.IsSymbiont() && s.RackOrPlateID != "" && s.TubeOrWellID != "" {
			key := ContainerKey(s.RackOrPlateID, s.TubeOrWellID)
			if _, seen := m.targetContainers[key]; seen {
				m.duplicateContainers[key] = struct{}{}
			}
			m.targetContainers[key] = struct{}{}
		}
		if !s.IsSymbiont() && s.SpecimenID != "" && s.TaxonomyID != 0 {
			// Only the first taxon seen for a specimen counts.
			if _, seen := m.specimenTaxons[s.SpecimenID]; !seen {
				m.specimenTaxons[s.SpecimenID] = s.TaxonomyID
			}
		}
		if s.OrganismPart == "WHOLE_ORGANISM" {
			if _, seen := m.wholeOrganisms[s.SpecimenID]; seen {
				m.duplicateOrganisms[s.SpecimenID] = struct{}{}
			}
			m.wholeOrganisms[s.SpecimenID] = struct{}{}
		}
	}
}

// HasTargetContainer reports whether any non-symbiont sample occupies the
// given rack/tube or plate/well combination.
func (m *Manifest) HasTargetContainer(key string) bool {
	_, ok := m.targetContainers[key]
	return ok
}

// IsDuplicateContainer reports whether more than one target shares the
// given rack/tube or plate/well combination.
func (m *Manifest) IsDuplicateContainer(key string) bool {
	_, ok := m.duplicateContainers[key]
	return ok
}

// FirstSeenTaxon returns the taxonomy ID first recorded for a specimen
// among targets, and whether one was recorded at all.
func (m *Manifest) FirstSeenTaxon(specimenID string) (int, bool) {
	taxon, ok := m.specimenTaxons[specimenID]
	return taxon, ok
}

// IsDuplicateWholeOrganism reports whether the specimen ID is used by more
// than one WHOLE_ORGANISM sample.
func (m *Manifest) IsDuplicateWholeOrganism(specimenID string) bool {
	_, ok := m.duplicateOrganisms[specimenID]
	return ok
}

// UniqueTaxonomyIDs returns the distinct taxonomy IDs across all samples,
// in first-seen order.
func (m *Manifest) UniqueTaxonomyIDs() []int {
	seen := map[int]struct{}{}
	var ids []int
	for i := range m.Samples {
		id := m.Samples[i].TaxonomyID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// FindSample returns a pointer to the sample with the given ID, or nil.
func (m *Manifest) FindSample(sampleID string) *Sample {
	for i := range m.Samples {
		if m.Samples[i].ID == sampleID {
			return &m.Samples[i]
		}
	}
	return nil
}

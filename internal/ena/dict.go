package ena

import (
	"strings"

	"tolsubmissions/pkg/domain"
)

// Attribute is one projected sample attribute in checklist order.
type Attribute struct {
	Tag   string
	Value string
	Units string
}

// AttributeSet is an ordered attribute list with name lookup.
type AttributeSet []Attribute

// Find returns the attribute with the given tag and whether it is present.
func (a AttributeSet) Find(tag string) (Attribute, bool) {
	for _, attr := range a {
		if attr.Tag == tag {
			return attr, true
		}
	}
	return Attribute{}, false
}

func spaced(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}

func spacedLower(v string) string {
	return strings.ToLower(spaced(v))
}

// Attributes projects a sample into its ENA checklist attributes, listed in
// the order they appear on the checklist. Optional attributes are omitted
// when the sample does not carry them; mandatory ones are always present so
// checklist validation can flag empty values.
func Attributes(projectName string, s *domain.Sample) AttributeSet {
	attrs := AttributeSet{
		{Tag: "ENA-CHECKLIST", Value: ChecklistID},
		{Tag: "organism part", Value: spaced(s.OrganismPart)},
		{Tag: "lifestage", Value: lifestageValue(s.Lifestage)},
		{Tag: "project name", Value: projectName},
		{Tag: "tolid", Value: s.ToLID},
		{Tag: "collected by", Value: spaced(s.CollectedBy)},
		{Tag: "collection date", Value: spacedLower(s.DateOfCollection)},
		{Tag: "geographic location (country and/or sea)", Value: spaced(s.CollectionCountry())},
		{Tag: "geographic location (latitude)", Value: spacedLower(s.DecimalLatitude), Units: "DD"},
		{Tag: "geographic location (longitude)", Value: spacedLower(s.DecimalLongitude), Units: "DD"},
		{Tag: "geographic location (region and locality)", Value: spaced(s.CollectionRegion())},
		{Tag: "identified_by", Value: spaced(s.IdentifiedBy)},
	}
	if s.Depth != "" {
		attrs = append(attrs, Attribute{Tag: "geographic location (depth)", Value: s.Depth, Units: "m"})
	}
	if s.Elevation != "" {
		attrs = append(attrs, Attribute{Tag: "geographic location (elevation)", Value: s.Elevation, Units: "m"})
	}
	attrs = append(attrs,
		Attribute{Tag: "habitat", Value: spaced(s.Habitat)},
		Attribute{Tag: "identifier_affiliation", Value: spaced(s.IdentifierAffiliation)},
	)
	if s.OriginalCollectionDate != "" {
		attrs = append(attrs, Attribute{Tag: "original collection date", Value: s.OriginalCollectionDate})
	}
	if s.OriginalGeographicLocation != "" {
		attrs = append(attrs, Attribute{Tag: "original geographic location", Value: spaced(s.OriginalGeographicLocation)})
	}
	if v := s.DerivedFrom(); v != "" {
		attrs = append(attrs, Attribute{Tag: "sample derived from", Value: v})
	}
	if v := s.SameAs(); v != "" {
		attrs = append(attrs, Attribute{Tag: "sample same as", Value: v})
	}
	if v := s.SymbiontOf(); v != "" {
		attrs = append(attrs, Attribute{Tag: "sample symbiont of", Value: v})
	}
	attrs = append(attrs, Attribute{Tag: "sex", Value: spaced(s.Sex)})
	if s.RelationshipNote != "" {
		attrs = append(attrs, Attribute{Tag: "relationship", Value: spaced(s.RelationshipNote)})
	}
	if s.Symbiont != "" {
		value := "N"
		if s.Symbiont == "SYMBIONT" {
			value = "Y"
		}
		attrs = append(attrs, Attribute{Tag: "symbiont", Value: value})
	}
	attrs = append(attrs,
		Attribute{Tag: "collecting institution", Value: spaced(s.CollectorAffiliation)},
		Attribute{Tag: "GAL", Value: spaced(s.GAL)},
		Attribute{Tag: "specimen_voucher", Value: spaced(s.VoucherID)},
		Attribute{Tag: "specimen_id", Value: spaced(s.SpecimenID)},
		Attribute{Tag: "GAL_sample_id", Value: spaced(s.GALSampleID)},
	)
	if s.CultureOrStrainID != "" {
		attrs = append(attrs, Attribute{Tag: "culture_or_strain_id", Value: spaced(s.CultureOrStrainID)})
	}
	return attrs
}

func lifestageValue(lifestage string) string {
	if lifestage == "SPORE_BEARING_STRUCTURE" {
		return "spore-bearing structure"
	}
	return spaced(lifestage)
}

// Package core implements manifest validation, relationship resolution and
// the identifier generation pipeline.
package core

import "tolsubmissions/pkg/domain"

// NewValidationEngine builds the full validation engine. The validator
// order is fixed: structural checks first, then cross-record checks over
// the manifest trackers, then the remote-authority checks.
func NewValidationEngine(naming NamingService, taxonomy TaxonomyService) *domain.ValidationEngine {
	engine := domain.NewValidationEngine()
	engine.Register(NewRequiredFieldsRule())
	engine.Register(NewAllowedValuesRule())
	engine.Register(NewFieldPatternsRule())
	engine.Register(NewSpecimenNamingRule())
	engine.Register(NewContainerNotBothNARule())
	engine.Register(NewContainerUniqueRule())
	engine.Register(NewOrphanedSymbiontRule())
	engine.Register(NewTaxonConsistencyRule())
	engine.Register(NewBarcodingRule())
	engine.Register(NewWholeOrganismUniqueRule())
	engine.Register(NewSpeciesKnownRule(naming))
	engine.Register(NewSpecimenRegistryRule(naming))
	engine.Register(NewENAChecklistRule())
	engine.Register(NewENASubmittableRule(taxonomy))
	return engine
}

// NewRequiredOnlyEngine builds the fast-path engine for contexts that must
// avoid remote calls, checking required fields only.
func NewRequiredOnlyEngine() *domain.ValidationEngine {
	engine := domain.NewValidationEngine()
	engine.Register(NewRequiredFieldsRule())
	return engine
}

// NewOfflineEngine builds an engine with every validator that needs no
// remote authority, used by the command-line checker.
func NewOfflineEngine() *domain.ValidationEngine {
	engine := domain.NewValidationEngine()
	engine.Register(NewRequiredFieldsRule())
	engine.Register(NewAllowedValuesRule())
	engine.Register(NewFieldPatternsRule())
	engine.Register(NewSpecimenNamingRule())
	engine.Register(NewContainerNotBothNARule())
	engine.Register(NewContainerUniqueRule())
	engine.Register(NewOrphanedSymbiontRule())
	engine.Register(NewTaxonConsistencyRule())
	engine.Register(NewBarcodingRule())
	engine.Register(NewWholeOrganismUniqueRule())
	engine.Register(NewENAChecklistRule())
	return engine
}

// Package glossary holds the curated botanical vocabulary consumed by the
// trait inference engine.  The engine depends only on the Lookup contract;
// the in-memory matcher, YAML corpus loader, and the postgres repository are
// interchangeable sources behind it.
package glossary

import (
	"strings"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// Non-quantitative measurement-unit sentinels.  A term whose declared unit
// is one of these carries no measurement potential.
const (
	UnitNone        = ""
	UnitText        = "text"
	UnitQualitative = "qualitative"
)

// Term is a single curated botanical vocabulary entry.  Metadata is
// validated once at the glossary boundary so the inference engine never has
// to re-check it.
type Term struct {
	// Name is the canonical term, e.g. "labellum".
	Name string `json:"name" yaml:"name"`

	// Category is the semantic trait category, e.g. "Floral Organ",
	// "Vegetative", "Phenotypic".
	Category string `json:"category" yaml:"category"`

	// AIDerivable marks terms whose value an image/text model could
	// plausibly infer without expert judgment.
	AIDerivable bool `json:"ai_derivable" yaml:"ai_derivable"`

	// MeasurementUnit is the unit measurements of this trait are recorded
	// in ("mm", "count", ...), or one of the non-quantitative sentinels.
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit"`

	// Synonyms lists alternative names in curation order.
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
}

// Validate checks the invariants every term must satisfy before it enters
// the matcher.  Synonym entries are trimmed; empty ones are rejected rather
// than silently dropped so corpus defects surface at load time.
func (t Term) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New(errors.ErrCodeGlossaryTermInvalid, "term name must not be empty")
	}
	if strings.TrimSpace(t.Category) == "" {
		return errors.New(errors.ErrCodeGlossaryTermInvalid, "term category must not be empty").
			WithDetail("name=" + t.Name)
	}
	for _, s := range t.Synonyms {
		if strings.TrimSpace(s) == "" {
			return errors.New(errors.ErrCodeGlossaryTermInvalid, "empty synonym").
				WithDetail("name=" + t.Name)
		}
	}
	return nil
}

// MeasurementPotential reports whether the term's declared unit is
// quantitative, i.e. not one of the non-quantitative sentinels.
func (t Term) MeasurementPotential() bool {
	switch strings.ToLower(strings.TrimSpace(t.MeasurementUnit)) {
	case UnitNone, UnitText, UnitQualitative:
		return false
	default:
		return true
	}
}

// Package commands holds the write requests accepted by the graph service.
// Field tags are checked with validator before the service touches the
// store; value clamping is left to the domain.
package commands

import (
	"github.com/go-playground/validator/v10"

	"papergraph-backend/internal/errors"
)

// NodeCommand creates or replaces a node.
type NodeCommand struct {
	Title           string   `json:"title" yaml:"title" validate:"required,max=500"`
	Description     string   `json:"description" yaml:"description" validate:"max=10000"`
	Kind            string   `json:"kind" yaml:"kind" validate:"omitempty,oneof=concept method theory finding conclusion"`
	Importance      *int     `json:"importance,omitempty" yaml:"importance,omitempty"`
	PageReferences  []int    `json:"pageReferences" yaml:"pageReferences" validate:"dive,gt=0"`
	RelatedConcepts []string `json:"relatedConcepts" yaml:"relatedConcepts" validate:"dive,uuid"`
}

// EdgeCommand creates or replaces an edge.
type EdgeCommand struct {
	SourceID     string   `json:"sourceId" yaml:"sourceId" validate:"required,uuid"`
	TargetID     string   `json:"targetId" yaml:"targetId" validate:"required,uuid"`
	Relationship string   `json:"relationship" yaml:"relationship" validate:"omitempty,oneof=isPartOf influences supports contradicts references implements"`
	Strength     *float64 `json:"strength,omitempty" yaml:"strength,omitempty"`
	Description  string   `json:"description" yaml:"description" validate:"max=10000"`
}

// IngestCommand triggers an extraction over paper sections.
type IngestCommand struct {
	Sections []SectionInput `json:"sections" validate:"required,min=1,dive"`
}

// SectionInput is one titled chunk of paper text.
type SectionInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

var validate = validator.New()

// Validate checks a command's field tags.
func Validate(cmd interface{}) error {
	if err := validate.Struct(cmd); err != nil {
		return errors.Validation(errors.CodeInvalidInput.String(), "invalid request").
			WithDetails(err.Error()).
			WithCause(err).
			Build()
	}
	return nil
}

package ingestion

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"papergraph-backend/internal/errors"
)

// RawNode is a producer node keyed by its external id. The producer names
// the kind tag "type"; "kind" is accepted as well.
type RawNode struct {
	ID         string   `json:"id"`
	Type       string   `json:"type,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Importance *float64 `json:"importance,omitempty"`
}

// KindTag returns the tag the producer supplied, preferring "type".
func (n RawNode) KindTag() string {
	if n.Type != "" {
		return n.Type
	}
	return n.Kind
}

// RawEdge references its endpoints by external id.
type RawEdge struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Relationship string   `json:"relationship,omitempty"`
	Strength     *float64 `json:"strength,omitempty"`
}

// Envelope is the extraction producer's {nodes, edges} payload. Both keys
// must be present as arrays; either may be empty.
type Envelope struct {
	Nodes []RawNode `json:"nodes" validate:"required"`
	Edges []RawEdge `json:"edges" validate:"required"`
}

var envelopeValidator = validator.New()

// Parse decodes and shape-checks an extraction payload. Any failure is
// MALFORMED_INGESTION_INPUT.
func Parse(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, malformed("payload is not a {nodes, edges} JSON object", err)
	}
	if err := envelopeValidator.Struct(env); err != nil {
		return Envelope{}, malformed("payload is missing the nodes or edges array", err)
	}
	return env, nil
}

func malformed(details string, cause error) error {
	return errors.Validation(errors.CodeMalformedIngestionInput.String(), "malformed ingestion input").
		WithDetails(details).
		WithOperation("Parse").
		WithResource("ingestion").
		WithCause(cause).
		Build()
}

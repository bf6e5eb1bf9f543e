package shared

import (
	"papergraph-backend/internal/errors"
)

// Domain error definitions using the unified error system. Use errors.Is
// against these; matching is by type and code so errors carrying extra
// details still match.
var (
	ErrInvalidID = errors.Validation(errors.CodeInvalidUUID.String(), "invalid id: must be a valid UUID").
			Build()
	ErrInvalidNode = errors.Validation(errors.CodeInvalidNode.String(), "invalid node").
			WithResource("node").
			Build()

	// ErrUnknownEndpoint rejects an edge whose source or target is not in the store.
	ErrUnknownEndpoint = errors.Domain(errors.CodeUnknownEndpoint.String(), "edge endpoint does not exist").
				WithResource("edge").
				Build()

	// ErrMalformedIngestionInput rejects an extraction payload that does not
	// have the {nodes, edges} envelope shape.
	ErrMalformedIngestionInput = errors.Validation(errors.CodeMalformedIngestionInput.String(), "malformed ingestion input").
					WithResource("ingestion").
					Build()

	// ErrInvalidExportDocument rejects an import whose edges reference nodes
	// missing from the same document, or whose values cannot be decoded.
	ErrInvalidExportDocument = errors.Validation(errors.CodeInvalidExportDocument.String(), "invalid export document").
					WithResource("document").
					Build()
)

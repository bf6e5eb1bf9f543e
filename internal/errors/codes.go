package errors

import "net/http"

// ErrorCode represents a unique error code for specific error scenarios
type ErrorCode string

const (
	// Graph structure
	CodeUnknownEndpoint ErrorCode = "UNKNOWN_ENDPOINT"
	CodeInvalidNode     ErrorCode = "INVALID_NODE"
	CodeNodeNotFound    ErrorCode = "NODE_NOT_FOUND"
	CodeEdgeNotFound    ErrorCode = "EDGE_NOT_FOUND"
	CodeInvalidUUID     ErrorCode = "INVALID_UUID"

	// Persistence
	CodeSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"

	// Ingestion and serialization
	CodeMalformedIngestionInput ErrorCode = "MALFORMED_INGESTION_INPUT"
	CodeInvalidExportDocument   ErrorCode = "INVALID_EXPORT_DOCUMENT"
	CodeUnsupportedFormat       ErrorCode = "UNSUPPORTED_FORMAT"

	// Extraction producer
	CodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Request handling
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Infrastructure
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
	CodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// String returns the code as a plain string.
func (c ErrorCode) String() string {
	return string(c)
}

// HTTPStatusCode returns the appropriate HTTP status code for an error code
func (c ErrorCode) HTTPStatusCode() int {
	switch c {
	case CodeInvalidNode, CodeInvalidUUID, CodeMalformedIngestionInput,
		CodeInvalidExportDocument, CodeUnsupportedFormat, CodeInvalidInput:
		return http.StatusBadRequest

	case CodeNodeNotFound, CodeEdgeNotFound, CodeSnapshotNotFound:
		return http.StatusNotFound

	case CodeUnknownEndpoint:
		return http.StatusUnprocessableEntity

	case CodeExtractionFailed:
		return http.StatusBadGateway

	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

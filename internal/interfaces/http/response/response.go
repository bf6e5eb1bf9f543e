// Package response writes the API's JSON envelopes. Successful responses
// share one envelope shape; failures are RFC 7807 problem documents whose
// status and code come from the unified error taxonomy.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"papergraph-backend/internal/errors"
)

// Envelope is the body of every successful JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    Meta        `json:"meta"`
}

// Meta carries request correlation data.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Writer writes envelopes and problems. Production mode hides details of
// server-side failures.
type Writer struct {
	logger     *zap.Logger
	production bool
}

// NewWriter creates a response writer.
func NewWriter(logger *zap.Logger, production bool) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger, production: production}
}

// JSON writes data inside a success envelope.
func (rw *Writer) JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	body := Envelope{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta(r),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rw.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// Raw writes a pre-encoded body with the given content type.
func (rw *Writer) Raw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		rw.logger.Warn("failed to write response", zap.Error(err))
	}
}

// Error maps err onto a problem document and writes it.
func (rw *Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.CodeOf(err)
	status := code.HTTPStatusCode()

	p := Problem{
		Type:      "/errors/" + string(code),
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detailOf(err),
		Instance:  r.URL.Path,
		Code:      string(code),
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	fields := []zap.Field{
		zap.String("code", p.Code),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("request_id", p.RequestID),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		rw.logger.Error("request failed", fields...)
		if rw.production {
			p.Detail = "An internal error occurred. Please try again later."
		}
	} else {
		rw.logger.Debug("request rejected", fields...)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(p); encErr != nil {
		rw.logger.Warn("failed to encode problem", zap.Error(encErr))
	}
}

func detailOf(err error) string {
	if ue, ok := errors.AsUnified(err); ok {
		if ue.Details != "" {
			return ue.Message + ": " + ue.Details
		}
		return ue.Message
	}
	return err.Error()
}

func meta(r *http.Request) Meta {
	return Meta{
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

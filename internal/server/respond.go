package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	mdaoio "github.com/matzehuels/mdaograph/pkg/io"
	"github.com/matzehuels/mdaograph/pkg/mdao/validate"
	"github.com/matzehuels/mdaograph/pkg/pipeline"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error       string                `json:"error"`
	Status      int                   `json:"status"`
	Message     string                `json:"message"`
	RunID       string                `json:"run_id,omitempty"`
	Diagnostics []validate.Diagnostic `json:"diagnostics,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func respondError(w http.ResponseWriter, err error, runID string) {
	status := statusFor(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	resp := errorResponse{
		Error:   string(code),
		Status:  status,
		Message: errs.UserMessage(err),
		RunID:   runID,
	}
	var failure *validate.Failure
	if errors.As(err, &failure) {
		resp.Diagnostics = failure.Diagnostics
	}
	respondJSON(w, status, resp)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidNodeID, errs.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodePrecondition, errs.ErrCodeArchitectureMismatch, errs.ErrCodeModelConsistency, errs.ErrCodeScaleLimit:
		return http.StatusUnprocessableEntity
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// readDocument decodes the request body as a problem document.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*mdaoio.Document, error) {
	if r.Body == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "request body required")
	}
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes): %w", s.maxBody, err)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "request body required")
	}
	return pipeline.ParseDocument(data, requestFilename(r))
}

// requestFilename picks the decoder by Content-Type.
func requestFilename(r *http.Request) string {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/hcl", "text/x-hcl", "application/x-hcl":
		return "request.hcl"
	}
	return "request.json"
}

// documentJSON encodes a document for embedding in a response.
func documentJSON(d *mdaoio.Document) (json.RawMessage, error) {
	data, err := mdaoio.MarshalJSON(d)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode document")
	}
	return json.RawMessage(data), nil
}

func healthBody() map[string]string {
	return map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
}

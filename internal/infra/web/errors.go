package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"gym-membership/internal/domain"
	"gym-membership/internal/infra/logging"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"traceId,omitempty"`
}

type redirectBody struct {
	Redirect string `json:"redirect"`
	Message  string `json:"message,omitempty"`
}

type errMapping struct {
	target error
	status int
	code   string
}

// Order matters: FieldError unwraps to ErrValidation, ErrWrite is wrapped by repositories.
var errTable = []errMapping{
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation"},
	{domain.ErrAuth, http.StatusUnauthorized, "auth"},
	{domain.ErrAuthorization, http.StatusForbidden, "not_admin"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{domain.ErrBusy, http.StatusConflict, "busy"},
	{domain.ErrGeneration, http.StatusBadGateway, "generation"},
	{domain.ErrWrite, http.StatusInternalServerError, "write"},
}

func classify(err error) (int, string) {
	for _, m := range errTable {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// writeError maps err to a status and a localized message. The error text
// itself only goes to the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	l := logging.With(r.Context(), s.log)
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("path", r.URL.Path).Str("code", code).Msg("request failed")
	} else {
		l.Debug().Err(err).Str("path", r.URL.Path).Str("code", code).Msg("request rejected")
	}

	body := errorBody{Error: code, Message: s.tr.T("error." + code), TraceID: logging.TraceID(r.Context())}
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		body.Field = fe.Field
		body.Message = s.tr.T("error.validation_field", fe.Field)
	}
	writeJSON(w, status, body)
}

func (s *Server) writeMessage(w http.ResponseWriter, r *http.Request, status int, code, key string) {
	writeJSON(w, status, errorBody{Error: code, Message: s.tr.T(key), TraceID: logging.TraceID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON object of known fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errBadBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadBody
	}
	if dec.More() {
		return errBadBody
	}
	return nil
}

var errBadBody = errors.New("malformed request body")

func (s *Server) badBody(w http.ResponseWriter, r *http.Request) {
	s.writeMessage(w, r, http.StatusBadRequest, "bad_request", "error.bad_request")
}

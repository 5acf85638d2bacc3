// Package handlers implements the HTTP handlers of the API server.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Guidance string `json:"guidance,omitempty"`
}

// writeAppError maps err to its HTTP status and error body.  Server errors
// are logged and masked.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		ae = errors.Wrap(err, errors.ErrCodeInternal, "internal server error")
	}
	status := ae.HTTPStatus()
	resp := ErrorResponse{
		Code:     string(ae.Code),
		Message:  ae.Message,
		Detail:   ae.Detail,
		Guidance: errors.GuidanceForCode(ae.Code),
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), nil).Error("request failed",
			logging.String("code", string(ae.Code)), logging.Err(err))
		if ae.Code == errors.ErrCodeInternal {
			resp.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
			resp.Detail = ""
		}
	}
	writeJSON(w, status, resp)
}

// parseThreshold reads an optional numeric query parameter.  An absent or
// empty value yields nil.
func parseThreshold(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidThreshold, "threshold must be a number").WithDetail(name + "=" + raw)
	}
	return &v, nil
}

// parseBool reads an optional boolean query parameter.
func parseBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidParam(name + " must be true or false").WithDetail(raw)
	}
	return v, nil
}

//Personal.AI order the ending

package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeStorageError       ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodePayloadTooLarge    ErrorCode = "COMMON_017"
)

// Hierarchy Module Error Codes
const (
	ErrCodeMissingColumn        ErrorCode = "HIER_001"
	ErrCodeUnparsableInput      ErrorCode = "HIER_002"
	ErrCodeNoDataForFilter      ErrorCode = "HIER_003"
	ErrCodeInvalidThreshold     ErrorCode = "HIER_004"
	ErrCodeInvalidTree          ErrorCode = "HIER_005"
	ErrCodeDuplicateInstitution ErrorCode = "HIER_006"
	ErrCodeInvalidStructure     ErrorCode = "HIER_007"
)

// Session Module Error Codes
const (
	ErrCodeSessionNotFound   ErrorCode = "SESS_001"
	ErrCodeDatasetNotLoaded  ErrorCode = "SESS_002"
	ErrCodeSessionStoreError ErrorCode = "SESS_003"
)

// Short aliases used at call sites.
const (
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeValidation   = ErrCodeValidation

	CodeMissingColumn        = ErrCodeMissingColumn
	CodeUnparsableInput      = ErrCodeUnparsableInput
	CodeNoDataForFilter      = ErrCodeNoDataForFilter
	CodeInvalidThreshold     = ErrCodeInvalidThreshold
	CodeInvalidTree          = ErrCodeInvalidTree
	CodeDuplicateInstitution = ErrCodeDuplicateInstitution
	CodeInvalidStructure     = ErrCodeInvalidStructure

	CodeSessionNotFound  = ErrCodeSessionNotFound
	CodeDatasetNotLoaded = ErrCodeDatasetNotLoaded
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusNotImplemented,
	ErrCodePayloadTooLarge:    http.StatusRequestEntityTooLarge,

	ErrCodeMissingColumn:        http.StatusUnprocessableEntity,
	ErrCodeUnparsableInput:      http.StatusUnprocessableEntity,
	ErrCodeNoDataForFilter:      http.StatusOK,
	ErrCodeInvalidThreshold:     http.StatusBadRequest,
	ErrCodeInvalidTree:          http.StatusInternalServerError,
	ErrCodeDuplicateInstitution: http.StatusUnprocessableEntity,
	ErrCodeInvalidStructure:     http.StatusInternalServerError,

	ErrCodeSessionNotFound:   http.StatusNotFound,
	ErrCodeDatasetNotLoaded:  http.StatusConflict,
	ErrCodeSessionStoreError: http.StatusServiceUnavailable,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodePayloadTooLarge:    "upload too large",

	ErrCodeMissingColumn:        "required column missing",
	ErrCodeUnparsableInput:      "input could not be parsed as CSV",
	ErrCodeNoDataForFilter:      "no data for the selected filter",
	ErrCodeInvalidThreshold:     "invalid registration threshold",
	ErrCodeInvalidTree:          "hierarchy is not a valid tree",
	ErrCodeDuplicateInstitution: "duplicate institution in input",
	ErrCodeInvalidStructure:     "invalid hierarchy structure configuration",

	ErrCodeSessionNotFound:   "session not found or expired",
	ErrCodeDatasetNotLoaded:  "no dataset uploaded for this session",
	ErrCodeSessionStoreError: "session store unavailable",
}

// ErrorCodeGuidance holds the hint shown to users next to input errors.
var ErrorCodeGuidance = map[ErrorCode]string{
	ErrCodeMissingColumn:        "Required columns: CollegeName, TotalRegistrations. State is optional.",
	ErrCodeUnparsableInput:      "Please check your CSV file format and ensure it has a header row.",
	ErrCodeDuplicateInstitution: "Each CollegeName may appear only once per file with the current duplicate policy.",
	ErrCodeDatasetNotLoaded:     "Upload both the AI Intern and Tech Lead CSV files first.",
	ErrCodeSessionNotFound:      "Your session expired. Upload the CSV files again.",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// GuidanceForCode returns the user-facing hint for an ErrorCode, or "".
func GuidanceForCode(code ErrorCode) string {
	return ErrorCodeGuidance[code]
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending

package errors

import "net/http"

// ErrorCode uniquely identifies a failure category across the platform.
// Codes are stable strings so they can be logged, exposed in API responses,
// and used as metric labels without leaking Go type information.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
	ErrCodeNotImplemented     ErrorCode = "COMMON_013"
)

// SVO input error codes.
const (
	ErrCodeSVOInvalidTuple ErrorCode = "SVO_001"
	ErrCodeSVOEmptyBatch   ErrorCode = "SVO_002"
	ErrCodeSVOContextCount ErrorCode = "SVO_003"
)

// Glossary collaborator error codes.
const (
	ErrCodeGlossaryLoadFailed   ErrorCode = "GLS_001"
	ErrCodeGlossaryTermInvalid  ErrorCode = "GLS_002"
	ErrCodeGlossaryLookupFailed ErrorCode = "GLS_003"
	ErrCodeGlossaryEmpty        ErrorCode = "GLS_004"
)

// Enhancement pipeline error codes.
const (
	ErrCodeEnhancementFailed   ErrorCode = "ENH_001"
	ErrCodeExportFormatInvalid ErrorCode = "ENH_002"
	ErrCodeExportFailed        ErrorCode = "ENH_003"
	ErrCodeBatchAborted        ErrorCode = "ENH_004"
)

// Short aliases used at call sites throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
// Codes absent from the map default to 500.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeSVOInvalidTuple: http.StatusBadRequest,
	ErrCodeSVOEmptyBatch:   http.StatusBadRequest,
	ErrCodeSVOContextCount: http.StatusBadRequest,

	ErrCodeGlossaryLoadFailed:   http.StatusServiceUnavailable,
	ErrCodeGlossaryTermInvalid:  http.StatusInternalServerError,
	ErrCodeGlossaryLookupFailed: http.StatusBadGateway,
	ErrCodeGlossaryEmpty:        http.StatusServiceUnavailable,

	ErrCodeEnhancementFailed:   http.StatusInternalServerError,
	ErrCodeExportFormatInvalid: http.StatusBadRequest,
	ErrCodeExportFailed:        http.StatusInternalServerError,
	ErrCodeBatchAborted:        http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for c, defaulting to 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

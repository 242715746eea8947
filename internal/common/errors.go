package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidBody    = errors.New("invalid request body")
	ErrInternalServer = errors.New("internal server error")
)

type PoolErrorKind int

const (
	PoolTimeout PoolErrorKind = iota
	PoolBackend
	PoolClosed
)

func (k PoolErrorKind) String() string {
	switch k {
	case PoolTimeout:
		return "timeout"
	case PoolBackend:
		return "backend"
	case PoolClosed:
		return "closed"
	}
	return fmt.Sprintf("PoolErrorKind(%d)", int(k))
}

// PoolError is returned when a connection could not be obtained from the pool.
type PoolError struct {
	Kind PoolErrorKind
	Err  error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("connection pool %s: %v", e.Kind, e.Err)
}

func (e *PoolError) Unwrap() error { return e.Err }

// MappingError reports a database result that could not be turned into a
// domain record. Field names the first column that failed, if known.
type MappingError struct {
	Field string
	Raw   string
	Err   error
}

func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mapping field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("mapping result: %v", e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// Query string error codes.
const (
	QueryErrCustom      = "IVQCS"
	QueryErrParse       = "IVQPS"
	QueryErrInt         = "IVQPI"
	QueryErrUTF8        = "IVQU8"
	QueryErrUnsupported = "IVQUS"
)

// QueryError is a malformed query string. Data is returned to the client as is.
type QueryError struct {
	Code    string
	Message string
	Data    map[string]any
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query string (%s): %s", e.Code, e.Message)
}

// HTTPError is the JSON error body sent to clients.
type HTTPError struct {
	Status  int            `json:"-"`
	ErrCode string         `json:"errCode"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.ErrCode)
}

// ToHTTPError maps any error produced while serving a request to its HTTP
// representation. With debug set, internal error text is exposed under data.raw.
func ToHTTPError(err error, debug bool) *HTTPError {
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var qsErr *QueryError
	if errors.As(err, &qsErr) {
		data := map[string]any{}
		for k, v := range qsErr.Data {
			data[k] = v
		}
		if qsErr.Message != "" {
			data["message"] = qsErr.Message
		}
		if len(data) == 0 {
			data = nil
		}
		return &HTTPError{Status: http.StatusBadRequest, ErrCode: qsErr.Code, Data: data}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return &HTTPError{Status: http.StatusNotFound, ErrCode: "NTFND"}
	case errors.Is(err, ErrInvalidBody):
		return &HTTPError{Status: http.StatusBadRequest, ErrCode: "IVBDY", Data: messageData(err)}
	case errors.Is(err, ErrBadRequest):
		return &HTTPError{Status: http.StatusBadRequest, ErrCode: "BDREQ", Data: messageData(err)}
	case errors.Is(err, ErrUnauthorized):
		return &HTTPError{Status: http.StatusUnauthorized, ErrCode: "UNATH"}
	case errors.Is(err, ErrForbidden):
		return &HTTPError{Status: http.StatusForbidden, ErrCode: "FRBDN"}
	}

	code := "PGERR"
	var poolErr *PoolError
	var mapErr *MappingError
	switch {
	case errors.As(err, &poolErr):
		code = poolErrorCode(poolErr.Kind)
	case errors.As(err, &mapErr):
		code = "MPERR"
	case errors.Is(err, ErrInternalServer):
		code = "INTER"
	}
	return internalServerError(code, err, debug)
}

func poolErrorCode(kind PoolErrorKind) string {
	switch kind {
	case PoolTimeout:
		return "POLTM"
	case PoolBackend:
		return "POLBK"
	case PoolClosed:
		return "POLCL"
	}
	return "POLER"
}

func internalServerError(code string, err error, debug bool) *HTTPError {
	httpErr := &HTTPError{Status: http.StatusInternalServerError, ErrCode: code}
	if debug {
		httpErr.Data = map[string]any{"raw": err.Error()}
	}
	return httpErr
}

func messageData(err error) map[string]any {
	return map[string]any{"message": err.Error()}
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

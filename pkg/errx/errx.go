package errx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Type classifies an error independently of the domain that raised it
type Type string

const (
	TypeNotFound      Type = "NOT_FOUND"
	TypeValidation    Type = "VALIDATION"
	TypeConflict      Type = "CONFLICT"
	TypeBusiness      Type = "BUSINESS"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeExternal      Type = "EXTERNAL"
	TypeInternal      Type = "INTERNAL"
)

// Code is a fully qualified error code, e.g. "JOB.NOT_FOUND"
type Code string

func (c Code) String() string { return string(c) }

// Error is the structured error carried across layers and rendered by the HTTP layer
type Error struct {
	Code       Code           `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithDetail attaches a single detail and returns the same error for chaining
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithCause sets the underlying cause
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// ToHTTPResponse renders the error body returned to API clients
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"error":   e.Message,
		"type":    e.Type,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// ============================================================================
// Registry
// ============================================================================

type definition struct {
	typ        Type
	httpStatus int
	message    string
}

// Registry holds the error codes of one domain under a common prefix
type Registry struct {
	prefix string
	mu     sync.RWMutex
	defs   map[Code]definition
}

// NewRegistry creates a registry whose codes are prefixed with prefix
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		defs:   make(map[Code]definition),
	}
}

// Register declares a code and returns its fully qualified form
func (r *Registry) Register(code string, typ Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "." + code)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[full] = definition{typ: typ, httpStatus: httpStatus, message: message}
	return full
}

// New creates an error for a registered code
func (r *Registry) New(code Code) *Error {
	r.mu.RLock()
	def, ok := r.defs[code]
	r.mu.RUnlock()

	if !ok {
		return &Error{
			Code:       code,
			Type:       TypeInternal,
			Message:    "unregistered error code",
			HTTPStatus: http.StatusInternalServerError,
		}
	}

	return &Error{
		Code:       code,
		Type:       def.typ,
		Message:    def.message,
		HTTPStatus: def.httpStatus,
	}
}

// NewWithCause creates an error for a registered code wrapping cause
func (r *Registry) NewWithCause(code Code, cause error) *Error {
	return r.New(code).WithCause(cause)
}

// ============================================================================
// Helpers
// ============================================================================

// New creates an ad-hoc error without a registry
func New(message string, typ Type) *Error {
	return &Error{
		Code:       Code(typ),
		Type:       typ,
		Message:    message,
		HTTPStatus: statusForType(typ),
	}
}

// Wrap wraps err with a message and type. Wrapping an *Error keeps its code.
func Wrap(err error, message string, typ Type) *Error {
	if err == nil {
		return nil
	}
	wrapped := New(message, typ)
	if inner, ok := As(err); ok {
		wrapped.Code = inner.Code
		wrapped.HTTPStatus = inner.HTTPStatus
	}
	wrapped.Cause = err
	return wrapped
}

// As extracts the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether any *Error in err's chain carries code
func IsCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsType reports whether the outermost *Error in err's chain has the given type
func IsType(err error, typ Type) bool {
	e, ok := As(err)
	return ok && e.Type == typ
}

func statusForType(typ Type) int {
	switch typ {
	case TypeNotFound:
		return http.StatusNotFound
	case TypeValidation:
		return http.StatusBadRequest
	case TypeConflict:
		return http.StatusConflict
	case TypeBusiness:
		return http.StatusUnprocessableEntity
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/shoplist/internal/product"
	"github.com/roach88/shoplist/internal/store"
)

// Kind categorizes engine and gateway errors.
type Kind string

const (
	// KindLoadCorrupt: the data file exists but could not be decoded.
	// Load still starts empty; KindOf reports it for the store's ErrCorrupt.
	KindLoadCorrupt Kind = "LOAD_CORRUPT"

	// KindPersistFailure: writing or renaming the data file failed.
	KindPersistFailure Kind = "PERSIST_FAILURE"

	// KindDuplicateEntry: the product is already on the list. Informational.
	KindDuplicateEntry Kind = "DUPLICATE_ENTRY"

	// KindInvalidName: the input normalized to an empty name.
	KindInvalidName Kind = "INVALID_NAME"

	// KindTransportLimitExceeded: an identifier would not fit the gateway ceiling.
	KindTransportLimitExceeded Kind = "TRANSPORT_LIMIT_EXCEEDED"

	// KindGatewayUnavailable: an outbound send to the gateway failed.
	KindGatewayUnavailable Kind = "GATEWAY_UNAVAILABLE"
)

var (
	// ErrDuplicateEntry is wrapped by every KindDuplicateEntry error.
	ErrDuplicateEntry = errors.New("product already on the list")

	// ErrEmptyName is wrapped by every KindInvalidName error.
	ErrEmptyName = errors.New("empty product name")
)

// Error is the structured error returned by engine operations.
type Error struct {
	Kind  Kind
	Op    string // "add", "clear", ...
	Scope product.Scope
	Name  product.Name
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("%s: %s %q: %v", e.Kind, e.Op, e.Name, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
// Uses errors.As to handle wrapped errors. A store.ErrCorrupt is
// KindLoadCorrupt.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, store.ErrCorrupt) {
		return KindLoadCorrupt
	}
	return ""
}

// IsDuplicate returns true if err reports an already listed product.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsPersistFailure returns true if err reports a failed save.
func IsPersistFailure(err error) bool {
	return KindOf(err) == KindPersistFailure
}

// NewGatewayError wraps an outbound delivery failure.
func NewGatewayError(op string, err error) *Error {
	return &Error{Kind: KindGatewayUnavailable, Op: op, Err: err}
}

// NewTransportLimitError reports an identifier that does not fit the ceiling.
func NewTransportLimitError(id string, size, limit int) *Error {
	return &Error{
		Kind: KindTransportLimitExceeded,
		Op:   "encode",
		Err:  fmt.Errorf("identifier %q is %d bytes, limit %d", id, size, limit),
	}
}

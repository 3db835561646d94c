package shop

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the engine reports. None of them are fatal;
// the caller decides how to present them.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindDuplicateID
	KindForbidden
	KindUnlisted
	KindInsufficientStock
	KindSelfPurchaseForbidden
	KindEmptyCart
	KindInvalidState
	KindUnauthenticated
	KindInvalidCredentials
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindValidation:            "validation",
	KindNotFound:              "not_found",
	KindDuplicateID:           "duplicate_id",
	KindForbidden:             "forbidden",
	KindUnlisted:              "unlisted",
	KindInsufficientStock:     "insufficient_stock",
	KindSelfPurchaseForbidden: "self_purchase_forbidden",
	KindEmptyCart:             "empty_cart",
	KindInvalidState:          "invalid_state",
	KindUnauthenticated:       "unauthenticated",
	KindInvalidCredentials:    "invalid_credentials",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is returned by every engine operation that fails. ProductID and
// Available are filled in for stock and listing failures.
type Error struct {
	Kind      Kind
	Message   string
	ProductID string
	Available int
	Err       error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrDuplicateID           = &Error{Kind: KindDuplicateID}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrUnlisted              = &Error{Kind: KindUnlisted}
	ErrInsufficientStock     = &Error{Kind: KindInsufficientStock}
	ErrSelfPurchaseForbidden = &Error{Kind: KindSelfPurchaseForbidden}
	ErrEmptyCart             = &Error{Kind: KindEmptyCart}
	ErrInvalidState          = &Error{Kind: KindInvalidState}
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Error message constants.
const (
	ErrMsgLoginRequired      = "please log in first"
	ErrMsgAdminRequired      = "admin permission required"
	ErrMsgCredentialsEmpty   = "username and password must not be empty"
	ErrMsgUsernameTooShort   = "username must be at least 3 characters"
	ErrMsgPasswordTooShort   = "password must be at least 6 characters"
	ErrMsgPhoneRequired      = "phone must not be empty"
	ErrMsgPhoneInvalid       = "phone must be 11 digits starting with 1"
	ErrMsgUsernameTaken      = "username already exists"
	ErrMsgInvalidCredentials = "invalid username or password"
	ErrMsgListingFields      = "product id, name and category must not be empty"
	ErrMsgPriceNotPositive   = "price must be greater than 0"
	ErrMsgStockNegative      = "stock must not be negative"
	ErrMsgQuantityPositive   = "quantity must be greater than 0"
	ErrMsgCartEmpty          = "cart is empty"
)

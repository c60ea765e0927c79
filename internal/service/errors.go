package service

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidTransition  = errors.New("order status does not permit this transition")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports malformed input: a missing field, an out-of-range
// value, an unknown enum member.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(msg string) error {
	return &ValidationError{Message: msg}
}

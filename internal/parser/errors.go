package parser

import (
	"fmt"

	"formulab/internal/domain"
)

// UnparsableQuantityError reports an ingredient-shaped row whose quantity
// token could not be reduced to a number. It names the offending line so the
// user can fix the pasted text directly.
type UnparsableQuantityError struct {
	Line  int
	Token string
}

func (e *UnparsableQuantityError) Error() string {
	return fmt.Sprintf("line %d: quantity %q cannot be parsed", e.Line, e.Token)
}

func (e *UnparsableQuantityError) Unwrap() error {
	return domain.ErrUnparsableQuantity
}

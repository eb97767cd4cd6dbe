package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTemporary           = errors.New("temporary failure")

	ErrNotInitialized      = errors.New("chat service not initialized")
	ErrInitialization      = errors.New("initialization failed")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrGroundingRejected   = errors.New("answer is not grounded in context")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

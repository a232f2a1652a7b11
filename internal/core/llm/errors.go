package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse means the provider answered but with nothing usable
var ErrEmptyResponse = errors.New("response contains no usable text")

// GenerationError is returned for every failed generation attempt. It is never retried here.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is or wraps a *GenerationError
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

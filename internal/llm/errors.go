package llm

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	ProviderFailure FailureKind = "provider_failure"
	ImageFailure    FailureKind = "image_failure"
)

// User-facing strings.
const (
	TextFailureMessage  = "Error generating content. Please try again."
	ImageFailureMessage = "Failed to generate image."
	EmptyTextFallback   = "Sorry, I couldn't generate a response."
)

// GenerationError reports a failed provider call.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("llm: %s", e.Kind)
	}
	return fmt.Sprintf("llm: %s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage is the message shown in place of the output panel.
func (e *GenerationError) UserMessage() string {
	if e.Kind == ImageFailure {
		return ImageFailureMessage
	}
	return TextFailureMessage
}

func providerFailure(err error) error {
	return &GenerationError{Kind: ProviderFailure, Err: err}
}

func imageFailure(err error) error {
	return &GenerationError{Kind: ImageFailure, Err: err}
}

// AsGenerationError unwraps err to a *GenerationError when there is one.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

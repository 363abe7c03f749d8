package llm

import "errors"

// Sentinel errors for model-call failures. Callers classify with errors.Is;
// wrapped variants carry the concrete cause.
var (
	// ErrModelUnavailable indicates the model endpoint could not be reached
	// or answered with a non-success status.
	ErrModelUnavailable = errors.New("model endpoint unavailable")

	// ErrModelResponseParse indicates the endpoint answered but the body was
	// not a valid chat-completions response.
	ErrModelResponseParse = errors.New("model response unparseable")
)

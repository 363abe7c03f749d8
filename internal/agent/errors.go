package agent

import "errors"

var (
	// ErrEmptyMessage reports a turn request with no user text.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrModelTurn wraps a model-call failure so callers can distinguish
	// turn-level failures from tool-level ones, which are folded into the
	// conversation instead.
	ErrModelTurn = errors.New("model turn failed")
)

package tools

import "errors"

// Sentinel errors for tool registration and dispatch. Check with
// errors.Is(). The orchestration loop folds everything except
// ErrDuplicateTool into tool messages so the model can observe the failure
// and adjust.
var (
	// ErrDuplicateTool indicates a Register call with a name that is
	// already taken. Registration happens at startup; this is a
	// programming error, not a runtime condition.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool indicates the model requested a tool the active
	// registry does not hold.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments indicates the supplied arguments failed schema
	// validation. The tool was not run and had no side effects.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrToolTimeout indicates the tool exceeded its execution deadline.
	ErrToolTimeout = errors.New("tool execution timed out")
)

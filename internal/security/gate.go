package security

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrDangerousOperation indicates a payload matched the deny-list and was
// rejected before execution.
var ErrDangerousOperation = errors.New("dangerous operation blocked")

// denyPatterns lists substrings that are never allowed in code or command
// payloads. The scan is case-insensitive. This is a coarse last line of
// defense against obviously destructive requests, not a sandbox: payloads
// run with the privileges of the server process.
var denyPatterns = []string{
	"rm -rf /",
	"rm -rf /*",
	"rm -rf ~",
	"rm -rf *",
	"mkfs",
	"dd if=/dev/zero",
	"dd if=/dev/urandom",
	"dd if=/dev/random",
	":(){ :|:& };:",
	"> /dev/sda",
	"chmod -r 777 /",
	"shutdown",
	"reboot",
	"halt",
	"poweroff",
	"sudo su",
	"init 0",
	"init 6",
	"format c:",
	"del /f /s /q",
}

// Gate screens code and shell-command payloads before the privileged tools
// execute them. Used to block obviously destructive operations (CWE-78 style
// payloads) while leaving benign automation untouched.
//
// A Gate is safe for concurrent use: its pattern list is fixed at
// construction.
type Gate struct {
	patterns []string
	logger   *slog.Logger
}

// NewGate creates a Gate with the built-in deny-list.
func NewGate(logger *slog.Logger) *Gate {
	return &Gate{
		patterns: denyPatterns,
		logger:   logger,
	}
}

// Check scans payload for deny-listed patterns. kind names the payload
// class ("code" or "command") and appears in logs and error text.
//
// Returns nil when the payload is clean. On a match, returns an error
// wrapping ErrDangerousOperation that names the offending pattern; callers
// must not execute the payload.
func (g *Gate) Check(kind, payload string) error {
	if strings.Contains(payload, "\x00") {
		g.logger.Warn("payload contains null byte",
			"kind", kind,
			"security_event", "null_byte_payload")
		return fmt.Errorf("%w: %s contains null byte", ErrDangerousOperation, kind)
	}

	lower := strings.ToLower(payload)
	for _, pattern := range g.patterns {
		if strings.Contains(lower, pattern) {
			g.logger.Warn("dangerous pattern detected",
				"kind", kind,
				"pattern", pattern,
				"security_event", "dangerous_payload_blocked")
			return fmt.Errorf("%w: %s contains forbidden pattern %q", ErrDangerousOperation, kind, pattern)
		}
	}
	return nil
}

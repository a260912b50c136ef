package session

import (
	"fmt"
)

// ConfigurationError reports invalid values passed to session
// construction, e.g. a node tree violating the value-or-placeholder
// invariant. It is fatal to that call only.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid session configuration: %s", e.Reason)
}

func configErr(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// CorruptionError reports that a session's anchors no longer resolve to
// live document positions. A corrupt session is force-stopped, never
// repaired: anchor corruption cannot be distinguished from legitimate
// external deletion, and silent continuation risks writing to the wrong
// document region.
type CorruptionError struct {
	SessionID string
	Err       error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("session %s is corrupt: %v", e.SessionID, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

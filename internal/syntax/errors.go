package syntax

import (
	"fmt"

	"github.com/dkbb/dkbb-ls/internal/text"
)

// Severity is a diagnostic severity level.
type Severity uint8

// Severity values, ordered most to least severe.
const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFORMATION"
	default:
		return fmt.Sprintf("Severity(%d)", s)
	}
}

// SyntaxError is a recorded parser or reparser diagnostic: a message paired
// with the byte range it applies to. Parser-produced errors default to
// warning severity (7. Error handling design); reparser and validator
// diagnostics set Severity explicitly.
type SyntaxError struct {
	Message  string
	Range    text.Span
	Severity Severity
}

func (e SyntaxError) String() string {
	return fmt.Sprintf("%s: %s at %s", e.Severity, e.Message, e.Range)
}

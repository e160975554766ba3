package form

import (
	"errors"
	"strings"
)

// FieldMessage pairs one field name with its failure message.
type FieldMessage struct {
	Field   string
	Message string
}

// ErrorInfo is the tagged normal form for the two failure payload shapes the
// backend emits: a single message, or a per-field mapping. Exactly one of
// Message and Fields is populated.
type ErrorInfo struct {
	Message string
	Fields  []FieldMessage
}

// Empty reports whether the info carries no payload at all.
func (e ErrorInfo) Empty() bool {
	return e.Message == "" && len(e.Fields) == 0
}

// Display flattens the payload into the single banner string the form shows:
// the message verbatim for the single shape, or every per-field message
// concatenated in payload order, each followed by a space.
func (e ErrorInfo) Display() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	var b strings.Builder
	for _, fm := range e.Fields {
		b.WriteString(fm.Message)
		b.WriteString(" ")
	}
	return b.String()
}

// SubmissionError carries a backend rejection across the dispatcher boundary.
// Dispatchers return it when the endpoint answers with an application-level
// failure; plain transport errors need no wrapping and are surfaced
// identically.
type SubmissionError struct {
	Info ErrorInfo
}

func (e *SubmissionError) Error() string {
	return "form: submission rejected: " + strings.TrimSpace(e.Info.Display())
}

// normalizeError maps any dispatcher error onto ErrorInfo. SubmissionError
// payloads pass through; everything else (timeouts, transport failures)
// becomes a single-message info.
func normalizeError(err error) ErrorInfo {
	var submission *SubmissionError
	if errors.As(err, &submission) {
		return submission.Info
	}
	return ErrorInfo{Message: err.Error()}
}

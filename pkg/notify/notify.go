// Package notify formats and delivers the user-facing messages emitted by
// the form lifecycle: a success notification when the backend acknowledges a
// creation, a failure banner when it rejects one.
package notify

// Notifier receives formatted notification messages. Implementations decide
// how to surface them (console output, a toast channel, a test recorder).
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// NotifierFuncs adapts two functions into a Notifier. Either may be nil.
type NotifierFuncs struct {
	OnSuccess func(message string)
	OnFailure func(message string)
}

// Success delegates to OnSuccess when set.
func (n NotifierFuncs) Success(message string) {
	if n.OnSuccess != nil {
		n.OnSuccess(message)
	}
}

// Failure delegates to OnFailure when set.
func (n NotifierFuncs) Failure(message string) {
	if n.OnFailure != nil {
		n.OnFailure(message)
	}
}

// Discard returns a Notifier that drops every message.
func Discard() Notifier {
	return NotifierFuncs{}
}

package models

// Result is what a session operation reports to the presentation layer.
// Err carries the classified failure (match it with errors.Is); Message is
// suitable for display.
type Result struct {
	Success bool
	Message string
	Err     error
}

// OK builds a successful result.
func OK(msg string) Result {
	return Result{Success: true, Message: msg}
}

// Fail builds a failed result; the message defaults to err's text.
func Fail(err error, msg string) Result {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return Result{Success: false, Message: msg, Err: err}
}

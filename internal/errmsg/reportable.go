package errmsg

import (
	"errors"
	"fmt"
)

// ReportableError is an expected failure whose message is shown to the user
// as is, such as a natural-key collision. It ends the command with a clean
// non-zero exit rather than an invariant-violation report.
type ReportableError struct {
	Msg string
	Err error
}

// Reportable returns a ReportableError with a formatted message.
func Reportable(format string, args ...any) *ReportableError {
	return &ReportableError{Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a ReportableError with msg that keeps err in the chain.
func Wrap(err error, msg string) *ReportableError {
	return &ReportableError{Msg: msg, Err: err}
}

func (e *ReportableError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ReportableError) Unwrap() error { return e.Err }

// IsReportable reports whether err has a ReportableError in its chain.
func IsReportable(err error) bool {
	var re *ReportableError
	return errors.As(err, &re)
}

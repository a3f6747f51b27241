package exit

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Result is how the command ends: what to print, where, and the exit code.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message to Output.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success prints message on stdout and exits with 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: 0,
		Message:  message,
	}
}

// Error prints message on stderr and exits with 1.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: 1,
		Message:  message,
	}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError reports err on stderr. Errors carrying an ExitCode method choose
// their own code, everything else exits with 1. A nil err is a silent success.
func FromError(err error) *Result {
	if err == nil {
		return Success("")
	}

	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return &Result{Output: os.Stderr, ExitCode: coded.ExitCode(), Message: "Error: " + err.Error() + "\n"}
	}
	return Errorf("Error: %v\n", err)
}

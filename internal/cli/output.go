package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/punchctl/internal/api"
	"github.com/roach88/punchctl/internal/gateway"
	"github.com/roach88/punchctl/internal/punch"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Runtime failure (backend error, rejected credential, wrong punch state)
	ExitCommandError = 2 // Command error (bad flags, invalid config, local validation)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Configuration could not be loaded
	ErrCodeUsage        = "E003" // Bad or missing flags
	ErrCodeNotLoggedIn  = "E101" // No credential in the session
	ErrCodeUnauthorized = "E102" // Backend rejected the credential
	ErrCodeValidation   = "E103" // Request failed local validation
	ErrCodeBackend      = "E104" // Backend returned an error status
	ErrCodePunchState   = "E105" // Already punched in, or nothing to punch out of
)

var (
	// ErrUsage marks errors in how a command was invoked.
	ErrUsage = errors.New("usage")

	// ErrConfig marks configuration failures.
	ErrConfig = errors.New("config")

	ErrNotLoggedIn      = errors.New("not logged in; run `punchctl login`")
	ErrAlreadyPunchedIn = errors.New("already punched in")
	ErrNoOpenPunch      = errors.New("no open punch to close")
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// an *ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify picks the reported code and exit code for err.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, ErrConfig):
		return ErrCodeConfig, ExitCommandError
	case errors.Is(err, ErrUsage):
		return ErrCodeUsage, ExitCommandError
	case errors.Is(err, ErrNotLoggedIn):
		return ErrCodeNotLoggedIn, ExitFailure
	case gateway.IsUnauthorized(err):
		return ErrCodeUnauthorized, ExitFailure
	case punch.IsValidationError(err), errors.Is(err, api.ErrPasswordMismatch):
		return ErrCodeValidation, ExitCommandError
	case gateway.StatusOf(err) != 0:
		return ErrCodeBackend, ExitFailure
	case errors.Is(err, ErrAlreadyPunchedIn), errors.Is(err, ErrNoOpenPunch):
		return ErrCodePunchState, ExitFailure
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error part of CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success prints data: as the JSON envelope, or with fmt in text mode.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Render prints data as JSON, or calls text to draw it in text mode.
func (f *OutputFormatter) Render(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	return text(f.Writer)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the *ExitError the command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)

	message := gateway.MessageOf(err)
	if code == ErrCodeUnauthorized {
		message = "session expired or rejected; run `punchctl login`"
	}

	var details any
	var ve *punch.ValidationError
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve.Fields))
		for _, fe := range ve.Fields {
			fields[fe.Field] = fe.Message
		}
		details = fields
	}

	_ = f.Error(code, message, details)
	return WrapExitError(exit, code, err)
}

// VerboseLog writes a diagnostic line when verbose mode is on. Diagnostics
// go to ErrWriter so they never corrupt JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

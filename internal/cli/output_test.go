package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/punchctl/internal/api"
	"github.com/roach88/punchctl/internal/gateway"
	"github.com/roach88/punchctl/internal/punch"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(ErrCodeBackend, "backend down", map[string]string{"status": "503"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBackend, resp.Error.Code)
	assert.Equal(t, "backend down", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("Logged out"))
	require.NoError(t, formatter.Error(ErrCodeGeneric, "boom", map[string]string{"x": "y"}))

	assert.Equal(t, "Logged out\nError [E001]: boom\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error(ErrCodeGeneric, "boom", map[string]string{"x": "y"}))
	assert.Contains(t, buf.String(), "Details: map[x:y]")
}

func TestOutputFormatter_Render(t *testing.T) {
	text := func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "drawn")
		return err
	}

	buf := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "text", Writer: buf}).Render(42, text))
	assert.Equal(t, "drawn\n", buf.String())

	buf.Reset()
	require.NoError(t, (&OutputFormatter{Format: "json", Writer: buf}).Render(42, text))
	assert.JSONEq(t, `{"status":"ok","data":42}`, buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: tt.verbose}

			formatter.VerboseLog("backend %s", "http://x")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, diag.String(), "backend http://x")
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"config", fmt.Errorf("%w: bad yaml", ErrConfig), ErrCodeConfig, ExitCommandError},
		{"usage", fmt.Errorf("%w: no location", ErrUsage), ErrCodeUsage, ExitCommandError},
		{"not logged in", ErrNotLoggedIn, ErrCodeNotLoggedIn, ExitFailure},
		{"unauthorized", fmt.Errorf("customers: %w", gateway.ErrUnauthorized), ErrCodeUnauthorized, ExitFailure},
		{"backend status", fmt.Errorf("customers: %w", &gateway.APIError{Status: 503, Message: "down"}), ErrCodeBackend, ExitFailure},
		{"validation", &punch.ValidationError{Fields: []punch.FieldError{{Field: "id", Message: "is required"}}}, ErrCodeValidation, ExitCommandError},
		{"password mismatch", fmt.Errorf("reset password: %w", api.ErrPasswordMismatch), ErrCodeValidation, ExitCommandError},
		{"already punched in", fmt.Errorf("%w (punch p1)", ErrAlreadyPunchedIn), ErrCodePunchState, ExitFailure},
		{"no open punch", ErrNoOpenPunch, ErrCodePunchState, ExitFailure},
		{"other", errors.New("disk on fire"), ErrCodeGeneric, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
		})
	}
}

func TestFail_ValidationDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Fail(&punch.ValidationError{Fields: []punch.FieldError{
		{Field: "customerName", Message: "is required"},
	}})
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, map[string]any{"customerName": "is required"}, resp.Error.Details)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitFailure, "E104", errors.New("x")))))
}

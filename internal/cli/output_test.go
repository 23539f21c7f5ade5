package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Message(t *testing.T) {
	err := NewExitError(ExitFailure, "no more stock available for Gorro")
	assert.Equal(t, "no more stock available for Gorro", err.Error())
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExitError_WrappedCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapExitError(ExitCommandError, "load configuration", cause)

	assert.Equal(t, "load configuration: connection refused", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)
}

func TestGetExitCode_PlainErrorDefaultsToFailure(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
}

func TestGetExitCode_WrappedExitError(t *testing.T) {
	inner := NewExitError(ExitCommandError, "bad flag")
	wrapped := fmt.Errorf("outer: %w", inner)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestWriteResult_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "json", map[string]any{"productId": 5}, "ignored"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Error)
}

func TestWriteResult_TextLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, "text", nil, "cart cleared"))
	assert.Equal(t, "cart cleared\n", buf.String())
}

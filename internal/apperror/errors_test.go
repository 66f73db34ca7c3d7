package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := Wrap(KindTransport, CodeTransferFailed, "403 denied", errors.New("boom"))
	wrapped := fmt.Errorf("load: %w", err)

	assert.ErrorIs(t, wrapped, ErrTransferFailed)
	assert.NotErrorIs(t, wrapped, ErrBrokerFailed)
	assert.Equal(t, CodeTransferFailed, CodeOf(wrapped))
}

func TestErrorUnwrap_ExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindQuery, CodeGenerationFailed, "generation failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesWrappedCode(t *testing.T) {
	base := NotFound("Product", nil)
	wrapped := fmt.Errorf("loading listing: %w", base)

	assert.True(t, Is(wrapped, "NOT_FOUND"))
	assert.False(t, Is(wrapped, "BAD_REQUEST"))
	assert.False(t, Is(fmt.Errorf("plain"), "NOT_FOUND"))
}

func TestConstructors_Status(t *testing.T) {
	assert.Equal(t, http.StatusPreconditionFailed, PreconditionFailed("missing user", nil).Status)
	assert.Equal(t, http.StatusForbidden, PermissionDenied("denied", nil).Status)
	assert.Equal(t, http.StatusTooManyRequests, TooManyRequests("slow down").Status)
	assert.Equal(t, "Chat not found", NotFound("Chat", nil).Message)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("rpc error")
	err := Internal("Failed to write", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "INTERNAL_ERROR: Failed to write", err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(fmt.Errorf("register: %w", Conflict("Email is already registered"))))
	assert.Equal(t, "", CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

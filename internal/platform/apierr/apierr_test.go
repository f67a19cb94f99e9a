package apierr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   string
	}{
		{NotFound("fact %s", "x"), http.StatusNotFound, CodeNotFound},
		{Forbidden("nope"), http.StatusForbidden, CodeForbidden},
		{UnsupportedMedia("image/png"), http.StatusUnsupportedMediaType, CodeUnsupportedMedia},
		{Validation("bad"), http.StatusUnprocessableEntity, CodeValidation},
		{Unauthorized("who"), http.StatusUnauthorized, CodeUnauthorized},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status)
		assert.Equal(t, tc.code, tc.err.Code)
	}
	assert.Equal(t, "fact x", NotFound("fact %s", "x").Error())
}

func TestAsThroughWrap(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Forbidden("not yours"))
	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeForbidden, ae.Code)
	assert.True(t, IsCode(wrapped, CodeForbidden))
	assert.False(t, IsCode(fmt.Errorf("plain"), CodeForbidden))
}

package envutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvReaders(t *testing.T) {
	t.Setenv("FD_STR", "  hello ")
	t.Setenv("FD_INT", "42")
	t.Setenv("FD_BAD_INT", "x")
	t.Setenv("FD_BOOL", "on")
	t.Setenv("FD_FLOAT", "0.25")
	t.Setenv("FD_DUR", "1500ms")

	assert.Equal(t, "hello", String("FD_STR", "d"))
	assert.Equal(t, "d", String("FD_MISSING", "d"))
	assert.Equal(t, 42, Int("FD_INT", 1))
	assert.Equal(t, 1, Int("FD_BAD_INT", 1))
	assert.True(t, Bool("FD_BOOL", false))
	assert.True(t, Bool("FD_MISSING", true))
	assert.Equal(t, 0.25, Float("FD_FLOAT", 1))
	assert.Equal(t, 1500*time.Millisecond, Duration("FD_DUR", time.Second))
}

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "token", "alerts"})
}

func TestTokenRequiresUsername(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"token"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestAlertsTailNeedsRedis(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("REDIS_ADDR", "")
	root := newRootCmd()
	root.SetArgs([]string{"alerts", "tail"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}

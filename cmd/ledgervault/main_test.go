package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunQuitsCleanly(t *testing.T) {
	t.Setenv("LEDGER_API_BASE_URL", "http://127.0.0.1:1/api")
	out := &bytes.Buffer{}

	code := run(strings.NewReader("help\nquit\n"), out)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "LedgerVault. Type 'help' for commands.")
}

func TestRunEndsAtEOF(t *testing.T) {
	t.Setenv("LEDGER_API_BASE_URL", "http://127.0.0.1:1/api")

	assert.Equal(t, 0, run(strings.NewReader(""), &bytes.Buffer{}))
}

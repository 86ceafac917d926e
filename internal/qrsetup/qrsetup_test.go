package qrsetup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNG(t *testing.T) {
	png, err := PNG("abc123", 256)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestPNGRejectsEmptyShortID(t *testing.T) {
	_, err := PNG("", 256)
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("abc123")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestTerminalRejectsEmptyShortID(t *testing.T) {
	_, err := Terminal("")
	assert.Error(t, err)
}

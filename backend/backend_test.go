package backend

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToProduction(t *testing.T) {
	os.Unsetenv("SIMPLYPRINT_BACKEND")
	os.Unsetenv("SIMPLYPRINT_WS_URL")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Production, s.Backend)

	host, err := s.WSHost()
	require.NoError(t, err)
	assert.Equal(t, "ws.simplyprint.io", host)
}

func TestWSHostOverride(t *testing.T) {
	s := Settings{Backend: Production, WSURL: "custom.example.com"}
	host, err := s.WSHost()
	require.NoError(t, err)
	assert.Equal(t, "custom.example.com", host)
}

func TestWSHostUnknownBackend(t *testing.T) {
	s := Settings{Backend: Name("bogus")}
	_, err := s.WSHost()
	assert.Error(t, err)
}

func TestProtocolVersion(t *testing.T) {
	s := Settings{}
	assert.Equal(t, "0.2", s.ProtocolVersion())
}

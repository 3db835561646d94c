package consul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration(t *testing.T) {
	reg, err := Registration("marketplace", ":8080")
	require.NoError(t, err)
	assert.Equal(t, "marketplace", reg.Name)
	assert.Equal(t, "localhost", reg.Address)
	assert.Equal(t, 8080, reg.Port)
	assert.Equal(t, "marketplace-localhost-8080", reg.ID)
	require.NotNil(t, reg.Check)
	assert.Equal(t, "http://localhost:8080/ping", reg.Check.HTTP)

	_, err = Registration("marketplace", "8080")
	assert.Error(t, err)
	_, err = Registration("marketplace", "host:http")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("127.0.0.1:8500")
	require.NoError(t, err)
	assert.NotNil(t, client.Agent())
}

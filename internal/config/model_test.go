package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	m := Defaults()
	require.NoError(t, m.Validate())

	addr, err := m.Address()
	require.NoError(t, err)
	assert.Equal(t, "localhost:19999", addr)
	assert.Equal(t, "Neo4j", m.QueryStorage)
	assert.Equal(t, "storage_identifier", m.StorageIdentifier)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(m *Model)
	}{
		{name: "empty host", mutate: func(m *Model) { m.Host = " " }},
		{name: "empty identifier", mutate: func(m *Model) { m.StorageIdentifier = "" }},
		{name: "empty storage", mutate: func(m *Model) { m.QueryStorage = "" }},
		{name: "zero parallelism", mutate: func(m *Model) { m.LineageParallelism = 0 }},
		{name: "cert without key", mutate: func(m *Model) { m.TLS.CertFile = "client.pem" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := Defaults()
			tc.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestAddress_RejectsMalformedPort(t *testing.T) {
	for _, port := range []string{"", "abc", "0", "70000", "12x"} {
		m := Defaults()
		m.QueryPort = port
		_, err := m.Address()
		assert.Error(t, err, "port %q", port)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	m := Defaults()
	c := m.Clone()
	c.Host = "remote"
	assert.Equal(t, DefaultHost, m.Host)
}

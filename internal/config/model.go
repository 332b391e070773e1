package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Validate for a model that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultHost              = "localhost"
	DefaultQueryPort         = "19999"
	DefaultStorageIdentifier = "storage_identifier"
	DefaultQueryStorage      = "Neo4j"
	DefaultDialTimeout       = 10 * time.Second
)

// Model is the unified, format-agnostic representation of the client
// configuration.
type Model struct {
	Host string
	// QueryPort is kept as text so that a malformed value surfaces as a
	// session-establishment failure at dial time.
	QueryPort string
	// StorageIdentifier is the vertex annotation key holding the store-native
	// vertex identifier.
	StorageIdentifier string
	// QueryStorage is the initial storage selector of every new session.
	QueryStorage string

	TLS TLS

	DialTimeout time.Duration
	// ReadTimeout bounds a single blocking read; zero means no deadline.
	ReadTimeout time.Duration

	// LineageParallelism above 1 enables the pooled lineage resolver.
	LineageParallelism int
}

// TLS holds the client-side TLS material. Paths point at PEM files.
type TLS struct {
	CAFile             string
	CertFile           string
	KeyFile            string
	ServerName         string
	InsecureSkipVerify bool
}

// Defaults returns a model populated with the built-in defaults.
func Defaults() *Model {
	return &Model{
		Host:               DefaultHost,
		QueryPort:          DefaultQueryPort,
		StorageIdentifier:  DefaultStorageIdentifier,
		QueryStorage:       DefaultQueryStorage,
		DialTimeout:        DefaultDialTimeout,
		LineageParallelism: 1,
	}
}

// Clone returns a copy of the model.
func (m *Model) Clone() *Model {
	c := *m
	return &c
}

// Validate checks the fields that do not depend on the network.
func (m *Model) Validate() error {
	if strings.TrimSpace(m.Host) == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(m.StorageIdentifier) == "" {
		return fmt.Errorf("%w: storage_identifier must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(m.QueryStorage) == "" {
		return fmt.Errorf("%w: query_storage must not be empty", ErrInvalidConfig)
	}
	if m.LineageParallelism < 1 {
		return fmt.Errorf("%w: lineage_parallelism must be at least 1, got %d", ErrInvalidConfig, m.LineageParallelism)
	}
	if (m.TLS.CertFile == "") != (m.TLS.KeyFile == "") {
		return fmt.Errorf("%w: tls cert_file and key_file must be set together", ErrInvalidConfig)
	}
	return nil
}

// Address joins host and port after checking that the port is numeric.
func (m *Model) Address() (string, error) {
	port, err := strconv.Atoi(strings.TrimSpace(m.QueryPort))
	if err != nil || port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid local_query_port %q", m.QueryPort)
	}
	return net.JoinHostPort(m.Host, strconv.Itoa(port)), nil
}

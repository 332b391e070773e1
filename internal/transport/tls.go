package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"

	"github.com/vk/spadequery/internal/config"
	"github.com/vk/spadequery/internal/ctxlog"
)

// LoadClientTLSConfig builds the client TLS configuration. The system CA
// bundle is always trusted; CAFile adds to it.
func LoadClientTLSConfig(cfg config.TLS, host string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: cfg.ServerName,
	}
	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = host
	}

	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		rootCAs = x509.NewCertPool()
	}
	if cfg.CAFile != "" {
		caPEM, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file %s: %w", cfg.CAFile, err)
		}
		if !rootCAs.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("parse CA certificate from %s: invalid PEM data", cfg.CAFile)
		}
	}
	tlsConfig.RootCAs = rootCAs

	if cfg.CertFile != "" || cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if cfg.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}
	return tlsConfig, nil
}

// Dial opens a TLS connection to the query service described by m and
// completes the handshake. Every failure wraps ErrSessionEstablishment.
func Dial(ctx context.Context, m *config.Model) (*Channel, error) {
	logger := ctxlog.FromContext(ctx)

	addr, err := m.Address()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionEstablishment, err)
	}
	tlsConfig, err := LoadClientTLSConfig(m.TLS, m.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionEstablishment, err)
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: m.DialTimeout},
		Config:    tlsConfig,
	}
	logger.Debug("Dialing query service.", "address", addr)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrSessionEstablishment, addr, err)
	}
	logger.Info("Connected to query service.", "address", addr)

	return New(conn,
		WithIdentifierKey(m.StorageIdentifier),
		WithReadTimeout(m.ReadTimeout),
	), nil
}

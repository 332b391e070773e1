package config

import (
	"fmt"
	"time"
)

// Overlay is a partially specified model as read from one configuration
// file. Nil fields leave the underlying model untouched. The struct tags are
// shared by the HCL and YAML loaders.
type Overlay struct {
	Host               *string     `hcl:"host,optional" yaml:"host"`
	QueryPort          *string     `hcl:"local_query_port,optional" yaml:"local_query_port"`
	StorageIdentifier  *string     `hcl:"storage_identifier,optional" yaml:"storage_identifier"`
	QueryStorage       *string     `hcl:"query_storage,optional" yaml:"query_storage"`
	DialTimeout        *string     `hcl:"dial_timeout,optional" yaml:"dial_timeout"`
	ReadTimeout        *string     `hcl:"read_timeout,optional" yaml:"read_timeout"`
	LineageParallelism *int        `hcl:"lineage_parallelism,optional" yaml:"lineage_parallelism"`
	TLS                *TLSOverlay `hcl:"tls,block" yaml:"tls"`
}

// TLSOverlay is the partial form of TLS.
type TLSOverlay struct {
	CAFile             *string `hcl:"ca_file,optional" yaml:"ca_file"`
	CertFile           *string `hcl:"cert_file,optional" yaml:"cert_file"`
	KeyFile            *string `hcl:"key_file,optional" yaml:"key_file"`
	ServerName         *string `hcl:"server_name,optional" yaml:"server_name"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional" yaml:"insecure_skip_verify"`
}

// Apply merges o into m.
func (m *Model) Apply(o *Overlay) error {
	if o == nil {
		return nil
	}
	setString(&m.Host, o.Host)
	setString(&m.QueryPort, o.QueryPort)
	setString(&m.StorageIdentifier, o.StorageIdentifier)
	setString(&m.QueryStorage, o.QueryStorage)
	if o.LineageParallelism != nil {
		m.LineageParallelism = *o.LineageParallelism
	}
	if err := setDuration(&m.DialTimeout, o.DialTimeout, "dial_timeout"); err != nil {
		return err
	}
	if err := setDuration(&m.ReadTimeout, o.ReadTimeout, "read_timeout"); err != nil {
		return err
	}
	if t := o.TLS; t != nil {
		setString(&m.TLS.CAFile, t.CAFile)
		setString(&m.TLS.CertFile, t.CertFile)
		setString(&m.TLS.KeyFile, t.KeyFile)
		setString(&m.TLS.ServerName, t.ServerName)
		if t.InsecureSkipVerify != nil {
			m.TLS.InsecureSkipVerify = *t.InsecureSkipVerify
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string, name string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}
	*dst = d
	return nil
}

// Package hcl provides the concrete HCL implementation of the configuration
// Loader interface defined in the `config` package. Files may reference
// process environment variables through the `env` object, e.g.
// `cert_file = "${env.SPADE_ROOT}/cfg/ssl/client.pem"`.
package hcl

// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.  Load calls validateStruct
// right after unmarshalling so a bad listen address or log level aborts
// startup before anything else runs.

package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

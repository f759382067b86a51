// Package sentinel provides a const-compatible error type for declaring
// immutable sentinel errors that work with errors.Is through wrapped chains.
package sentinel

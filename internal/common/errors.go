// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is / errors.As to match them.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Object storage errors.
	ErrNotConfigured = errors.New("storage is not configured")
	ErrStorage       = errors.New("storage operation failed")
	ErrInvalidFolder = errors.New("invalid folder")
)

// ConfigurationError reports required settings that could not be resolved
// from any source.
type ConfigurationError struct {
	// Missing lists the unresolved entries as "category.key".
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrNotConfigured, strings.Join(e.Missing, ", "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

// StorageError wraps a failure returned by the remote object storage.
type StorageError struct {
	Op  string
	Key string
	// Keys holds the keys that failed in a batch operation.
	Keys []string
	Err  error
}

func (e *StorageError) Error() string {
	switch {
	case len(e.Keys) > 0:
		return fmt.Sprintf("storage %s failed for %d key(s): %v", e.Op, len(e.Keys), e.Err)
	case e.Key != "":
		return fmt.Sprintf("storage %s %q failed: %v", e.Op, e.Key, e.Err)
	default:
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// UserMessage maps an error to text that is safe to show to an untrusted
// client. Details belong in the log.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "storage is not configured"
	case errors.Is(err, ErrInvalidFolder):
		return "invalid upload folder"
	default:
		return "operation failed, please retry"
	}
}

// Package models defines server-side data models.
package models

import "time"

// Setting is one persisted configuration value identified by
// (Category, Key).
type Setting struct {
	Category  string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Package common contains shared constants and error types used across
// the site directory server components.
package common

// SettingsCategoryStorage is the settings category that holds object-storage
// credentials and addressing.
const SettingsCategoryStorage = "storage"

// Keys under SettingsCategoryStorage. The same names are used as the
// environment variable fallback.
const (
	StorageSecretIDKey  = "SECRET_ID"
	StorageSecretKeyKey = "SECRET_KEY"
	StorageBucketKey    = "BUCKET"
	StorageRegionKey    = "REGION"
)

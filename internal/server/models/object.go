package models

// UploadResult describes an object written by the upload pipeline.
type UploadResult struct {
	// Key is the object-storage key, "<folder>/<millis>-<rand>.<ext>".
	Key string `json:"key"`
	// URL is a signed GET URL valid for the upload URL expiry (24h by default).
	URL string `json:"url"`

	ContentType string `json:"content_type"`
	Bucket      string `json:"bucket"`
	Region      string `json:"region"`
	Size        int64  `json:"size"`
}

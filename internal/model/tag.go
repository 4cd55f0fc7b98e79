// internal/model/tag.go
package model

import "time"

// TagStatus classifies the outcome of a single scan
type TagStatus string

const (
	TagStatusSuccess     TagStatus = "success"
	TagStatusNotDetected TagStatus = "not_detected"
	TagStatusError       TagStatus = "error"
)

// TagReading is the result of one inventory scan
type TagReading struct {
	UID       string    `json:"uid"`
	Timestamp time.Time `json:"timestamp"`
	Status    TagStatus `json:"status"`
	Position  int       `json:"position"`
}

// Detected reports whether the reading carries a tag UID
func (r *TagReading) Detected() bool {
	return r.Status == TagStatusSuccess && r.UID != ""
}

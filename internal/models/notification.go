// internal/models/notification.go
package models

import "encoding/json"

// NotificationType selects the visual treatment of a notification.
type NotificationType string

const (
	TypeInfo    NotificationType = "info"
	TypeSuccess NotificationType = "success"
	TypeError   NotificationType = "error"
	TypeOrder   NotificationType = "order"
	TypeWarning NotificationType = "warning"
)

// Notification is the canonical record produced by the normalizer and
// owned by the store. RawData retains the original event for diagnostic
// display and dedup key derivation.
type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Date    string           `json:"date"` // ISO timestamp
	Type    NotificationType `json:"type"`
	Read    bool             `json:"read"`
	RawData json.RawMessage  `json:"rawData,omitempty"`
}

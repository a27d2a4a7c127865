package models

import "time"

// Notification levels
const (
	NotifyInfo    = "info"
	NotifyWarning = "warning"
	NotifyError   = "error"
)

// MNotification is a user-facing message (rendered as a toast by clients).
type MNotification struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Websocket envelopes
// -----------------------------------------------------------------------------

const (
	MessageTypeInitial      = "INITIAL"
	MessageTypeSnapshot     = "SNAPSHOT"
	MessageTypeNotification = "NOTIFICATION"
)

// MServerMessage is the envelope pushed to websocket clients.
type MServerMessage struct {
	Type         string         `json:"type"`
	Snapshots    []MSnapshot    `json:"snapshots,omitempty"`
	Notification *MNotification `json:"notification,omitempty"`
	Timestamp    int64          `json:"timestamp"`
}

// MSubscribeCommand for client messages
type MSubscribeCommand struct {
	Command string   `json:"command"`
	Pairs   []string `json:"pairs"`
}

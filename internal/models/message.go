package models

// TimeFormat is the wire format for message timestamps: naive date-time,
// whole-second precision, UTC.
const TimeFormat = "2006-01-02 15:04:05"

// DefaultUsername is substituted when a poster supplies no username.
const DefaultUsername = "Anonymous"

// Message represents a single chat message. Messages are immutable once
// created; the store-assigned id is the only ordering key.
type Message struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Body      string `json:"message"`
	Timestamp string `json:"timestamp"` // TimeFormat, informational only
	Color     string `json:"color"`     // opaque client-chosen display token
}

package model

import "time"

type Status string

const (
	Sending   Status = "sending"
	Sent      Status = "sent"
	Delivered Status = "delivered"
	Read      Status = "read"
)

// Message is one chat bubble. Sent is true for locally originated records.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Sent      bool      `json:"sent" yaml:"sent"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Status    Status    `json:"status,omitempty" yaml:"status,omitempty"`
}

const WelcomeID = "welcome"

func NewIncoming(id, text string, at time.Time) Message {
	return Message{
		ID:        id,
		Text:      text,
		Sent:      false,
		Timestamp: at,
		Status:    Delivered,
	}
}

func NewOutgoing(id, text string, at time.Time) Message {
	return Message{
		ID:        id,
		Text:      text,
		Sent:      true,
		Timestamp: at,
		Status:    Sending,
	}
}

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	Time        time.Time `json:"time"`
}

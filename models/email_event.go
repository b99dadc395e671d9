package models

import (
	"gorm.io/gorm"
)

// Email lifecycle event types, normalized from the provider's "email.*" names
const (
	EmailEventSent         = "sent"
	EmailEventDelivered    = "delivered"
	EmailEventDelayed      = "delivery_delayed"
	EmailEventComplained   = "complained"
	EmailEventBounced      = "bounced"
	EmailEventOpened       = "opened"
	EmailEventClicked      = "clicked"
	EmailEventUnsubscribed = "unsubscribed"
)

// EmailEvent is one provider webhook callback, persisted as-is. Rows are
// insert-only and never mutated.
type EmailEvent struct {
	gorm.Model
	EmailID   string `gorm:"index" json:"email_id"` // provider message id
	EventType string `gorm:"not null;index" json:"event_type"`
	Recipient string `gorm:"index" json:"recipient"`
	Subject   string `json:"subject"`

	// Best-guess owning ticket; nil when no ticket could be resolved
	TicketID *uint `gorm:"index" json:"ticket_id"`

	// Raw provider payload for auditing
	Payload string `gorm:"type:text" json:"payload"`
}

// Outbound message kinds
const (
	OutboundKindReply               = "reply"
	OutboundKindContactNotification = "contact_notification"
)

// OutboundMessage records a provider message id at send time, keyed to the
// ticket it was sent for. The webhook receiver looks tickets up by message id
// through this table before falling back to matching by recipient email.
type OutboundMessage struct {
	gorm.Model
	EmailID  string `gorm:"not null;uniqueIndex" json:"email_id"`
	TicketID *uint  `gorm:"index" json:"ticket_id"`
	To       string `gorm:"index" json:"to"`
	Subject  string `json:"subject"`
	Kind     string `json:"kind"` // reply, contact_notification
}

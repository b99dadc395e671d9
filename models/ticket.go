package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Ticket statuses
const (
	TicketStatusOpen    = "open"
	TicketStatusPending = "pending"
	TicketStatusClosed  = "closed"
)

// Ticket sources
const (
	TicketSourceContactForm = "website_contact_form"
	TicketSourceWhatsApp    = "whatsapp_lead"
	TicketSourceManual      = "manual"
)

// Ticket represents a customer inquiry
type Ticket struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null;index" json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"` // free text, e.g. "Employment Visa UAE"
	Message string `gorm:"type:text" json:"message"`

	Status string `gorm:"default:'open';index" json:"status"` // open, pending, closed
	Source string `gorm:"index" json:"source"`

	// Append-only log of system actions (email events, replies, status changes)
	Notes string `gorm:"type:text" json:"notes"`
}

// AppendNote adds a timestamped line to the ticket's notes log. The caller is
// responsible for persisting the ticket; the read-then-write is not atomic.
func (t *Ticket) AppendNote(line string) {
	stamp := time.Now().UTC().Format("2006-01-02 15:04:05")
	t.Notes += fmt.Sprintf("[%s] %s\n", stamp, line)
}

// ValidTicketStatus reports whether s is one of the known ticket statuses.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusOpen, TicketStatusPending, TicketStatusClosed:
		return true
	}
	return false
}

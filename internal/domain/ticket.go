package domain

import "time"

type TicketStatus string

const (
	TicketStatusValid   TicketStatus = "valid"
	TicketStatusUsed    TicketStatus = "used"
	TicketStatusExpired TicketStatus = "expired"
)

// UserTicket is one issued ticket instance. A purchase of quantity N creates
// N identical rows, each independently trackable afterwards.
type UserTicket struct {
	ID        string
	UserID    string
	ProductID string
	Status    TicketStatus
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TicketProduct is the catalog entry a ticket order is priced from.
type TicketProduct struct {
	ID          string
	Name        string
	PricePoints int64
	CreatedAt   time.Time
}

package requests

import "time"

// TicketSequence is the persisted counter ticket numbers are drawn from.
type TicketSequence struct {
	Name      string    `gorm:"column:name;primaryKey" json:"name"`
	Value     int64     `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TicketSequence) TableName() string { return "ticket_sequence" }

const TicketSequenceName = "content_request"

package model

import (
	"time"

	"github.com/google/uuid"
)

// Transition outcomes
const (
	OutcomeSucceeded = "SUCCEEDED"
	OutcomeFailed    = "FAILED"
	OutcomeRejected  = "REJECTED" // blocked before any remote call
)

// TransitionLog records Who executed which transition on which order, and how it ended.
type TransitionLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:varchar(64);index" json:"user_id"`
	Role          string    `gorm:"type:varchar(30);not null;index" json:"role"`
	Family        string    `gorm:"type:varchar(20);not null;index" json:"family"`
	OrderID       int64     `gorm:"not null;index" json:"order_id"`
	NumeroOrden   string    `gorm:"type:varchar(100)" json:"numero_orden"`
	Action        string    `gorm:"type:varchar(40);not null;index" json:"action"`
	Outcome       string    `gorm:"type:varchar(20);not null" json:"outcome"`
	ServerMessage string    `gorm:"type:text" json:"server_message"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

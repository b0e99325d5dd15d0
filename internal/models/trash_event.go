package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Trash event actions.
const (
	TrashActionSoftDelete = "soft_delete"
	TrashActionRestore    = "restore"
	TrashActionPurge      = "purge"
)

// Trash event triggers.
const (
	TrashTriggerAPI     = "api"
	TrashTriggerSweeper = "sweeper"
)

// TrashEvent records a single trash operation: who moved which records in or
// out of the trash, and how. Events are written once and never modified, so
// they carry no update timestamp; the retention sweeper removes them by age.
type TrashEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Action      string `gorm:"type:varchar(20);not null;index" json:"action"`
	Resource    string `gorm:"type:varchar(64);not null;index" json:"resource"`
	TriggeredBy string `gorm:"type:varchar(20);not null" json:"triggered_by"`

	RecordIDs   datatypes.JSON `gorm:"type:json" json:"record_ids"`
	RecordCount int            `gorm:"not null" json:"record_count"`

	ActorID *string `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Actor   *User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	// Request origin of API-triggered operations; empty for sweeper runs.
	IPAddress string `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent string `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
}

// BeforeCreate assigns the event identifier.
func (e *TrashEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

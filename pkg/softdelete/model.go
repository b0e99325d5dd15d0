package softdelete

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeletedAtColumn is the column that records when a row was soft-deleted.
// A NULL value means the row is active; anything else is the deletion time.
const DeletedAtColumn = "deleted_at"

// Model provides shared fields for models that participate in soft deletion.
// Embed it instead of gorm.Model: the deletion marker is a plain nullable
// column, so visibility is decided by the managers in this package rather
// than by GORM callbacks, and raw *gorm.DB access still sees every row.
// Deleting or restoring a record does not cascade to related rows.
type Model struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate ensures UUID identifiers are generated automatically.
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IsDeleted reports whether the record carries a deletion marker.
func (m *Model) IsDeleted() bool {
	return m.DeletedAt != nil
}

// MarkDeleted stamps the record as deleted at the given time.
func (m *Model) MarkDeleted(at time.Time) {
	m.DeletedAt = &at
}

// ClearDeleted removes the deletion marker, returning the record to the
// active set.
func (m *Model) ClearDeleted() {
	m.DeletedAt = nil
}

// DeletedTime returns the deletion time, or nil for active records.
func (m *Model) DeletedTime() *time.Time {
	return m.DeletedAt
}

// PrimaryKey returns the record identifier.
func (m *Model) PrimaryKey() string {
	return m.ID
}

// Record is the contract between managers and adopting models. Any struct
// embedding Model satisfies it through promoted methods.
type Record interface {
	IsDeleted() bool
	MarkDeleted(time.Time)
	ClearDeleted()
	DeletedTime() *time.Time
	PrimaryKey() string
}

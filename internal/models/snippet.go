package models

import (
	"strings"

	"gorm.io/gorm"

	"gorm-trashbin/pkg/softdelete"
)

// Snippet represents a reusable command snippet owned by a user. Snippets
// share the soft-delete lifecycle: deleting one parks it in the trash until
// it is restored or purged.
type Snippet struct {
	softdelete.Model

	Name        string  `gorm:"type:varchar(120);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Command     string  `gorm:"type:text;not null" json:"command"`
	Language    string  `gorm:"type:varchar(32);not null;index" json:"language"`
	OwnerUserID *string `gorm:"type:uuid;index" json:"owner_user_id,omitempty"`
	Owner       *User   `gorm:"foreignKey:OwnerUserID" json:"owner,omitempty"`
}

// Normalise ensures the language value is lower-cased.
func (s *Snippet) Normalise() {
	s.Language = strings.ToLower(strings.TrimSpace(s.Language))
}

// SnippetObjects returns the default manager for snippets, hiding trashed
// rows.
func SnippetObjects(db *gorm.DB) *softdelete.Manager[Snippet] {
	return softdelete.Objects[Snippet](db)
}

// AllSnippetObjects returns the unfiltered manager for snippets, trashed
// rows included.
func AllSnippetObjects(db *gorm.DB) *softdelete.Manager[Snippet] {
	return softdelete.AllObjects[Snippet](db)
}

package models

import (
	"time"

	"gorm.io/gorm"

	"gorm-trashbin/pkg/softdelete"
)

// User describes an account that can sign in and own snippets. Users are
// soft-deletable: a deleted user keeps its row, is hidden from default
// queries, and can no longer authenticate until restored.
type User struct {
	softdelete.Model

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	IsAdmin  bool `gorm:"default:false" json:"is_admin"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at"`

	Snippets []Snippet `gorm:"foreignKey:OwnerUserID" json:"-"`
}

// UserObjects returns the default manager for users, hiding deleted accounts.
func UserObjects(db *gorm.DB) *softdelete.Manager[User] {
	return softdelete.Objects[User](db)
}

// AllUserObjects returns the unfiltered manager for users, deleted accounts
// included.
func AllUserObjects(db *gorm.DB) *softdelete.Manager[User] {
	return softdelete.AllObjects[User](db)
}

package models

import "time"

// SystemSetting is a key/value row for operational state that must survive
// restarts, such as the retention sweeper's last completed run.
type SystemSetting struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

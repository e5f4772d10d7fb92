package domain

import "time"

// User Model
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`               // Primary key (UUID)
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // Unique, lowercased email
	CreatedAt time.Time `json:"created_at"`                                          // First session time
}

package domain

import "time"

// DailyEntry Model (aura artifact), at most one per user per day
type DailyEntry struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`                                        // Primary key (UUID)
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_entry_user_date" json:"user_id"`    // Owner
	EntryDate   string    `gorm:"type:varchar(10);not null;uniqueIndex:uidx_entry_user_date" json:"entry_date"` // UTC day, YYYY-MM-DD
	AuraColor   string    `gorm:"type:text" json:"aura_color"`                                                  // CSS color words
	Emotion     string    `gorm:"type:text" json:"emotion"`                                                     // Few words
	Keywords    string    `gorm:"type:text" json:"keywords"`                                                    // Comma-separated
	Affirmation string    `gorm:"type:text" json:"affirmation"`                                                 // "I am ..." line
	CreatedAt   time.Time `json:"created_at"`                                                                   // Last (re)generation time
}

// TableName keeps the original table name
func (DailyEntry) TableName() string { return "daily_entries" }

// DailyDraw Model (tarot/rune artifact), at most one per user per kind per day
type DailyDraw struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`                                           // Primary key (UUID)
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_draw_user_kind_date" json:"user_id"`   // Owner
	DrawDate    string    `gorm:"type:varchar(10);not null;uniqueIndex:uidx_draw_user_kind_date" json:"draw_date"` // UTC day, YYYY-MM-DD
	Kind        Kind      `gorm:"type:varchar(16);not null;uniqueIndex:uidx_draw_user_kind_date" json:"kind"`      // tarot or rune
	Name        string    `gorm:"type:varchar(64);not null" json:"name"`                                           // Canonical card or rune name
	Keywords    string    `gorm:"type:text" json:"keywords"`                                                       // Comma-separated
	Meaning     string    `gorm:"type:text" json:"meaning"`                                                        // Short interpretation
	Affirmation string    `gorm:"type:text" json:"affirmation"`                                                    // "I am ..." line
	CreatedAt   time.Time `json:"created_at"`                                                                      // Last (re)generation time
}

// TableName keeps the original table name
func (DailyDraw) TableName() string { return "daily_draws" }

// TrackedCard Model, an append-only user log entry
type TrackedCard struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`          // Primary key (UUID)
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"` // Owner
	CardName  string    `gorm:"type:varchar(128);not null" json:"card_name"`    // Free-form card name
	Notes     string    `gorm:"type:text" json:"notes"`                         // Optional notes
	CreatedAt time.Time `json:"created_at"`                                     // Log time
}

// TableName keeps the original table name
func (TrackedCard) TableName() string { return "cards" }

// CardCount is one row of the tracker's most-logged cards
type CardCount struct {
	CardName string `json:"card_name"` // Card name as logged
	Count    int64  `json:"count"`     // Times logged
}

// Models lists every table for AutoMigrate
func Models() []any {
	return []any{&User{}, &Question{}, &Answer{}, &DailyEntry{}, &DailyDraw{}, &TrackedCard{}}
}

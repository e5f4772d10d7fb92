package domain

import "time"

// Question Model
type Question struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`                                     // Primary key (UUID)
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_questions_user_created" json:"user_id"` // Owner
	Content   string    `gorm:"type:text;not null" json:"content"`                                         // Question text
	CreatedAt time.Time `gorm:"index:idx_questions_user_created" json:"created_at"`                        // Submission time, drives the rate window
}

// Answer Model
type Answer struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`                    // Primary key (UUID)
	QuestionID  string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"question_id"` // One answer per question
	Body        string    `gorm:"type:text;not null" json:"body"`                           // Answer text
	Affirmation string    `gorm:"type:text" json:"affirmation"`                             // "I am ..." line
	TagsCSV     string    `gorm:"column:tags_csv;type:text" json:"tags"`                    // Comma-separated lowercase tags
	CreatedAt   time.Time `json:"created_at"`                                               // Creation time
}

// QuestionWithAnswer is one row of a user's question history
type QuestionWithAnswer struct {
	QuestionID  string    `json:"question_id"` // Question ID
	Question    string    `json:"question"`    // Question text
	Answer      string    `json:"answer"`      // Answer body, empty if never stored
	Affirmation string    `json:"affirmation"` // Answer affirmation
	Tags        string    `json:"tags"`        // Answer tags
	CreatedAt   time.Time `json:"created_at"`  // Question time
}

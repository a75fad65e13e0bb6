package entities

import "time"

// Comment is a message on the shared comment board.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id,omitempty"` // Empty for anonymous legacy comments
	CreatedAt time.Time `json:"created_at"`
}

package yatra

import "time"

// Yatra is a travel narrative written by a contributor about their
// visit to one or more heritage sites.
type Yatra struct {
	ID        int64     `json:"-" db:"id"`
	PublicID  string    `json:"public_id" db:"public_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package comment

import "time"

type Comment struct {
	ID        int64     `json:"-" db:"id"`
	PublicID  string    `json:"public_id" db:"public_id"`
	YatraID   string    `json:"yatra_id" db:"yatra_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package media

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Submission is a geotagged photo or video documenting a heritage
// site. The media bytes live in object storage; we keep the key plus
// the review state.
type Submission struct {
	ID          int64     `json:"-" db:"id"`
	PublicID    string    `json:"public_id" db:"public_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	SiteName    string    `json:"site_name" db:"site_name"`
	ObjectKey   string    `json:"object_key" db:"object_key"`
	Kind        Kind      `json:"kind" db:"kind"`
	Latitude    float64   `json:"latitude" db:"latitude"`
	Longitude   float64   `json:"longitude" db:"longitude"`
	Caption     string    `json:"caption,omitempty" db:"caption"`
	Status      Status    `json:"status" db:"status"`
	ReviewNote  string    `json:"review_note,omitempty" db:"review_note"`
	RewardCents int64     `json:"reward_cents" db:"reward_cents"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

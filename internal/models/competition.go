package models

import "time"

// Competition is a bounded campaign grouping videos for ranking purposes.
type Competition struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Active    bool       `db:"is_active" json:"active"`
	Hashtag   *string    `db:"hashtags" json:"hashtags,omitempty"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
}

package models

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `gorm:"primary_key;type:varchar(36)" json:"id"`
	Email        string    `gorm:"unique_index;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Roles        string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleList splits the stored comma-joined roles.
func (u *User) RoleList() []string {
	if u.Roles == "" {
		return nil
	}
	return strings.Split(u.Roles, ",")
}

// Video is one bookmarked URL. The (user_id, video_url) unique index is what
// makes the per-owner dedup check race-free; the pre-insert existence check
// only produces the friendlier error.
type Video struct {
	ID           uint      `gorm:"primary_key" json:"id"`
	UserID       string    `gorm:"not null;index;unique_index:idx_user_video_url" json:"-"`
	VideoURL     string    `gorm:"not null;unique_index:idx_user_video_url" json:"url"`
	Title        string    `json:"title"`
	AuthorName   string    `json:"authorName"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"-"`
}

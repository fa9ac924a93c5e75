package model

import "time"

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Author    User      `json:"author,omitempty"`
	PostID    uint      `gorm:"not null" json:"post_id"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"post,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

package model

import "time"

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:250;uniqueIndex;not null" json:"title"`
	Subtitle string `gorm:"size:250;not null" json:"subtitle"`
	// Display date as shown on the page ("January 02, 2006"), fixed at
	// creation and untouched by edits.
	Date      string    `gorm:"size:250;not null" json:"date"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImageURL  string    `gorm:"size:500;not null" json:"image_url"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Author    User      `json:"author,omitempty"`
	Comments  []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

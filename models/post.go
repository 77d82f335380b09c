package models

import "time"

// DefaultCategory is used when a write request omits the board category.
const DefaultCategory = "free"

// Categories lists the recognized board keys. Routing only resolves these.
var Categories = []string{
	"daily-homily",
	"sunday-homily",
	"feast-homily",
	"special-homily",
	"church-history",
	"bible-50",
	"free-board",
	"gallery",
	"qna",
	DefaultCategory,
}

// ValidCategory reports whether category is a recognized board key.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Post represents a board entry. Author keeps the display name as plain
// text so the post survives deletion of the owning account; UserID is a
// weak reference and is nulled when the user is removed.
type Post struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Content     string       `gorm:"type:text" json:"content"`
	Author      string       `gorm:"size:64;not null" json:"author"`
	UserID      *uint        `gorm:"index" json:"user_id"`
	Category    string       `gorm:"size:32;not null;default:'free';index:idx_posts_category_created,priority:1" json:"category"`
	Views       int64        `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time    `gorm:"index:idx_posts_category_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Attachments []Attachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attachments"`
	Comments    []Comment    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

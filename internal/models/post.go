package models

import (
	"time"
)

const textPreviewLen = 15

type Post struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Text string `gorm:"type:text;not null" json:"text"`
	// PubDate is filled on insert and never written again.
	PubDate time.Time `gorm:"autoCreateTime;not null;index" json:"pub_date"`
	// Author and Group survive as NULL when the referenced row is deleted.
	AuthorID *uint  `gorm:"index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"author"`
	GroupID  *uint  `gorm:"index" json:"group_id"`
	Group    *Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group"`
	Image    string `gorm:"size:255" json:"image"` // storage key, empty when no image
}

// IsAuthoredBy reports whether u is the post's current author.
func (p *Post) IsAuthoredBy(u *User) bool {
	return u != nil && p.AuthorID != nil && *p.AuthorID == u.ID
}

// Preview is the truncated text shown in the detail page title.
func (p *Post) Preview() string {
	runes := []rune(p.Text)
	if len(runes) > textPreviewLen {
		return string(runes[:textPreviewLen])
	}
	return p.Text
}

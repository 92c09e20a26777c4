// Package models contains data structures for the application's domain entities.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a geo-tagged audio clip.
type Post struct {
	ID          string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string   `gorm:"not null;index" json:"user_id"`
	User        User     `gorm:"foreignKey:UserID" json:"user"`
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text" json:"description,omitempty"`
	AudioURL    string   `gorm:"not null" json:"audio_url"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Location    string   `json:"location,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an opaque string ID when none was provided.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// HasCoordinates reports whether the post carries a geo position for the map view.
func (p *Post) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like marks that a user liked a post. Presence of the (user, post) row is the
// liked state; there is no separate boolean.
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_like_pair" json:"user_id"`
	PostID    string    `gorm:"not null;index;uniqueIndex:idx_like_pair" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns an opaque string ID when none was provided.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

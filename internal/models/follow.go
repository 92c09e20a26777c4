package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge meaning the follower receives the followee's posts
// in their timeline. The (follower, following) pair is unique; presence of the
// row is the whole state.
type Follow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID  string    `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID string    `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate assigns an opaque string ID when none was provided.
func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

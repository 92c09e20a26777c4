// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"soundmap/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string, currentUserID string) (*models.Post, error)
	GetByUserID(ctx context.Context, userID string, limit int, currentUserID string) ([]*models.Post, error)
	GetByAuthorIDs(ctx context.Context, authorIDs []string, limit int, currentUserID string) ([]*models.Post, error)
	ListWithCoordinates(ctx context.Context, limit int) ([]*models.Post, error)
	IsLiked(ctx context.Context, userID, postID string) (bool, error)
	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string, currentUserID string) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID string, limit int, currentUserID string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetByAuthorIDs is the timeline query: newest-first posts from the given
// author set, with author preloaded and counts computed at read time.
func (r *postRepository) GetByAuthorIDs(ctx context.Context, authorIDs []string, limit int, currentUserID string) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("posts.user_id IN ?", authorIDs).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListWithCoordinates returns geo-tagged posts for the map view.
func (r *postRepository) ListWithCoordinates(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), "").
		Preload("User").
		Where("posts.latitude IS NOT NULL AND posts.longitude IS NOT NULL").
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID string) error {
	like := &models.Like{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		// A concurrent double-click racing the existence check is fine:
		// the unique (user, post) index keeps the state correct.
		if isUniqueConstraintError(err) {
			return nil
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// applyPostDetails selects posts with like/comment counts and, when a user is
// given, whether that user liked each post. Counts are computed per query so
// they are always consistent with the underlying rows.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID string) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != "" {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

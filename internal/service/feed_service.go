package service

import (
	"context"

	"soundmap/internal/models"
	"soundmap/internal/repository"
)

// DefaultFeedLimit caps how many posts a single feed or map request returns.
const DefaultFeedLimit = 50

// FeedService composes the home timeline and the map view.
type FeedService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

func NewFeedService(postRepo repository.PostRepository, followRepo repository.FollowRepository) *FeedService {
	return &FeedService{postRepo: postRepo, followRepo: followRepo}
}

// Timeline returns the newest posts from the users the viewer follows plus
// the viewer's own posts.
func (s *FeedService) Timeline(ctx context.Context, userID string, limit int) ([]*models.Post, error) {
	limit = clampLimit(limit)

	followingIDs, err := s.followRepo.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The viewer always sees their own posts, even with zero follows.
	authorIDs := append(followingIDs, userID)

	return s.postRepo.GetByAuthorIDs(ctx, authorIDs, limit, userID)
}

// MapPosts returns posts that carry coordinates, for plotting on the map.
func (s *FeedService) MapPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.postRepo.ListWithCoordinates(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultFeedLimit {
		return DefaultFeedLimit
	}
	return limit
}

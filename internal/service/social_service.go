package service

import (
	"context"

	"soundmap/internal/models"
	"soundmap/internal/repository"
)

// SocialService handles follow relationships and profile composition.
type SocialService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
}

// Profile is a user page: the user, their posts, and follow counts relative
// to the viewer.
type Profile struct {
	User           *models.User   `json:"user"`
	Posts          []*models.Post `json:"posts"`
	FollowersCount int64          `json:"followersCount"`
	FollowingCount int64          `json:"followingCount"`
	IsFollowing    bool           `json:"isFollowing"`
}

func NewSocialService(userRepo repository.UserRepository, followRepo repository.FollowRepository, postRepo repository.PostRepository) *SocialService {
	return &SocialService{userRepo: userRepo, followRepo: followRepo, postRepo: postRepo}
}

// GetProfile returns the profile page for username. currentUserID may be
// empty for anonymous viewers.
func (s *SocialService) GetProfile(ctx context.Context, username, currentUserID string) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User not found")
	}

	posts, err := s.postRepo.GetByUserID(ctx, user.ID, DefaultFeedLimit, currentUserID)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if currentUserID != "" && currentUserID != user.ID {
		edge, err := s.followRepo.Get(ctx, currentUserID, user.ID)
		if err != nil {
			return nil, err
		}
		isFollowing = edge != nil
	}

	return &Profile{
		User:           user,
		Posts:          posts,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
	}, nil
}

// ToggleFollow follows the target user if no edge exists, otherwise unfollows.
// It returns whether the viewer follows the target after the toggle.
func (s *SocialService) ToggleFollow(ctx context.Context, userID, targetUsername string) (bool, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, models.NewNotFoundError("User not found")
	}
	if target.ID == userID {
		return false, models.NewValidationError("Cannot follow yourself")
	}

	edge, err := s.followRepo.Get(ctx, userID, target.ID)
	if err != nil {
		return false, err
	}
	if edge != nil {
		if err := s.followRepo.Delete(ctx, userID, target.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.followRepo.Create(ctx, &models.Follow{FollowerID: userID, FollowingID: target.ID}); err != nil {
		return false, err
	}
	return true, nil
}

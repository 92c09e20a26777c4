package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmap/internal/models"
)

func TestSocialServiceToggleFollowCreatesThenRemoves(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "target" {
			return &models.User{ID: "target-id", Username: "target"}, nil
		}
		return nil, nil
	}

	var edge *models.Follow
	follows := noopFollowRepo()
	follows.getFn = func(context.Context, string, string) (*models.Follow, error) {
		return edge, nil
	}
	follows.createFn = func(_ context.Context, f *models.Follow) error {
		edge = f
		return nil
	}
	follows.deleteFn = func(context.Context, string, string) error {
		edge = nil
		return nil
	}

	svc := NewSocialService(users, follows, noopPostRepo())

	following, err := svc.ToggleFollow(context.Background(), "me", "target")
	require.NoError(t, err)
	assert.True(t, following)
	require.NotNil(t, edge)
	assert.Equal(t, "me", edge.FollowerID)
	assert.Equal(t, "target-id", edge.FollowingID)

	following, err = svc.ToggleFollow(context.Background(), "me", "target")
	require.NoError(t, err)
	assert.False(t, following)
	assert.Nil(t, edge)
}

func TestSocialServiceToggleFollowSelf(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(context.Context, string) (*models.User, error) {
		return &models.User{ID: "me", Username: "me"}, nil
	}

	svc := NewSocialService(users, noopFollowRepo(), noopPostRepo())
	_, err := svc.ToggleFollow(context.Background(), "me", "me")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSocialServiceToggleFollowUnknownUser(t *testing.T) {
	svc := NewSocialService(noopUserRepo(), noopFollowRepo(), noopPostRepo())
	_, err := svc.ToggleFollow(context.Background(), "me", "ghost")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestSocialServiceGetProfile(t *testing.T) {
	users := noopUserRepo()
	users.getByUsernameFn = func(context.Context, string) (*models.User, error) {
		return &models.User{ID: "target-id", Username: "target"}, nil
	}

	follows := noopFollowRepo()
	follows.countFollowersFn = func(context.Context, string) (int64, error) { return 3, nil }
	follows.countFollowingFn = func(context.Context, string) (int64, error) { return 7, nil }
	follows.getFn = func(_ context.Context, followerID, followingID string) (*models.Follow, error) {
		if followerID == "viewer" && followingID == "target-id" {
			return &models.Follow{FollowerID: followerID, FollowingID: followingID}, nil
		}
		return nil, nil
	}

	posts := noopPostRepo()
	posts.getByUserIDFn = func(_ context.Context, userID string, limit int, currentUserID string) ([]*models.Post, error) {
		assert.Equal(t, "target-id", userID)
		assert.Equal(t, "viewer", currentUserID)
		return []*models.Post{{ID: "p1", UserID: userID}}, nil
	}

	svc := NewSocialService(users, follows, posts)

	profile, err := svc.GetProfile(context.Background(), "target", "viewer")
	require.NoError(t, err)
	assert.Equal(t, int64(3), profile.FollowersCount)
	assert.Equal(t, int64(7), profile.FollowingCount)
	assert.True(t, profile.IsFollowing)
	assert.Len(t, profile.Posts, 1)

	// Anonymous viewers never count as following.
	profile, err = svc.GetProfile(context.Background(), "target", "")
	require.NoError(t, err)
	assert.False(t, profile.IsFollowing)
}

func TestSocialServiceGetProfileNotFound(t *testing.T) {
	svc := NewSocialService(noopUserRepo(), noopFollowRepo(), noopPostRepo())
	_, err := svc.GetProfile(context.Background(), "ghost", "")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

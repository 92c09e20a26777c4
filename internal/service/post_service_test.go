package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmap/internal/models"
)

func TestPostServiceCreatePost(t *testing.T) {
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = "post-1"
		return nil
	}
	posts.getByIDFn = func(_ context.Context, id, currentUserID string) (*models.Post, error) {
		return &models.Post{ID: id, UserID: currentUserID, Title: "Rain on tin roof"}, nil
	}

	svc := NewPostService(posts, noopCommentRepo(), noopUserRepo())

	lat, lng := 40.7, -74.0
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:    "me",
		Title:     "  Rain on tin roof  ",
		AudioURL:  "/audio/1700000000000-abcd1234.webm",
		Latitude:  &lat,
		Longitude: &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
}

func TestPostServiceCreatePostValidation(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopCommentRepo(), noopUserRepo())
	lat := 91.0
	lng := 0.0

	cases := []struct {
		name string
		in   CreatePostInput
	}{
		{"missing title", CreatePostInput{UserID: "me", AudioURL: "/audio/a.webm"}},
		{"blank title", CreatePostInput{UserID: "me", Title: "   ", AudioURL: "/audio/a.webm"}},
		{"title too long", CreatePostInput{UserID: "me", Title: strings.Repeat("x", 201), AudioURL: "/audio/a.webm"}},
		{"missing audio", CreatePostInput{UserID: "me", Title: "ok"}},
		{"latitude without longitude", CreatePostInput{UserID: "me", Title: "ok", AudioURL: "/audio/a.webm", Latitude: &lng}},
		{"latitude out of range", CreatePostInput{UserID: "me", Title: "ok", AudioURL: "/audio/a.webm", Latitude: &lat, Longitude: &lng}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), tc.in)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestPostServiceToggleLike(t *testing.T) {
	liked := false
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ string) (*models.Post, error) {
		count := 0
		if liked {
			count = 1
		}
		return &models.Post{ID: id, LikesCount: count}, nil
	}
	posts.isLikedFn = func(context.Context, string, string) (bool, error) { return liked, nil }
	posts.likeFn = func(context.Context, string, string) error {
		liked = true
		return nil
	}
	posts.unlikeFn = func(context.Context, string, string) error {
		liked = false
		return nil
	}

	svc := NewPostService(posts, noopCommentRepo(), noopUserRepo())

	nowLiked, count, err := svc.ToggleLike(context.Background(), "me", "post-1")
	require.NoError(t, err)
	assert.True(t, nowLiked)
	assert.Equal(t, 1, count)

	nowLiked, count, err = svc.ToggleLike(context.Background(), "me", "post-1")
	require.NoError(t, err)
	assert.False(t, nowLiked)
	assert.Equal(t, 0, count)
}

func TestPostServiceToggleLikeUnknownPost(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopCommentRepo(), noopUserRepo())
	_, _, err := svc.ToggleLike(context.Background(), "me", "ghost")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostServiceAddComment(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ string) (*models.Post, error) {
		return &models.Post{ID: id}, nil
	}

	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = "comment-1"
		return nil
	}

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
		return &models.User{ID: id, Username: "ada"}, nil
	}

	svc := NewPostService(posts, comments, users)

	comment, err := svc.AddComment(context.Background(), "me", "post-1", "  lovely recording  ")
	require.NoError(t, err)
	assert.Equal(t, "comment-1", comment.ID)
	assert.Equal(t, "lovely recording", comment.Content)
	assert.Equal(t, "ada", comment.User.Username)
}

func TestPostServiceAddCommentEmpty(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopCommentRepo(), noopUserRepo())
	_, err := svc.AddComment(context.Background(), "me", "post-1", "   ")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestPostServiceGetPostWithComments(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ string) (*models.Post, error) {
		return &models.Post{ID: id}, nil
	}
	comments := noopCommentRepo()
	comments.listByPostIDFn = func(context.Context, string) ([]models.Comment, error) {
		return []models.Comment{{ID: "c1"}, {ID: "c2"}}, nil
	}

	svc := NewPostService(posts, comments, noopUserRepo())
	detail, err := svc.GetPost(context.Background(), "post-1", "")
	require.NoError(t, err)
	assert.Equal(t, "post-1", detail.Post.ID)
	assert.Len(t, detail.Comments, 2)
}

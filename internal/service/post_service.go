package service

import (
	"context"
	"strings"

	"soundmap/internal/models"
	"soundmap/internal/repository"
	"soundmap/internal/validation"
)

// PostService handles post creation, likes and comments.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

type CreatePostInput struct {
	UserID      string
	Title       string
	Description string
	AudioURL    string
	Latitude    *float64
	Longitude   *float64
	Location    string
}

// PostDetail is a post together with its full comment thread.
type PostDetail struct {
	Post     *models.Post     `json:"post"`
	Comments []models.Comment `json:"comments"`
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, commentRepo: commentRepo, userRepo: userRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > 200 {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if in.AudioURL == "" {
		return nil, models.NewValidationError("Audio is required")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, models.NewValidationError("Latitude and longitude must be provided together")
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return nil, models.NewValidationError("Latitude out of range")
		}
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, models.NewValidationError("Longitude out of range")
		}
	}

	post := &models.Post{
		UserID:      in.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		AudioURL:    in.AudioURL,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Location:    strings.TrimSpace(in.Location),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns a post with its comments. currentUserID may be empty.
func (s *PostService) GetPost(ctx context.Context, postID, currentUserID string) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post not found")
	}

	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Comments: comments}, nil
}

// ToggleLike likes the post if the user has not liked it, otherwise removes
// the like. It returns whether the post is liked after the toggle and the
// updated like count.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (bool, int, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return false, 0, err
	}
	if post == nil {
		return false, 0, models.NewNotFoundError("Post not found")
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, 0, err
	}

	if liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return false, 0, err
		}
		return false, post.LikesCount - 1, nil
	}

	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return false, 0, err
	}
	return true, post.LikesCount + 1, nil
}

// AddComment appends a comment to the post and returns it with the author
// attached.
func (s *PostService) AddComment(ctx context.Context, userID, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validation.ValidateCommentContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post not found")
	}

	comment := &models.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if author != nil {
		comment.User = *author
	}
	return comment, nil
}

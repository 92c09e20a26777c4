package service

import (
	"context"
	"sync"
	"time"

	"soundmap/internal/models"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, string) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
	}
}

type postRepoStub struct {
	createFn              func(context.Context, *models.Post) error
	getByIDFn             func(context.Context, string, string) (*models.Post, error)
	getByUserIDFn         func(context.Context, string, int, string) ([]*models.Post, error)
	getByAuthorIDsFn      func(context.Context, []string, int, string) ([]*models.Post, error)
	listWithCoordinatesFn func(context.Context, int) ([]*models.Post, error)
	isLikedFn             func(context.Context, string, string) (bool, error)
	likeFn                func(context.Context, string, string) error
	unlikeFn              func(context.Context, string, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID string) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID string, limit int, currentUserID string) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, currentUserID)
}
func (s *postRepoStub) GetByAuthorIDs(ctx context.Context, authorIDs []string, limit int, currentUserID string) ([]*models.Post, error) {
	return s.getByAuthorIDsFn(ctx, authorIDs, limit, currentUserID)
}
func (s *postRepoStub) ListWithCoordinates(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listWithCoordinatesFn(ctx, limit)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID string) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID string) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:              func(context.Context, *models.Post) error { return nil },
		getByIDFn:             func(context.Context, string, string) (*models.Post, error) { return nil, nil },
		getByUserIDFn:         func(context.Context, string, int, string) ([]*models.Post, error) { return nil, nil },
		getByAuthorIDsFn:      func(context.Context, []string, int, string) ([]*models.Post, error) { return nil, nil },
		listWithCoordinatesFn: func(context.Context, int) ([]*models.Post, error) { return nil, nil },
		isLikedFn:             func(context.Context, string, string) (bool, error) { return false, nil },
		likeFn:                func(context.Context, string, string) error { return nil },
		unlikeFn:              func(context.Context, string, string) error { return nil },
	}
}

type followRepoStub struct {
	getFn              func(context.Context, string, string) (*models.Follow, error)
	createFn           func(context.Context, *models.Follow) error
	deleteFn           func(context.Context, string, string) error
	listFollowingIDsFn func(context.Context, string) ([]string, error)
	countFollowersFn   func(context.Context, string) (int64, error)
	countFollowingFn   func(context.Context, string) (int64, error)
}

func (s *followRepoStub) Get(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	return s.getFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID string) error {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	return s.listFollowingIDsFn(ctx, followerID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID string) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID string) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		getFn:              func(context.Context, string, string) (*models.Follow, error) { return nil, nil },
		createFn:           func(context.Context, *models.Follow) error { return nil },
		deleteFn:           func(context.Context, string, string) error { return nil },
		listFollowingIDsFn: func(context.Context, string) ([]string, error) { return nil, nil },
		countFollowersFn:   func(context.Context, string) (int64, error) { return 0, nil },
		countFollowingFn:   func(context.Context, string) (int64, error) { return 0, nil },
	}
}

type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	listByPostIDFn  func(context.Context, string) ([]models.Comment, error)
	countByPostIDFn func(context.Context, string) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.listByPostIDFn(ctx, postID)
}
func (s *commentRepoStub) CountByPostID(ctx context.Context, postID string) (int64, error) {
	return s.countByPostIDFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:        func(context.Context, *models.Comment) error { return nil },
		listByPostIDFn:  func(context.Context, string) ([]models.Comment, error) { return nil, nil },
		countByPostIDFn: func(context.Context, string) (int64, error) { return 0, nil },
	}
}

// memoryKV is an in-process key-value store for tests. TTLs are honored on
// read.
type memoryKV struct {
	mu      sync.Mutex
	entries map[string]memoryKVEntry
}

type memoryKVEntry struct {
	value     []byte
	expiresAt time.Time
}

func newMemoryKV() *memoryKV {
	return &memoryKV{entries: make(map[string]memoryKVEntry)}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, nil
	}
	return entry.value, nil
}

func (m *memoryKV) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryKVEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

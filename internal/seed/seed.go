// Package seed creates demo data for development and testing. Not for
// production use.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"soundmap/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers        int
	PostsPerUser    int
	FollowsPerUser  int
	CommentChance   float64
	Password        string
	ShouldClean     bool
	MaxDaysBackdate int
}

// DefaultOptions is a small but lively demo dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:        12,
		PostsPerUser:    4,
		FollowsPerUser:  4,
		CommentChance:   0.4,
		Password:        "soundmap-demo",
		MaxDaysBackdate: 60,
	}
}

// spots are real-world places to pin posts to. Roughly one third of posts
// are left without coordinates so the map and timeline diverge, as they do
// with organic data.
var spots = []struct {
	name     string
	lat, lng float64
}{
	{"Washington Square Park, NYC", 40.7308, -73.9973},
	{"Shibuya Crossing, Tokyo", 35.6595, 139.7005},
	{"La Rambla, Barcelona", 41.3809, 2.1735},
	{"Brick Lane, London", 51.5218, -0.0715},
	{"Alexanderplatz, Berlin", 52.5219, 13.4132},
	{"Pike Place Market, Seattle", 47.6097, -122.3422},
	{"Bondi Beach, Sydney", -33.8908, 151.2743},
	{"Jemaa el-Fnaa, Marrakesh", 31.6258, -7.9891},
	{"Grand Central Terminal, NYC", 40.7527, -73.9772},
	{"Navigli, Milan", 45.4480, 9.1709},
}

var soundTitles = []string{
	"Street musicians at dusk",
	"Rain on a tin roof",
	"Harbor foghorns",
	"Market morning chatter",
	"Subway platform echoes",
	"Cicadas after midnight",
	"Church bells across the square",
	"Waves against the pier",
	"Night tram rolling past",
	"Kids playing in the fountain",
	"Thunder rolling over the hills",
	"Accordion by the canal",
}

// Seeder populates the database with demo users, follows, posts, likes and
// comments.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

func New(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes the full seeding pass.
func (s *Seeder) Run() error {
	if s.opts.ShouldClean {
		if err := s.clean(); err != nil {
			return err
		}
	}

	users, err := s.createUsers()
	if err != nil {
		return err
	}
	if err := s.createFollowMesh(users); err != nil {
		return err
	}
	posts, err := s.createPosts(users)
	if err != nil {
		return err
	}
	if err := s.createEngagement(users, posts); err != nil {
		return err
	}

	slog.Info("seeding complete",
		"users", len(users),
		"posts", len(posts),
		"password", s.opts.Password)
	return nil
}

func (s *Seeder) clean() error {
	for _, table := range []string{"comments", "likes", "follows", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) createUsers() ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user := &models.User{
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 99)),
			Email:        gofakeit.Email(),
			PasswordHash: string(hash),
			Bio:          gofakeit.Sentence(8),
			AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createFollowMesh(users []*models.User) error {
	for _, user := range users {
		for _, target := range s.pickOthers(users, user, s.opts.FollowsPerUser) {
			follow := &models.Follow{FollowerID: user.ID, FollowingID: target.ID}
			if err := s.db.Create(follow).Error; err != nil {
				return fmt.Errorf("failed to create follow: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) createPosts(users []*models.User) ([]*models.Post, error) {
	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			post := &models.Post{
				UserID:      user.ID,
				Title:       soundTitles[s.rng.Intn(len(soundTitles))],
				Description: gofakeit.Sentence(12),
				AudioURL:    fmt.Sprintf("/audio/%d-%08x.webm", time.Now().UnixMilli(), s.rng.Uint32()),
				CreatedAt:   s.backdate(),
			}
			if s.rng.Float64() > 0.33 {
				spot := spots[s.rng.Intn(len(spots))]
				lat := jitter(s.rng, spot.lat)
				lng := jitter(s.rng, spot.lng)
				post.Latitude = &lat
				post.Longitude = &lng
				post.Location = spot.name
			}
			if err := s.db.Create(post).Error; err != nil {
				return nil, fmt.Errorf("failed to create post: %w", err)
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *Seeder) createEngagement(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID {
				continue
			}
			if s.rng.Float64() < 0.3 {
				like := &models.Like{UserID: user.ID, PostID: post.ID}
				if err := s.db.Create(like).Error; err != nil {
					return fmt.Errorf("failed to create like: %w", err)
				}
			}
			if s.rng.Float64() < s.opts.CommentChance/float64(len(users)/2+1) {
				comment := &models.Comment{
					UserID:  user.ID,
					PostID:  post.ID,
					Content: gofakeit.Sentence(10),
				}
				if err := s.db.Create(comment).Error; err != nil {
					return fmt.Errorf("failed to create comment: %w", err)
				}
			}
		}
	}
	return nil
}

// pickOthers selects up to n distinct users excluding self.
func (s *Seeder) pickOthers(users []*models.User, self *models.User, n int) []*models.User {
	others := make([]*models.User, 0, len(users)-1)
	for _, u := range users {
		if u.ID != self.ID {
			others = append(others, u)
		}
	}
	s.rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})
	if n > len(others) {
		n = len(others)
	}
	return others[:n]
}

func (s *Seeder) backdate() time.Time {
	maxDays := s.opts.MaxDaysBackdate
	if maxDays <= 0 {
		maxDays = 60
	}
	back := time.Duration(s.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(s.rng.Intn(24))*time.Hour +
		time.Duration(s.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// jitter spreads a coordinate a few hundred meters so pins don't stack.
func jitter(rng *rand.Rand, v float64) float64 {
	return v + (rng.Float64()-0.5)*0.01
}

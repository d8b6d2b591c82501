// Package seed fills a database with fake users, posts, comments and likes
// for development and demos.
package seed

import (
	"fmt"
	"strings"
	"time"

	"sharedepot/internal/auth"
	"sharedepot/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configures a seeding run.
type Options struct {
	Users              int
	Posts              int
	MaxCommentsPerPost int
	// LikeChance is the probability, in percent, that a given user likes a given post.
	LikeChance int
	Clean      bool
	// SkipBcrypt stores the plain password, for fast throwaway databases only.
	SkipBcrypt bool
	MaxDays    int
}

// Summary counts the rows a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seeder writes fake data through GORM.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewSeeder creates a Seeder. The same seed produces the same data.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{db: db, faker: gofakeit.New(seed)}
}

// Run optionally clears the database and then seeds it according to opts.
func (s *Seeder) Run(opts Options) (Summary, error) {
	var sum Summary
	if opts.Clean {
		if err := s.ClearAll(); err != nil {
			return sum, err
		}
	}

	users, err := s.SeedUsers(opts.Users, opts.SkipBcrypt)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)

	posts, err := s.SeedPosts(users, opts.Posts, opts.MaxDays)
	if err != nil {
		return sum, err
	}
	sum.Posts = len(posts)

	sum.Comments, err = s.SeedComments(users, posts, opts.MaxCommentsPerPost)
	if err != nil {
		return sum, err
	}
	sum.Likes, err = s.SeedLikes(users, posts, opts.LikeChance)
	if err != nil {
		return sum, err
	}
	return sum, nil
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// SeedUsers creates n users with unique emails and nicknames.
func (s *Seeder) SeedUsers(n int, skipBcrypt bool) ([]*models.User, error) {
	if n <= 0 {
		return nil, nil
	}

	password := DefaultPassword
	if !skipBcrypt {
		hashed, err := auth.HashPassword(DefaultPassword)
		if err != nil {
			return nil, err
		}
		password = hashed
	}

	var existing int64
	if err := s.db.Model(&models.User{}).Count(&existing).Error; err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		suffix := fmt.Sprintf("%d", existing+int64(i)+1)
		users = append(users, &models.User{
			Email:        fmt.Sprintf("user%s@example.com", suffix),
			Nickname:     nickname(s.faker.Username(), suffix),
			Password:     password,
			ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID()),
		})
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return users, nil
}

// SeedPosts creates n posts spread across authors and the last maxDays days.
func (s *Seeder) SeedPosts(authors []*models.User, n, maxDays int) ([]*models.Post, error) {
	if n <= 0 || len(authors) == 0 {
		return nil, nil
	}
	if maxDays <= 0 {
		maxDays = 90
	}

	now := time.Now()
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := authors[s.faker.Number(0, len(authors)-1)]
		posts = append(posts, &models.Post{
			Title:     strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), "."),
			Content:   "## " + s.faker.Sentence(4) + "\n\n" + s.faker.Paragraph(2, 3, 10, "\n\n"),
			Thumbnail: fmt.Sprintf("https://picsum.photos/seed/%s/800/450", s.faker.UUID()),
			Views:     int64(s.faker.Number(0, 500)),
			UserID:    author.ID,
			CreatedAt: s.faker.DateRange(now.AddDate(0, 0, -maxDays), now),
		})
	}
	if err := s.db.Omit("User").Create(&posts).Error; err != nil {
		return nil, fmt.Errorf("seed posts: %w", err)
	}
	return posts, nil
}

// SeedComments adds up to maxPerPost comments from random users to each post.
func (s *Seeder) SeedComments(users []*models.User, posts []*models.Post, maxPerPost int) (int, error) {
	if maxPerPost <= 0 || len(users) == 0 || len(posts) == 0 {
		return 0, nil
	}

	var comments []*models.Comment
	for _, post := range posts {
		for i := s.faker.Number(0, maxPerPost); i > 0; i-- {
			comments = append(comments, &models.Comment{
				Content:   s.faker.Sentence(s.faker.Number(4, 16)),
				UserID:    users[s.faker.Number(0, len(users)-1)].ID,
				PostID:    post.ID,
				CreatedAt: s.faker.DateRange(post.CreatedAt, time.Now()),
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := s.db.Omit("User", "Post").CreateInBatches(&comments, 500).Error; err != nil {
		return 0, fmt.Errorf("seed comments: %w", err)
	}
	return len(comments), nil
}

// SeedLikes gives each (user, post) pair a chance percent probability of a like.
func (s *Seeder) SeedLikes(users []*models.User, posts []*models.Post, chance int) (int, error) {
	if chance <= 0 {
		return 0, nil
	}

	var likes []*models.Like
	for _, post := range posts {
		for _, user := range users {
			if s.faker.Number(1, 100) <= chance {
				likes = append(likes, &models.Like{UserID: user.ID, PostID: post.ID})
			}
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	if err := s.db.Omit("User", "Post").CreateInBatches(&likes, 500).Error; err != nil {
		return 0, fmt.Errorf("seed likes: %w", err)
	}
	return len(likes), nil
}

// nickname keeps the generated name within 20 characters including the
// uniqueness suffix.
func nickname(base, suffix string) string {
	base = strings.Map(func(r rune) rune {
		if r == ' ' || r == '@' {
			return -1
		}
		return r
	}, base)
	if limit := 20 - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	if base == "" {
		base = "user"
	}
	return base + suffix
}

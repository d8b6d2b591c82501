package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"sharedepot/internal/database"
	"sharedepot/internal/middleware"
	"sharedepot/internal/models"
	"sharedepot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB connects to TEST_DATABASE_DSN. Concurrent toggles need a real
// connection pool, which the single-connection sqlite fixture cannot give.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := database.Open(postgres.Open(dsn), database.NewGormLogger(middleware.Logger, logger.Silent))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestToggleLike_ConcurrentUsersOnPostgres(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	run := time.Now().UnixNano()

	author := &models.User{Email: fmt.Sprintf("race-author-%d@example.com", run), Nickname: fmt.Sprintf("ra%d", run%1e9), Password: "x"}
	require.NoError(t, db.Create(author).Error)
	post := &models.Post{Title: "race", Content: "race", UserID: author.ID}
	require.NoError(t, db.Create(post).Error)

	const n = 12
	users := make([]*models.User, n)
	for i := range users {
		users[i] = &models.User{Email: fmt.Sprintf("race-%d-%d@example.com", run, i), Nickname: fmt.Sprintf("r%d_%d", run%1e6, i), Password: "x"}
		require.NoError(t, db.Create(users[i]).Error)
	}
	t.Cleanup(func() {
		db.Where("post_id = ?", post.ID).Delete(&models.Like{})
		db.Delete(post)
		for _, u := range append(users, author) {
			db.Delete(u)
		}
	})

	svc := NewLikeService(repository.NewRepositories(db), repository.NewUnitOfWork(db))

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string][]bool, n)
	errs := make(chan error, 2*n)
	for _, u := range users {
		// Each user sends the same first-time toggle twice at once.
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(email string) {
				defer wg.Done()
				status, err := svc.ToggleLike(ctx, post.ID, email)
				if err != nil {
					errs <- err
					return
				}
				if status.UserLiked {
					assert.Positive(t, status.LikesCount)
				}
				mu.Lock()
				results[email] = append(results[email], status.UserLiked)
				mu.Unlock()
			}(u.Email)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("toggle failed: %v", err)
	}

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&rows).Error)
	count, err := svc.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, rows, count)

	for _, u := range users {
		var perUser int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", post.ID, u.ID).Count(&perUser).Error)
		outcomes := results[u.Email]
		require.Len(t, outcomes, 2, u.Email)

		switch perUser {
		case 1:
			// Both inserts raced; the loser converged on the winner's like.
			assert.Equal(t, []bool{true, true}, outcomes, u.Email)
		case 0:
			// The toggles serialised: one liked, the next unliked.
			assert.ElementsMatch(t, []bool{true, false}, outcomes, u.Email)
		default:
			t.Errorf("%s has %d likes on one post", u.Email, perUser)
		}
	}
}

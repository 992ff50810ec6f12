// Package testutil opens isolated stores for tests: an in-memory SQLite
// database with the full schema and a miniredis instance.
package testutil

import (
	"fmt"
	"testing"

	"anoa.com/warbler/internal/bootstrap"
	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/pkg/auth"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Hasher uses the minimum bcrypt cost to keep tests fast.
var Hasher = auth.NewBcryptHasher(bcrypt.MinCost)

// NewDB returns a fresh migrated database that is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a different database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// CreateUser inserts a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()

	hash, err := Hasher.Hash("password")
	require.NoError(t, err)

	user := &entity.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@test.com", username),
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateMessage(t *testing.T, db *gorm.DB, userID uint, text string) *entity.Message {
	t.Helper()

	msg := &entity.Message{Text: text, UserID: userID}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

func Follow(t *testing.T, db *gorm.DB, followerID, followedID uint) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Follow{UserFollowingID: followerID, UserBeingFollowedID: followedID}).Error)
}

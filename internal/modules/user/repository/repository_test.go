package repository_test

import (
	"context"
	"strings"
	"testing"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/modules/user/repository"
	"anoa.com/warbler/internal/testutil"
	"anoa.com/warbler/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(username, email string) *entity.User {
	return &entity.User{Username: username, Email: email, PasswordHash: "hashed"}
}

func TestCreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := newUser("testuser", "test@test.com")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)
	assert.Equal(t, entity.DefaultImageURL, u.ImageURL)

	found, err := repo.FindByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("testuser", "test@test.com")))

	err := repo.Create(ctx, newUser("testuser", "other@test.com"))
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
	assert.Equal(t, "Username already taken", apperror.UserMessage(err))

	err = repo.Create(ctx, newUser("other", "test@test.com"))
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
	assert.Equal(t, "Email already taken", apperror.UserMessage(err))
}

func TestStorageRejectsDuplicates(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(newUser("testuser", "test@test.com")).Error)

	err := db.Create(newUser("testuser", "x@test.com")).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, apperror.FromDB(err), apperror.ErrIntegrityViolation)
}

func TestCreateValidatesLength(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	err := repo.Create(context.Background(), newUser(strings.Repeat("a", 51), "long@test.com"))
	assert.ErrorIs(t, err, apperror.ErrDataValidation)

	err = repo.Create(context.Background(), newUser("", "blank@test.com"))
	assert.ErrorIs(t, err, apperror.ErrDataValidation)
}

func TestUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	a.Username = "alice2"
	require.NoError(t, repo.Update(ctx, a))

	found, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", found.Username)

	found.Username = "bob"
	err = repo.Update(ctx, found)
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
}

func TestDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	msg := testutil.CreateMessage(t, db, a.ID, "hello")
	other := testutil.CreateMessage(t, db, b.ID, "hi")
	testutil.Follow(t, db, a.ID, b.ID)
	testutil.Follow(t, db, b.ID, a.ID)
	require.NoError(t, db.Create(&entity.Like{UserID: b.ID, MessageID: msg.ID}).Error)
	require.NoError(t, db.Create(&entity.Like{UserID: a.ID, MessageID: other.ID}).Error)

	require.NoError(t, repo.Delete(ctx, a.ID))

	var messages, follows, likes int64
	db.Model(&entity.Message{}).Count(&messages)
	db.Model(&entity.Follow{}).Count(&follows)
	db.Model(&entity.Like{}).Count(&likes)
	assert.EqualValues(t, 1, messages)
	assert.Zero(t, follows)
	assert.Zero(t, likes)

	assert.ErrorIs(t, repo.Delete(ctx, a.ID), apperror.ErrNotFound)
}

func TestSearchAndFindByIDs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "Alina")
	c := testutil.CreateUser(t, db, "bob")

	users, err := repo.Search(ctx, "ali")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a.ID, users[0].ID)
	assert.Equal(t, b.ID, users[1].ID)

	users, err = repo.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = repo.FindByIDs(ctx, []uint{c.ID, 999, a.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Equal(t, "alice", users[1].Username)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStats(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	c := testutil.CreateUser(t, db, "carol")
	testutil.CreateMessage(t, db, a.ID, "one")
	testutil.CreateMessage(t, db, a.ID, "two")
	m := testutil.CreateMessage(t, db, b.ID, "three")
	testutil.Follow(t, db, a.ID, b.ID)
	testutil.Follow(t, db, a.ID, c.ID)
	testutil.Follow(t, db, c.ID, a.ID)
	require.NoError(t, db.Create(&entity.Like{UserID: a.ID, MessageID: m.ID}).Error)

	stats, err := repo.Stats(context.Background(), a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Messages)
	assert.EqualValues(t, 2, stats.Following)
	assert.EqualValues(t, 1, stats.Followers)
	assert.EqualValues(t, 1, stats.Likes)
}

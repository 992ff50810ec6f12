package repository_test

import (
	"context"
	"testing"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/modules/like/repository"
	"anoa.com/warbler/internal/testutil"
	"anoa.com/warbler/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestToggle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")
	msg := testutil.CreateMessage(t, db, author.ID, "likeable")

	liked, err := repo.Toggle(ctx, fan.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	ids, err := repo.LikedIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{msg.ID}, ids)

	liked, err = repo.Toggle(ctx, fan.ID, msg.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	ids, err = repo.LikedIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToggleDanglingEndpoints(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewLikeRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "fan")
	msg := testutil.CreateMessage(t, db, u.ID, "hello")

	_, err := repo.Toggle(ctx, u.ID, 9999)
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)

	_, err = repo.Toggle(ctx, 9999, msg.ID)
	assert.ErrorIs(t, err, apperror.ErrIntegrityViolation)
}

func TestStorageRejectsDanglingLike(t *testing.T) {
	db := testutil.NewDB(t)

	err := db.Omit("User", "Message").Create(&entity.Like{UserID: 1, MessageID: 1}).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestLikedMessagesAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	fan1 := testutil.CreateUser(t, db, "fan1")
	fan2 := testutil.CreateUser(t, db, "fan2")
	m1 := testutil.CreateMessage(t, db, author.ID, "one")
	m2 := testutil.CreateMessage(t, db, author.ID, "two")

	for _, uid := range []uint{fan1.ID, fan2.ID} {
		_, err := repo.Toggle(ctx, uid, m1.ID)
		require.NoError(t, err)
	}

	liked, err := repo.LikedMessages(ctx, fan1.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, "one", liked[0].Text)
	assert.Equal(t, "author", liked[0].User.Username)

	counts, err := repo.CountByMessages(ctx, []uint{m1.ID, m2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{m1.ID: 2, m2.ID: 0}, counts)
}

func TestLikesCascadeWithMessage(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewLikeRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")
	msg := testutil.CreateMessage(t, db, author.ID, "short lived")

	_, err := repo.Toggle(ctx, fan.ID, msg.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(&entity.Message{}, msg.ID).Error)

	ids, err := repo.LikedIDs(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

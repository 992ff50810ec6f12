package repository_test

import (
	"context"
	"testing"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/modules/follow/repository"
	"anoa.com/warbler/internal/testutil"
	"anoa.com/warbler/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateAndQuery(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	c := testutil.CreateUser(t, db, "carol")

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	require.NoError(t, repo.Create(ctx, c.ID, b.ID))

	ok, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	followers, err := repo.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := repo.Following(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	ids, err := repo.FollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, ids)
}

func TestCreateRejectsInvalidEdges(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	assert.ErrorIs(t, repo.Create(ctx, a.ID, a.ID), apperror.ErrInvalidInput)
	assert.ErrorIs(t, repo.Create(ctx, a.ID, 9999), apperror.ErrIntegrityViolation)

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	assert.ErrorIs(t, repo.Create(ctx, a.ID, b.ID), apperror.ErrIntegrityViolation)
}

func TestStorageRejectsDanglingFollow(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateUser(t, db, "alice")

	err := db.Create(&entity.Follow{UserFollowingID: a.ID, UserBeingFollowedID: 9999}).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestToggleAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	following, err := repo.Toggle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = repo.Toggle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	removed, err := repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

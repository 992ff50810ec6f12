package service_test

import (
	"context"
	"testing"

	"anoa.com/warbler/internal/modules/follow/repository"
	"anoa.com/warbler/internal/modules/follow/service"
	"anoa.com/warbler/internal/testutil"
	"anoa.com/warbler/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFollowingAndIsFollowedBy(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewFollowService(repository.NewFollowRepository(db))
	ctx := context.Background()

	u1 := testutil.CreateUser(t, db, "testuser1")
	u2 := testutil.CreateUser(t, db, "testuser2")

	check := func(following, followedBy bool) {
		t.Helper()
		got, err := svc.IsFollowing(ctx, u1.ID, u2.ID)
		require.NoError(t, err)
		assert.Equal(t, following, got)

		got, err = svc.IsFollowedBy(ctx, u2.ID, u1.ID)
		require.NoError(t, err)
		assert.Equal(t, followedBy, got)
	}

	check(false, false)

	require.NoError(t, svc.Follow(ctx, u1.ID, u2.ID))
	check(true, true)

	// the reverse direction is independent
	reverse, err := svc.IsFollowing(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	// following twice is a no-op
	require.NoError(t, svc.Follow(ctx, u1.ID, u2.ID))

	require.NoError(t, svc.Unfollow(ctx, u1.ID, u2.ID))
	check(false, false)
}

func TestFollowersAndFollowing(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewFollowService(repository.NewFollowRepository(db))
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Follow(ctx, a.ID, b.ID))

	followers, err := svc.Followers(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, a.ID, followers[0].ID)

	following, err := svc.Following(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestToggleAndSelfFollow(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewFollowService(repository.NewFollowRepository(db))
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	on, err := svc.Toggle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = svc.Toggle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, on)

	_, err = svc.Toggle(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	followRepo "anoa.com/warbler/internal/modules/follow/repository"
	"anoa.com/warbler/internal/modules/message/repository"
	"anoa.com/warbler/internal/modules/message/service"
	"anoa.com/warbler/internal/testutil"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/ratelimiter"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T, db *gorm.DB, rdb *redis.Client, limit time.Duration) service.MessageService {
	t.Helper()
	return service.NewMessageService(
		repository.NewMessageRepository(db),
		followRepo.NewFollowRepository(db),
		rdb,
		limit,
	)
}

func TestCreateRateLimited(t *testing.T) {
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)
	svc := newService(t, db, rdb, 5*time.Second)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "alice")

	msg, err := svc.Create(ctx, u.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, u.ID, msg.UserID)

	_, err = svc.Create(ctx, u.ID, "second")
	var rlErr *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	mr.FastForward(6 * time.Second)
	_, err = svc.Create(ctx, u.ID, "third")
	require.NoError(t, err)
}

func TestCreateRejectedDoesNotConsumeLimit(t *testing.T) {
	db := testutil.NewDB(t)
	_, rdb := testutil.NewRedis(t)
	svc := newService(t, db, rdb, time.Minute)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "alice")

	_, err := svc.Create(ctx, u.ID, strings.Repeat("x", 141))
	assert.ErrorIs(t, err, apperror.ErrDataValidation)

	_, err = svc.Create(ctx, u.ID, "fits")
	require.NoError(t, err)
}

func TestCreateWithoutRedis(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(t, db, nil, time.Minute)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "alice")
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, u.ID, "hello")
		require.NoError(t, err)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(t, db, nil, 0)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	other := testutil.CreateUser(t, db, "other")
	msg := testutil.CreateMessage(t, db, owner.ID, "mine")

	err := svc.Delete(ctx, other.ID, msg.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.GetByID(ctx, msg.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner.ID, msg.ID))
	_, err = svc.GetByID(ctx, msg.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, owner.ID, msg.ID), apperror.ErrNotFound)
}

func TestHomeFeed(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(t, db, nil, 0)
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "me")
	followed := testutil.CreateUser(t, db, "followed")
	stranger := testutil.CreateUser(t, db, "stranger")
	testutil.Follow(t, db, me.ID, followed.ID)

	testutil.CreateMessage(t, db, me.ID, "mine")
	testutil.CreateMessage(t, db, followed.ID, "theirs")
	testutil.CreateMessage(t, db, stranger.ID, "hidden")

	feed, err := svc.HomeFeed(ctx, me.ID, service.FeedLimit)
	require.NoError(t, err)

	var texts []string
	for _, m := range feed {
		texts = append(texts, m.Text)
	}
	assert.ElementsMatch(t, []string{"mine", "theirs"}, texts)

	own, err := svc.ListByUser(ctx, stranger.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "hidden", own[0].Text)
}

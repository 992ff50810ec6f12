package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/modules/like/dto"
	"anoa.com/warbler/internal/modules/like/repository"
	messageRepo "anoa.com/warbler/internal/modules/message/repository"
	"anoa.com/warbler/pkg/apperror"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	countField = "likes"
	countTTL   = 7 * 24 * time.Hour
)

type LikeService interface {
	Toggle(ctx context.Context, userID, messageID uint) (bool, error)
	LikedMessages(ctx context.Context, userID uint) ([]entity.Message, error)
	LikedIDs(ctx context.Context, userID uint) ([]uint, error)
	Count(ctx context.Context, messageID uint) (int64, error)
	Counts(ctx context.Context, messageIDs []uint) (map[uint]int64, error)
	// Annotate attaches like counts and, for a signed-in viewer, whether they liked each message.
	Annotate(ctx context.Context, viewerID uint, messages []entity.Message) ([]dto.MessageView, error)
	// ForgetCounts drops cached counters so the next read rebuilds them.
	ForgetCounts(ctx context.Context, messageIDs []uint)
}

type likeService struct {
	repo        repository.LikeRepository
	messageRepo messageRepo.MessageRepository
	redisClient *redis.Client
}

func NewLikeService(repo repository.LikeRepository, messageRepo messageRepo.MessageRepository, redisClient *redis.Client) LikeService {
	return &likeService{
		repo:        repo,
		messageRepo: messageRepo,
		redisClient: redisClient,
	}
}

func countKey(messageID uint) string {
	return fmt.Sprintf("counts:message:%d", messageID)
}

func (s *likeService) Toggle(ctx context.Context, userID, messageID uint) (bool, error) {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return false, err
	}
	if msg.UserID == userID {
		return false, apperror.New(http.StatusForbidden, "You cannot like your own message.", apperror.ErrForbidden)
	}

	liked, err := s.repo.Toggle(ctx, userID, messageID)
	if err != nil {
		return false, err
	}

	if s.redisClient != nil {
		s.bumpCount(ctx, messageID, liked)
	}
	return liked, nil
}

// bumpCount adjusts a cached counter in place. Missing counters are left
// for the next read to rebuild.
func (s *likeService) bumpCount(ctx context.Context, messageID uint, liked bool) {
	key := countKey(messageID)
	cached, err := s.redisClient.Exists(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Uint("message_id", messageID).Msg("like count cache lookup failed")
		return
	}
	if cached == 0 {
		return
	}

	delta := int64(1)
	if !liked {
		delta = -1
	}

	pipe := s.redisClient.Pipeline()
	pipe.HIncrBy(ctx, key, countField, delta)
	pipe.Expire(ctx, key, countTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// the database is already consistent; drop the counter so it is rebuilt
		log.Warn().Err(err).Uint("message_id", messageID).Msg("like count cache update failed")
		s.redisClient.Del(ctx, key)
	}
}

func (s *likeService) ForgetCounts(ctx context.Context, messageIDs []uint) {
	if s.redisClient == nil || len(messageIDs) == 0 {
		return
	}

	keys := make([]string, len(messageIDs))
	for i, id := range messageIDs {
		keys[i] = countKey(id)
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Int("count", len(keys)).Msg("like count cache invalidation failed")
	}
}

func (s *likeService) LikedMessages(ctx context.Context, userID uint) ([]entity.Message, error) {
	return s.repo.LikedMessages(ctx, userID)
}

func (s *likeService) LikedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.repo.LikedIDs(ctx, userID)
}

func (s *likeService) Count(ctx context.Context, messageID uint) (int64, error) {
	counts, err := s.Counts(ctx, []uint{messageID})
	if err != nil {
		return 0, err
	}
	return counts[messageID], nil
}

func (s *likeService) Counts(ctx context.Context, messageIDs []uint) (map[uint]int64, error) {
	if s.redisClient == nil || len(messageIDs) == 0 {
		return s.repo.CountByMessages(ctx, messageIDs)
	}

	// 1. Try Redis
	pipe := s.redisClient.Pipeline()
	cmds := make([]*redis.StringCmd, len(messageIDs))
	for i, id := range messageIDs {
		cmds[i] = pipe.HGet(ctx, countKey(id), countField)
	}
	// redis.Nil for misses is reported per command
	_, _ = pipe.Exec(ctx)

	counts := make(map[uint]int64, len(messageIDs))
	var misses []uint
	for i, id := range messageIDs {
		val, err := cmds[i].Result()
		if err != nil {
			misses = append(misses, id)
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n < 0 {
			misses = append(misses, id)
			continue
		}
		counts[id] = n
	}
	if len(misses) == 0 {
		return counts, nil
	}

	// 2. Rebuild misses from the database
	fresh, err := s.repo.CountByMessages(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe = s.redisClient.Pipeline()
	for id, n := range fresh {
		counts[id] = n
		pipe.HSet(ctx, countKey(id), countField, n)
		pipe.Expire(ctx, countKey(id), countTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Int("count", len(fresh)).Msg("like count cache rebuild failed")
	}
	return counts, nil
}

func (s *likeService) Annotate(ctx context.Context, viewerID uint, messages []entity.Message) ([]dto.MessageView, error) {
	ids := make([]uint, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	counts, err := s.Counts(ctx, ids)
	if err != nil {
		return nil, err
	}

	liked := map[uint]bool{}
	if viewerID != 0 {
		likedIDs, err := s.repo.LikedIDs(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	views := make([]dto.MessageView, len(messages))
	for i, m := range messages {
		views[i] = dto.MessageView{
			Message: m,
			Likes:   counts[m.ID],
			Liked:   liked[m.ID],
		}
	}
	return views, nil
}

package service

import (
	"context"
	"net/http"
	"time"

	"anoa.com/warbler/internal/entity"
	followRepo "anoa.com/warbler/internal/modules/follow/repository"
	"anoa.com/warbler/internal/modules/message/repository"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/ratelimiter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// FeedLimit caps the home timeline and profile message lists.
	FeedLimit = 100
)

type MessageService interface {
	Create(ctx context.Context, userID uint, text string) (*entity.Message, error)
	GetByID(ctx context.Context, id uint) (*entity.Message, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Message, error)
	Delete(ctx context.Context, userID, messageID uint) error
	HomeFeed(ctx context.Context, userID uint, limit int) ([]entity.Message, error)
}

type messageService struct {
	repo        repository.MessageRepository
	followRepo  followRepo.FollowRepository
	redisClient *redis.Client
	rateLimit   time.Duration
}

func NewMessageService(repo repository.MessageRepository, followRepo followRepo.FollowRepository, redisClient *redis.Client, rateLimit time.Duration) MessageService {
	return &messageService{
		repo:        repo,
		followRepo:  followRepo,
		redisClient: redisClient,
		rateLimit:   rateLimit,
	}
}

func (s *messageService) Create(ctx context.Context, userID uint, text string) (*entity.Message, error) {
	if err := ratelimiter.Enforce(ctx, s.redisClient, userID, ratelimiter.ScopeMessage, s.rateLimit); err != nil {
		return nil, err
	}

	msg := &entity.Message{Text: text, UserID: userID}
	if err := s.repo.Create(ctx, msg); err != nil {
		// a rejected message should not count against the author
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, ratelimiter.ScopeMessage); clearErr != nil {
			log.Warn().Err(clearErr).Uint("user_id", userID).Msg("failed to clear message rate limit")
		}
		return nil, err
	}
	return msg, nil
}

func (s *messageService) GetByID(ctx context.Context, id uint) (*entity.Message, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *messageService) ListByUser(ctx context.Context, userID uint) ([]entity.Message, error) {
	return s.repo.FindByUser(ctx, userID, FeedLimit)
}

// Delete removes a message written by userID.
func (s *messageService) Delete(ctx context.Context, userID, messageID uint) error {
	msg, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return apperror.New(http.StatusForbidden, "Access unauthorized.", apperror.ErrForbidden)
	}
	return s.repo.Delete(ctx, messageID)
}

// HomeFeed returns the newest messages by userID and the users they follow.
func (s *messageService) HomeFeed(ctx context.Context, userID uint, limit int) ([]entity.Message, error) {
	ids, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids = append(ids, userID)

	return s.repo.FindByUsers(ctx, ids, limit)
}

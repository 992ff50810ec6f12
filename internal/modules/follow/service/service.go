package service

import (
	"context"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/modules/follow/repository"
)

type FollowService interface {
	// IsFollowing reports whether userID follows otherID.
	IsFollowing(ctx context.Context, userID, otherID uint) (bool, error)
	// IsFollowedBy reports whether otherID follows userID.
	IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]entity.User, error)
	Following(ctx context.Context, userID uint) ([]entity.User, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	Follow(ctx context.Context, userID, otherID uint) error
	Unfollow(ctx context.Context, userID, otherID uint) error
	Toggle(ctx context.Context, userID, otherID uint) (bool, error)
}

type followService struct {
	repo repository.FollowRepository
}

func NewFollowService(repo repository.FollowRepository) FollowService {
	return &followService{repo: repo}
}

func (s *followService) IsFollowing(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.repo.Exists(ctx, userID, otherID)
}

func (s *followService) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.repo.Exists(ctx, otherID, userID)
}

func (s *followService) Followers(ctx context.Context, userID uint) ([]entity.User, error) {
	return s.repo.Followers(ctx, userID)
}

func (s *followService) Following(ctx context.Context, userID uint) ([]entity.User, error) {
	return s.repo.Following(ctx, userID)
}

func (s *followService) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.repo.FollowingIDs(ctx, userID)
}

// Follow is idempotent.
func (s *followService) Follow(ctx context.Context, userID, otherID uint) error {
	exists, err := s.repo.Exists(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.repo.Create(ctx, userID, otherID)
}

func (s *followService) Unfollow(ctx context.Context, userID, otherID uint) error {
	_, err := s.repo.Delete(ctx, userID, otherID)
	return err
}

func (s *followService) Toggle(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.repo.Toggle(ctx, userID, otherID)
}

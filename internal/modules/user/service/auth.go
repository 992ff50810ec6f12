package service

import (
	"context"
	"errors"
	"strings"

	"anoa.com/warbler/internal/entity"
	search "anoa.com/warbler/internal/modules/search/service"
	"anoa.com/warbler/internal/modules/user/dto"
	"anoa.com/warbler/internal/modules/user/repository"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/auth"
	"github.com/rs/zerolog/log"
)

type AuthService interface {
	Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error)
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}

type authService struct {
	repo      repository.UserRepository
	hasher    auth.Hasher
	meili     search.MeiliSearchService
	dummyHash string
}

func NewAuthService(repo repository.UserRepository, hasher auth.Hasher, meili search.MeiliSearchService) AuthService {
	// Unknown usernames are checked against this hash so both failures cost one bcrypt run.
	dummyHash, err := hasher.Hash("warbler-dummy-password")
	if err != nil {
		log.Error().Err(err).Msg("Failed to prepare dummy password hash")
	}

	return &authService{
		repo:      repo,
		hasher:    hasher,
		meili:     meili,
		dummyHash: dummyHash,
	}
}

// Signup hashes the password and persists the new user.
func (s *authService) Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error) {
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hashed,
		ImageURL:     strings.TrimSpace(input.ImageURL),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.meili != nil {
		if err := s.meili.IndexUser(user); err != nil {
			log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to index user")
		}
	}

	return user, nil
}

// Authenticate returns apperror.ErrInvalidCredentials for an unknown username
// and for a wrong password alike. The username is trimmed as on signup.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.hasher.Check(password, s.dummyHash)
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	return user, nil
}

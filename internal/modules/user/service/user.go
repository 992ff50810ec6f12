package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"anoa.com/warbler/internal/entity"
	search "anoa.com/warbler/internal/modules/search/service"
	"anoa.com/warbler/internal/modules/user/dto"
	"anoa.com/warbler/internal/modules/user/repository"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/auth"
	"anoa.com/warbler/pkg/storage"
	"github.com/rs/zerolog/log"
)

const searchLimit = 50

type UserService interface {
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetStats(ctx context.Context, id uint) (*dto.UserStats, error)
	List(ctx context.Context, query string) ([]entity.User, error)
	UpdateProfile(ctx context.Context, userID uint, input dto.UpdateProfileInput, images dto.ProfileImages) (*entity.User, error)
	Delete(ctx context.Context, userID uint) error
}

// LikeCounts is the slice of the like service that has to follow a user
// deletion, since the database cascade removes their likes.
type LikeCounts interface {
	LikedIDs(ctx context.Context, userID uint) ([]uint, error)
	ForgetCounts(ctx context.Context, messageIDs []uint)
}

type userService struct {
	repo         repository.UserRepository
	hasher       auth.Hasher
	imageStorage storage.ImageStorage
	meili        search.MeiliSearchService
	likes        LikeCounts
}

func NewUserService(repo repository.UserRepository, hasher auth.Hasher, imageStorage storage.ImageStorage, meili search.MeiliSearchService, likes LikeCounts) UserService {
	return &userService{
		repo:         repo,
		hasher:       hasher,
		imageStorage: imageStorage,
		meili:        meili,
		likes:        likes,
	}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) GetStats(ctx context.Context, id uint) (*dto.UserStats, error) {
	return s.repo.Stats(ctx, id)
}

// List returns every user, or the users matching query. Meilisearch is used
// when configured and SQL LIKE otherwise or when the index is unavailable.
func (s *userService) List(ctx context.Context, query string) ([]entity.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.FindAll(ctx)
	}

	if s.meili != nil {
		ids, err := s.meili.SearchUsers(query, searchLimit)
		if err == nil {
			return s.repo.FindByIDs(ctx, ids)
		}
		log.Warn().Err(err).Str("query", query).Msg("User search index unavailable, falling back to database")
	}

	return s.repo.Search(ctx, query)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, input dto.UpdateProfileInput, images dto.ProfileImages) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Check(input.Password, user.PasswordHash) {
		return nil, apperror.ErrInvalidCredentials
	}

	oldImage, oldHeader := user.ImageURL, user.HeaderImageURL

	user.Username = strings.TrimSpace(input.Username)
	user.Email = strings.TrimSpace(input.Email)
	user.ImageURL = valueOrDefault(input.ImageURL, entity.DefaultImageURL)
	user.HeaderImageURL = valueOrDefault(input.HeaderImageURL, entity.DefaultHeaderImageURL)
	user.Bio = normalizeOptional(input.Bio)
	user.Location = normalizeOptional(input.Location)

	var uploaded []string
	discard := func() {
		for _, url := range uploaded {
			s.deleteImage(ctx, url)
		}
	}

	if images.Image != nil {
		url, err := s.upload(ctx, images.Image)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, url)
		user.ImageURL = url
	}
	if images.Header != nil {
		url, err := s.upload(ctx, images.Header)
		if err != nil {
			discard()
			return nil, err
		}
		uploaded = append(uploaded, url)
		user.HeaderImageURL = url
	}

	if err := s.repo.Update(ctx, user); err != nil {
		discard()
		return nil, err
	}

	if oldImage != user.ImageURL {
		s.deleteImage(ctx, oldImage)
	}
	if oldHeader != user.HeaderImageURL {
		s.deleteImage(ctx, oldHeader)
	}

	if s.meili != nil {
		if err := s.meili.IndexUser(user); err != nil {
			log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to reindex user")
		}
	}

	return user, nil
}

func (s *userService) Delete(ctx context.Context, userID uint) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	var liked []uint
	if s.likes != nil {
		if liked, err = s.likes.LikedIDs(ctx, userID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if s.likes != nil {
		s.likes.ForgetCounts(ctx, liked)
	}

	s.deleteImage(ctx, user.ImageURL)
	s.deleteImage(ctx, user.HeaderImageURL)

	if s.meili != nil {
		if err := s.meili.DeleteUser(userID); err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to remove user from search index")
		}
	}
	return nil
}

func (s *userService) upload(ctx context.Context, file *dto.ImageFile) (string, error) {
	if s.imageStorage == nil {
		return "", apperror.New(http.StatusBadRequest, "Image upload is not available", apperror.ErrBadRequest)
	}
	url, err := s.imageStorage.UploadImage(ctx, file.Reader, "", file.FileName)
	if err != nil {
		return "", err
	}
	return url, nil
}

// deleteImage removes a previously uploaded image. Default and external
// images are left alone.
func (s *userService) deleteImage(ctx context.Context, url string) {
	if s.imageStorage == nil || !strings.Contains(url, "res.cloudinary.com") {
		return
	}
	if err := s.imageStorage.DeleteImage(ctx, url); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("url", url).Msg("Failed to delete image")
	}
}

func valueOrDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func normalizeOptional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

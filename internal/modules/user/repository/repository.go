package repository

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/modules/user/dto"
	"anoa.com/warbler/pkg/apperror"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	Search(ctx context.Context, query string) ([]entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context, id uint) (*dto.UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts user after checking lengths and uniqueness. A uniqueness
// race lost at the index is reported the same way as the pre-check.
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := validateUser(user); err != nil {
		return err
	}
	if err := r.checkUnique(ctx, user); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return r.translate(ctx, user, err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	if err := validateUser(user); err != nil {
		return err
	}
	if err := r.checkUnique(ctx, user); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Omit("Messages").Save(user).Error; err != nil {
		return r.translate(ctx, user, err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, apperror.FromDB(err)
	}

	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, apperror.FromDB(err)
	}

	return &user, nil
}

// FindByIDs keeps the order of ids and skips ids that no longer exist.
func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	ordered := make([]entity.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string) ([]entity.User, error) {
	var users []entity.User
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '\\'", pattern).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes the user. Messages, follows and likes go with it through
// the ON DELETE CASCADE foreign keys.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.User{}, id)
	if result.Error != nil {
		return apperror.FromDB(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *userRepository) Stats(ctx context.Context, id uint) (*dto.UserStats, error) {
	var stats dto.UserStats
	if err := r.db.WithContext(ctx).Raw(`SELECT
		(SELECT COUNT(*) FROM messages WHERE user_id = ?) AS messages,
		(SELECT COUNT(*) FROM follows WHERE user_following_id = ?) AS following,
		(SELECT COUNT(*) FROM follows WHERE user_being_followed_id = ?) AS followers,
		(SELECT COUNT(*) FROM likes WHERE user_id = ?) AS likes`,
		id, id, id, id).Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func validateUser(user *entity.User) error {
	if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.Email) == "" || user.PasswordHash == "" {
		return apperror.New(http.StatusUnprocessableEntity, "Username, email and password are required", apperror.ErrDataValidation)
	}
	if utf8.RuneCountInString(user.Username) > entity.UsernameMaxLength {
		return apperror.DataValidation("Username is too long")
	}
	if utf8.RuneCountInString(user.Email) > entity.EmailMaxLength {
		return apperror.DataValidation("Email is too long")
	}
	return nil
}

func (r *userRepository) checkUnique(ctx context.Context, user *entity.User) error {
	taken, err := r.taken(ctx, "username", user.Username, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Integrity("Username already taken")
	}

	taken, err = r.taken(ctx, "email", user.Email, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Integrity("Email already taken")
	}
	return nil
}

func (r *userRepository) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&entity.User{}).Where(column+" = ?", value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// translate maps a failed write to a user-facing error, naming the field
// that collided when the storage layer rejected a duplicate.
func (r *userRepository) translate(ctx context.Context, user *entity.User, err error) error {
	err = apperror.FromDB(err)
	if !errors.Is(err, apperror.ErrIntegrityViolation) {
		return err
	}
	if uniqueErr := r.checkUnique(ctx, user); uniqueErr != nil {
		return uniqueErr
	}
	return apperror.New(http.StatusConflict, "Username or email already taken", err)
}

func escapeLike(s string) string {
	return strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_").Replace(s)
}

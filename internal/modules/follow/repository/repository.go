package repository

import (
	"context"
	"net/http"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/pkg/apperror"
	"gorm.io/gorm"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) (bool, error)
	// Toggle returns true when the edge exists after the call.
	Toggle(ctx context.Context, followerID, followedID uint) (bool, error)
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]entity.User, error)
	Following(ctx context.Context, userID uint) ([]entity.User, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followedID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return create(tx, followerID, followedID)
	})
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Delete(&entity.Follow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Toggle(ctx context.Context, followerID, followedID uint) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Use Find with slice to avoid "record not found" log noise from GORM's First()
		var existing []entity.Follow
		if err := tx.
			Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) > 0 {
			following = false
			return tx.
				Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
				Delete(&entity.Follow{}).Error
		}

		following = true
		return create(tx, followerID, followedID)
	})
	return following, err
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Followers are the users following userID.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_following_id = users.id").
		Where("follows.user_being_followed_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

// Following are the users userID follows.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_being_followed_id = users.id").
		Where("follows.user_following_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("user_following_id = ?", userID).
		Pluck("user_being_followed_id", &ids).Error
	return ids, err
}

// create checks both endpoints before inserting the edge. It must run on tx.
func create(tx *gorm.DB, followerID, followedID uint) error {
	if followerID == followedID {
		return apperror.New(http.StatusBadRequest, "You cannot follow yourself", apperror.ErrInvalidInput)
	}

	var count int64
	if err := tx.Model(&entity.User{}).Where("id IN ?", []uint{followerID, followedID}).Count(&count).Error; err != nil {
		return err
	}
	if count != 2 {
		return apperror.Integrity("User not found")
	}

	follow := &entity.Follow{UserFollowingID: followerID, UserBeingFollowedID: followedID}
	if err := tx.Create(follow).Error; err != nil {
		return apperror.FromDB(err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/pkg/apperror"
	"gorm.io/gorm"
)

type LikeRepository interface {
	// Toggle likes or unlikes a message and reports the new state.
	Toggle(ctx context.Context, userID, messageID uint) (bool, error)
	LikedMessages(ctx context.Context, userID uint) ([]entity.Message, error)
	LikedIDs(ctx context.Context, userID uint) ([]uint, error)
	CountByMessages(ctx context.Context, messageIDs []uint) (map[uint]int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID, messageID uint) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []entity.Like
		if err := tx.Where("user_id = ? AND message_id = ?", userID, messageID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) > 0 {
			return tx.Where("user_id = ? AND message_id = ?", userID, messageID).Delete(&entity.Like{}).Error
		}

		if err := checkEndpoints(tx, userID, messageID); err != nil {
			return err
		}
		if err := tx.Omit("User", "Message").Create(&entity.Like{UserID: userID, MessageID: messageID}).Error; err != nil {
			return apperror.FromDB(err)
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

func (r *likeRepository) LikedMessages(ctx context.Context, userID uint) ([]entity.Message, error) {
	var messages []entity.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (r *likeRepository) LikedIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where("user_id = ?", userID).
		Pluck("message_id", &ids).Error
	return ids, err
}

type messageCount struct {
	MessageID uint
	Total     int64
}

func (r *likeRepository) CountByMessages(ctx context.Context, messageIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(messageIDs))
	if len(messageIDs) == 0 {
		return counts, nil
	}

	var rows []messageCount
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Select("message_id, COUNT(*) AS total").
		Where("message_id IN ?", messageIDs).
		Group("message_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range messageIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.MessageID] = row.Total
	}
	return counts, nil
}

func checkEndpoints(tx *gorm.DB, userID, messageID uint) error {
	var user entity.User
	if err := tx.Select("id").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Integrity("User not found")
		}
		return err
	}

	var msg entity.Message
	if err := tx.Select("id").First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Integrity("Message not found")
		}
		return err
	}
	return nil
}

package repository

import (
	"context"
	"strings"
	"unicode/utf8"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/pkg/apperror"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	FindByID(ctx context.Context, id uint) (*entity.Message, error)
	FindByUser(ctx context.Context, userID uint, limit int) ([]entity.Message, error)
	FindByUsers(ctx context.Context, userIDs []uint, limit int) ([]entity.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create validates the text and author before writing.
func (r *messageRepository) Create(ctx context.Context, msg *entity.Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		return apperror.DataValidation("Message cannot be empty")
	}
	if utf8.RuneCountInString(msg.Text) > entity.MessageMaxLength {
		return apperror.DataValidation("Message too long")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.User{}).Where("id = ?", msg.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperror.Integrity("Author not found")
		}

		if err := tx.Omit("User").Create(msg).Error; err != nil {
			return apperror.FromDB(err)
		}
		return nil
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*entity.Message, error) {
	var msg entity.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&msg).Error; err != nil {
		return nil, apperror.FromDB(err)
	}
	return &msg, nil
}

func (r *messageRepository) FindByUser(ctx context.Context, userID uint, limit int) ([]entity.Message, error) {
	return r.FindByUsers(ctx, []uint{userID}, limit)
}

// FindByUsers returns the newest messages written by any of userIDs.
func (r *messageRepository) FindByUsers(ctx context.Context, userIDs []uint, limit int) ([]entity.Message, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var messages []entity.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", userIDs).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Message{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

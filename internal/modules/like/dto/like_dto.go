package dto

import "anoa.com/warbler/internal/entity"

// MessageView is a message as rendered in a timeline.
type MessageView struct {
	entity.Message
	Likes int64
	Liked bool
}

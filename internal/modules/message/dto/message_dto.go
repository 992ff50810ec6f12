package dto

type CreateMessageInput struct {
	Text string `form:"text" binding:"required"`
}

package handler

import (
	like "anoa.com/warbler/internal/modules/like/service"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/response"
	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	service like.LikeService
}

func NewLikeHandler(service like.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

// AddLike toggles the current user's like on a message.
func (h *LikeHandler) AddLike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	messageID, ok := response.ParamID(c, "message_id")
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	if _, err := h.service.Toggle(c.Request.Context(), userID, messageID); err != nil {
		response.FlashError(c, err)
	}
	response.Redirect(c, "/")
}

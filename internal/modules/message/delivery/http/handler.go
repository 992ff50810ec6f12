package handler

import (
	"errors"
	"fmt"
	"net/http"

	like "anoa.com/warbler/internal/modules/like/service"
	"anoa.com/warbler/internal/modules/message/dto"
	message "anoa.com/warbler/internal/modules/message/service"
	user "anoa.com/warbler/internal/modules/user/service"
	"anoa.com/warbler/internal/session"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/response"
	"anoa.com/warbler/pkg/validator"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service     message.MessageService
	likeService like.LikeService
	userService user.UserService
}

func NewMessageHandler(service message.MessageService, likeService like.LikeService, userService user.UserService) *MessageHandler {
	return &MessageHandler{
		service:     service,
		likeService: likeService,
		userService: userService,
	}
}

// Home shows the landing page to visitors and the timeline to signed-in users.
func (h *MessageHandler) Home(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.HTML(c, http.StatusOK, "home-anon.html", nil)
		return
	}

	ctx := c.Request.Context()
	messages, err := h.service.HomeFeed(ctx, userID, message.FeedLimit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	views, err := h.likeService.Annotate(ctx, userID, messages)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	stats, err := h.userService.GetStats(ctx, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.HTML(c, http.StatusOK, "home.html", gin.H{
		"Messages": views,
		"Stats":    stats,
	})
}

func (h *MessageHandler) NewForm(c *gin.Context) {
	response.HTML(c, http.StatusOK, "messages-new.html", nil)
}

func (h *MessageHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateMessageInput
	if err := c.ShouldBind(&input); err != nil {
		response.Flash(c, session.FlashDanger, validator.FormatValidationError(err))
		response.HTML(c, http.StatusOK, "messages-new.html", nil)
		return
	}

	if _, err := h.service.Create(c.Request.Context(), userID, input.Text); err != nil {
		response.FlashError(c, err)
		response.HTML(c, http.StatusOK, "messages-new.html", gin.H{"Text": input.Text})
		return
	}

	response.Redirect(c, fmt.Sprintf("/users/%d", userID))
}

func (h *MessageHandler) Show(c *gin.Context) {
	messageID, ok := response.ParamID(c, "message_id")
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	ctx := c.Request.Context()
	msg, err := h.service.GetByID(ctx, messageID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	likes, err := h.likeService.Count(ctx, msg.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.HTML(c, http.StatusOK, "messages-show.html", gin.H{
		"Message": msg,
		"Likes":   likes,
	})
}

// Delete removes one of the current user's messages.
func (h *MessageHandler) Delete(c *gin.Context) {
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

	if err := h.service.Delete(c.Request.Context(), userID, messageID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			response.ResponseError(c, err)
			return
		}
		response.FlashError(c, err)
		response.Redirect(c, "/")
		return
	}

	response.Redirect(c, fmt.Sprintf("/users/%d", userID))
}

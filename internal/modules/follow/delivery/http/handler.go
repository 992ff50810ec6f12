package handler

import (
	"fmt"

	follow "anoa.com/warbler/internal/modules/follow/service"
	"anoa.com/warbler/internal/session"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/response"
	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	service follow.FollowService
}

func NewFollowHandler(service follow.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

// Toggle follows or unfollows another user.
func (h *FollowHandler) Toggle(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	otherID, ok := response.ParamID(c, "follow_id")
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	if _, err := h.service.Toggle(c.Request.Context(), userID, otherID); err != nil {
		response.FlashError(c, err)
	}
	response.Redirect(c, fmt.Sprintf("/users/%d/following", userID))
}

func (h *FollowHandler) StopFollowing(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	otherID, ok := response.ParamID(c, "follow_id")
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), userID, otherID); err != nil {
		response.FlashError(c, err)
	} else {
		response.Flash(c, session.FlashInfo, "Unfollowed.")
	}
	response.Redirect(c, fmt.Sprintf("/users/%d/following", userID))
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"anoa.com/warbler/internal/entity"
	follow "anoa.com/warbler/internal/modules/follow/service"
	like "anoa.com/warbler/internal/modules/like/service"
	message "anoa.com/warbler/internal/modules/message/service"
	"anoa.com/warbler/internal/modules/user/dto"
	user "anoa.com/warbler/internal/modules/user/service"
	"anoa.com/warbler/internal/session"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/response"
	"anoa.com/warbler/pkg/validator"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service        user.UserService
	followService  follow.FollowService
	messageService message.MessageService
	likeService    like.LikeService
}

func NewUserHandler(service user.UserService, followService follow.FollowService, messageService message.MessageService, likeService like.LikeService) *UserHandler {
	return &UserHandler{
		service:        service,
		followService:  followService,
		messageService: messageService,
		likeService:    likeService,
	}
}

// Index lists users, optionally filtered by ?q=.
func (h *UserHandler) Index(c *gin.Context) {
	query := c.Query("q")
	users, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.HTML(c, http.StatusOK, "users-index.html", gin.H{
		"Users": users,
		"Query": query,
	})
}

func (h *UserHandler) Show(c *gin.Context) {
	u, data, ok := h.profile(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	messages, err := h.messageService.ListByUser(ctx, u.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	viewerID, _ := response.GetUserID(c)
	views, err := h.likeService.Annotate(ctx, viewerID, messages)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data["Messages"] = views
	response.HTML(c, http.StatusOK, "users-show.html", data)
}

func (h *UserHandler) Following(c *gin.Context) {
	h.relations(c, "Following", h.followService.Following)
}

func (h *UserHandler) Followers(c *gin.Context) {
	h.relations(c, "Followers", h.followService.Followers)
}

func (h *UserHandler) Likes(c *gin.Context) {
	u, data, ok := h.profile(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	messages, err := h.likeService.LikedMessages(ctx, u.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	viewerID, _ := response.GetUserID(c)
	views, err := h.likeService.Annotate(ctx, viewerID, messages)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data["Messages"] = views
	response.HTML(c, http.StatusOK, "users-likes.html", data)
}

func (h *UserHandler) EditForm(c *gin.Context) {
	current := response.CurrentUser(c)
	if current == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}
	response.HTML(c, http.StatusOK, "users-edit.html", gin.H{"User": current})
}

// UpdateProfile always redirects: back to the form on failure, to the
// profile on success.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		response.Flash(c, session.FlashDanger, validator.FormatValidationError(err))
		response.Redirect(c, "/users/profile")
		return
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		response.FlashError(c, err)
		response.Redirect(c, "/users/profile")
		return
	}
	defer closeImage()
	header, closeHeader, err := formImage(c, "header_image")
	if err != nil {
		response.FlashError(c, err)
		response.Redirect(c, "/users/profile")
		return
	}
	defer closeHeader()

	updated, err := h.service.UpdateProfile(c.Request.Context(), userID, input, dto.ProfileImages{Image: image, Header: header})
	if err != nil {
		response.FlashError(c, err)
		response.Redirect(c, "/users/profile")
		return
	}

	response.Flash(c, session.FlashSuccess, "Profile updated.")
	response.Redirect(c, fmt.Sprintf("/users/%d", updated.ID))
}

// Delete removes the current user and everything they own, then logs out.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	session.Logout(c)
	response.Redirect(c, "/signup")
}

// profile loads the user named by :user_id with the data every profile page shows.
func (h *UserHandler) profile(c *gin.Context) (*entity.User, gin.H, bool) {
	id, ok := response.ParamID(c, "user_id")
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return nil, nil, false
	}

	ctx := c.Request.Context()
	u, err := h.service.GetByID(ctx, id)
	if err != nil {
		response.ResponseError(c, err)
		return nil, nil, false
	}
	stats, err := h.service.GetStats(ctx, u.ID)
	if err != nil {
		response.ResponseError(c, err)
		return nil, nil, false
	}

	isFollowing := false
	if viewerID, err := response.GetUserID(c); err == nil && viewerID != u.ID {
		isFollowing, err = h.followService.IsFollowing(ctx, viewerID, u.ID)
		if err != nil {
			response.ResponseError(c, err)
			return nil, nil, false
		}
	}

	return u, gin.H{
		"User":        u,
		"Stats":       stats,
		"IsFollowing": isFollowing,
	}, true
}

func (h *UserHandler) relations(c *gin.Context, title string, list func(ctx context.Context, userID uint) ([]entity.User, error)) {
	u, data, ok := h.profile(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	users, err := list(ctx, u.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	viewerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	followingIDs, err := h.followService.FollowingIDs(ctx, viewerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	followed := make(map[uint]bool, len(followingIDs))
	for _, id := range followingIDs {
		followed[id] = true
	}

	data["Title"] = title
	data["Users"] = users
	data["Followed"] = followed
	response.HTML(c, http.StatusOK, "users-relations.html", data)
}

// formImage opens an optional uploaded file. The returned func closes it.
func formImage(c *gin.Context, field string) (*dto.ImageFile, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, apperror.New(http.StatusBadRequest, "Could not read the uploaded image", err)
	}
	if fh.Size == 0 {
		return nil, func() {}, nil
	}

	file, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &dto.ImageFile{Reader: file, FileName: fh.Filename}, func() { _ = file.Close() }, nil
}

package handler

import (
	"fmt"
	"net/http"

	"anoa.com/warbler/internal/modules/user/dto"
	user "anoa.com/warbler/internal/modules/user/service"
	"anoa.com/warbler/internal/session"
	"anoa.com/warbler/pkg/response"
	"anoa.com/warbler/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service user.AuthService
}

func NewAuthHandler(service user.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) SignupForm(c *gin.Context) {
	response.HTML(c, http.StatusOK, "signup.html", gin.H{"Form": dto.SignupInput{}})
}

// Signup creates the account and logs the new user in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var input dto.SignupInput
	if err := c.ShouldBind(&input); err != nil {
		input.Password = ""
		response.Flash(c, session.FlashDanger, validator.FormatValidationError(err))
		response.HTML(c, http.StatusOK, "signup.html", gin.H{"Form": input})
		return
	}

	created, err := h.service.Signup(c.Request.Context(), input)
	if err != nil {
		input.Password = ""
		response.FlashError(c, err)
		response.HTML(c, http.StatusOK, "signup.html", gin.H{"Form": input})
		return
	}

	session.Login(c, created.ID)
	response.Redirect(c, "/")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	response.HTML(c, http.StatusOK, "login.html", gin.H{"Form": dto.LoginInput{}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.Flash(c, session.FlashDanger, validator.FormatValidationError(err))
		response.HTML(c, http.StatusOK, "login.html", gin.H{"Form": dto.LoginInput{Username: input.Username}})
		return
	}

	authed, err := h.service.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		response.FlashError(c, err)
		response.HTML(c, http.StatusOK, "login.html", gin.H{"Form": dto.LoginInput{Username: input.Username}})
		return
	}

	session.Login(c, authed.ID)
	response.Flash(c, session.FlashSuccess, fmt.Sprintf("Hello, %s!", authed.Username))
	response.Redirect(c, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session.Logout(c)
	response.Flash(c, session.FlashSuccess, "You have been logged out successfully!")
	response.Redirect(c, "/login")
}

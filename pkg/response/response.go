package response

import (
	"errors"
	"net/http"
	"strconv"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/internal/session"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Keys under which the auth middleware stores the signed-in user.
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint, error) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ParamID parses a numeric route parameter.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CurrentUser returns the signed-in user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *entity.User {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*entity.User)
	return user
}

// HTML renders a page with the current user and the pending flashes.
// Rendering consumes the flashes.
func HTML(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = CurrentUser(c)
	data["Flashes"] = session.Default(c).Flashes()
	c.HTML(code, name, data)
}

func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func Flash(c *gin.Context, category, message string) {
	session.AddFlash(c, category, message)
}

// FlashError flashes a message describing err and logs internal failures.
func FlashError(c *gin.Context, err error) {
	if apperror.MapErrorToStatus(err) >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	}
	session.AddFlash(c, session.FlashDanger, Message(err))
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var rlErr *ratelimiter.RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr.Message
	}
	return apperror.UserMessage(err)
}

// ResponseError renders the error page that matches err and aborts the chain.
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	}

	if code == http.StatusNotFound {
		HTML(c, code, "404.html", nil)
	} else {
		HTML(c, code, "error.html", gin.H{"Message": Message(err), "Code": code})
	}
	c.Abort()
}

package middleware

import (
	"errors"

	userRepo "anoa.com/warbler/internal/modules/user/repository"
	"anoa.com/warbler/internal/session"
	"anoa.com/warbler/pkg/apperror"
	"anoa.com/warbler/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
}

func NewAuthMiddleware(userRepo userRepo.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo}
}

// LoadUser resolves curr_user from the session into the request context.
// Ids of users that no longer exist are dropped from the session.
func (m *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Default(c)
		userID, ok := sess.CurrUser()
		if !ok {
			c.Next()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(response.UserIDKey, user.ID)
			c.Set(response.UserKey, user)
		case errors.Is(err, apperror.ErrNotFound):
			sess.ClearCurrUser()
		default:
			log.Error().Err(err).Uint("user_id", userID).Msg("failed to load session user")
		}

		c.Next()
	}
}

// RequireUser sends anonymous visitors back to the landing page.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := response.GetUserID(c); err != nil {
			response.Flash(c, session.FlashDanger, "Access unauthorized.")
			response.Redirect(c, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/accounthub/internal/actorctx"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small interfaces so tests can fake them easily.
type TokenVerifier interface {
	ParseAndValidate(token string) (int64, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserGetter
}

func NewAuthMiddleware(jwt TokenVerifier, users UserGetter) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireUser resolves the bearer token to a full user record and stashes
// it on the context. A bad token is a 401; a token whose subject no
// longer exists is a 404.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))

		if !ok {
			abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		userID, err := m.jwt.ParseAndValidate(raw)

		if err != nil {
			abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), userID)

		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				abortDetail(c, http.StatusNotFound, "User not found")
				return
			}

			abortDetail(c, http.StatusInternalServerError, "Could not validate credentials")
			return
		}

		c.Set(CtxUser, u)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

// RequireActive passes only users with is_active set. It assumes
// RequireUser ran earlier in the chain.
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)

		if !ok {
			abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		if !u.IsActive {
			abortDetail(c, http.StatusForbidden, "Inactive user")
			return
		}

		c.Next()
	}
}

// RequireSuperuser gates admin routes. Deliberately independent of
// RequireActive: an inactive superuser still passes here, exactly like
// the original dependency chain.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)

		if !ok {
			abortDetail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		if !u.IsSuperuser {
			abortDetail(c, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user RequireUser resolved for this request.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)

	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)

	return u, ok
}

// bearerToken extracts the token from "Authorization: bearer <token>".
// The original clients send a lowercase scheme, so matching is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")

	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	if token == "" {
		return "", false
	}

	return token, true
}

func abortDetail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}

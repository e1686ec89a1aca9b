package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const msgIncorrectCredentials = "Incorrect username or password"

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID int64) (string, error)
}

type LastLoginRecorder interface {
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type LoginObserver interface {
	ObserveLogin(ok bool)
}

type LoginHandler struct {
	auth   Authenticator
	tokens TokenIssuer
	users  LastLoginRecorder
	prom   LoginObserver
	log    *slog.Logger
}

func NewLoginHandler(auth Authenticator, tokens TokenIssuer, users LastLoginRecorder, prom LoginObserver, log *slog.Logger) *LoginHandler {
	if log == nil {
		log = slog.Default()
	}

	return &LoginHandler{
		auth:   auth,
		tokens: tokens,
		users:  users,
		prom:   prom,
		log:    log,
	}
}

// LoginRequest is a urlencoded form, OAuth2 password-grant style. The
// fields carry no required tags on purpose: an empty username must fail
// through the authenticator with the same generic message as a wrong
// password.
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *LoginHandler) AccessToken(ctx *gin.Context) {
	var req LoginRequest

	if !BindForm(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	u, err := h.auth.Authenticate(rctx, req.Username, req.Password)

	if err != nil {
		h.observe(false)
		RespondBadRequest(ctx, msgIncorrectCredentials)
		return
	}

	token, err := h.tokens.GenerateAccessToken(u.ID)

	if err != nil {
		h.observe(false)
		h.log.Error("access token generation failed", "user_id", u.ID, "err", err)
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	// only once a token actually went out; best effort, a failed
	// timestamp write must not block the login
	if err := h.users.UpdateLastLogin(rctx, u.ID, time.Now().UTC()); err != nil {
		h.log.Warn("last_login not recorded", "user_id", u.ID, "err", err)
	}

	h.observe(true)

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *LoginHandler) observe(ok bool) {
	if h.prom != nil {
		h.prom.ObserveLogin(ok)
	}
}

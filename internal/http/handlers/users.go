package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/gin-gonic/gin"
)

// response texts carried over from the original service; tests depend on
// the exact wording
const (
	msgDuplicateUser  = "The user with this username already exists in the system."
	msgNoUsersFound   = "No users with such parameters were found"
	msgMissingUser    = "The user with this username does not exist in the system"
	msgNotEnoughPrivs = "The user doesn't have enough privileges"
)

// Keep this small interface so tests can fake it easily.
type UsersStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (user.User, error)
	List(ctx context.Context, skip, limit int) ([]user.User, error)
	Create(ctx context.Context, nu user.NewUser, passwordHash string) (user.User, error)
	Update(ctx context.Context, id int64, patch user.Patch) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	users UsersStore
}

func NewUsersHandler(users UsersStore) *UsersHandler {
	return &UsersHandler{users: users}
}

type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  string  `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=1"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password" binding:"omitempty,min=1"`
}

// Register is the public registration endpoint; CreateUser is the same
// operation behind the superuser gate.
func (h *UsersHandler) Register(ctx *gin.Context) {
	h.createUser(ctx)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	h.createUser(ctx)
}

func (h *UsersHandler) createUser(ctx *gin.Context) {
	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	// pre-check: a collision on either column is enough to reject. The
	// insert below still races safely on the DB constraint.
	_, err := h.users.GetByUsernameOrEmail(rctx, req.Username, req.Email)

	if err == nil {
		RespondConflict(ctx, msgDuplicateUser)
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	created, err := h.users.Create(rctx, user.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, hash)

	if err != nil {
		if errors.Is(err, user.ErrExists) {
			RespondConflict(ctx, msgDuplicateUser)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	skip, ok := queryInt(ctx, "skip", 0)
	if !ok {
		return
	}

	limit, ok := queryInt(ctx, "limit", 25)
	if !ok {
		return
	}

	users, err := h.users.List(ctx.Request.Context(), skip, limit)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	// empty pages report as 400; long-standing behavior the original's
	// clients rely on
	if len(users) == 0 {
		RespondBadRequest(ctx, msgNoUsersFound)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *UsersHandler) GetMe(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Could not validate credentials")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, current)
}

func (h *UsersHandler) UpdateMe(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Could not validate credentials")
		return
	}

	patch, ok := h.bindPatch(ctx)
	if !ok {
		return
	}

	updated, err := h.users.Update(ctx.Request.Context(), current.ID, patch)

	if err != nil {
		h.respondUpdateError(ctx, err, http.StatusBadRequest)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Could not validate credentials")
		return
	}

	// gated inside the handler, and with a 400 rather than a 403; kept
	// exactly as the original behaves
	if !current.IsSuperuser {
		RespondBadRequest(ctx, msgNotEnoughPrivs)
		return
	}

	id, ok := paramID(ctx)
	if !ok {
		return
	}

	u, err := h.users.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondBadRequest(ctx, msgMissingUser)
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *UsersHandler) UpdateUserByID(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	patch, ok := h.bindPatch(ctx)
	if !ok {
		return
	}

	updated, err := h.users.Update(ctx.Request.Context(), id, patch)

	if err != nil {
		h.respondUpdateError(ctx, err, http.StatusNotFound)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) DeleteUserByID(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	rctx := ctx.Request.Context()

	// fetch first: the response carries the deleted user's public fields
	u, err := h.users.GetByID(rctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, msgMissingUser)
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	if err := h.users.Delete(rctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, msgMissingUser)
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) bindPatch(ctx *gin.Context) (user.Patch, bool) {
	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return user.Patch{}, false
	}

	patch := user.Patch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return user.Patch{}, false
		}

		patch.PasswordHash = &hash
	}

	return patch, true
}

func (h *UsersHandler) respondUpdateError(ctx *gin.Context, err error, missingStatus int) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondError(ctx, missingStatus, msgMissingUser)
	case errors.Is(err, user.ErrExists):
		RespondConflict(ctx, msgDuplicateUser)
	default:
		RespondInternal(ctx, "Could not update user")
	}
}

func paramID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondBadRequest(ctx, []FieldError{{
			Field:   "id",
			Rule:    "type",
			Message: "must be an integer",
		}})
		return 0, false
	}

	return id, true
}

func queryInt(ctx *gin.Context, name string, fallback int) (int, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		return fallback, true
	}

	v, err := strconv.Atoi(raw)

	if err != nil || v < 0 {
		RespondBadRequest(ctx, []FieldError{{
			Field:   name,
			Rule:    "type",
			Message: "must be a non-negative integer",
		}})
		return 0, false
	}

	return v, true
}

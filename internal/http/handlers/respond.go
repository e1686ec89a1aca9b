package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every failure body has the same shape: {"detail": ...}. The detail is a
// plain string for most errors and a field list for validation failures.

func RespondError(ctx *gin.Context, status int, detail interface{}) {
	ctx.JSON(status, gin.H{"detail": detail})
}

func RespondBadRequest(ctx *gin.Context, detail interface{}) {
	RespondError(ctx, http.StatusBadRequest, detail)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusConflict, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}

package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload as JSON with a strong ETag over the
// serialized bytes, answering 304 when If-None-Match already has it. Used
// on single-user reads, which clients poll.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	body, err := json.Marshal(payload)

	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`

	ctx.Header("ETag", etag)

	if ifNoneMatchMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	// the bytes are already marshaled; write them as-is
	ctx.Data(status, "application/json; charset=utf-8", body)
}

func ifNoneMatchMatches(headerValue, currentETag string) bool {
	headerValue = strings.TrimSpace(headerValue)

	if headerValue == "" {
		return false
	}

	if headerValue == "*" {
		return true
	}

	for _, candidate := range strings.Split(headerValue, ",") {
		if normalizeETag(candidate) == currentETag {
			return true
		}
	}

	return false
}

// normalizeETag strips whitespace and the weak-validator prefix so
// W/"abc" compares equal to "abc".
func normalizeETag(raw string) string {
	v := strings.TrimSpace(raw)

	if strings.HasPrefix(v, "W/") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "W/"))
	}

	return v
}

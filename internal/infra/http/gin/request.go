package ginserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
)

const (
	HeaderUserID         = "X-User-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

var (
	errUserRequired = errors.New("X-User-ID header is required")
	errBadDate      = errors.New("dates must be YYYY-MM-DD or RFC 3339")
)

// userID reads the caller identity set by the gateway in front of the service.
func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderUserID))
}

func requireUser(c *gin.Context) (string, bool) {
	id := userID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUserRequired.Error(), "code": "unauthenticated"})
		return "", false
	}
	return id, true
}

// parseDate accepts calendar days and full timestamps.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errBadDate
	}
	return t.UTC(), nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
}

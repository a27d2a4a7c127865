package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"market-buzz/src/analysis/core"
	"market-buzz/src/helpers"
	"market-buzz/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// statusFor maps the error family onto HTTP status codes.
func statusFor(err error) int {
	var valErr *helpers.ValidationError
	switch {
	case errors.As(err, &valErr), errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case helpers.IsUpstreamError(err):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

// rangeParam reads ?range=, answering 400 itself when it is invalid.
func (s *FastAPIServer) rangeParam(c *gin.Context) (int, bool) {
	fallback := s.Config.Market.DefaultRangeDays
	if fallback == 0 {
		fallback = utils.DefaultRangeDays
	}

	days, err := utils.ParseRangeDays(c.Query("range"), fallback)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return days, true
}

// -----------------------------------------------------------------------------

func intParam(c *gin.Context, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// -----------------------------------------------------------------------------

func queryOr(c *gin.Context, name, fallback string) string {
	if v := strings.TrimSpace(c.Query(name)); v != "" {
		return v
	}
	return fallback
}

// -----------------------------------------------------------------------------

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

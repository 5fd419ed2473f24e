// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements CronAuth, the shared-secret gate in front of the
// scheduled-job trigger endpoints. The external scheduler presents the
// secret in X-Cron-Secret; nothing behind this middleware runs, and no
// audit row is written, when the gate rejects.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HeaderCronSecret is the header carrying the scheduler's shared secret.
const HeaderCronSecret = "X-Cron-Secret"

// CronAuth returns a Gin middleware that authenticates cron trigger
// requests against the configured shared secret.
//
// An empty configured secret is a deployment error, not an open door: the
// request is rejected with 500 and code "auth_config_error". A missing or
// mismatched header yields 401. Comparison is constant-time.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Writer.Header().Get(requestIDHeader)

		if secret == "" {
			log.Error().Str("request_id", rid).Msg("cron secret not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "auth_config_error",
				"message":    "cron authentication is not configured",
			})
			return
		}

		got := c.GetHeader(HeaderCronSecret)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": rid,
				"code":       "unauthorized",
				"message":    "invalid cron secret",
			})
			return
		}

		c.Next()
	}
}

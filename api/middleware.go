package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	logMsgRequest    = "api: request served"
	logAttrMethod    = "method"
	logAttrPath      = "path"
	logAttrStatus    = "status"
	logAttrDuration  = "duration_ms"
	logAttrRequestID = "request_id"
	logAttrError     = "error"
	logAttrPanic     = "panic"
	logMsgPanic      = "api: recovered from panic"
)

// requestID reuses the caller's X-Request-ID or generates one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func cors(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if s.logger == nil {
			return
		}

		s.logger.InfoContext(
			c.Request.Context(),
			logMsgRequest,
			logAttrMethod, c.Request.Method,
			logAttrPath, c.Request.URL.Path,
			logAttrStatus, c.Writer.Status(),
			logAttrDuration, time.Since(start).Milliseconds(),
			logAttrRequestID, c.GetString(requestIDKey),
		)
	}
}

func (s *server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		if s.logger != nil {
			s.logger.ErrorContext(c.Request.Context(), logMsgPanic, logAttrPanic, recovered, logAttrRequestID, c.GetString(requestIDKey))
		}

		s.writeJSON(c, http.StatusInternalServerError, gin.H{errorKey: serverErrorText})
		c.Abort()
	})
}

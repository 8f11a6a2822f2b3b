package httpserver

import (
	"log/slog"
	"strings"
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
	"cardvault/contexts/account-management/account-service/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-Id"
	headerUserID    = "X-User-Id"
	headerUserRoles = "X-User-Roles"

	identityKey  = "identity"
	requestIDKey = "request_id"
)

// requestID echoes a caller supplied X-Request-Id or generates one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "http request completed",
			"event", "http_request_completed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}

// authenticate resolves the caller once per request. Requests without any credential
// continue anonymously and are rejected by the policy of the use case they reach.
func authenticate(authenticator ports.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := ports.Credential{
			BearerToken: bearerToken(c.GetHeader("Authorization")),
			UserID:      c.GetHeader(headerUserID),
			Roles:       c.GetHeader(headerUserRoles),
		}
		if authenticator == nil || credential == (ports.Credential{}) {
			c.Set(identityKey, entities.Identity{})
			c.Next()
			return
		}

		identity, err := authenticator.Authenticate(c.Request.Context(), credential)
		if err != nil {
			writeDomainError(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) entities.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(entities.Identity); ok {
			return identity
		}
	}
	return entities.Identity{}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/kicks-storefront/pkg/util"
)

// ScopeIDKey holds the shopper scope id in the gin context
const ScopeIDKey = "scope_id"

// ScopeOptions configures the scope cookie
type ScopeOptions struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Secure     bool
}

type ScopeMiddleware struct {
	opts ScopeOptions
}

func NewScopeMiddleware(opts ScopeOptions) *ScopeMiddleware {
	if opts.CookieName == "" {
		opts.CookieName = "kicks_scope"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 365 * 24 * time.Hour
	}
	return &ScopeMiddleware{opts: opts}
}

// Resolve attaches the shopper scope to the request. The scope comes from the
// signed cookie or a Bearer token; a missing, invalid or expired one starts a
// new anonymous scope and sets a fresh cookie.
func (m *ScopeMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := m.tokenFromRequest(c)
		if token != "" {
			claims, err := util.ValidateScopeToken(token, m.opts.Secret)
			if err == nil {
				c.Set(ScopeIDKey, claims.ScopeID)
				c.Next()
				return
			}

			if errors.Is(err, util.ErrExpiredToken) {
				log.Info("Scope token expired, starting a new scope", nil)
			} else {
				log.Warn("Scope token rejected, starting a new scope", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		scopeID := util.NewScopeID()
		issued, err := util.GenerateScopeToken(scopeID, m.opts.Secret, m.opts.MaxAge)
		if err != nil {
			log.Error("Failed to issue scope token", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.opts.CookieName, issued, int(m.opts.MaxAge.Seconds()), "/", "", m.opts.Secure, true)
		c.Set(ScopeIDKey, scopeID)

		log.Debug("New shopper scope issued", map[string]interface{}{"scope_id": scopeID})
		c.Next()
	}
}

// tokenFromRequest reads the cookie, then "Authorization: Bearer", then the
// "scope" query parameter used by websocket clients.
func (m *ScopeMiddleware) tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(m.opts.CookieName); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Query("scope")
}

// GetScopeID extracts the shopper scope id from context
func GetScopeID(c *gin.Context) (string, bool) {
	scopeID, exists := c.Get(ScopeIDKey)
	if !exists {
		return "", false
	}
	id, ok := scopeID.(string)
	return id, ok && id != ""
}

package server

import (
	"strconv"
	"strings"

	authdomain "github.com/bukusaha/bukusaha/internal/auth/domain"
	obscontext "github.com/bukusaha/bukusaha/internal/observability/context"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	HeaderOrg         = "X-Org-ID"
	contextUserIDKey  = "user_id"
	contextSessionKey = "auth_session"
	contextRoleKey    = "org_role"
)

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID.String())
		c.Set(contextSessionKey, session)

		ctx := orgcontext.WithUserID(c.Request.Context(), int64(session.UserID))
		ctx = obscontext.WithActor(ctx, "user", session.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OrgContext resolves the request's active organization. The X-Org-ID
// header wins, then the session's active org, then the configured
// default. Membership is checked before the org is trusted.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.sessionFromContext(c)
		if session == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		orgID := s.resolveOrgID(c, session)
		if orgID == 0 {
			AbortWithError(c, ErrForbidden)
			return
		}

		role, err := s.organizationSvc.MemberRole(c.Request.Context(), orgID, session.UserID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(contextRoleKey, role)

		ctx := orgcontext.WithOrgID(c.Request.Context(), int64(orgID))
		ctx = obscontext.WithOrgID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func (s *Server) resolveOrgID(c *gin.Context, session *authdomain.Session) snowflake.ID {
	if header := strings.TrimSpace(c.GetHeader(HeaderOrg)); header != "" {
		if parsed, err := snowflake.ParseString(header); err == nil && parsed != 0 {
			return parsed
		}
		return 0
	}
	if session.ActiveOrgID != nil && *session.ActiveOrgID != 0 {
		return *session.ActiveOrgID
	}
	return snowflake.ID(s.cfg.DefaultOrgID)
}

func (s *Server) sessionFromContext(c *gin.Context) *authdomain.Session {
	value, ok := c.Get(contextSessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*authdomain.Session)
	return session
}

func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(contextRoleKey)
		if role == "" {
			AbortWithError(c, ErrForbidden)
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

func (s *Server) authorizeOrgAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
		if !ok || orgID == 0 {
			AbortWithError(c, ErrForbidden)
			return
		}
		userID := c.GetString(contextUserIDKey)
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := "user:" + userID
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, orgID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RateLimitLogin throttles credential attempts per client IP before the
// password check runs.
func (s *Server) RateLimitLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.loginLimiter == nil || !s.loginLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.loginLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("login rate limiter unavailable")
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimit throttles by authenticated user, falling back to client IP.
// Disabled when Redis is not configured.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.requestLimiter == nil || !s.requestLimiter.Enabled() {
			c.Next()
			return
		}

		key := c.GetString(contextUserIDKey)
		if key == "" {
			key = c.ClientIP()
		}

		result, err := s.requestLimiter.Allow(c.Request.Context(), key)
		if err != nil {
			// A broken limiter should not take the API down.
			s.log.Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

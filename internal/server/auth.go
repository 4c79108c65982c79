package server

import (
	"net/http"
	"strings"

	authdomain "github.com/bukusaha/bukusaha/internal/auth/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user.View()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user":       result.User,
		"expires_at": result.ExpiresAt,
	}})
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed")
		}
	}
	s.sessions.Clear(c)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "ok"}})
}

func (s *Server) Me(c *gin.Context) {
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

	user, err := s.authsvc.GetUser(c.Request.Context(), session.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload := gin.H{"user": user.View()}
	if session.ActiveOrgID != nil {
		payload["active_org_id"] = session.ActiveOrgID.String()
	}

	c.JSON(http.StatusOK, gin.H{"data": payload})
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (s *Server) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID := c.GetString(contextUserIDKey)
	if userID == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), userID, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "ok"}})
}

func (s *Server) ListUserOrgs(c *gin.Context) {
	session := s.sessionFromContext(c)
	if session == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgs, err := s.organizationSvc.ListForUser(c.Request.Context(), session.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"organizations": orgs}})
}

// UseOrg pins a session to one of the caller's organizations. Later
// requests resolve their org context from the session without needing
// the header.
func (s *Server) UseOrg(c *gin.Context) {
	session := s.sessionFromContext(c)
	if session == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgID, err := snowflake.ParseString(strings.TrimSpace(c.Param("orgId")))
	if err != nil || orgID == 0 {
		AbortWithError(c, newValidationError("orgId", "invalid_id", "invalid organization id"))
		return
	}

	if _, err := s.organizationSvc.MemberRole(c.Request.Context(), orgID, session.UserID); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authsvc.SetActiveOrg(c.Request.Context(), session.ID, orgID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"active_org_id": orgID.String()}})
}

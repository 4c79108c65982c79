package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/bukusaha/bukusaha/internal/audit/domain"
	organizationdomain "github.com/bukusaha/bukusaha/internal/organization/domain"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	"github.com/gin-gonic/gin"
)

type createOrganizationRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session := s.sessionFromContext(c)
	if session == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.organizationSvc.Create(c.Request.Context(), organizationdomain.CreateOrganizationRequest{
		Name:     strings.TrimSpace(req.Name),
		Currency: strings.TrimSpace(req.Currency),
		OwnerID:  session.UserID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCurrentOrganization(c *gin.Context) {
	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.organizationSvc.GetByID(c.Request.Context(), orgID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateOrganizationRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (s *Server) UpdateCurrentOrganization(c *gin.Context) {
	var req updateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.organizationSvc.Update(c.Request.Context(), organizationdomain.UpdateOrganizationRequest{
		ID:       orgID.String(),
		Name:     strings.TrimSpace(req.Name),
		Currency: strings.TrimSpace(req.Currency),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "organization.update",
		TargetType: "organization",
		TargetID:   resp.ID.String(),
		Metadata: map[string]any{
			"name":     resp.Name,
			"currency": resp.Currency,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (s *Server) AddOrganizationMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.AddMember(c.Request.Context(), organizationdomain.AddMemberRequest{
		UserID: strings.TrimSpace(req.UserID),
		Role:   strings.TrimSpace(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "organization.member.add",
		TargetType: "organization_member",
		TargetID:   resp.UserID.String(),
		Metadata: map[string]any{
			"role": resp.Role,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

package handlers

import (
	"context"
	"net/http"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InviteHandler handles team invitations
type InviteHandler struct {
	inviteService service.InviteServiceInterface
}

// NewInviteHandler creates a new invite handler
func NewInviteHandler(inviteService service.InviteServiceInterface) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// MyInvites handles GET /invites
// @Summary My pending invitations
// @Description Pending, unexpired invitations addressed to the caller's email
// @Tags invites
// @Produce json
// @Success 200 {array} service.InviteResponse "Invitations"
// @Security BearerAuth
// @Router /invites [get]
func (h *InviteHandler) MyInvites(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	invites, err := h.inviteService.MyInvites(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invites)
}

// ListTeamInvites handles GET /teams/:id/invites
// @Summary List team invitations
// @Tags invites
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Success 200 {array} service.InviteResponse "Invitations"
// @Failure 403 {object} ErrorResponse "Insufficient role"
// @Security BearerAuth
// @Router /teams/{id}/invites [get]
func (h *InviteHandler) ListTeamInvites(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	teamID, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}

	invites, err := h.inviteService.ListForTeam(c.Request.Context(), actor, teamID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invites)
}

// CreateInvite handles POST /team-invites
// @Summary Invite to a team
// @Description Create an invitation addressed to an email or an open link (owner or admin)
// @Tags invites
// @Accept json
// @Produce json
// @Param invite body service.CreateInviteRequest true "Invitation"
// @Success 201 {object} service.InviteResponse "Invitation created"
// @Failure 403 {object} ErrorResponse "Insufficient role"
// @Failure 404 {object} ErrorResponse "Team not found"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Failure 429 {object} ErrorResponse "Rate limit exceeded"
// @Security BearerAuth
// @Router /team-invites [post]
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	invite, err := h.inviteService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invite)
}

// GetInvite handles GET /team-invites/:id
// @Summary Get invitation
// @Tags invites
// @Produce json
// @Param id path string true "Invitation ID (UUID)"
// @Success 200 {object} service.InviteResponse "Invitation"
// @Failure 403 {object} ErrorResponse "Addressed to someone else"
// @Failure 404 {object} ErrorResponse "Invitation not found"
// @Security BearerAuth
// @Router /team-invites/{id} [get]
func (h *InviteHandler) GetInvite(c *gin.Context) {
	h.withInvite(c, h.inviteService.Get)
}

// AcceptInvite handles POST /invites/:id/accept
// @Summary Accept invitation
// @Description Join the team through an invitation
// @Tags invites
// @Produce json
// @Param id path string true "Invitation ID (UUID)"
// @Success 200 {object} service.InviteResponse "Invitation accepted"
// @Failure 403 {object} ErrorResponse "Addressed to someone else"
// @Failure 404 {object} ErrorResponse "Invitation not found"
// @Failure 409 {object} ErrorResponse "Expired, revoked or used up"
// @Security BearerAuth
// @Router /invites/{id}/accept [post]
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	h.withInvite(c, h.inviteService.Accept)
}

// DeclineInvite handles POST /invites/:id/reject
// @Summary Decline invitation
// @Tags invites
// @Produce json
// @Param id path string true "Invitation ID (UUID)"
// @Success 200 {object} service.InviteResponse "Invitation declined"
// @Failure 403 {object} ErrorResponse "Addressed to someone else"
// @Failure 404 {object} ErrorResponse "Invitation not found"
// @Failure 409 {object} ErrorResponse "No longer pending"
// @Security BearerAuth
// @Router /invites/{id}/reject [post]
func (h *InviteHandler) DeclineInvite(c *gin.Context) {
	h.withInvite(c, h.inviteService.Decline)
}

// RevokeInvite handles POST /team-invites/:id/revoke
// @Summary Revoke invitation
// @Tags invites
// @Produce json
// @Param id path string true "Invitation ID (UUID)"
// @Success 200 {object} service.InviteResponse "Invitation revoked"
// @Failure 403 {object} ErrorResponse "Not allowed"
// @Failure 404 {object} ErrorResponse "Invitation not found"
// @Failure 409 {object} ErrorResponse "No longer pending"
// @Security BearerAuth
// @Router /team-invites/{id}/revoke [post]
func (h *InviteHandler) RevokeInvite(c *gin.Context) {
	h.withInvite(c, h.inviteService.Revoke)
}

type inviteOp func(ctx context.Context, actor service.Actor, inviteID uuid.UUID) (*service.InviteResponse, error)

func (h *InviteHandler) withInvite(c *gin.Context, op inviteOp) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "invitation")
	if !ok {
		return
	}

	invite, err := op(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invite)
}

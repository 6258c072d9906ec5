package handlers

import (
	"net/http"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TeamHandler handles HTTP requests for team operations
type TeamHandler struct {
	teamService service.TeamServiceInterface
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService service.TeamServiceInterface) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// ListTeams handles GET /teams
// @Summary List my teams
// @Description List the teams the caller belongs to
// @Tags teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Number of items per page" default(20)
// @Success 200 {object} service.TeamListResponse "Teams"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /teams [get]
func (h *TeamHandler) ListTeams(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	teams, err := h.teamService.List(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, teams)
}

// CreateTeam handles POST /teams
// @Summary Create a new team
// @Description Create a team; the caller becomes its owner
// @Tags teams
// @Accept json
// @Produce json
// @Param team body service.CreateTeamRequest true "Team data"
// @Success 201 {object} service.TeamResponse "Team created"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

// GetTeam handles GET /teams/:id
// @Summary Get team by ID
// @Description Get a team with its members and projects
// @Tags teams
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Success 200 {object} service.TeamResponse "Team"
// @Failure 400 {object} ErrorResponse "Invalid team ID"
// @Failure 403 {object} ErrorResponse "Not a team member"
// @Failure 404 {object} ErrorResponse "Team not found"
// @Security BearerAuth
// @Router /teams/{id} [get]
func (h *TeamHandler) GetTeam(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}

	team, err := h.teamService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// UpdateTeam handles PUT/PATCH /teams/:id
// @Summary Update team
// @Description Update a team's name or description (owner or admin)
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Param team body service.UpdateTeamRequest true "Fields to update"
// @Success 200 {object} service.TeamResponse "Team updated"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Insufficient role"
// @Failure 404 {object} ErrorResponse "Team not found"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /teams/{id} [put]
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}
	var req service.UpdateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// DeleteTeam handles DELETE /teams/:id
// @Summary Delete team
// @Description Delete a team (owner only)
// @Tags teams
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Success 200 {object} MessageResponse "Team deleted"
// @Failure 400 {object} ErrorResponse "Invalid team ID"
// @Failure 403 {object} ErrorResponse "Only the owner can delete the team"
// @Failure 404 {object} ErrorResponse "Team not found"
// @Security BearerAuth
// @Router /teams/{id} [delete]
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Team deleted successfully"})
}

// LeaveTeam handles POST /teams/:id/leave
// @Summary Leave team
// @Description Leave a team. The owner must transfer ownership first.
// @Tags teams
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Success 200 {object} MessageResponse "Left the team"
// @Failure 403 {object} ErrorResponse "Not a team member"
// @Failure 409 {object} ErrorResponse "Owner cannot leave"
// @Security BearerAuth
// @Router /teams/{id}/leave [post]
func (h *TeamHandler) LeaveTeam(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}

	if err := h.teamService.Leave(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "You have left the team"})
}

// TransferOwnership handles POST /teams/:id/transfer-ownership
// @Summary Transfer ownership
// @Description Make another member the owner; the current owner becomes an admin
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Param body body service.TransferOwnershipRequest true "New owner"
// @Success 200 {object} service.TeamResponse "Ownership transferred"
// @Failure 403 {object} ErrorResponse "Only the owner can transfer ownership"
// @Failure 409 {object} ErrorResponse "Target is not a member or already owner"
// @Security BearerAuth
// @Router /teams/{id}/transfer-ownership [post]
func (h *TeamHandler) TransferOwnership(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}
	var req service.TransferOwnershipRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.TransferOwnership(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// UpdateMemberRole handles PATCH /teams/:id/members/role
// @Summary Change a member's role
// @Description Set a member's role to Admin or Member (owner or admin)
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Param body body service.UpdateMemberRoleRequest true "Member and role"
// @Success 200 {object} service.TeamMemberResponse "Role updated"
// @Failure 403 {object} ErrorResponse "Insufficient role"
// @Failure 404 {object} ErrorResponse "Member not found"
// @Failure 409 {object} ErrorResponse "Owner role cannot change"
// @Security BearerAuth
// @Router /teams/{id}/members/role [patch]
func (h *TeamHandler) UpdateMemberRole(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}
	var req service.UpdateMemberRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.teamService.UpdateMemberRole(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// RemoveMember handles DELETE /teams/:id/members
// @Summary Remove a member
// @Description Remove a member from the team (owner or admin)
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Param body body service.RemoveMemberRequest true "Member to remove"
// @Success 200 {object} MessageResponse "Member removed"
// @Failure 403 {object} ErrorResponse "Insufficient role"
// @Failure 404 {object} ErrorResponse "Member not found"
// @Failure 409 {object} ErrorResponse "Owner cannot be removed"
// @Security BearerAuth
// @Router /teams/{id}/members [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}
	var req service.RemoveMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), actor, id, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Member removed successfully"})
}

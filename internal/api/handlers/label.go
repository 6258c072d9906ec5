package handlers

import (
	"net/http"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// LabelHandler handles HTTP requests for team labels
type LabelHandler struct {
	labelService service.LabelServiceInterface
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(labelService service.LabelServiceInterface) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

// ListTeamLabels handles GET /teams/:id/labels
// @Summary List team labels
// @Tags labels
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Success 200 {array} service.LabelResponse "Labels"
// @Failure 403 {object} ErrorResponse "Not a team member"
// @Security BearerAuth
// @Router /teams/{id}/labels [get]
func (h *LabelHandler) ListTeamLabels(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	teamID, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}

	labels, err := h.labelService.ListByTeam(c.Request.Context(), actor, teamID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, labels)
}

// CreateLabel handles POST /labels
// @Summary Create label
// @Description Create a label in a team (any team member)
// @Tags labels
// @Accept json
// @Produce json
// @Param label body service.CreateLabelRequest true "Label data"
// @Success 201 {object} service.LabelResponse "Label created"
// @Failure 403 {object} ErrorResponse "Not a team member"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /labels [post]
func (h *LabelHandler) CreateLabel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateLabelRequest
	if !bindJSON(c, &req) {
		return
	}

	label, err := h.labelService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, label)
}

// UpdateLabel handles PATCH /labels/:id
// @Summary Update label
// @Tags labels
// @Accept json
// @Produce json
// @Param id path string true "Label ID (UUID)"
// @Param label body service.UpdateLabelRequest true "Fields to update"
// @Success 200 {object} service.LabelResponse "Label updated"
// @Failure 403 {object} ErrorResponse "Not a team member"
// @Failure 404 {object} ErrorResponse "Label not found"
// @Security BearerAuth
// @Router /labels/{id} [patch]
func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "label")
	if !ok {
		return
	}
	var req service.UpdateLabelRequest
	if !bindJSON(c, &req) {
		return
	}

	label, err := h.labelService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, label)
}

// DeleteLabel handles DELETE /labels/:id
// @Summary Delete label
// @Tags labels
// @Produce json
// @Param id path string true "Label ID (UUID)"
// @Success 200 {object} MessageResponse "Label deleted"
// @Failure 403 {object} ErrorResponse "Not a team member"
// @Failure 404 {object} ErrorResponse "Label not found"
// @Security BearerAuth
// @Router /labels/{id} [delete]
func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "label")
	if !ok {
		return
	}

	if err := h.labelService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Label deleted successfully"})
}

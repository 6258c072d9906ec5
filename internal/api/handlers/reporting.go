package handlers

import (
	"net/http"
	"strconv"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportingHandler serves dashboards, search and the audit trail
type ReportingHandler struct {
	dashboardService service.DashboardServiceInterface
	searchService    service.SearchServiceInterface
	auditService     service.AuditServiceInterface
}

// NewReportingHandler creates a new reporting handler
func NewReportingHandler(dashboardService service.DashboardServiceInterface, searchService service.SearchServiceInterface, auditService service.AuditServiceInterface) *ReportingHandler {
	return &ReportingHandler{
		dashboardService: dashboardService,
		searchService:    searchService,
		auditService:     auditService,
	}
}

// UserDashboard handles GET /dashboard
// @Summary Personal dashboard
// @Description Assigned tasks, recent teams and projects, task stats and recent activity
// @Tags dashboard
// @Produce json
// @Success 200 {object} service.UserDashboardResponse "Dashboard"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *ReportingHandler) UserDashboard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.User(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// TeamDashboard handles GET /teams/:id/dashboard
// @Summary Team dashboard
// @Description Task stats and member productivity across the caller's projects in the team
// @Tags dashboard
// @Produce json
// @Param id path string true "Team ID (UUID)"
// @Success 200 {object} service.TeamDashboardResponse "Dashboard"
// @Failure 403 {object} ErrorResponse "Not a team member"
// @Security BearerAuth
// @Router /teams/{id}/dashboard [get]
func (h *ReportingHandler) TeamDashboard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	teamID, ok := uuidParam(c, "id", "team")
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Team(c.Request.Context(), actor, teamID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Search handles GET /search
// @Summary Global search
// @Description Teams, projects and tasks the caller can reach whose name matches q
// @Tags search
// @Produce json
// @Param q query string true "Search text (2-100 characters)"
// @Success 200 {object} service.SearchResponse "Matches"
// @Failure 422 {object} ValidationErrorResponse "Query too short or too long"
// @Security BearerAuth
// @Router /search [get]
func (h *ReportingHandler) Search(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), actor, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// AuditLogs handles GET /audit-logs
// @Summary Audit trail
// @Description History of one entity when entity_type and entity_id are given, otherwise recent activity in the caller's teams
// @Tags audit
// @Produce json
// @Param entity_type query string false "Entity type" Enums(team, project, task)
// @Param entity_id query string false "Entity ID (UUID)"
// @Param limit query int false "Recent entries to return" default(20)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Number of items per page" default(20)
// @Success 200 {object} service.AuditLogListResponse "Entity history"
// @Failure 400 {object} ErrorResponse "Invalid entity ID"
// @Failure 403 {object} ErrorResponse "No access to the entity"
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *ReportingHandler) AuditLogs(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	entityType := c.Query("entity_type")
	if entityType == "" {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 20
		}
		entries, err := h.auditService.Recent(c.Request.Context(), actor, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entityID, err := uuid.Parse(c.Query("entity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid entity ID"})
		return
	}
	page, pageSize := pageParams(c)

	history, err := h.auditService.History(c.Request.Context(), actor, entityType, entityID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

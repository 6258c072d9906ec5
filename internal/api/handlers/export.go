package handlers

import (
	"fmt"
	"net/http"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler streams task exports
type ExportHandler struct {
	exportService service.ExportServiceInterface
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService service.ExportServiceInterface) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportCSV handles GET /tasks/export/csv
// @Summary Export tasks as CSV
// @Tags tasks
// @Produce text/csv
// @Param context query string false "Scope" Enums(global, user, team, project)
// @Param team_id query string false "Team ID (team context)"
// @Param project_id query string false "Project ID (project context)"
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Success 200 {file} file "CSV file"
// @Failure 403 {object} ErrorResponse "No access"
// @Failure 422 {object} ValidationErrorResponse "Invalid filter"
// @Security BearerAuth
// @Router /tasks/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	h.export(c, service.FormatCSV)
}

// ExportPDF handles GET /tasks/export/pdf
// @Summary Export tasks as PDF
// @Tags tasks
// @Produce application/pdf
// @Param context query string false "Scope" Enums(global, user, team, project)
// @Param team_id query string false "Team ID (team context)"
// @Param project_id query string false "Project ID (project context)"
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Success 200 {file} file "PDF file"
// @Failure 403 {object} ErrorResponse "No access"
// @Failure 422 {object} ValidationErrorResponse "Invalid filter"
// @Security BearerAuth
// @Router /tasks/export/pdf [get]
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	h.export(c, service.FormatPDF)
}

func (h *ExportHandler) export(c *gin.Context, format string) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var q service.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query: " + err.Error()})
		return
	}

	file, err := h.exportService.Export(c.Request.Context(), actor, format, &q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttachmentHandler handles file uploads on tasks
type AttachmentHandler struct {
	attachmentService service.AttachmentServiceInterface
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachmentService service.AttachmentServiceInterface) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

func uploadedFiles(headers []*multipart.FileHeader) []service.UploadedFile {
	files := make([]service.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, service.UploadedFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return files
}

// Upload handles POST /task-attachments
// @Summary Upload attachments
// @Description Upload up to 10 files to a task
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Param task_id formData string true "Task ID (UUID)"
// @Param files[] formData file true "Files"
// @Success 201 {array} service.AttachmentResponse "Stored attachments"
// @Failure 400 {object} ErrorResponse "Malformed upload"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 422 {object} ValidationErrorResponse "File rejected"
// @Security BearerAuth
// @Router /task-attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form: " + err.Error()})
		return
	}
	taskID, err := uuid.Parse(c.PostForm("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid task ID"})
		return
	}

	var headers []*multipart.FileHeader
	headers = append(headers, form.File["files[]"]...)
	headers = append(headers, form.File["files"]...)
	items, err := h.attachmentService.Upload(c.Request.Context(), actor, taskID, uploadedFiles(headers))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, items)
}

// ListTaskAttachments handles GET /tasks/:id/attachments
// @Summary List attachments
// @Tags attachments
// @Produce json
// @Param id path string true "Task ID (UUID)"
// @Success 200 {array} service.AttachmentResponse "Attachments"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Security BearerAuth
// @Router /tasks/{id}/attachments [get]
func (h *AttachmentHandler) ListTaskAttachments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id", "task")
	if !ok {
		return
	}

	items, err := h.attachmentService.ListByTask(c.Request.Context(), actor, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// Download handles GET /task-attachments/:id/download
// @Summary Download attachment
// @Tags attachments
// @Produce octet-stream
// @Param id path string true "Attachment ID (UUID)"
// @Success 200 {file} file "File content"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 404 {object} ErrorResponse "Attachment not found"
// @Security BearerAuth
// @Router /task-attachments/{id}/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "attachment")
	if !ok {
		return
	}

	meta, rc, err := h.attachmentService.Download(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, meta.Size, meta.MimeType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", meta.OriginalFilename),
	})
}

// Delete handles DELETE /task-attachments/:id
// @Summary Delete attachment
// @Tags attachments
// @Produce json
// @Param id path string true "Attachment ID (UUID)"
// @Success 200 {object} MessageResponse "Attachment deleted"
// @Failure 403 {object} ErrorResponse "Not allowed"
// @Failure 404 {object} ErrorResponse "Attachment not found"
// @Security BearerAuth
// @Router /task-attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "attachment")
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Attachment deleted successfully"})
}

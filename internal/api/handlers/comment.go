package handlers

import (
	"net/http"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommentHandler handles HTTP requests for task comments
type CommentHandler struct {
	commentService service.CommentServiceInterface
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService service.CommentServiceInterface) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// TaskCommentBody is the body of POST /tasks/:id/comments
type TaskCommentBody struct {
	Comment string     `json:"comment" example:"Looks good to me"`
	ReplyTo *uuid.UUID `json:"reply_to,omitempty"`
}

// ListTaskComments handles GET /tasks/:id/comments
// @Summary List comments
// @Tags comments
// @Produce json
// @Param id path string true "Task ID (UUID)"
// @Success 200 {array} service.CommentResponse "Comments, oldest first"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Security BearerAuth
// @Router /tasks/{id}/comments [get]
func (h *CommentHandler) ListTaskComments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id", "task")
	if !ok {
		return
	}

	comments, err := h.commentService.ListByTask(c.Request.Context(), actor, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// AddTaskComment handles POST /tasks/:id/comments
// @Summary Comment on a task
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Task ID (UUID)"
// @Param comment body TaskCommentBody true "Comment"
// @Success 201 {object} service.CommentResponse "Comment created"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /tasks/{id}/comments [post]
func (h *CommentHandler) AddTaskComment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id", "task")
	if !ok {
		return
	}
	var body TaskCommentBody
	if !bindJSON(c, &body) {
		return
	}

	h.create(c, actor, &service.CreateCommentRequest{TaskID: taskID, Comment: body.Comment, ReplyTo: body.ReplyTo})
}

// CreateComment handles POST /task-comments
// @Summary Create comment
// @Tags comments
// @Accept json
// @Produce json
// @Param comment body service.CreateCommentRequest true "Comment"
// @Success 201 {object} service.CommentResponse "Comment created"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /task-comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	h.create(c, actor, &req)
}

func (h *CommentHandler) create(c *gin.Context, actor service.Actor, req *service.CreateCommentRequest) {
	comment, err := h.commentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment handles PATCH /task-comments/:id
// @Summary Edit comment
// @Description Edit one of your own comments
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID (UUID)"
// @Param comment body service.UpdateCommentRequest true "New text"
// @Success 200 {object} service.CommentResponse "Comment updated"
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Comment not found"
// @Security BearerAuth
// @Router /task-comments/{id} [patch]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "comment")
	if !ok {
		return
	}
	var req service.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment handles DELETE /task-comments/:id
// @Summary Delete comment
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID (UUID)"
// @Success 200 {object} MessageResponse "Comment deleted"
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Comment not found"
// @Security BearerAuth
// @Router /task-comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "comment")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Comment deleted successfully"})
}

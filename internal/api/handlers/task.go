package handlers

import (
	"net/http"
	"strconv"

	"taskboard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	taskService service.TaskServiceInterface
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService service.TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks handles GET /tasks
// @Summary List tasks
// @Description Filtered, sorted and paginated tasks across the caller's projects
// @Tags tasks
// @Produce json
// @Param project_id query string false "Project ID"
// @Param team_id query string false "Team ID"
// @Param status query string false "Status" Enums(Unplanned, Pending, In-Progress, Done)
// @Param priority query string false "Priority" Enums(Low, Medium, High, Critical)
// @Param assignee query string false "Assignee user ID"
// @Param due_date_from query string false "Due date lower bound (YYYY-MM-DD)"
// @Param due_date_to query string false "Due date upper bound (YYYY-MM-DD)"
// @Param search query string false "Name or description contains"
// @Param sort query string false "Sort field" Enums(name, due_date, priority, status, position, created_at, updated_at)
// @Param direction query string false "Sort direction" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Number of items per page" default(20)
// @Success 200 {object} service.TaskListResponse "Tasks"
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 422 {object} ValidationErrorResponse "Invalid filter"
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var q service.TaskListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query: " + err.Error()})
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), actor, &q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// MyTasks handles GET /my-tasks
// @Summary My tasks
// @Description Tasks assigned to the caller
// @Tags tasks
// @Produce json
// @Param include_done query bool false "Include done tasks"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Number of items per page" default(20)
// @Success 200 {object} service.TaskListResponse "Tasks"
// @Security BearerAuth
// @Router /my-tasks [get]
func (h *TaskHandler) MyTasks(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	includeDone, _ := strconv.ParseBool(c.DefaultQuery("include_done", "false"))
	page, pageSize := pageParams(c)

	tasks, err := h.taskService.MyTasks(c.Request.Context(), actor, includeDone, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// CreateTask handles POST /tasks
// @Summary Create a task
// @Description Create a task at the end of its status column
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body service.CreateTaskRequest true "Task data"
// @Success 201 {object} service.TaskResponse "Task created"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 403 {object} ErrorResponse "No access to the project"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask handles GET /tasks/:id
// @Summary Get task by ID
// @Description Get a task with labels, subtasks and assignee
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID (UUID)"
// @Success 200 {object} service.TaskResponse "Task"
// @Failure 400 {object} ErrorResponse "Invalid task ID"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PUT/PATCH /tasks/:id
// @Summary Update task
// @Description Partially update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID (UUID)"
// @Param task body service.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} service.TaskResponse "Task updated"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "task")
	if !ok {
		return
	}
	var req service.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH/PUT /tasks/:id/status
// @Summary Move task
// @Description Change a task's status and optionally its position in the new column
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID (UUID)"
// @Param body body service.UpdateTaskStatusRequest true "Status and position"
// @Success 200 {object} service.TaskResponse "Task moved"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "task")
	if !ok {
		return
	}
	var req service.UpdateTaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ReorderTasks handles POST /tasks/reorder
// @Summary Reorder tasks
// @Description Apply client-computed positions (and optional statuses) to several tasks at once
// @Tags tasks
// @Accept json
// @Produce json
// @Param body body service.ReorderTasksRequest true "New positions"
// @Success 200 {object} MessageResponse "Tasks reordered"
// @Failure 403 {object} ErrorResponse "No access to a touched project"
// @Failure 422 {object} ValidationErrorResponse "Validation failed"
// @Security BearerAuth
// @Router /tasks/reorder [post]
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req service.ReorderTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.taskService.Reorder(c.Request.Context(), actor, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Tasks reordered successfully"})
}

// DeleteTask handles DELETE /tasks/:id
// @Summary Delete task
// @Description Delete a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID (UUID)"
// @Success 200 {object} MessageResponse "Task deleted"
// @Failure 403 {object} ErrorResponse "No access to this task"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "task")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

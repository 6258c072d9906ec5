package service

import (
	"context"
	"fmt"
	"strings"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/logger"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskService handles business logic for tasks, their ordering and status
type TaskService struct {
	repos         *repository.Repositories
	tx            repository.TxManagerInterface
	validator     *validator.Validate
	strictReorder bool
}

// NewTaskService creates a new task service. With strictReorder set, bulk
// reorder requires membership in every project the batch touches.
func NewTaskService(repos *repository.Repositories, tx repository.TxManagerInterface, validator *validator.Validate, strictReorder bool) *TaskService {
	return &TaskService{
		repos:         repos,
		tx:            tx,
		validator:     validator,
		strictReorder: strictReorder,
	}
}

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	ProjectID   uuid.UUID            `json:"project_id" validate:"required"`
	Name        string               `json:"name" validate:"required,max=255"`
	Description string               `json:"description" validate:"max=5000"`
	Status      models.TaskStatus    `json:"status,omitempty" validate:"omitempty,oneof=Unplanned Pending In-Progress Done"`
	Priority    *models.TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High Critical"`
	DueDate     string               `json:"due_date,omitempty" example:"2026-12-31"`
	ParentID    *uuid.UUID           `json:"parent_id,omitempty"`
	AssignedTo  *uuid.UUID           `json:"assigned_to,omitempty"`
	LabelIDs    []uuid.UUID          `json:"labels,omitempty"`
}

// UpdateTaskRequest is a partial update. Absent fields are left unchanged; the
// Clear* flags null out optional fields.
type UpdateTaskRequest struct {
	Name          *string              `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description   *string              `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status        *models.TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=Unplanned Pending In-Progress Done"`
	Position      *int                 `json:"position,omitempty" validate:"omitempty,gte=0"`
	Priority      *models.TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High Critical"`
	ClearPriority bool                 `json:"clear_priority,omitempty"`
	DueDate       *string              `json:"due_date,omitempty"`
	ClearDueDate  bool                 `json:"clear_due_date,omitempty"`
	AssignedTo    *uuid.UUID           `json:"assigned_to,omitempty"`
	ClearAssignee bool                 `json:"clear_assignee,omitempty"`
	LabelIDs      *[]uuid.UUID         `json:"labels,omitempty"`
}

// UpdateTaskStatusRequest moves a task to a status and, optionally, a position
type UpdateTaskStatusRequest struct {
	Status   models.TaskStatus `json:"status" validate:"required,oneof=Unplanned Pending In-Progress Done"`
	Position *int              `json:"position,omitempty" validate:"omitempty,gte=0"`
}

// ReorderItem is one task placement in a bulk reorder
type ReorderItem struct {
	ID       uuid.UUID          `json:"id" validate:"required"`
	Position *int               `json:"position" validate:"required,gte=0"`
	Status   *models.TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=Unplanned Pending In-Progress Done"`
}

// ReorderTasksRequest carries client-computed placements applied verbatim
type ReorderTasksRequest struct {
	Tasks []ReorderItem `json:"tasks" validate:"required,min=1,dive"`
}

// TaskListQuery holds the raw listing filters from the query string
type TaskListQuery struct {
	ProjectID   string `form:"project_id"`
	TeamID      string `form:"team_id"`
	Status      string `form:"status"`
	Priority    string `form:"priority"`
	AssignedTo  string `form:"assignee"`
	DueDateFrom string `form:"due_date_from"`
	DueDateTo   string `form:"due_date_to"`
	Search      string `form:"search"`
	Sort        string `form:"sort"`
	Direction   string `form:"direction"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// TaskResponse represents the response for task operations
type TaskResponse struct {
	ID          uuid.UUID            `json:"id"`
	ProjectID   uuid.UUID            `json:"project_id"`
	ProjectName string               `json:"project_name,omitempty"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	Priority    *models.TaskPriority `json:"priority,omitempty"`
	DueDate     *string              `json:"due_date,omitempty"`
	Position    int                  `json:"position"`
	ParentID    *uuid.UUID           `json:"parent_id,omitempty"`
	CreatedBy   uuid.UUID            `json:"created_by"`
	AssignedTo  *uuid.UUID           `json:"assigned_to,omitempty"`
	Assignee    *UserSummary         `json:"assignee,omitempty"`
	Labels      []LabelResponse      `json:"labels"`
	Subtasks    []TaskResponse       `json:"subtasks,omitempty"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type taskSnapshot struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	DueDate     *string              `json:"due_date"`
	Position    int                  `json:"position"`
	ParentID    *uuid.UUID           `json:"parent_id"`
	AssignedTo  *uuid.UUID           `json:"assigned_to"`
	Labels      []uuid.UUID          `json:"labels"`
}

func snapshotTask(t *models.Task) taskSnapshot {
	return taskSnapshot{
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     formatDate(t.DueDate),
		Position:    t.Position,
		ParentID:    t.ParentID,
		AssignedTo:  t.AssignedTo,
		Labels:      t.LabelIDs(),
	}
}

type placementSnapshot struct {
	Status   models.TaskStatus `json:"status"`
	Position int               `json:"position"`
}

// Create creates a task after the last top-level task of its column
func (s *TaskService) Create(ctx context.Context, actor Actor, req *CreateTaskRequest) (*TaskResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.TaskStatusUnplanned
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate != nil && dueDate.Before(today()) {
		return nil, apperrors.NewValidationError("due_date", "must be today or later")
	}

	project, err := s.loadProject(req.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectCreateTask); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.repos.Tasks.GetByID(*req.ParentID)
		if err != nil && !isRecordNotFound(err) {
			return nil, fmt.Errorf("failed to load parent task: %w", err)
		}
		if parent == nil || parent.ProjectID != project.ID {
			return nil, apperrors.NewValidationError("parent_id", "must be a task in the same project")
		}
		if !parent.IsTopLevel() {
			return nil, apperrors.NewValidationError("parent_id", "must be a top-level task")
		}
	}
	if err := s.checkAssignee(project, req.AssignedTo); err != nil {
		return nil, err
	}
	labels, err := s.resolveLabels(project, req.LabelIDs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Priority:    req.Priority,
		DueDate:     dueDate,
		ParentID:    req.ParentID,
		CreatedBy:   actor.ID,
		AssignedTo:  req.AssignedTo,
		Labels:      labels,
	}
	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		last, err := r.Tasks.MaxPosition(project.ID, status)
		if err != nil {
			return fmt.Errorf("failed to compute task position: %w", err)
		}
		task.Position = last + 1
		if err := r.Tasks.Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionCreated,
			EntityType: models.EntityTask,
			EntityID:   task.ID,
			New:        snapshotTask(task),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).WithEntity(models.EntityTask, task.ID).Info("task created")
	resp := toTaskResponse(task)
	return &resp, nil
}

// Get returns a task with labels, subtasks and assignee
func (s *TaskService) Get(ctx context.Context, actor Actor, taskID uuid.UUID) (*TaskResponse, error) {
	task, _, err := s.loadAccessibleTask(actor, taskID, true)
	if err != nil {
		return nil, err
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

// Update applies a partial update. A status change without an explicit
// position keeps the task's current position.
func (s *TaskService) Update(ctx context.Context, actor Actor, taskID uuid.UUID, req *UpdateTaskRequest) (*TaskResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	task, project, err := s.loadAccessibleTask(actor, taskID, true)
	if err != nil {
		return nil, err
	}

	before := snapshotTask(task)
	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	switch {
	case req.ClearPriority:
		task.Priority = nil
	case req.Priority != nil:
		task.Priority = req.Priority
	}
	switch {
	case req.ClearDueDate:
		task.DueDate = nil
	case req.DueDate != nil:
		d, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = d
	}
	switch {
	case req.ClearAssignee:
		task.AssignedTo = nil
	case req.AssignedTo != nil:
		if err := s.checkAssignee(project, req.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = req.AssignedTo
	}

	var labels []models.Label
	if req.LabelIDs != nil {
		labels, err = s.resolveLabels(project, *req.LabelIDs)
		if err != nil {
			return nil, err
		}
	}

	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Position != nil {
		task.Position = *req.Position
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Tasks.Update(task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if req.LabelIDs != nil {
			if err := r.Tasks.ReplaceLabels(task, labels); err != nil {
				return fmt.Errorf("failed to update task labels: %w", err)
			}
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionUpdated,
			EntityType: models.EntityTask,
			EntityID:   task.ID,
			Old:        before,
			New:        snapshotTask(task),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(task)
}

// UpdateStatus moves a task to a status and position in one step
func (s *TaskService) UpdateStatus(ctx context.Context, actor Actor, taskID uuid.UUID, req *UpdateTaskStatusRequest) (*TaskResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	task, _, err := s.loadAccessibleTask(actor, taskID, false)
	if err != nil {
		return nil, err
	}

	before := placementSnapshot{Status: task.Status, Position: task.Position}
	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		position := task.Position
		if req.Position != nil {
			position = *req.Position
		}
		if err := r.Tasks.UpdatePlacement(task.ID, req.Status, position); err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}
		task.Status = req.Status
		task.Position = position
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionStatusChanged,
			EntityType: models.EntityTask,
			EntityID:   task.ID,
			Old:        before,
			New:        placementSnapshot{Status: task.Status, Position: task.Position},
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(task)
}

// Reorder applies client-submitted placements verbatim in one transaction.
// Positions are not re-derived, so duplicates and gaps are tolerated until the
// next reorder of that column. An omitted status keeps the current one.
func (s *TaskService) Reorder(ctx context.Context, actor Actor, req *ReorderTasksRequest) error {
	if err := validateStruct(s.validator, req); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(req.Tasks))
	for i, item := range req.Tasks {
		ids[i] = item.ID
	}
	tasks, err := s.repos.Tasks.GetByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	missing := map[string]string{}
	for i, item := range req.Tasks {
		if _, ok := byID[item.ID]; !ok {
			missing[fmt.Sprintf("tasks[%d].id", i)] = "task not found"
		}
	}
	if len(missing) > 0 {
		return apperrors.NewFieldsValidationError(missing)
	}

	if s.strictReorder {
		if err := s.authorizeBatch(actor, tasks); err != nil {
			return err
		}
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		for _, item := range req.Tasks {
			task := byID[item.ID]
			status := task.Status
			if item.Status != nil {
				status = *item.Status
			}
			if err := r.Tasks.UpdatePlacement(task.ID, status, *item.Position); err != nil {
				return fmt.Errorf("failed to reorder task %s: %w", task.ID, err)
			}
			if status != task.Status {
				err := recordAudit(r.AuditLogs, AuditEvent{
					Action:     models.AuditActionStatusChanged,
					EntityType: models.EntityTask,
					EntityID:   task.ID,
					Old:        placementSnapshot{Status: task.Status, Position: task.Position},
					New:        placementSnapshot{Status: status, Position: *item.Position},
					Actor:      actor.ID,
				})
				if err != nil {
					return err
				}
			}
			task.Status = status
			task.Position = *item.Position
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).WithField("count", len(req.Tasks)).Debug("tasks reordered")
	return nil
}

// Delete soft-deletes a task
func (s *TaskService) Delete(ctx context.Context, actor Actor, taskID uuid.UUID) error {
	task, _, err := s.loadAccessibleTask(actor, taskID, true)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Tasks.Delete(task.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionDeleted,
			EntityType: models.EntityTask,
			EntityID:   task.ID,
			Old:        snapshotTask(task),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).WithEntity(models.EntityTask, task.ID).Info("task deleted")
	return nil
}

// List returns the tasks of the caller's projects matching the query
func (s *TaskService) List(ctx context.Context, actor Actor, q *TaskListQuery) (*TaskListResponse, error) {
	filter, err := buildTaskFilter(s.repos, actor, q)
	if err != nil {
		return nil, err
	}
	page, pageSize := normalizePage(q.Page, q.PageSize)

	tasks, total, err := s.repos.Tasks.List(filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	items := make([]TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = toTaskResponse(&tasks[i])
	}
	return &TaskListResponse{Tasks: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// MyTasks returns the tasks assigned to the caller, In-Progress first and Done last
func (s *TaskService) MyTasks(ctx context.Context, actor Actor, includeDone bool, page, pageSize int) (*TaskListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	tasks, total, err := s.repos.Tasks.ListAssigned(actor.ID, includeDone, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}

	items := make([]TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = toTaskResponse(&tasks[i])
	}
	return &TaskListResponse{Tasks: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// buildTaskFilter turns raw query values into a repository filter scoped to
// the caller's projects
func buildTaskFilter(repos *repository.Repositories, actor Actor, q *TaskListQuery) (repository.TaskFilter, error) {
	var filter repository.TaskFilter
	fields := map[string]string{}

	parseID := func(field, value string) *uuid.UUID {
		if value == "" {
			return nil
		}
		id, err := uuid.Parse(value)
		if err != nil {
			fields[field] = "must be a valid UUID"
			return nil
		}
		return &id
	}
	filter.ProjectID = parseID("project_id", q.ProjectID)
	filter.TeamID = parseID("team_id", q.TeamID)
	filter.AssignedTo = parseID("assignee", q.AssignedTo)

	if q.Status != "" {
		status := models.TaskStatus(q.Status)
		if !status.IsValid() {
			fields["status"] = "must be one of: Unplanned Pending In-Progress Done"
		} else {
			filter.Status = &status
		}
	}
	if q.Priority != "" {
		priority := models.TaskPriority(q.Priority)
		if !priority.IsValid() {
			fields["priority"] = "must be one of: Low Medium High Critical"
		} else {
			filter.Priority = &priority
		}
	}
	if d, err := parseDate("due_date_from", q.DueDateFrom); err != nil {
		fields["due_date_from"] = "must be a date in YYYY-MM-DD format"
	} else {
		filter.DueDateFrom = d
	}
	if d, err := parseDate("due_date_to", q.DueDateTo); err != nil {
		fields["due_date_to"] = "must be a date in YYYY-MM-DD format"
	} else {
		filter.DueDateTo = d
	}
	if q.Sort != "" {
		if _, ok := repository.TaskSortColumns[q.Sort]; !ok {
			fields["sort"] = "is not a sortable column"
		}
	}
	direction := strings.ToLower(q.Direction)
	if direction != "" && direction != "asc" && direction != "desc" {
		fields["direction"] = "must be one of: asc desc"
	}
	if len(fields) > 0 {
		return filter, apperrors.NewFieldsValidationError(fields)
	}

	filter.Search = strings.TrimSpace(q.Search)
	filter.Sort = q.Sort
	filter.Direction = direction

	projectIDs, err := repos.Projects.IDsForMember(actor.ID)
	if err != nil {
		return filter, fmt.Errorf("failed to resolve accessible projects: %w", err)
	}
	filter.ProjectIDs = projectIDs
	return filter, nil
}

// authorizeBatch checks task access once per distinct project in tasks
func (s *TaskService) authorizeBatch(actor Actor, tasks []models.Task) error {
	seen := make(map[uuid.UUID]bool)
	for i := range tasks {
		projectID := tasks[i].ProjectID
		if seen[projectID] {
			continue
		}
		seen[projectID] = true
		project, err := s.loadProject(projectID)
		if err != nil {
			return err
		}
		if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectTaskAccess); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) loadProject(projectID uuid.UUID) (*models.Project, error) {
	project, err := s.repos.Projects.GetByID(projectID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// loadAccessibleTask loads a task and checks that the caller may work on it
func (s *TaskService) loadAccessibleTask(actor Actor, taskID uuid.UUID, details bool) (*models.Task, *models.Project, error) {
	var task *models.Task
	var err error
	if details {
		task, err = s.repos.Tasks.GetWithDetails(taskID)
	} else {
		task, err = s.repos.Tasks.GetByID(taskID)
	}
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil, apperrors.ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to get task: %w", err)
	}
	project, err := s.loadProject(task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectTaskAccess); err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

func (s *TaskService) checkAssignee(project *models.Project, assignee *uuid.UUID) error {
	if assignee == nil {
		return nil
	}
	member, err := teamMembership(s.repos.TeamMembers, project.TeamID, *assignee)
	if err != nil {
		return err
	}
	if member == nil {
		return apperrors.NewValidationError("assigned_to", "must be a member of the project's team")
	}
	return nil
}

// resolveLabels loads labels by id and requires them all to belong to the project's team
func (s *TaskService) resolveLabels(project *models.Project, ids []uuid.UUID) ([]models.Label, error) {
	if len(ids) == 0 {
		return []models.Label{}, nil
	}
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	labels, err := s.repos.Labels.GetByIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	if len(labels) != len(unique) {
		return nil, apperrors.NewValidationError("labels", "contains an unknown label")
	}
	for _, l := range labels {
		if l.TeamID != project.TeamID {
			return nil, apperrors.NewValidationError("labels", "must belong to the project's team")
		}
	}
	return labels, nil
}

func (s *TaskService) reload(task *models.Task) (*TaskResponse, error) {
	fresh, err := s.repos.Tasks.GetWithDetails(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	resp := toTaskResponse(fresh)
	return &resp, nil
}

func toTaskResponse(t *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     formatDate(t.DueDate),
		Position:    t.Position,
		ParentID:    t.ParentID,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		Assignee:    toUserSummary(t.Assignee),
		Labels:      make([]LabelResponse, len(t.Labels)),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.Project != nil {
		resp.ProjectName = t.Project.Name
	}
	for i := range t.Labels {
		resp.Labels[i] = toLabelResponse(&t.Labels[i])
	}
	if len(t.Subtasks) > 0 {
		resp.Subtasks = make([]TaskResponse, len(t.Subtasks))
		for i := range t.Subtasks {
			resp.Subtasks[i] = toTaskResponse(&t.Subtasks[i])
		}
	}
	return resp
}

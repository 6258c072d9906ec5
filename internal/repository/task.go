package repository

import (
	"fmt"
	"time"

	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskFilter narrows a task listing. ProjectIDs is the access scope and is
// always applied, even when empty.
type TaskFilter struct {
	ProjectIDs  []uuid.UUID
	ProjectID   *uuid.UUID
	TeamID      *uuid.UUID
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssignedTo  *uuid.UUID
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Search      string
	Sort        string
	Direction   string
}

// TaskSortColumns maps accepted sort keys to columns
var TaskSortColumns = map[string]string{
	"updated_at": "tasks.updated_at",
	"created_at": "tasks.created_at",
	"due_date":   "tasks.due_date",
	"name":       "tasks.name",
	"priority":   "tasks.priority",
	"status":     "tasks.status",
	"position":   "tasks.position",
}

// StatusCount is a number of tasks in one status
type StatusCount struct {
	Status models.TaskStatus
	Count  int64
}

// AssigneeCount is a number of tasks per assignee
type AssigneeCount struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Count  int64     `json:"count"`
}

// workRankOrder is the SQL form of TaskStatus.WorkRank
const workRankOrder = `CASE tasks.status WHEN 'In-Progress' THEN 1 WHEN 'Pending' THEN 2 WHEN 'Unplanned' THEN 3 WHEN 'Done' THEN 4 ELSE 5 END`

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a task and links its labels. Label rows themselves are not written.
func (r *TaskRepository) Create(task *models.Task) error {
	return r.db.Omit("Labels.*", "Subtasks", "Assignee", "Project").Create(task).Error
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetWithDetails retrieves a task with labels, subtasks and assignee
func (r *TaskRepository) GetWithDetails(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.
		Preload("Labels").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Assignee").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByIDs retrieves the tasks with the given ids
func (r *TaskRepository) GetByIDs(ids []uuid.UUID) ([]models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []models.Task
	if err := r.db.Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MaxPosition returns the highest position among the top-level tasks of a
// project column, or -1 if there are none. Subtasks never count.
func (r *TaskRepository) MaxPosition(projectID uuid.UUID, status models.TaskStatus) (int, error) {
	var max int
	err := r.db.Model(&models.Task{}).
		Where("project_id = ? AND status = ? AND parent_id IS NULL", projectID, status).
		Select("COALESCE(MAX(position), -1)").
		Scan(&max).Error
	return max, err
}

// Update saves the scalar fields of a task
func (r *TaskRepository) Update(task *models.Task) error {
	return r.db.Omit("Labels", "Subtasks", "Assignee", "Project").Save(task).Error
}

// ReplaceLabels sets the labels of a task to exactly labels
func (r *TaskRepository) ReplaceLabels(task *models.Task, labels []models.Label) error {
	if err := r.db.Model(task).Omit("Labels.*").Association("Labels").Replace(labels); err != nil {
		return err
	}
	task.Labels = labels
	return nil
}

// UpdatePlacement sets status and position of one task
func (r *TaskRepository) UpdatePlacement(id uuid.UUID, status models.TaskStatus, position int) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"position":   position,
		"updated_at": time.Now(),
	}).Error
}

// Delete soft-deletes a task
func (r *TaskRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Task{}, "id = ?", id).Error
}

func (r *TaskRepository) applyFilter(query *gorm.DB, f TaskFilter) *gorm.DB {
	query = query.Where("tasks.project_id IN ?", scopeIDs(f.ProjectIDs))
	if f.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *f.ProjectID)
	}
	if f.TeamID != nil {
		query = query.Where("tasks.project_id IN (?)",
			r.db.Model(&models.Project{}).Select("id").Where("team_id = ?", *f.TeamID))
	}
	if f.Status != nil {
		query = query.Where("tasks.status = ?", *f.Status)
	}
	if f.Priority != nil {
		query = query.Where("tasks.priority = ?", *f.Priority)
	}
	if f.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *f.AssignedTo)
	}
	if f.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *f.DueDateFrom)
	}
	if f.DueDateTo != nil {
		query = query.Where("tasks.due_date <= ?", *f.DueDateTo)
	}
	if f.Search != "" {
		like := containsPattern(f.Search)
		query = query.Where("(tasks.name ILIKE ? ESCAPE '\\' OR tasks.description ILIKE ? ESCAPE '\\')", like, like)
	}
	return query
}

// scopeIDs keeps an empty scope from widening into "no restriction"
func scopeIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return ids
}

func orderClause(sort, direction string) string {
	column, ok := TaskSortColumns[sort]
	if !ok {
		column = TaskSortColumns["updated_at"]
	}
	dir := "DESC"
	if direction == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", column, dir)
}

// List retrieves tasks matching the filter with pagination
func (r *TaskRepository) List(f TaskFilter, limit, offset int) ([]models.Task, int64, error) {
	var tasks []models.Task
	var total int64

	if err := r.applyFilter(r.db.Model(&models.Task{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.applyFilter(r.db.Model(&models.Task{}), f).
		Preload("Labels").
		Preload("Assignee").
		Preload("Project").
		Order(orderClause(f.Sort, f.Direction)).
		Order("tasks.id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListForExport retrieves all tasks matching the filter with project, team,
// assignee and labels loaded
func (r *TaskRepository) ListForExport(f TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	err := r.applyFilter(r.db.Model(&models.Task{}), f).
		Preload("Labels").
		Preload("Assignee").
		Preload("Project").
		Preload("Project.Team").
		Order(orderClause(f.Sort, f.Direction)).
		Order("tasks.id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListAssigned retrieves tasks assigned to a user ordered by work rank then due date
func (r *TaskRepository) ListAssigned(userID uuid.UUID, includeDone bool, limit, offset int) ([]models.Task, int64, error) {
	var tasks []models.Task
	var total int64

	base := func() *gorm.DB {
		q := r.db.Model(&models.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id AND projects.deleted_at IS NULL").
			Where("tasks.assigned_to = ?", userID)
		if !includeDone {
			q = q.Where("tasks.status <> ?", models.TaskStatusDone)
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base().
		Preload("Labels").
		Preload("Project").
		Order(workRankOrder).
		Order("tasks.due_date ASC NULLS LAST").
		Order("tasks.id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// ListBoard retrieves the top-level tasks of a project ordered by position,
// with labels, subtasks and assignee
func (r *TaskRepository) ListBoard(projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("project_id = ? AND parent_id IS NULL", projectID).
		Preload("Labels").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Assignee").
		Order("position ASC").
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// SearchInProjects finds tasks of the given projects whose name or description contains query
func (r *TaskRepository) SearchInProjects(projectIDs []uuid.UUID, query string, limit int) ([]models.Task, error) {
	var tasks []models.Task
	like := containsPattern(query)
	err := r.db.
		Where("project_id IN ?", scopeIDs(projectIDs)).
		Where("name ILIKE ? ESCAPE '\\' OR description ILIKE ? ESCAPE '\\'", like, like).
		Order("updated_at DESC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountByStatus counts tasks per status within the given projects
func (r *TaskRepository) CountByStatus(projectIDs []uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("project_id IN ?", scopeIDs(projectIDs)).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// CountOverdue counts unfinished tasks of the given projects due before day
func (r *TaskRepository) CountOverdue(projectIDs []uuid.UUID, day time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("project_id IN ?", scopeIDs(projectIDs)).
		Where("status <> ? AND due_date < ?", models.TaskStatusDone, day).
		Count(&count).Error
	return count, err
}

// CountAssignedOpen counts unfinished tasks assigned to a user
func (r *TaskRepository) CountAssignedOpen(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("assigned_to = ? AND status <> ?", userID, models.TaskStatusDone).
		Count(&count).Error
	return count, err
}

// CompletedByAssignee counts Done tasks per assignee within the given projects
func (r *TaskRepository) CompletedByAssignee(projectIDs []uuid.UUID, limit int) ([]AssigneeCount, error) {
	var rows []AssigneeCount
	err := r.db.Model(&models.Task{}).
		Select("tasks.assigned_to AS user_id, users.name AS name, COUNT(*) AS count").
		Joins("JOIN users ON users.id = tasks.assigned_to").
		Where("tasks.project_id IN ?", scopeIDs(projectIDs)).
		Where("tasks.status = ?", models.TaskStatusDone).
		Group("tasks.assigned_to, users.name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

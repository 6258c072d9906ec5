package service

import (
	"context"
	"fmt"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/logger"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProjectService handles business logic for projects and project membership
type ProjectService struct {
	repos     *repository.Repositories
	tx        repository.TxManagerInterface
	validator *validator.Validate
}

// NewProjectService creates a new project service
func NewProjectService(repos *repository.Repositories, tx repository.TxManagerInterface, validator *validator.Validate) *ProjectService {
	return &ProjectService{
		repos:     repos,
		tx:        tx,
		validator: validator,
	}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	TeamID      uuid.UUID `json:"team_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=2000"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// AddProjectMemberRequest adds a team member to a project. Role defaults to Member.
type AddProjectMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role,omitempty"`
}

// RemoveProjectMemberRequest names the member to remove
type RemoveProjectMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// ProjectSummary is the compact project shape embedded in other responses
type ProjectSummary struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	Name      string    `json:"name"`
	UpdatedAt string    `json:"updated_at"`
}

// ProjectMemberResponse is one project member with their role
type ProjectMemberResponse struct {
	UserID uuid.UUID          `json:"user_id"`
	Role   models.ProjectRole `json:"role"`
	User   *UserSummary       `json:"user,omitempty"`
}

// ProjectResponse represents the response for project operations
type ProjectResponse struct {
	ID          uuid.UUID               `json:"id"`
	TeamID      uuid.UUID               `json:"team_id"`
	TeamName    string                  `json:"team_name,omitempty"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	CreatedBy   uuid.UUID               `json:"created_by"`
	Members     []ProjectMemberResponse `json:"members,omitempty"`
	CreatedAt   string                  `json:"created_at"`
	UpdatedAt   string                  `json:"updated_at"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// BoardColumn is one status column of the kanban board
type BoardColumn struct {
	Status models.TaskStatus `json:"status"`
	Tasks  []TaskResponse    `json:"tasks"`
}

// BoardResponse is the kanban view of a project
type BoardResponse struct {
	Project ProjectResponse `json:"project"`
	Columns []BoardColumn   `json:"columns"`
}

type projectSnapshot struct {
	TeamID      uuid.UUID `json:"team_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   uuid.UUID `json:"created_by"`
}

func snapshotProject(p *models.Project) projectSnapshot {
	return projectSnapshot{TeamID: p.TeamID, Name: p.Name, Description: p.Description, CreatedBy: p.CreatedBy}
}

type projectMemberSnapshot struct {
	UserID uuid.UUID          `json:"user_id"`
	Role   models.ProjectRole `json:"role"`
}

// Create creates a project in a team the caller belongs to. The caller becomes its Lead.
func (s *ProjectService) Create(ctx context.Context, actor Actor, req *CreateProjectRequest) (*ProjectResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	if _, err := s.repos.Teams.GetByID(req.TeamID); err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to verify team: %w", err)
	}
	if _, err := authorizeTeam(s.repos.TeamMembers, req.TeamID, actor.ID, policy.TeamCreateProject); err != nil {
		return nil, err
	}

	project := &models.Project{
		TeamID:      req.TeamID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
	}
	err := s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Projects.Create(project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		lead := &models.ProjectMember{ProjectID: project.ID, UserID: actor.ID, Role: models.ProjectRoleLead}
		if err := r.ProjectMembers.Create(lead); err != nil {
			return fmt.Errorf("failed to add project lead: %w", err)
		}
		project.Members = []models.ProjectMember{*lead}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionCreated,
			EntityType: models.EntityProject,
			EntityID:   project.ID,
			New:        snapshotProject(project),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).WithEntity(models.EntityProject, project.ID).Info("project created")
	resp := toProjectResponse(project)
	return &resp, nil
}

// List returns the projects the caller is a member of, most recently updated first
func (s *ProjectService) List(ctx context.Context, actor Actor, page, pageSize int) (*ProjectListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	projects, total, err := s.repos.Projects.ListForUser(actor.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	items := make([]ProjectResponse, len(projects))
	for i := range projects {
		items[i] = toProjectResponse(&projects[i])
	}
	return &ProjectListResponse{Projects: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns a project with its members
func (s *ProjectService) Get(ctx context.Context, actor Actor, projectID uuid.UUID) (*ProjectResponse, error) {
	project, err := s.repos.Projects.GetWithDetails(projectID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectView); err != nil {
		return nil, err
	}
	resp := toProjectResponse(project)
	return &resp, nil
}

// Update changes the name or description of a project
func (s *ProjectService) Update(ctx context.Context, actor Actor, projectID uuid.UUID, req *UpdateProjectRequest) (*ProjectResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	project, err := s.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectUpdate); err != nil {
		return nil, err
	}

	before := snapshotProject(project)
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Projects.Update(project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionUpdated,
			EntityType: models.EntityProject,
			EntityID:   project.ID,
			Old:        before,
			New:        snapshotProject(project),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

// Delete archives a project. Creator only.
func (s *ProjectService) Delete(ctx context.Context, actor Actor, projectID uuid.UUID) error {
	project, err := s.loadProject(projectID)
	if err != nil {
		return err
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectDelete); err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Projects.Delete(projectID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionDeleted,
			EntityType: models.EntityProject,
			EntityID:   projectID,
			Old:        snapshotProject(project),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).WithEntity(models.EntityProject, projectID).Info("project archived")
	return nil
}

// Restore brings back an archived project. Creator only.
func (s *ProjectService) Restore(ctx context.Context, actor Actor, projectID uuid.UUID) (*ProjectResponse, error) {
	project, err := s.repos.Projects.GetByIDWithArchived(projectID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectRestore); err != nil {
		return nil, err
	}
	if !project.DeletedAt.Valid {
		return nil, apperrors.ErrProjectNotArchived
	}

	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.Projects.Restore(projectID); err != nil {
			return fmt.Errorf("failed to restore project: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionRestored,
			EntityType: models.EntityProject,
			EntityID:   projectID,
			New:        snapshotProject(project),
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	project.DeletedAt.Valid = false
	resp := toProjectResponse(project)
	return &resp, nil
}

// AddMember adds a member of the owning team to the project
func (s *ProjectService) AddMember(ctx context.Context, actor Actor, projectID uuid.UUID, req *AddProjectMemberRequest) (*ProjectMemberResponse, error) {
	if err := validateStruct(s.validator, req); err != nil {
		return nil, err
	}
	role := models.ProjectRoleMember
	if req.Role != "" {
		parsed, ok := models.ParseProjectRole(req.Role)
		if !ok {
			return nil, apperrors.NewValidationError("role", "must be one of: Lead TechnicalLead Member")
		}
		role = parsed
	}

	project, err := s.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectAddMember); err != nil {
		return nil, err
	}

	targetTeam, err := teamMembership(s.repos.TeamMembers, project.TeamID, req.UserID)
	if err != nil {
		return nil, err
	}
	if targetTeam == nil {
		return nil, apperrors.ErrTargetNotTeamMember
	}
	existing, err := projectMembership(s.repos.ProjectMembers, projectID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrProjectMemberExists
	}

	member := &models.ProjectMember{ProjectID: projectID, UserID: req.UserID, Role: role}
	err = s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.ProjectMembers.Create(member); err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrProjectMemberExists
			}
			return fmt.Errorf("failed to add project member: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionMemberAdded,
			EntityType: models.EntityProject,
			EntityID:   projectID,
			New:        projectMemberSnapshot{UserID: member.UserID, Role: member.Role},
			Actor:      actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	member.User = targetTeam.User
	resp := toProjectMemberResponse(member)
	return &resp, nil
}

// RemoveMember removes a member from the project. The creator cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, actor Actor, projectID uuid.UUID, req *RemoveProjectMemberRequest) error {
	if err := validateStruct(s.validator, req); err != nil {
		return err
	}
	project, err := s.loadProject(projectID)
	if err != nil {
		return err
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectRemoveMember); err != nil {
		return err
	}
	if req.UserID == project.CreatedBy {
		return apperrors.ErrCannotRemoveCreator
	}

	target, err := projectMembership(s.repos.ProjectMembers, projectID, req.UserID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.ErrTargetNotProjectMember
	}

	return s.tx.WithinTx(ctx, func(r *repository.Repositories) error {
		if err := r.ProjectMembers.Delete(target.ID); err != nil {
			return fmt.Errorf("failed to remove project member: %w", err)
		}
		return recordAudit(r.AuditLogs, AuditEvent{
			Action:     models.AuditActionMemberRemoved,
			EntityType: models.EntityProject,
			EntityID:   projectID,
			Old:        projectMemberSnapshot{UserID: target.UserID, Role: target.Role},
			Actor:      actor.ID,
		})
	})
}

// Board returns the top-level tasks of a project grouped by status
func (s *ProjectService) Board(ctx context.Context, actor Actor, projectID uuid.UUID) (*BoardResponse, error) {
	project, err := s.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectTaskAccess); err != nil {
		return nil, err
	}

	tasks, err := s.repos.Tasks.ListBoard(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}

	byStatus := make(map[models.TaskStatus][]TaskResponse, len(models.AllTaskStatuses))
	for i := range tasks {
		byStatus[tasks[i].Status] = append(byStatus[tasks[i].Status], toTaskResponse(&tasks[i]))
	}
	columns := make([]BoardColumn, len(models.AllTaskStatuses))
	for i, status := range models.AllTaskStatuses {
		col := byStatus[status]
		if col == nil {
			col = []TaskResponse{}
		}
		columns[i] = BoardColumn{Status: status, Tasks: col}
	}

	return &BoardResponse{Project: toProjectResponse(project), Columns: columns}, nil
}

func (s *ProjectService) loadProject(projectID uuid.UUID) (*models.Project, error) {
	project, err := s.repos.Projects.GetByID(projectID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func toProjectMemberResponse(m *models.ProjectMember) ProjectMemberResponse {
	return ProjectMemberResponse{UserID: m.UserID, Role: m.Role, User: toUserSummary(m.User)}
}

func toProjectSummary(p *models.Project) ProjectSummary {
	return ProjectSummary{ID: p.ID, TeamID: p.TeamID, Name: p.Name, UpdatedAt: formatTime(p.UpdatedAt)}
}

func toProjectResponse(p *models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		TeamID:      p.TeamID,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
	if p.Team != nil {
		resp.TeamName = p.Team.Name
	}
	if len(p.Members) > 0 {
		resp.Members = make([]ProjectMemberResponse, len(p.Members))
		for i := range p.Members {
			resp.Members[i] = toProjectMemberResponse(&p.Members[i])
		}
	}
	return resp
}

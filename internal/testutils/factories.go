package testutils

import (
	"time"

	"taskboard-backend/internal/database/models"

	"github.com/google/uuid"
)

func newBase() models.BaseModel {
	now := time.Now().UTC()
	return models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func newSoftDelete() models.SoftDeleteModel {
	return models.SoftDeleteModel{BaseModel: newBase()}
}

// UserFactory provides methods to create test User data
type UserFactory struct{}

// NewUserFactory creates a new UserFactory
func NewUserFactory() *UserFactory {
	return &UserFactory{}
}

// Create creates a test User with unique username and email
func (f *UserFactory) Create() *models.User {
	base := newSoftDelete()
	suffix := base.ID.String()[:8]
	return &models.User{
		SoftDeleteModel: base,
		Name:            "Test User " + suffix,
		Username:        "user_" + suffix,
		Email:           "user_" + suffix + "@test.com",
		PasswordHash:    "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z4bHp3VYvF1y5Z5a1Z5a1Z5a",
		Role:            models.UserRoleMember,
	}
}

// WithEmail sets a custom email for the user
func (f *UserFactory) WithEmail(email string) *models.User {
	user := f.Create()
	user.Email = email
	return user
}

// TeamFactory provides methods to create test Team data
type TeamFactory struct{}

// NewTeamFactory creates a new TeamFactory
func NewTeamFactory() *TeamFactory {
	return &TeamFactory{}
}

// Create creates a test Team owned by creator
func (f *TeamFactory) Create(creator uuid.UUID) *models.Team {
	return &models.Team{
		SoftDeleteModel: newSoftDelete(),
		Name:            "Test Team",
		Description:     "A team for testing",
		CreatedBy:       creator,
	}
}

// Member creates a membership row for user in team with role
func (f *TeamFactory) Member(teamID, userID uuid.UUID, role models.TeamRole) *models.TeamMember {
	return &models.TeamMember{
		BaseModel: newBase(),
		TeamID:    teamID,
		UserID:    userID,
		TeamRole:  role,
	}
}

// ProjectFactory provides methods to create test Project data
type ProjectFactory struct{}

// NewProjectFactory creates a new ProjectFactory
func NewProjectFactory() *ProjectFactory {
	return &ProjectFactory{}
}

// Create creates a test Project in team
func (f *ProjectFactory) Create(teamID, creator uuid.UUID) *models.Project {
	return &models.Project{
		SoftDeleteModel: newSoftDelete(),
		TeamID:          teamID,
		Name:            "Test Project",
		Description:     "A project for testing",
		CreatedBy:       creator,
	}
}

// Member creates a project membership row
func (f *ProjectFactory) Member(projectID, userID uuid.UUID, role models.ProjectRole) *models.ProjectMember {
	return &models.ProjectMember{
		BaseModel: newBase(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
}

// TaskFactory provides methods to create test Task data
type TaskFactory struct{}

// NewTaskFactory creates a new TaskFactory
func NewTaskFactory() *TaskFactory {
	return &TaskFactory{}
}

// Create creates an Unplanned task at position 0
func (f *TaskFactory) Create(projectID, creator uuid.UUID) *models.Task {
	return &models.Task{
		SoftDeleteModel: newSoftDelete(),
		ProjectID:       projectID,
		Name:            "Test Task",
		Status:          models.TaskStatusUnplanned,
		CreatedBy:       creator,
	}
}

// InColumn creates a task with the given status and position
func (f *TaskFactory) InColumn(projectID, creator uuid.UUID, status models.TaskStatus, position int) *models.Task {
	task := f.Create(projectID, creator)
	task.Status = status
	task.Position = position
	return task
}

// LabelFactory provides methods to create test Label data
type LabelFactory struct{}

// NewLabelFactory creates a new LabelFactory
func NewLabelFactory() *LabelFactory {
	return &LabelFactory{}
}

// Create creates a label in team
func (f *LabelFactory) Create(teamID, creator uuid.UUID, name string) *models.Label {
	return &models.Label{
		SoftDeleteModel: newSoftDelete(),
		TeamID:          teamID,
		Name:            name,
		CreatedBy:       creator,
	}
}

// InviteFactory provides methods to create test TeamInvite data
type InviteFactory struct{}

// NewInviteFactory creates a new InviteFactory
func NewInviteFactory() *InviteFactory {
	return &InviteFactory{}
}

// Create creates a pending open-link invite valid for a week
func (f *InviteFactory) Create(teamID, creator uuid.UUID, usageLimit int) *models.TeamInvite {
	return &models.TeamInvite{
		BaseModel:  newBase(),
		TeamID:     teamID,
		ExpiresAt:  time.Now().UTC().AddDate(0, 0, 7),
		Status:     models.InviteStatusPending,
		UsageLimit: usageLimit,
		CreatedBy:  creator,
	}
}

// FactorySet bundles every factory for suites that need several of them
type FactorySet struct {
	User    *UserFactory
	Team    *TeamFactory
	Project *ProjectFactory
	Task    *TaskFactory
	Label   *LabelFactory
	Invite  *InviteFactory
}

// NewFactorySet creates a new FactorySet
func NewFactorySet() *FactorySet {
	return &FactorySet{
		User:    NewUserFactory(),
		Team:    NewTeamFactory(),
		Project: NewProjectFactory(),
		Task:    NewTaskFactory(),
		Label:   NewLabelFactory(),
		Invite:  NewInviteFactory(),
	}
}

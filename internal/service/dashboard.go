package service

import (
	"context"
	"fmt"
	"sort"

	"taskboard-backend/internal/database/models"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	dashboardTaskLimit     = 10
	dashboardListLimit     = 5
	dashboardActivityLimit = 10
	productivityLimit      = 10
)

// DashboardService builds the user and team overview pages
type DashboardService struct {
	repos *repository.Repositories
	audit *AuditService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repos *repository.Repositories, audit *AuditService) *DashboardService {
	return &DashboardService{repos: repos, audit: audit}
}

// TaskStats counts tasks by state
type TaskStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"in_progress"`
	Pending    int64 `json:"pending"`
	Unplanned  int64 `json:"unplanned"`
	Overdue    int64 `json:"overdue"`
	MyAssigned int64 `json:"my_assigned"`
}

// UserDashboardResponse is the caller's landing page
type UserDashboardResponse struct {
	AssignedTasks  []TaskResponse     `json:"assigned_tasks"`
	Teams          []TeamResponse     `json:"teams"`
	Projects       []ProjectResponse  `json:"projects"`
	Stats          TaskStats          `json:"stats"`
	RecentActivity []AuditLogResponse `json:"recent_activity"`
}

// TeamDashboardResponse summarises a team's work
type TeamDashboardResponse struct {
	TeamID       uuid.UUID                  `json:"team_id"`
	Stats        TaskStats                  `json:"stats"`
	Productivity []repository.AssigneeCount `json:"productivity"`
}

// User builds the dashboard of the caller
func (s *DashboardService) User(ctx context.Context, actor Actor) (*UserDashboardResponse, error) {
	assigned, _, err := s.repos.Tasks.ListAssigned(actor.ID, false, dashboardTaskLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load assigned tasks: %w", err)
	}
	sort.SliceStable(assigned, func(i, j int) bool {
		a, b := assigned[i].DueDate, assigned[j].DueDate
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})

	teams, _, err := s.repos.Teams.ListForUser(actor.ID, dashboardListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	projects, _, err := s.repos.Projects.ListForUser(actor.ID, dashboardListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	projectIDs, err := s.repos.Projects.IDsForMember(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects: %w", err)
	}
	stats, err := s.stats(projectIDs)
	if err != nil {
		return nil, err
	}
	stats.Overdue, err = s.repos.Tasks.CountOverdue(projectIDs, today())
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	stats.MyAssigned, err = s.repos.Tasks.CountAssignedOpen(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned tasks: %w", err)
	}

	activity, err := s.audit.Recent(ctx, actor, dashboardActivityLimit)
	if err != nil {
		return nil, err
	}

	resp := &UserDashboardResponse{
		AssignedTasks:  make([]TaskResponse, len(assigned)),
		Teams:          make([]TeamResponse, len(teams)),
		Projects:       make([]ProjectResponse, len(projects)),
		Stats:          stats,
		RecentActivity: activity,
	}
	for i := range assigned {
		resp.AssignedTasks[i] = toTaskResponse(&assigned[i])
	}
	for i := range teams {
		resp.Teams[i] = toTeamResponse(&teams[i], false)
	}
	for i := range projects {
		resp.Projects[i] = toProjectResponse(&projects[i])
	}
	return resp, nil
}

// Team builds the dashboard of one team, limited to the caller's projects in it
func (s *DashboardService) Team(ctx context.Context, actor Actor, teamID uuid.UUID) (*TeamDashboardResponse, error) {
	if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamView); err != nil {
		return nil, err
	}

	teamProjects, err := s.repos.Projects.ListByTeam(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team projects: %w", err)
	}
	mine, err := s.repos.Projects.IDsForMember(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects: %w", err)
	}
	member := make(map[uuid.UUID]bool, len(mine))
	for _, id := range mine {
		member[id] = true
	}
	var projectIDs []uuid.UUID
	for _, p := range teamProjects {
		if member[p.ID] {
			projectIDs = append(projectIDs, p.ID)
		}
	}

	stats, err := s.stats(projectIDs)
	if err != nil {
		return nil, err
	}
	productivity, err := s.repos.Tasks.CompletedByAssignee(projectIDs, productivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load productivity: %w", err)
	}
	if productivity == nil {
		productivity = []repository.AssigneeCount{}
	}

	return &TeamDashboardResponse{TeamID: teamID, Stats: stats, Productivity: productivity}, nil
}

func (s *DashboardService) stats(projectIDs []uuid.UUID) (TaskStats, error) {
	var stats TaskStats
	counts, err := s.repos.Tasks.CountByStatus(projectIDs)
	if err != nil {
		return stats, fmt.Errorf("failed to count tasks: %w", err)
	}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case models.TaskStatusDone:
			stats.Completed = c.Count
		case models.TaskStatusInProgress:
			stats.InProgress = c.Count
		case models.TaskStatusPending:
			stats.Pending = c.Count
		case models.TaskStatusUnplanned:
			stats.Unplanned = c.Count
		}
	}
	return stats, nil
}

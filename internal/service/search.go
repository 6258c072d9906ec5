package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/repository"
)

const searchLimit = 5

// SearchService finds teams, projects and tasks the caller can reach
type SearchService struct {
	repos *repository.Repositories
}

// NewSearchService creates a new search service
func NewSearchService(repos *repository.Repositories) *SearchService {
	return &SearchService{repos: repos}
}

// SearchResponse groups the matches per entity
type SearchResponse struct {
	Query    string            `json:"query"`
	Teams    []TeamResponse    `json:"teams"`
	Projects []ProjectResponse `json:"projects"`
	Tasks    []TaskResponse    `json:"tasks"`
}

// Search matches q against names and descriptions. Tasks only come from
// projects the caller is a member of.
func (s *SearchService) Search(ctx context.Context, actor Actor, q string) (*SearchResponse, error) {
	q = strings.TrimSpace(q)
	if n := utf8.RuneCountInString(q); n < 2 || n > 100 {
		return nil, apperrors.NewValidationError("q", "must be between 2 and 100 characters")
	}

	teams, err := s.repos.Teams.SearchForUser(actor.ID, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search teams: %w", err)
	}
	teamIDs, err := s.repos.TeamMembers.TeamIDsForUser(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve teams: %w", err)
	}
	projects, err := s.repos.Projects.SearchInTeams(teamIDs, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	projectIDs, err := s.repos.Projects.IDsForMember(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects: %w", err)
	}
	tasks, err := s.repos.Tasks.SearchInProjects(projectIDs, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}

	resp := &SearchResponse{
		Query:    q,
		Teams:    make([]TeamResponse, len(teams)),
		Projects: make([]ProjectResponse, len(projects)),
		Tasks:    make([]TaskResponse, len(tasks)),
	}
	for i := range teams {
		resp.Teams[i] = toTeamResponse(&teams[i], false)
	}
	for i := range projects {
		resp.Projects[i] = toProjectResponse(&projects[i])
	}
	for i := range tasks {
		resp.Tasks[i] = toTaskResponse(&tasks[i])
	}
	return resp, nil
}

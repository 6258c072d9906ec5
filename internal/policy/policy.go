// Package policy holds the role and membership rules for teams, projects and
// tasks. Every check takes the caller's membership rows explicitly; a nil
// membership means the caller is not a member.
package policy

import (
	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
)

// TeamAction is an operation gated by team membership
type TeamAction int

const (
	TeamView TeamAction = iota
	TeamUpdate
	TeamDelete
	TeamManageInvites
	TeamChangeMemberRole
	TeamRemoveMember
	TeamLeave
	TeamTransferOwnership
	TeamManageLabels
	TeamCreateProject
)

func (a TeamAction) String() string {
	switch a {
	case TeamView:
		return "view"
	case TeamUpdate:
		return "update"
	case TeamDelete:
		return "delete"
	case TeamManageInvites:
		return "manage_invites"
	case TeamChangeMemberRole:
		return "change_member_role"
	case TeamRemoveMember:
		return "remove_member"
	case TeamLeave:
		return "leave"
	case TeamTransferOwnership:
		return "transfer_ownership"
	case TeamManageLabels:
		return "manage_labels"
	case TeamCreateProject:
		return "create_project"
	}
	return "unknown"
}

// TeamRoleAllows reports whether role may perform action
func TeamRoleAllows(role models.TeamRole, action TeamAction) bool {
	if !role.IsValid() {
		return false
	}
	switch action {
	case TeamView, TeamManageLabels, TeamCreateProject, TeamLeave:
		return true
	case TeamUpdate, TeamManageInvites, TeamChangeMemberRole, TeamRemoveMember:
		return role == models.TeamRoleOwner || role == models.TeamRoleAdmin
	case TeamDelete, TeamTransferOwnership:
		return role == models.TeamRoleOwner
	}
	return false
}

// AuthorizeTeam resolves membership first, then role
func AuthorizeTeam(member *models.TeamMember, action TeamAction) error {
	if member == nil {
		return apperrors.ErrNotTeamMember
	}
	if !TeamRoleAllows(member.TeamRole, action) {
		return apperrors.ErrInsufficientTeamRole
	}
	return nil
}

// AssignableTeamRole reports whether role may be granted through a role change.
// Ownership only moves through a transfer.
func AssignableTeamRole(role models.TeamRole) bool {
	switch role {
	case models.TeamRoleAdmin, models.TeamRoleMember:
		return true
	case models.TeamRoleOwner:
		return false
	}
	return false
}

// ProjectAction is an operation gated by project access
type ProjectAction int

const (
	ProjectView ProjectAction = iota
	ProjectUpdate
	ProjectDelete
	ProjectRestore
	ProjectAddMember
	ProjectRemoveMember
	ProjectCreateTask
	ProjectTaskAccess
)

func (a ProjectAction) String() string {
	switch a {
	case ProjectView:
		return "view"
	case ProjectUpdate:
		return "update"
	case ProjectDelete:
		return "delete"
	case ProjectRestore:
		return "restore"
	case ProjectAddMember:
		return "add_member"
	case ProjectRemoveMember:
		return "remove_member"
	case ProjectCreateTask:
		return "create_task"
	case ProjectTaskAccess:
		return "task_access"
	}
	return "unknown"
}

// ProjectAccess is what the caller holds with respect to one project
type ProjectAccess struct {
	TeamMember    *models.TeamMember
	ProjectMember *models.ProjectMember
	IsCreator     bool
}

// LeadsProject reports whether a project role may edit project settings
func LeadsProject(role models.ProjectRole) bool {
	switch role {
	case models.ProjectRoleLead, models.ProjectRoleTechnicalLead:
		return true
	case models.ProjectRoleMember:
		return false
	}
	return false
}

// AuthorizeProject checks team membership for every action before looking at
// project membership, so stale project rows never grant access on their own.
func AuthorizeProject(access ProjectAccess, action ProjectAction) error {
	if access.TeamMember == nil {
		if action == ProjectTaskAccess {
			return apperrors.ErrNoTaskAccess
		}
		return apperrors.ErrNoProjectAccess
	}

	switch action {
	case ProjectView:
		return nil
	case ProjectUpdate:
		if access.IsCreator {
			return nil
		}
		if access.ProjectMember != nil && LeadsProject(access.ProjectMember.Role) {
			return nil
		}
		return apperrors.ErrProjectUpdateDenied
	case ProjectDelete:
		if access.IsCreator {
			return nil
		}
		return apperrors.ErrProjectDeleteDenied
	case ProjectRestore:
		if access.IsCreator {
			return nil
		}
		return apperrors.ErrProjectRestoreDenied
	case ProjectAddMember, ProjectRemoveMember, ProjectCreateTask:
		if access.ProjectMember != nil {
			return nil
		}
		return apperrors.ErrNotProjectMember
	case ProjectTaskAccess:
		if access.ProjectMember != nil {
			return nil
		}
		return apperrors.ErrNoTaskAccess
	}
	return apperrors.ErrNoProjectAccess
}

package models

import "strings"

// UserRole is the global, advisory role of a user
type UserRole string

const (
	UserRoleAdmin   UserRole = "Admin"
	UserRoleManager UserRole = "Manager"
	UserRoleMember  UserRole = "Member"
)

// IsValid checks if the UserRole is valid
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleMember:
		return true
	}
	return false
}

// TeamRole is a user's role inside a team
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "Owner"
	TeamRoleAdmin  TeamRole = "Admin"
	TeamRoleMember TeamRole = "Member"
)

// IsValid checks if the TeamRole is valid
func (r TeamRole) IsValid() bool {
	switch r {
	case TeamRoleOwner, TeamRoleAdmin, TeamRoleMember:
		return true
	}
	return false
}

// ProjectRole is a user's role inside a project
type ProjectRole string

const (
	ProjectRoleLead          ProjectRole = "Lead"
	ProjectRoleTechnicalLead ProjectRole = "Technical Lead"
	ProjectRoleMember        ProjectRole = "Member"
)

// IsValid checks if the ProjectRole is valid
func (r ProjectRole) IsValid() bool {
	switch r {
	case ProjectRoleLead, ProjectRoleTechnicalLead, ProjectRoleMember:
		return true
	}
	return false
}

// ParseProjectRole accepts the stored value and the compact "TechnicalLead" form
func ParseProjectRole(s string) (ProjectRole, bool) {
	switch strings.ReplaceAll(strings.TrimSpace(s), " ", "") {
	case "Lead":
		return ProjectRoleLead, true
	case "TechnicalLead":
		return ProjectRoleTechnicalLead, true
	case "Member":
		return ProjectRoleMember, true
	}
	return "", false
}

// TaskStatus is the kanban column of a task. Any status may follow any other.
type TaskStatus string

const (
	TaskStatusUnplanned  TaskStatus = "Unplanned"
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In-Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// AllTaskStatuses lists statuses in board order
var AllTaskStatuses = []TaskStatus{
	TaskStatusUnplanned,
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusDone,
}

// IsValid checks if the TaskStatus is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusUnplanned, TaskStatusPending, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// WorkRank orders statuses for the "my tasks" view: In-Progress first, Done last
func (s TaskStatus) WorkRank() int {
	switch s {
	case TaskStatusInProgress:
		return 1
	case TaskStatusPending:
		return 2
	case TaskStatusUnplanned:
		return 3
	case TaskStatusDone:
		return 4
	}
	return 5
}

// TaskPriority is the optional priority of a task
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "Low"
	TaskPriorityMedium   TaskPriority = "Medium"
	TaskPriorityHigh     TaskPriority = "High"
	TaskPriorityCritical TaskPriority = "Critical"
)

// IsValid checks if the TaskPriority is valid
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// InviteStatus is the state of a team invitation
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "Pending"
	InviteStatusAccepted InviteStatus = "Accepted"
	InviteStatusDeclined InviteStatus = "Declined"
	InviteStatusExpired  InviteStatus = "Expired"
	InviteStatusRevoked  InviteStatus = "Revoked"
)

// IsValid checks if the InviteStatus is valid
func (s InviteStatus) IsValid() bool {
	switch s {
	case InviteStatusPending, InviteStatusAccepted, InviteStatusDeclined, InviteStatusExpired, InviteStatusRevoked:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s InviteStatus) IsTerminal() bool {
	return s != InviteStatusPending
}

package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "in this team"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error. Fields carries per-field
// messages when more than one field failed.
type ValidationError struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+" - "+e.Fields[k])
		}
		return "validation error: " + strings.Join(parts, "; ")
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// FieldErrors returns the per-field messages, folding Field/Message in.
func (e *ValidationError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = v
	}
	if e.Field != "" {
		out[e.Field] = e.Message
	}
	return out
}

// AuthenticationError represents authentication-related errors
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError represents authorization-related errors
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// Is matches authorization errors carrying the same message
func (e *AuthorizationError) Is(target error) bool {
	t, ok := target.(*AuthorizationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// StateConflictError is returned when an operation is not allowed in the
// entity's current state (expired invite, owner leaving, ...)
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string {
	return e.Message
}

// Is matches state conflicts carrying the same message
func (e *StateConflictError) Is(target error) bool {
	t, ok := target.(*StateConflictError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Entity Not Found Errors
var (
	ErrUserNotFound       = &NotFoundError{Entity: "user"}
	ErrTeamNotFound       = &NotFoundError{Entity: "team"}
	ErrProjectNotFound    = &NotFoundError{Entity: "project"}
	ErrTaskNotFound       = &NotFoundError{Entity: "task"}
	ErrLabelNotFound      = &NotFoundError{Entity: "label"}
	ErrCommentNotFound    = &NotFoundError{Entity: "comment"}
	ErrAttachmentNotFound = &NotFoundError{Entity: "attachment"}
	ErrInviteNotFound     = &NotFoundError{Entity: "invitation"}
	ErrMemberNotFound     = &NotFoundError{Entity: "team member"}
)

// Already Exists Errors
var (
	ErrUserExists          = &AlreadyExistsError{Entity: "user", Context: "with this email"}
	ErrUsernameTaken       = &AlreadyExistsError{Entity: "user", Context: "with this username"}
	ErrProjectMemberExists = &AlreadyExistsError{Entity: "project member", Context: "in this project"}
	ErrTeamMemberExists    = &AlreadyExistsError{Entity: "team member", Context: "in this team"}
)

// Authorization Errors
var (
	ErrNotTeamMember          = &AuthorizationError{Message: "You are not a member of this team."}
	ErrInsufficientTeamRole   = &AuthorizationError{Message: "You do not have permission to perform this action."}
	ErrNoProjectAccess        = &AuthorizationError{Message: "You do not have access to this project."}
	ErrNoTaskAccess           = &AuthorizationError{Message: "You do not have access to this task."}
	ErrNotProjectMember       = &AuthorizationError{Message: "You are not a member of this project."}
	ErrProjectUpdateDenied    = &AuthorizationError{Message: "Only project leads or the project creator can update this project."}
	ErrProjectDeleteDenied    = &AuthorizationError{Message: "Only the project creator can delete this project."}
	ErrProjectRestoreDenied   = &AuthorizationError{Message: "Only the project creator can restore this project."}
	ErrCommentEditDenied      = &AuthorizationError{Message: "You can only edit your own comments."}
	ErrCommentDeleteDenied    = &AuthorizationError{Message: "You can only delete your own comments."}
	ErrAttachmentDeleteDenied = &AuthorizationError{Message: "You do not have permission to delete this attachment."}
	ErrInviteRevokeDenied     = &AuthorizationError{Message: "You do not have permission to revoke this invitation."}
	ErrInviteEmailMismatch    = &AuthorizationError{Message: "This invitation was sent to a different email address."}
)

// State Conflict Errors
var (
	ErrOwnerCannotLeave       = &StateConflictError{Message: "Team owner cannot leave the team. Transfer ownership first."}
	ErrCannotChangeOwnerRole  = &StateConflictError{Message: "Cannot change the role of the team owner."}
	ErrCannotRemoveOwner      = &StateConflictError{Message: "Cannot remove the team owner."}
	ErrCannotRemoveCreator    = &StateConflictError{Message: "Cannot remove the project creator."}
	ErrProjectNotArchived     = &StateConflictError{Message: "Project is not archived."}
	ErrInviteNotPending       = &StateConflictError{Message: "This invitation is no longer valid."}
	ErrInviteExpired          = &StateConflictError{Message: "This invitation has expired."}
	ErrInviteUsageLimit       = &StateConflictError{Message: "This invitation has reached its usage limit."}
	ErrAlreadyOwner           = &StateConflictError{Message: "The selected user is already the team owner."}
	ErrNewOwnerNotMember      = &StateConflictError{Message: "The selected user is not a member of this team."}
	ErrTargetNotTeamMember    = &StateConflictError{Message: "User must be a team member first."}
	ErrTargetNotProjectMember = &StateConflictError{Message: "User is not a member of this project."}
)

// Authentication Errors
var (
	ErrInvalidCredentials = &AuthenticationError{Message: "invalid email or password"}
	ErrMissingActor       = &AuthenticationError{Message: "authentication required"}
)

// Business Logic Errors
var (
	ErrInvalidPaginationParams = errors.New("invalid pagination parameters")
	ErrUnsupportedExport       = errors.New("unsupported export format")
)

// Configuration Errors
var (
	ErrJWTSecretMissing = &ConfigurationError{Message: "JWT_SECRET must be set in production"}
	ErrStorageNotSet    = &ConfigurationError{Message: "attachment storage is not configured"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.As(err, &existsErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsAuthorization checks if an error is an AuthorizationError
func IsAuthorization(err error) bool {
	var authzErr *AuthorizationError
	return errors.As(err, &authzErr)
}

// IsStateConflict checks if an error is a StateConflictError
func IsStateConflict(err error) bool {
	var conflictErr *StateConflictError
	return errors.As(err, &conflictErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAlreadyExistsError creates a new AlreadyExistsError for a custom entity
func NewAlreadyExistsError(entity, context string) error {
	return &AlreadyExistsError{Entity: entity, Context: context}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewFieldsValidationError creates a ValidationError carrying several field messages
func NewFieldsValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

// NewAuthorizationError creates a new AuthorizationError
func NewAuthorizationError(message string) error {
	return &AuthorizationError{Message: message}
}

// NewStateConflictError creates a new StateConflictError
func NewStateConflictError(message string) error {
	return &StateConflictError{Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

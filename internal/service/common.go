package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	dateLayout      = "2006-01-02"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// NewValidator returns a validator that reports json field names
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs struct validation and converts failures into a
// field-level ValidationError
func validateStruct(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return apperrors.NewFieldsValidationError(fields)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// today returns the current date at midnight UTC
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, apperrors.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// teamMembership returns the caller's membership row or nil when absent
func teamMembership(repo repository.TeamMemberRepositoryInterface, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	member, err := repo.GetMembership(teamID, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load team membership: %w", err)
	}
	return member, nil
}

// projectMembership returns the caller's project membership or nil when absent
func projectMembership(repo repository.ProjectMemberRepositoryInterface, projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	member, err := repo.GetMembership(projectID, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load project membership: %w", err)
	}
	return member, nil
}

// projectAccess resolves what the user holds on project
func projectAccess(repos *repository.Repositories, project *models.Project, userID uuid.UUID) (policy.ProjectAccess, error) {
	tm, err := teamMembership(repos.TeamMembers, project.TeamID, userID)
	if err != nil {
		return policy.ProjectAccess{}, err
	}
	pm, err := projectMembership(repos.ProjectMembers, project.ID, userID)
	if err != nil {
		return policy.ProjectAccess{}, err
	}
	return policy.ProjectAccess{
		TeamMember:    tm,
		ProjectMember: pm,
		IsCreator:     project.CreatedBy == userID,
	}, nil
}

// authorizeProject loads the caller's access and checks action
func authorizeProject(repos *repository.Repositories, project *models.Project, userID uuid.UUID, action policy.ProjectAction) error {
	access, err := projectAccess(repos, project, userID)
	if err != nil {
		return err
	}
	return policy.AuthorizeProject(access, action)
}

// authorizeTeam loads the caller's membership and checks action
func authorizeTeam(repo repository.TeamMemberRepositoryInterface, teamID, userID uuid.UUID, action policy.TeamAction) (*models.TeamMember, error) {
	member, err := teamMembership(repo, teamID, userID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeTeam(member, action); err != nil {
		return nil, err
	}
	return member, nil
}

// AuditEvent describes one mutation to be appended to the audit log
type AuditEvent struct {
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Old        interface{}
	New        interface{}
	Actor      uuid.UUID
}

func snapshot(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// recordAudit appends ev through repo. Callers pass the transactional
// repository so the entry commits or rolls back with the mutation.
func recordAudit(repo repository.AuditLogRepositoryInterface, ev AuditEvent) error {
	oldValues, err := snapshot(ev.Old)
	if err != nil {
		return fmt.Errorf("failed to encode audit snapshot: %w", err)
	}
	newValues, err := snapshot(ev.New)
	if err != nil {
		return fmt.Errorf("failed to encode audit snapshot: %w", err)
	}
	entry := &models.AuditLog{
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		DoneBy:     ev.Actor,
		DoneAt:     time.Now().UTC(),
	}
	if err := repo.Create(entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/policy"
	"taskboard-backend/internal/repository"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// Export contexts
const (
	ExportGlobal  = "global"
	ExportUser    = "user"
	ExportTeam    = "team"
	ExportProject = "project"
)

// Export formats
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var exportHeader = []string{"ID", "Name", "Project", "Team", "Status", "Priority", "Assignee", "Due Date", "Labels", "Created At", "Updated At"}

// ExportQuery selects the tasks to export
type ExportQuery struct {
	TaskListQuery
	Context string `form:"context"`
}

// ExportFile is a rendered export
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders filtered task lists as CSV or PDF
type ExportService struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewExportService creates a new export service
func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos, now: time.Now}
}

// Export renders the tasks selected by q in format
func (s *ExportService) Export(ctx context.Context, actor Actor, format string, q *ExportQuery) (*ExportFile, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, apperrors.ErrUnsupportedExport
	}
	exportContext := q.Context
	if exportContext == "" {
		exportContext = ExportGlobal
	}

	tasks, err := s.collect(actor, exportContext, q)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s-tasks-export-%s.%s", exportContext, s.now().Format("20060102-150405"), format)
	rows := exportRows(tasks)
	if format == FormatCSV {
		data, err := renderCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: filename, ContentType: "text/csv", Data: data}, nil
	}

	data, err := renderPDF(exportTitle(exportContext, s.now()), rows)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

func (s *ExportService) collect(actor Actor, exportContext string, q *ExportQuery) ([]models.Task, error) {
	switch exportContext {
	case ExportUser:
		tasks, _, err := s.repos.Tasks.ListAssigned(actor.ID, true, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to load assigned tasks: %w", err)
		}
		return tasks, nil
	case ExportGlobal:
	case ExportTeam:
		teamID, err := uuid.Parse(q.TeamID)
		if err != nil {
			return nil, apperrors.NewValidationError("team_id", "is required for team exports")
		}
		if _, err := authorizeTeam(s.repos.TeamMembers, teamID, actor.ID, policy.TeamView); err != nil {
			return nil, err
		}
	case ExportProject:
		projectID, err := uuid.Parse(q.ProjectID)
		if err != nil {
			return nil, apperrors.NewValidationError("project_id", "is required for project exports")
		}
		project, err := s.repos.Projects.GetByID(projectID)
		if err != nil {
			if isRecordNotFound(err) {
				return nil, apperrors.ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to get project: %w", err)
		}
		if err := authorizeProject(s.repos, project, actor.ID, policy.ProjectTaskAccess); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("context", "must be one of: global user team project")
	}

	filter, err := buildTaskFilter(s.repos, actor, &q.TaskListQuery)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repos.Tasks.ListForExport(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func exportRows(tasks []models.Task) [][]string {
	rows := make([][]string, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		var project, team, priority, assignee, due string
		if t.Project != nil {
			project = t.Project.Name
			if t.Project.Team != nil {
				team = t.Project.Team.Name
			}
		}
		if t.Priority != nil {
			priority = string(*t.Priority)
		}
		if t.Assignee != nil {
			assignee = t.Assignee.Name
		}
		if d := formatDate(t.DueDate); d != nil {
			due = *d
		}
		labels := make([]string, len(t.Labels))
		for j, l := range t.Labels {
			labels[j] = l.Name
		}
		rows[i] = []string{
			t.ID.String(),
			t.Name,
			project,
			team,
			string(t.Status),
			priority,
			assignee,
			due,
			strings.Join(labels, ", "),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		}
	}
	return rows
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func exportTitle(exportContext string, at time.Time) string {
	return fmt.Sprintf("Tasks export (%s) - %s", exportContext, at.UTC().Format("2006-01-02 15:04 MST"))
}

// PDF columns: name, project, team, status, priority, assignee, due date, labels
var pdfColumns = []struct {
	index int
	width float64
	limit int
}{
	{1, 70, 45},
	{2, 38, 22},
	{3, 32, 18},
	{4, 24, 12},
	{5, 20, 10},
	{6, 34, 20},
	{7, 22, 10},
	{8, 37, 24},
}

func renderPDF(title string, rows [][]string) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, exportHeader[col.index], "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, tr(truncate(row[col.index], col.limit)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.CellFormat(0, 6, "No tasks match the selected filters.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

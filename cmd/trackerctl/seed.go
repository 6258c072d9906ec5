package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"taskboard-backend/internal/database/models"
	apperrors "taskboard-backend/internal/errors"
	"taskboard-backend/internal/repository"
	"taskboard-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// seedDeadline bounds a whole seed run
const seedDeadline = 5 * time.Minute

// SeedFile is the layout of one YAML seed file. Files in a directory are merged.
type SeedFile struct {
	Users []UserData `yaml:"users"`
	Teams []TeamData `yaml:"teams"`
}

type UserData struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type TeamData struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Owner       string        `yaml:"owner"`
	Members     []MemberData  `yaml:"members,omitempty"`
	Labels      []LabelData   `yaml:"labels,omitempty"`
	Projects    []ProjectData `yaml:"projects,omitempty"`
}

type MemberData struct {
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

type LabelData struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ProjectData struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Creator     string       `yaml:"creator"`
	Members     []MemberData `yaml:"members,omitempty"`
	Tasks       []TaskData   `yaml:"tasks,omitempty"`
}

type TaskData struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Priority    string   `yaml:"priority,omitempty"`
	DueDate     string   `yaml:"due_date,omitempty"`
	Assignee    string   `yaml:"assignee,omitempty"`
	Labels      []string `yaml:"labels,omitempty"`
}

func newSeedCmd(opts *options) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, teams, projects and tasks from YAML files",
		Long: "Loads every .yaml file under the data directory. Users that already exist are reused; " +
			"everything else is created through the same services the API uses, so audit entries are written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadSeedFiles(afero.NewOsFs(), dataDir)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), seedDeadline)
			defer cancel()

			cfg, db, err := connect(ctx, opts, true)
			if err != nil {
				return err
			}
			defer closeDB(db)

			s := newSeeder(repository.NewRepositories(db), repository.NewTxManager(db), cfg.ReorderStrict)
			if err := s.run(ctx, data); err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"users":    len(data.Users),
				"teams":    len(data.Teams),
				"projects": s.projectCount,
				"tasks":    s.taskCount,
			}).Info("Seed data loaded")
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "scripts/data", "Directory containing seed YAML files")
	return cmd
}

// loadSeedFiles reads and merges all .yaml/.yml files under dir in lexical order
func loadSeedFiles(fsys afero.Fs, dir string) (*SeedFile, error) {
	var paths []string
	err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !info.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)

	merged := &SeedFile{}
	for _, path := range paths {
		raw, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var file SeedFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		merged.Users = append(merged.Users, file.Users...)
		merged.Teams = append(merged.Teams, file.Teams...)
	}
	return merged, nil
}

type seeder struct {
	repos    *repository.Repositories
	users    *service.UserService
	teams    *service.TeamService
	projects *service.ProjectService
	labels   *service.LabelService
	tasks    *service.TaskService
	invites  *service.InviteService

	actors       map[string]service.Actor
	projectCount int
	taskCount    int
}

func newSeeder(repos *repository.Repositories, tx repository.TxManagerInterface, strictReorder bool) *seeder {
	v := service.NewValidator()
	return &seeder{
		repos:    repos,
		users:    service.NewUserService(repos.Users, noTokens{}, v),
		teams:    service.NewTeamService(repos, tx, v),
		projects: service.NewProjectService(repos, tx, v),
		labels:   service.NewLabelService(repos, v),
		tasks:    service.NewTaskService(repos, tx, v, strictReorder),
		invites:  service.NewInviteService(repos, tx, service.LogNotifier{}, v),
		actors:   map[string]service.Actor{},
	}
}

// noTokens satisfies service.TokenIssuer; seeding never hands out tokens
type noTokens struct{}

func (noTokens) GenerateToken(uuid.UUID, string, string) (string, int64, error) {
	return "", 0, nil
}

func (s *seeder) run(ctx context.Context, data *SeedFile) error {
	for _, u := range data.Users {
		if err := s.user(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	for _, t := range data.Teams {
		if err := s.team(ctx, t); err != nil {
			return fmt.Errorf("team %s: %w", t.Name, err)
		}
	}
	return nil
}

func (s *seeder) user(ctx context.Context, u UserData) error {
	existing, err := s.repos.Users.GetByEmail(strings.ToLower(u.Email))
	if err == nil {
		s.actors[existing.Email] = service.Actor{ID: existing.ID, Email: existing.Email, Name: existing.Name}
		logrus.WithField("email", existing.Email).Debug("User exists, reusing")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	resp, err := s.users.Register(ctx, &service.RegisterRequest{
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Password: u.Password,
	})
	if err != nil {
		return err
	}
	s.actors[resp.User.Email] = service.Actor{ID: resp.User.ID, Email: resp.User.Email, Name: resp.User.Name}
	return nil
}

func (s *seeder) actor(email string) (service.Actor, error) {
	a, ok := s.actors[strings.ToLower(email)]
	if !ok {
		return service.Actor{}, fmt.Errorf("unknown user %q", email)
	}
	return a, nil
}

func (s *seeder) team(ctx context.Context, t TeamData) error {
	owner, err := s.actor(t.Owner)
	if err != nil {
		return err
	}
	team, err := s.teams.Create(ctx, owner, &service.CreateTeamRequest{Name: t.Name, Description: t.Description})
	if err != nil {
		return err
	}

	// Members join the way real users do: an addressed invite, accepted by the invitee
	for _, m := range t.Members {
		member, err := s.actor(m.Email)
		if err != nil {
			return err
		}
		email := member.Email
		invite, err := s.invites.Create(ctx, owner, &service.CreateInviteRequest{TeamID: team.ID, InviteeEmail: &email})
		if err != nil {
			return fmt.Errorf("invite %s: %w", email, err)
		}
		if _, err := s.invites.Accept(ctx, member, invite.ID); err != nil {
			return fmt.Errorf("accept invite for %s: %w", email, err)
		}
		if role := models.TeamRole(m.Role); role == models.TeamRoleAdmin {
			if _, err := s.teams.UpdateMemberRole(ctx, owner, team.ID, &service.UpdateMemberRoleRequest{UserID: member.ID, Role: role}); err != nil {
				return fmt.Errorf("promote %s: %w", email, err)
			}
		}
	}

	labelIDs := map[string]uuid.UUID{}
	for _, l := range t.Labels {
		label, err := s.labels.Create(ctx, owner, &service.CreateLabelRequest{TeamID: team.ID, Name: l.Name, Description: l.Description})
		if err != nil {
			return fmt.Errorf("label %s: %w", l.Name, err)
		}
		labelIDs[l.Name] = label.ID
	}

	for _, p := range t.Projects {
		if err := s.project(ctx, team.ID, owner, p, labelIDs); err != nil {
			return fmt.Errorf("project %s: %w", p.Name, err)
		}
	}
	return nil
}

func (s *seeder) project(ctx context.Context, teamID uuid.UUID, owner service.Actor, p ProjectData, labelIDs map[string]uuid.UUID) error {
	creator := owner
	if p.Creator != "" {
		var err error
		if creator, err = s.actor(p.Creator); err != nil {
			return err
		}
	}
	project, err := s.projects.Create(ctx, creator, &service.CreateProjectRequest{TeamID: teamID, Name: p.Name, Description: p.Description})
	if err != nil {
		return err
	}
	s.projectCount++

	for _, m := range p.Members {
		member, err := s.actor(m.Email)
		if err != nil {
			return err
		}
		_, err = s.projects.AddMember(ctx, creator, project.ID, &service.AddProjectMemberRequest{UserID: member.ID, Role: m.Role})
		if err != nil && !apperrors.IsAlreadyExists(err) {
			return fmt.Errorf("add member %s: %w", m.Email, err)
		}
	}

	for _, t := range p.Tasks {
		req := &service.CreateTaskRequest{
			ProjectID:   project.ID,
			Name:        t.Name,
			Description: t.Description,
			Status:      models.TaskStatus(t.Status),
			DueDate:     t.DueDate,
		}
		if t.Priority != "" {
			priority := models.TaskPriority(t.Priority)
			req.Priority = &priority
		}
		if t.Assignee != "" {
			assignee, err := s.actor(t.Assignee)
			if err != nil {
				return err
			}
			req.AssignedTo = &assignee.ID
		}
		for _, name := range t.Labels {
			id, ok := labelIDs[name]
			if !ok {
				return fmt.Errorf("task %s: unknown label %q", t.Name, name)
			}
			req.LabelIDs = append(req.LabelIDs, id)
		}
		if _, err := s.tasks.Create(ctx, creator, req); err != nil {
			return fmt.Errorf("task %s: %w", t.Name, err)
		}
		s.taskCount++
	}
	return nil
}

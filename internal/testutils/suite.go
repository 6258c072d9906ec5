package testutils

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"taskboard-backend/internal/config"
	"taskboard-backend/internal/database"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	pgImage    = "postgres"
	pgTag      = "15-alpine"
	pgUser     = "tracker"
	pgPassword = "tracker"
	pgDatabase = "tracker_test"
)

// The Postgres container is started once per test binary and shared by all suites
var (
	containerOnce sync.Once
	containerErr  error
	pool          *dockertest.Pool
	resource      *dockertest.Resource
	sharedDB      *gorm.DB
	sharedConfig  *config.Config
	truncateSQL   string
)

// BaseTestSuite hands a migrated database to repository suites and wipes it between tests
type BaseTestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Config *config.Config
}

// SetupTestSuite starts the shared Postgres container on first use
func SetupTestSuite(t *testing.T) *BaseTestSuite {
	containerOnce.Do(func() { containerErr = startPostgres() })
	if containerErr != nil {
		t.Fatalf("failed to start test database: %v", containerErr)
	}
	return &BaseTestSuite{DB: sharedDB, Config: sharedConfig}
}

// RunIntegration runs m and removes the shared container afterwards, also when
// the run is interrupted. Use it from TestMain.
func RunIntegration(m *testing.M) int {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		logrus.Warn("Integration tests interrupted, removing test database")
		CleanupSharedContainer()
		os.Exit(1)
	}()

	code := m.Run()
	CleanupSharedContainer()
	return code
}

// CleanupSharedContainer closes the shared connection and purges the container
func CleanupSharedContainer() {
	if sharedDB != nil {
		if sqlDB, err := sharedDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		sharedDB = nil
	}
	if pool != nil && resource != nil {
		if err := pool.Purge(resource); err != nil {
			logrus.WithError(err).Warn("Could not purge test database container")
		}
		pool, resource = nil, nil
	}
}

func (s *BaseTestSuite) SetupTest()    { s.CleanTestDB() }
func (s *BaseTestSuite) TearDownTest() { s.CleanTestDB() }

// TeardownTestSuite only wipes data; the container outlives the suite
func (s *BaseTestSuite) TeardownTestSuite() { s.CleanTestDB() }

// CleanTestDB empties every migrated table in one statement
func (s *BaseTestSuite) CleanTestDB() {
	if s.DB == nil || truncateSQL == "" {
		return
	}
	if err := s.DB.Exec(truncateSQL).Error; err != nil {
		logrus.WithError(err).Warn("Could not truncate test tables")
	}
}

func startPostgres() error {
	var err error
	pool, err = dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute

	resource, err = pool.RunWithOptions(&dockertest.RunOptions{
		Repository: pgImage,
		Tag:        pgTag,
		Env: []string{
			"POSTGRES_USER=" + pgUser,
			"POSTGRES_PASSWORD=" + pgPassword,
			"POSTGRES_DB=" + pgDatabase,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return fmt.Errorf("start postgres: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@127.0.0.1:%s/%s?sslmode=disable",
		pgUser, pgPassword, resource.GetPort("5432/tcp"), pgDatabase)

	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := database.WaitForReady(ctx, dsn, 40, 500*time.Millisecond); err != nil {
			return err
		}
		db, err := database.Initialize(dsn, &database.Options{LogLevel: logger.Silent})
		if err != nil {
			return err
		}
		sharedDB = db
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect to test database: %w", err)
	}

	tables, err := database.TableNames()
	if err != nil {
		return err
	}
	quoted := make([]string, len(tables))
	for i, name := range tables {
		quoted[i] = `"` + name + `"`
	}
	truncateSQL = "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " RESTART IDENTITY CASCADE"

	sharedConfig = &config.Config{
		DatabaseURL:   dsn,
		Port:          "7008",
		LogLevel:      "debug",
		Environment:   "test",
		JWTSecret:     TestJWTSecret,
		JWTTTLMinutes: 60,
		MaxUploadMB:   10,
	}

	logrus.WithField("tables", len(tables)).Info("Test database ready")
	return nil
}

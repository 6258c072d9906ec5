package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for readiness ping
	"github.com/sirupsen/logrus"
	"gorm.io/gorm/schema"
)

// WaitForReady pings dsn until Postgres accepts connections, trying at most
// attempts times with delay between tries.
func WaitForReady(ctx context.Context, dsn string, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqlDB.Close()

	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, delay)
		err = sqlDB.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt%10 == 0 {
			logrus.WithError(err).Infof("Database not ready (%d/%d)", attempt, attempts)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", attempts, err)
}

// TableNames lists every table the migrations create, join tables included
func TableNames() ([]string, error) {
	cache := &sync.Map{}
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, model := range Models() {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		if err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		add(s.Table)
		for _, rel := range s.Relationships.Many2Many {
			if rel.JoinTable != nil {
				add(rel.JoinTable.Table)
			}
		}
	}
	return names, nil
}

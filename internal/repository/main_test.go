//go:build integration
// +build integration

package repository

import (
	"os"
	"testing"

	"taskboard-backend/internal/testutils"
)

func TestMain(m *testing.M) {
	os.Exit(testutils.RunIntegration(m))
}

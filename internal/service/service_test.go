package service

import (
	"path/filepath"
	"testing"
	"time"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
	"jandoedu/internal/repository"

	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func fixedTime() time.Time {
	return time.Date(2026, 3, 9, 14, 30, 45, 0, time.UTC)
}

func seedStudent(t *testing.T, db *database.DB, s *models.Student) {
	t.Helper()
	if err := repository.NewStudentRepository(db).Create(s); err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
}

func newTestProgressService(db *database.DB) *ProgressService {
	svc := NewProgressService(
		repository.NewProgressRepository(db),
		repository.NewStudentRepository(db),
		nil, "", zap.NewNop(),
	)
	svc.now = fixedTime
	return svc
}

func newTestResultService(db *database.DB) *ResultService {
	svc := NewResultService(db, zap.NewNop())
	svc.now = fixedTime
	return svc
}

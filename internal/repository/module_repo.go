package repository

import (
	"fmt"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
)

// ModuleRepository handles database operations for the Learning_Modules sheet
type ModuleRepository struct {
	db database.DBTX
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db database.DBTX) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// Create inserts a new learning module
func (r *ModuleRepository) Create(m *models.LearningModule) error {
	query := `
		INSERT INTO learning_modules
			(module_id, module_name, subject, year_level, description, total_steps, video_id, game_link, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		m.ModuleID, m.ModuleName, m.Subject, m.YearLevel,
		m.Description, m.TotalSteps, m.VideoID, m.GameLink, m.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

// ListActiveByYear retrieves active modules for a year level
func (r *ModuleRepository) ListActiveByYear(yearLevel string) ([]models.LearningModule, error) {
	query := `
		SELECT id, module_id, module_name, subject, year_level, description,
		       total_steps, video_id, game_link, status
		FROM learning_modules
		WHERE year_level = ? AND status = ?
		ORDER BY module_id ASC
	`
	return r.list(query, yearLevel, models.ModuleStatusActive)
}

// List retrieves all modules
func (r *ModuleRepository) List() ([]models.LearningModule, error) {
	query := `
		SELECT id, module_id, module_name, subject, year_level, description,
		       total_steps, video_id, game_link, status
		FROM learning_modules
		ORDER BY module_id ASC
	`
	return r.list(query)
}

func (r *ModuleRepository) list(query string, args ...interface{}) ([]models.LearningModule, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []models.LearningModule
	for rows.Next() {
		var m models.LearningModule
		if err := rows.Scan(
			&m.ID, &m.ModuleID, &m.ModuleName, &m.Subject, &m.YearLevel,
			&m.Description, &m.TotalSteps, &m.VideoID, &m.GameLink, &m.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}

	return modules, rows.Err()
}

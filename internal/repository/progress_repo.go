package repository

import (
	"database/sql"
	"fmt"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
)

// ProgressRepository handles database operations for the Student_Progress
// and Step_Details sheets
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = `
	id, student_code, module_id, steps_completed, total_steps,
	progress_percentage, current_step, started_date, last_updated,
	completed_date, time_spent_minutes
`

// GetByStudentAndModule retrieves the progress record for one (student, module)
// pair, matching the code case-insensitively. Returns nil without error when
// no record exists yet.
func (r *ProgressRepository) GetByStudentAndModule(code, moduleID string) (*models.ModuleProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM student_progress
		WHERE LOWER(student_code) = LOWER(?) AND module_id = ?
	`
	p := &models.ModuleProgress{}
	err := r.db.QueryRow(query, code, moduleID).Scan(
		&p.ID, &p.StudentCode, &p.ModuleID, &p.StepsCompleted, &p.TotalSteps,
		&p.ProgressPercentage, &p.CurrentStep, &p.StartedDate, &p.LastUpdated,
		&p.CompletedDate, &p.TimeSpentMinutes,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return p, nil
}

// ListByStudent retrieves all progress records for a student code
func (r *ProgressRepository) ListByStudent(code string) ([]models.ModuleProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM student_progress
		WHERE LOWER(student_code) = LOWER(?)
		ORDER BY module_id ASC
	`
	rows, err := r.db.Query(query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []models.ModuleProgress
	for rows.Next() {
		var p models.ModuleProgress
		if err := rows.Scan(
			&p.ID, &p.StudentCode, &p.ModuleID, &p.StepsCompleted, &p.TotalSteps,
			&p.ProgressPercentage, &p.CurrentStep, &p.StartedDate, &p.LastUpdated,
			&p.CompletedDate, &p.TimeSpentMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

// Create inserts a new progress record
func (r *ProgressRepository) Create(p *models.ModuleProgress) error {
	query := `
		INSERT INTO student_progress
			(student_code, module_id, steps_completed, total_steps, progress_percentage,
			 current_step, started_date, last_updated, completed_date, time_spent_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		p.StudentCode, p.ModuleID, p.StepsCompleted, p.TotalSteps, p.ProgressPercentage,
		p.CurrentStep, p.StartedDate, p.LastUpdated, p.CompletedDate, p.TimeSpentMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing progress record
func (r *ProgressRepository) Update(p *models.ModuleProgress) error {
	query := `
		UPDATE student_progress
		SET steps_completed = ?, progress_percentage = ?, current_step = ?,
		    last_updated = ?, completed_date = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		p.StepsCompleted, p.ProgressPercentage, p.CurrentStep,
		p.LastUpdated, p.CompletedDate, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// StepDetailExists reports whether the step completion was already logged
func (r *ProgressRepository) StepDetailExists(code, moduleID string, step int) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM step_details
		WHERE LOWER(student_code) = LOWER(?) AND module_id = ? AND step_number = ?
	`
	var count int
	if err := r.db.QueryRow(query, code, moduleID, step).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check step detail: %w", err)
	}
	return count > 0, nil
}

// InsertStepDetail appends one step-completion log row
func (r *ProgressRepository) InsertStepDetail(d *models.StepDetail) error {
	query := `
		INSERT INTO step_details
			(student_code, module_id, step_number, step_name, completed, completed_at, attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		d.StudentCode, d.ModuleID, d.StepNumber, d.StepName,
		d.Completed, d.CompletedAt, d.Attempts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert step detail: %w", err)
	}
	return nil
}

// ListStepDetails retrieves all step-detail rows, ordered for export
func (r *ProgressRepository) ListStepDetails() ([]models.StepDetail, error) {
	query := `
		SELECT id, student_code, module_id, step_number, step_name, completed, completed_at, attempts
		FROM step_details
		ORDER BY student_code, module_id, step_number
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query step details: %w", err)
	}
	defer rows.Close()

	var details []models.StepDetail
	for rows.Next() {
		var d models.StepDetail
		if err := rows.Scan(
			&d.ID, &d.StudentCode, &d.ModuleID, &d.StepNumber,
			&d.StepName, &d.Completed, &d.CompletedAt, &d.Attempts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan step detail: %w", err)
		}
		details = append(details, d)
	}

	return details, rows.Err()
}

// ListAll retrieves every progress record, ordered for export
func (r *ProgressRepository) ListAll() ([]models.ModuleProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM student_progress
		ORDER BY student_code, module_id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []models.ModuleProgress
	for rows.Next() {
		var p models.ModuleProgress
		if err := rows.Scan(
			&p.ID, &p.StudentCode, &p.ModuleID, &p.StepsCompleted, &p.TotalSteps,
			&p.ProgressPercentage, &p.CurrentStep, &p.StartedDate, &p.LastUpdated,
			&p.CompletedDate, &p.TimeSpentMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

package repository

import (
	"database/sql"
	"fmt"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
)

// StudentRepository handles database operations for the Students sheet
type StudentRepository struct {
	db database.DBTX
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db database.DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetByCode retrieves a student by code, case-insensitively.
// Returns nil without error when no student matches.
func (r *StudentRepository) GetByCode(code string) (*models.Student, error) {
	query := `
		SELECT id, name, code, rewards, year_level, last_login, total_games, total_score
		FROM students
		WHERE LOWER(code) = LOWER(?)
	`
	student := &models.Student{}
	err := r.db.QueryRow(query, code).Scan(
		&student.ID,
		&student.Name,
		&student.Code,
		&student.Rewards,
		&student.YearLevel,
		&student.LastLogin,
		&student.TotalGames,
		&student.TotalScore,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}

// Create inserts a new student row
func (r *StudentRepository) Create(student *models.Student) error {
	query := `
		INSERT INTO students (name, code, rewards, year_level, last_login, total_games, total_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		student.Name,
		student.Code,
		student.Rewards,
		student.YearLevel,
		student.LastLogin,
		student.TotalGames,
		student.TotalScore,
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// List retrieves all students ordered by name
func (r *StudentRepository) List() ([]models.Student, error) {
	query := `
		SELECT id, name, code, rewards, year_level, last_login, total_games, total_score
		FROM students
		ORDER BY name ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Code,
			&s.Rewards,
			&s.YearLevel,
			&s.LastLogin,
			&s.TotalGames,
			&s.TotalScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// UpdateLastLogin stamps the student's last-login column
func (r *StudentRepository) UpdateLastLogin(code, timestamp string) error {
	query := "UPDATE students SET last_login = ? WHERE LOWER(code) = LOWER(?)"
	if _, err := r.db.Exec(query, timestamp, code); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdateRewards replaces the student's reward set
func (r *StudentRepository) UpdateRewards(code, rewards string) error {
	query := "UPDATE students SET rewards = ? WHERE LOWER(code) = LOWER(?)"
	if _, err := r.db.Exec(query, rewards, code); err != nil {
		return fmt.Errorf("failed to update rewards: %w", err)
	}
	return nil
}

// IncrementStats bumps the games-played counter and adds to the total score
func (r *StudentRepository) IncrementStats(code string, scoreDelta int) error {
	query := `
		UPDATE students
		SET total_games = total_games + 1, total_score = total_score + ?
		WHERE LOWER(code) = LOWER(?)
	`
	if _, err := r.db.Exec(query, scoreDelta, code); err != nil {
		return fmt.Errorf("failed to update student stats: %w", err)
	}
	return nil
}

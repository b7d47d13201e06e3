package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrNoScoreColumn = errors.New("no 'Score' column found")
	ErrRowNotFound   = errors.New("row not found")
)

// ResultRepository handles the dynamically-named game sheets and the quiz
// sheets. Rows carry 1-based spreadsheet row numbers (header = 1, data from 2)
// so the PUT score patch can address them the way the original did.
type ResultRepository struct {
	db database.DBTX
}

// NewResultRepository creates a new result repository
func NewResultRepository(db database.DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// AppendSummary appends a summary row to a game sheet, assigning the next row number
func (r *ResultRepository) AppendSummary(result *models.GameResult) error {
	rowNum, err := r.nextRowNum("game_results", result.SheetName)
	if err != nil {
		return err
	}
	result.RowNum = rowNum

	query := `
		INSERT INTO game_results
			(sheet_name, row_num, game, student_name, student_code, score, result_date, result_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		result.SheetName, result.RowNum, result.Game, result.Name,
		result.Code, result.Score, result.Date, result.Time,
	)
	if err != nil {
		return fmt.Errorf("failed to append result row: %w", err)
	}
	return nil
}

// AppendResponse appends a per-question row to a "<sheet>.Responses" detail sheet
func (r *ResultRepository) AppendResponse(resp *models.GameResponse) error {
	rowNum, err := r.nextRowNum("game_responses", resp.SheetName)
	if err != nil {
		return err
	}
	resp.RowNum = rowNum

	query := `
		INSERT INTO game_responses
			(sheet_name, row_num, game, student_name, student_code,
			 question, correct_answer, student_answer, result, result_date, result_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		resp.SheetName, resp.RowNum, resp.Game, resp.Name, resp.Code,
		resp.Question, resp.CorrectAnswer, resp.StudentAnswer, resp.Result,
		resp.Date, resp.Time,
	)
	if err != nil {
		return fmt.Errorf("failed to append response row: %w", err)
	}
	return nil
}

// AppendQuizResult appends a quiz summary row
func (r *ResultRepository) AppendQuizResult(q *models.QuizResult) error {
	rowNum, err := r.nextQuizRowNum("quiz_results")
	if err != nil {
		return err
	}
	q.RowNum = rowNum

	query := `
		INSERT INTO quiz_results
			(row_num, module_id, student_name, student_code, score,
			 total_questions, percentage, result_date, result_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		q.RowNum, q.ModuleID, q.StudentName, q.StudentCode, q.Score,
		q.TotalQuestions, q.Percentage, q.Date, q.Time,
	)
	if err != nil {
		return fmt.Errorf("failed to append quiz result: %w", err)
	}
	return nil
}

// AppendQuizResponse appends a quiz per-question row
func (r *ResultRepository) AppendQuizResponse(q *models.QuizResponse) error {
	rowNum, err := r.nextQuizRowNum("quiz_responses")
	if err != nil {
		return err
	}
	q.RowNum = rowNum

	query := `
		INSERT INTO quiz_responses
			(row_num, module_id, student_name, student_code, question_number,
			 question, correct_answer, student_answer, is_correct, result_date, result_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		q.RowNum, q.ModuleID, q.StudentName, q.StudentCode, q.QuestionNumber,
		q.Question, q.CorrectAnswer, q.StudentAnswer, q.IsCorrect, q.Date, q.Time,
	)
	if err != nil {
		return fmt.Errorf("failed to append quiz response: %w", err)
	}
	return nil
}

// ListGameSheets returns the names of all game sheets that hold at least one
// row, including detail and quiz sheets, sorted alphabetically. The reserved
// core tables are not sheets and never appear here.
func (r *ResultRepository) ListGameSheets() ([]string, error) {
	names := map[string]bool{}

	for _, q := range []string{
		"SELECT DISTINCT sheet_name FROM game_results",
		"SELECT DISTINCT sheet_name FROM game_responses",
	} {
		rows, err := r.db.Query(q)
		if err != nil {
			return nil, fmt.Errorf("failed to list sheets: %w", err)
		}
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan sheet name: %w", err)
			}
			names[name] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	var quizCount int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM quiz_results").Scan(&quizCount); err != nil {
		return nil, fmt.Errorf("failed to count quiz results: %w", err)
	}
	if quizCount > 0 {
		names[models.SheetQuizResults] = true
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM quiz_responses").Scan(&quizCount); err != nil {
		return nil, fmt.Errorf("failed to count quiz responses: %w", err)
	}
	if quizCount > 0 {
		names[models.SheetQuizResponses] = true
	}

	sheets := make([]string, 0, len(names))
	for name := range names {
		sheets = append(sheets, name)
	}
	sort.Strings(sheets)
	return sheets, nil
}

// SummaryRows retrieves all summary rows of one game sheet in row order
func (r *ResultRepository) SummaryRows(sheet string) ([]models.GameResult, error) {
	query := `
		SELECT id, sheet_name, row_num, game, student_name, student_code,
		       score, result_date, result_time
		FROM game_results
		WHERE sheet_name = ?
		ORDER BY row_num ASC
	`
	return r.scanSummaries(query, sheet)
}

// AllSummaryRows aggregates summary rows across every game sheet
func (r *ResultRepository) AllSummaryRows() ([]models.GameResult, error) {
	query := `
		SELECT id, sheet_name, row_num, game, student_name, student_code,
		       score, result_date, result_time
		FROM game_results
		ORDER BY sheet_name, row_num ASC
	`
	return r.scanSummaries(query)
}

func (r *ResultRepository) scanSummaries(query string, args ...interface{}) ([]models.GameResult, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		var g models.GameResult
		if err := rows.Scan(
			&g.ID, &g.SheetName, &g.RowNum, &g.Game, &g.Name, &g.Code,
			&g.Score, &g.Date, &g.Time,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, g)
	}

	return results, rows.Err()
}

// ResponseRows retrieves all rows of one detail sheet in row order
func (r *ResultRepository) ResponseRows(sheet string) ([]models.GameResponse, error) {
	query := `
		SELECT id, sheet_name, row_num, game, student_name, student_code,
		       question, correct_answer, student_answer, result, result_date, result_time
		FROM game_responses
		WHERE sheet_name = ?
		ORDER BY row_num ASC
	`
	rows, err := r.db.Query(query, sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var responses []models.GameResponse
	for rows.Next() {
		var g models.GameResponse
		if err := rows.Scan(
			&g.ID, &g.SheetName, &g.RowNum, &g.Game, &g.Name, &g.Code,
			&g.Question, &g.CorrectAnswer, &g.StudentAnswer, &g.Result,
			&g.Date, &g.Time,
		); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, g)
	}

	return responses, rows.Err()
}

// QuizRows retrieves all quiz summary rows in row order
func (r *ResultRepository) QuizRows() ([]models.QuizResult, error) {
	query := `
		SELECT id, row_num, module_id, student_name, student_code, score,
		       total_questions, percentage, result_date, result_time
		FROM quiz_results
		ORDER BY row_num ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz results: %w", err)
	}
	defer rows.Close()

	var results []models.QuizResult
	for rows.Next() {
		var q models.QuizResult
		if err := rows.Scan(
			&q.ID, &q.RowNum, &q.ModuleID, &q.StudentName, &q.StudentCode,
			&q.Score, &q.TotalQuestions, &q.Percentage, &q.Date, &q.Time,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		results = append(results, q)
	}

	return results, rows.Err()
}

// QuizResponseRows retrieves all quiz per-question rows in row order
func (r *ResultRepository) QuizResponseRows() ([]models.QuizResponse, error) {
	query := `
		SELECT id, row_num, module_id, student_name, student_code, question_number,
		       question, correct_answer, student_answer, is_correct, result_date, result_time
		FROM quiz_responses
		ORDER BY row_num ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz responses: %w", err)
	}
	defer rows.Close()

	var responses []models.QuizResponse
	for rows.Next() {
		var q models.QuizResponse
		if err := rows.Scan(
			&q.ID, &q.RowNum, &q.ModuleID, &q.StudentName, &q.StudentCode,
			&q.QuestionNumber, &q.Question, &q.CorrectAnswer, &q.StudentAnswer,
			&q.IsCorrect, &q.Date, &q.Time,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quiz response: %w", err)
		}
		responses = append(responses, q)
	}

	return responses, rows.Err()
}

// UpdateScore patches the score cell of a sheet row addressed by its 1-based
// spreadsheet row number. Detail sheets have no score column.
func (r *ResultRepository) UpdateScore(sheet string, row int, newScore string) error {
	if strings.Contains(sheet, models.ResponsesSheetSuffix) {
		// Header has no Score column on detail sheets
		exists, err := r.sheetHasRows("game_responses", sheet)
		if err != nil {
			return err
		}
		if !exists {
			return ErrSheetNotFound
		}
		return ErrNoScoreColumn
	}

	if models.IsQuizSheet(sheet) {
		result, err := r.db.Exec("UPDATE quiz_results SET score = ? WHERE row_num = ?", newScore, row)
		if err != nil {
			return fmt.Errorf("failed to update quiz score: %w", err)
		}
		return checkRowUpdated(result.RowsAffected())
	}

	exists, err := r.sheetHasRows("game_results", sheet)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSheetNotFound
	}

	result, err := r.db.Exec(
		"UPDATE game_results SET score = ? WHERE sheet_name = ? AND row_num = ?",
		newScore, sheet, row,
	)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	return checkRowUpdated(result.RowsAffected())
}

func checkRowUpdated(affected int64, err error) error {
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (r *ResultRepository) sheetHasRows(table, sheet string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM " + table + " WHERE sheet_name = ?"
	if err := r.db.QueryRow(query, sheet).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check sheet: %w", err)
	}
	return count > 0, nil
}

// nextRowNum assigns the next spreadsheet row for a sheet. An empty sheet
// starts at row 2, leaving row 1 for the header.
func (r *ResultRepository) nextRowNum(table, sheet string) (int, error) {
	var next int
	query := "SELECT COALESCE(MAX(row_num), 1) + 1 FROM " + table + " WHERE sheet_name = ?"
	if err := r.db.QueryRow(query, sheet).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next row: %w", err)
	}
	return next, nil
}

func (r *ResultRepository) nextQuizRowNum(table string) (int, error) {
	var next int
	query := "SELECT COALESCE(MAX(row_num), 1) + 1 FROM " + table
	if err := r.db.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next row: %w", err)
	}
	return next, nil
}

package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
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

func TestAppendSummaryRowNumbering(t *testing.T) {
	repo := NewResultRepository(newTestDB(t))

	first := &models.GameResult{SheetName: "Games", Game: "G", Code: "a"}
	if err := repo.AppendSummary(first); err != nil {
		t.Fatalf("first append: %v", err)
	}
	second := &models.GameResult{SheetName: "Games", Game: "G", Code: "b"}
	if err := repo.AppendSummary(second); err != nil {
		t.Fatalf("second append: %v", err)
	}
	other := &models.GameResult{SheetName: "Other", Game: "O", Code: "c"}
	if err := repo.AppendSummary(other); err != nil {
		t.Fatalf("other sheet append: %v", err)
	}

	// Row 1 is the header, so the first data row of every sheet is 2
	if first.RowNum != 2 {
		t.Errorf("first row = %d, want 2", first.RowNum)
	}
	if second.RowNum != 3 {
		t.Errorf("second row = %d, want 3", second.RowNum)
	}
	if other.RowNum != 2 {
		t.Errorf("other sheet first row = %d, want 2 (numbering is per sheet)", other.RowNum)
	}
}

func TestListGameSheets(t *testing.T) {
	db := newTestDB(t)
	repo := NewResultRepository(db)

	sheets, err := repo.ListGameSheets()
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if len(sheets) != 0 {
		t.Errorf("sheets = %v, want none", sheets)
	}

	if err := repo.AppendSummary(&models.GameResult{SheetName: "Games"}); err != nil {
		t.Fatalf("append summary: %v", err)
	}
	if err := repo.AppendResponse(&models.GameResponse{SheetName: "Games.Responses"}); err != nil {
		t.Fatalf("append response: %v", err)
	}
	if err := repo.AppendQuizResult(&models.QuizResult{ModuleID: "M"}); err != nil {
		t.Fatalf("append quiz: %v", err)
	}

	sheets, err = repo.ListGameSheets()
	if err != nil {
		t.Fatalf("list sheets: %v", err)
	}

	want := []string{"Games", "Games.Responses", models.SheetQuizResults}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheets[%d] = %q, want %q (sorted)", i, sheets[i], want[i])
		}
	}
}

func TestUpdateScoreErrors(t *testing.T) {
	db := newTestDB(t)
	repo := NewResultRepository(db)

	if err := repo.AppendSummary(&models.GameResult{SheetName: "Games", Score: "2/5"}); err != nil {
		t.Fatalf("seed summary: %v", err)
	}
	if err := repo.AppendResponse(&models.GameResponse{SheetName: "Games.Responses"}); err != nil {
		t.Fatalf("seed response: %v", err)
	}

	tests := []struct {
		name    string
		sheet   string
		row     int
		wantErr error
	}{
		{name: "patches existing row", sheet: "Games", row: 2},
		{name: "unknown sheet", sheet: "Missing", row: 2, wantErr: ErrSheetNotFound},
		{name: "detail sheet has no score column", sheet: "Games.Responses", row: 2, wantErr: ErrNoScoreColumn},
		{name: "unknown detail sheet", sheet: "Missing.Responses", row: 2, wantErr: ErrSheetNotFound},
		{name: "row out of range", sheet: "Games", row: 99, wantErr: ErrRowNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateScore(tt.sheet, tt.row, "5/5")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateScore(%q, %d) error = %v, want %v", tt.sheet, tt.row, err, tt.wantErr)
			}
		})
	}
}

func TestUpdateScoreOnQuizSheet(t *testing.T) {
	db := newTestDB(t)
	repo := NewResultRepository(db)

	q := &models.QuizResult{ModuleID: "M", Score: 3}
	if err := repo.AppendQuizResult(q); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	if err := repo.UpdateScore(models.SheetQuizResults, q.RowNum, "5"); err != nil {
		t.Fatalf("UpdateScore() error = %v", err)
	}

	rows, err := repo.QuizRows()
	if err != nil {
		t.Fatalf("quiz rows: %v", err)
	}
	if rows[0].Score != 5 {
		t.Errorf("score = %d, want 5", rows[0].Score)
	}
}

package service

import (
	"fmt"
	"strconv"

	"jandoedu/internal/models"
	"jandoedu/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SheetSpec is one sheet of the export workbook
type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

// ExportService writes the whole database out as a spreadsheet workbook,
// one sheet per table plus one sheet per game sheet, mirroring the layout
// the teacher dashboard expects.
type ExportService struct {
	studentRepo  *repository.StudentRepository
	moduleRepo   *repository.ModuleRepository
	progressRepo *repository.ProgressRepository
	resultRepo   *repository.ResultRepository
	logger       *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(
	studentRepo *repository.StudentRepository,
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.ProgressRepository,
	resultRepo *repository.ResultRepository,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		studentRepo:  studentRepo,
		moduleRepo:   moduleRepo,
		progressRepo: progressRepo,
		resultRepo:   resultRepo,
		logger:       logger,
	}
}

// ExportWorkbook writes all sheets to an xlsx file at path
func (s *ExportService) ExportWorkbook(path string) error {
	sheets, err := s.buildSheets()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, spec := range sheets {
		name := spec.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", name, err)
			}
		}

		header := make([]interface{}, len(spec.Header))
		for c, h := range spec.Header {
			header[c] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		end, err := excelize.CoordinatesToCellName(len(spec.Header), 1)
		if err != nil {
			return fmt.Errorf("failed to compute header range: %w", err)
		}
		if err := f.SetCellStyle(name, "A1", end, bold); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}

		for r, row := range spec.Rows {
			cells := make([]interface{}, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return fmt.Errorf("failed to compute row cell: %w", err)
			}
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	s.logger.Info("workbook exported", zap.String("path", path), zap.Int("sheets", len(sheets)))
	return nil
}

func (s *ExportService) buildSheets() ([]SheetSpec, error) {
	var sheets []SheetSpec

	students, err := s.studentRepo.List()
	if err != nil {
		return nil, err
	}
	studentSheet := SheetSpec{
		Title:  models.SheetStudents,
		Header: []string{"Name", "Code", "Rewards", "Year_Level", "Last_Login", "Total_Games", "Total_Score"},
	}
	for _, st := range students {
		studentSheet.Rows = append(studentSheet.Rows, []string{
			st.Name, st.Code, st.Rewards, st.YearLevel, st.LastLogin,
			strconv.Itoa(st.TotalGames), strconv.Itoa(st.TotalScore),
		})
	}
	sheets = append(sheets, studentSheet)

	modules, err := s.moduleRepo.List()
	if err != nil {
		return nil, err
	}
	moduleSheet := SheetSpec{
		Title:  models.SheetModules,
		Header: []string{"Module_ID", "Module_Name", "Subject", "Year_Level", "Description", "Total_Steps", "Video_ID", "Game_Link", "Status"},
	}
	for _, m := range modules {
		moduleSheet.Rows = append(moduleSheet.Rows, []string{
			m.ModuleID, m.ModuleName, m.Subject, m.YearLevel, m.Description,
			strconv.Itoa(m.TotalSteps), m.VideoID, m.GameLink, m.Status,
		})
	}
	sheets = append(sheets, moduleSheet)

	progress, err := s.progressRepo.ListAll()
	if err != nil {
		return nil, err
	}
	progressSheet := SheetSpec{
		Title: models.SheetProgress,
		Header: []string{
			"Student_Code", "Module_ID", "Steps_Completed", "Total_Steps",
			"Progress_Percentage", "Current_Step", "Started_Date", "Last_Updated",
			"Completed_Date", "Time_Spent_Minutes",
		},
	}
	for _, p := range progress {
		progressSheet.Rows = append(progressSheet.Rows, []string{
			p.StudentCode, p.ModuleID, p.StepsCompleted, strconv.Itoa(p.TotalSteps),
			strconv.Itoa(p.ProgressPercentage), strconv.Itoa(p.CurrentStep),
			p.StartedDate, p.LastUpdated, p.CompletedDate, strconv.Itoa(p.TimeSpentMinutes),
		})
	}
	sheets = append(sheets, progressSheet)

	details, err := s.progressRepo.ListStepDetails()
	if err != nil {
		return nil, err
	}
	detailSheet := SheetSpec{
		Title:  models.SheetStepDetails,
		Header: []string{"Student_Code", "Module_ID", "Step_Number", "Step_Name", "Completed", "Completed_At", "Attempts"},
	}
	for _, d := range details {
		completed := "No"
		if d.Completed {
			completed = "Yes"
		}
		detailSheet.Rows = append(detailSheet.Rows, []string{
			d.StudentCode, d.ModuleID, strconv.Itoa(d.StepNumber), d.StepName,
			completed, d.CompletedAt, strconv.Itoa(d.Attempts),
		})
	}
	sheets = append(sheets, detailSheet)

	gameSheets, err := s.buildGameSheets()
	if err != nil {
		return nil, err
	}
	sheets = append(sheets, gameSheets...)

	return sheets, nil
}

func (s *ExportService) buildGameSheets() ([]SheetSpec, error) {
	names, err := s.resultRepo.ListGameSheets()
	if err != nil {
		return nil, err
	}

	var sheets []SheetSpec
	for _, name := range names {
		switch {
		case models.IsQuizSheet(name):
			rows, err := s.resultRepo.QuizRows()
			if err != nil {
				return nil, err
			}
			spec := SheetSpec{
				Title:  name,
				Header: []string{"Module_ID", "Student_Name", "Student_Code", "Score", "Total_Questions", "Percentage", "Date", "Time"},
			}
			for _, q := range rows {
				spec.Rows = append(spec.Rows, []string{
					q.ModuleID, q.StudentName, q.StudentCode, strconv.Itoa(q.Score),
					strconv.Itoa(q.TotalQuestions), q.Percentage, q.Date, q.Time,
				})
			}
			sheets = append(sheets, spec)

		case name == models.SheetQuizResponses:
			rows, err := s.resultRepo.QuizResponseRows()
			if err != nil {
				return nil, err
			}
			spec := SheetSpec{
				Title: name,
				Header: []string{
					"Module_ID", "Student_Name", "Student_Code", "Question_Number",
					"Question", "Correct_Answer", "Student_Answer", "Is_Correct", "Date", "Time",
				},
			}
			for _, q := range rows {
				spec.Rows = append(spec.Rows, []string{
					q.ModuleID, q.StudentName, q.StudentCode, strconv.Itoa(q.QuestionNumber),
					q.Question, q.CorrectAnswer, q.StudentAnswer, q.IsCorrect, q.Date, q.Time,
				})
			}
			sheets = append(sheets, spec)

		case isResponsesSheet(name):
			rows, err := s.resultRepo.ResponseRows(name)
			if err != nil {
				return nil, err
			}
			spec := SheetSpec{
				Title:  name,
				Header: []string{"Game", "Name", "Code", "Question", "CorrectAnswer", "StudentAnswer", "Result", "Date", "Time"},
			}
			for _, g := range rows {
				spec.Rows = append(spec.Rows, []string{
					g.Game, g.Name, g.Code, g.Question, g.CorrectAnswer,
					g.StudentAnswer, g.Result, g.Date, g.Time,
				})
			}
			sheets = append(sheets, spec)

		default:
			rows, err := s.resultRepo.SummaryRows(name)
			if err != nil {
				return nil, err
			}
			spec := SheetSpec{
				Title:  name,
				Header: []string{"Game", "Name", "Code", "Score", "Date", "Time"},
			}
			for _, g := range rows {
				spec.Rows = append(spec.Rows, []string{g.Game, g.Name, g.Code, g.Score, g.Date, g.Time})
			}
			sheets = append(sheets, spec)
		}
	}

	return sheets, nil
}

func isResponsesSheet(name string) bool {
	n := len(models.ResponsesSheetSuffix)
	return len(name) > n && name[len(name)-n:] == models.ResponsesSheetSuffix
}

package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
	"jandoedu/internal/repository"

	"go.uber.org/zap"
)

var ErrMissingSheetName = errors.New("missing sheet name")

const defaultQuestionCount = 5

// AnswerResponse is one per-question answer as posted by a game or quiz page.
// Older game builds send answer/correct, newer ones studentAnswer/correctAnswer;
// values may be strings, numbers or booleans.
type AnswerResponse struct {
	Question      string      `json:"question"`
	Answer        interface{} `json:"answer"`
	Correct       interface{} `json:"correct"`
	StudentAnswer interface{} `json:"studentAnswer"`
	CorrectAnswer interface{} `json:"correctAnswer"`
}

// Answers returns the student and correct answers as strings, preferring the
// newer field names when both shapes are present.
func (a AnswerResponse) Answers() (student, correct string) {
	student = answerString(a.StudentAnswer)
	if student == "" {
		student = answerString(a.Answer)
	}
	correct = answerString(a.CorrectAnswer)
	if correct == "" {
		correct = answerString(a.Correct)
	}
	return student, correct
}

// IsCorrect compares the answers ignoring case and surrounding whitespace
func (a AnswerResponse) IsCorrect() bool {
	student, correct := a.Answers()
	return strings.EqualFold(strings.TrimSpace(student), strings.TrimSpace(correct))
}

func answerString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GameSubmission is one finished game posted by a game page
type GameSubmission struct {
	Code           string           `json:"code"`
	Game           string           `json:"game"`
	Sheet          string           `json:"sheet"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Responses      []AnswerResponse `json:"responses"`
	Reward         string           `json:"reward"`
}

// QuizSubmission is one finished module quiz
type QuizSubmission struct {
	Code           string           `json:"code"`
	ModuleID       string           `json:"moduleId"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Responses      []AnswerResponse `json:"responses"`
}

// QuizOutcome is the acknowledgement returned to the quiz page
type QuizOutcome struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
}

// ResultService records finished games and quizzes. Each submission appends a
// summary row, appends the per-question rows, and rolls the score into the
// student's lifetime counters, all in one transaction.
type ResultService struct {
	db     *database.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewResultService creates a new result service
func NewResultService(db *database.DB, logger *zap.Logger) *ResultService {
	return &ResultService{db: db, logger: logger, now: time.Now}
}

// RecordGame stores one game submission. Unknown student codes are still
// recorded, with the name "Unknown" and no counter update.
func (s *ResultService) RecordGame(sub GameSubmission) error {
	if sub.Code == "" {
		return ErrMissingStudentCode
	}

	sheet := sub.Sheet
	if sheet == "" {
		sheet = models.DefaultResultsSheet
	}
	game := sub.Game
	if game == "" {
		game = sheet
	}
	total := sub.TotalQuestions
	if total <= 0 {
		total = defaultQuestionCount
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	studentRepo := repository.NewStudentRepository(tx)
	resultRepo := repository.NewResultRepository(tx)

	student, err := studentRepo.GetByCode(sub.Code)
	if err != nil {
		return err
	}

	name := "Unknown"
	if student != nil {
		name = student.Name
		if err := studentRepo.IncrementStats(student.Code, sub.Score); err != nil {
			return err
		}
	}

	now := s.now()
	summary := &models.GameResult{
		SheetName: sheet,
		Game:      game,
		Name:      name,
		Code:      sub.Code,
		Score:     fmt.Sprintf("%d/%d", sub.Score, total),
		Date:      now.Format(dateLayout),
		Time:      now.Format(shortTimeLayout),
	}
	if err := resultRepo.AppendSummary(summary); err != nil {
		return err
	}

	for _, resp := range sub.Responses {
		studentAnswer, correctAnswer := resp.Answers()
		result := "Incorrect"
		if resp.IsCorrect() {
			result = "Correct"
		}
		row := &models.GameResponse{
			SheetName:     sheet + models.ResponsesSheetSuffix,
			Game:          game,
			Name:          name,
			Code:          sub.Code,
			Question:      resp.Question,
			CorrectAnswer: correctAnswer,
			StudentAnswer: studentAnswer,
			Result:        result,
			Date:          summary.Date,
			Time:          summary.Time,
		}
		if err := resultRepo.AppendResponse(row); err != nil {
			return err
		}
	}

	if sub.Reward != "" && student != nil {
		if student.AddReward(sub.Reward) {
			if err := studentRepo.UpdateRewards(student.Code, student.Rewards); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}

	s.logger.Info("game result recorded",
		zap.String("code", sub.Code),
		zap.String("sheet", sheet),
		zap.Int("score", sub.Score),
		zap.Int("responses", len(sub.Responses)),
	)
	return nil
}

// RecordQuiz stores one quiz submission and returns the acknowledgement
func (s *ResultService) RecordQuiz(sub QuizSubmission) (*QuizOutcome, error) {
	if sub.Code == "" {
		return nil, ErrMissingStudentCode
	}
	if sub.ModuleID == "" {
		return nil, ErrMissingModuleID
	}

	total := sub.TotalQuestions
	if total <= 0 {
		total = defaultQuestionCount
	}
	percentage := int(math.Round(float64(sub.Score) / float64(total) * 100))

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	studentRepo := repository.NewStudentRepository(tx)
	resultRepo := repository.NewResultRepository(tx)

	student, err := studentRepo.GetByCode(sub.Code)
	if err != nil {
		return nil, err
	}
	name := "Unknown"
	if student != nil {
		name = student.Name
	}

	now := s.now()
	summary := &models.QuizResult{
		ModuleID:       sub.ModuleID,
		StudentName:    name,
		StudentCode:    sub.Code,
		Score:          sub.Score,
		TotalQuestions: total,
		Percentage:     strconv.Itoa(percentage) + "%",
		Date:           now.Format(dateLayout),
		Time:           now.Format(timeLayout),
	}
	if err := resultRepo.AppendQuizResult(summary); err != nil {
		return nil, err
	}

	for i, resp := range sub.Responses {
		studentAnswer, correctAnswer := resp.Answers()
		isCorrect := "No"
		if resp.IsCorrect() {
			isCorrect = "Yes"
		}
		row := &models.QuizResponse{
			ModuleID:       sub.ModuleID,
			StudentName:    name,
			StudentCode:    sub.Code,
			QuestionNumber: i + 1,
			Question:       resp.Question,
			CorrectAnswer:  correctAnswer,
			StudentAnswer:  studentAnswer,
			IsCorrect:      isCorrect,
			Date:           summary.Date,
			Time:           summary.Time,
		}
		if err := resultRepo.AppendQuizResponse(row); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quiz result: %w", err)
	}

	s.logger.Info("quiz result recorded",
		zap.String("code", sub.Code),
		zap.String("module", sub.ModuleID),
		zap.Int("percentage", percentage),
	)

	return &QuizOutcome{
		Success:        true,
		Message:        "Quiz results saved",
		Score:          sub.Score,
		TotalQuestions: total,
		Percentage:     percentage,
	}, nil
}

// PatchScore updates the score cell of one sheet row
func (s *ResultService) PatchScore(sheet string, row int, newScore string) error {
	if sheet == "" {
		return ErrMissingSheetName
	}
	resultRepo := repository.NewResultRepository(s.db)
	return resultRepo.UpdateScore(sheet, row, newScore)
}

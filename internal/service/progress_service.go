package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jandoedu/internal/models"
	"jandoedu/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrMissingStudentCode = errors.New("missing student code")
	ErrMissingModuleID    = errors.New("missing module ID")
)

const defaultTotalSteps = 4

// ProgressUpdate is one step-completion event posted by a lesson page
type ProgressUpdate struct {
	StudentCode string `json:"studentCode"`
	ModuleID    string `json:"moduleId"`
	StepNumber  int    `json:"stepNumber"`
	TotalSteps  int    `json:"totalSteps"`
	StepName    string `json:"stepName"`
}

// ProgressService applies step-completion events to progress records.
// Updates are idempotent: replaying a step is a no-op, the step set only
// grows, and the percentage never moves backwards.
type ProgressService struct {
	progressRepo *repository.ProgressRepository
	studentRepo  *repository.StudentRepository
	emailService *EmailService
	teacherEmail string
	logger       *zap.Logger
	now          func() time.Time
}

// NewProgressService creates a new progress service. emailService may be nil
// or disabled; completion notifications are best-effort either way.
func NewProgressService(
	progressRepo *repository.ProgressRepository,
	studentRepo *repository.StudentRepository,
	emailService *EmailService,
	teacherEmail string,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		studentRepo:  studentRepo,
		emailService: emailService,
		teacherEmail: teacherEmail,
		logger:       logger,
		now:          time.Now,
	}
}

// RecordStep applies one step completion and returns the resulting record
func (s *ProgressService) RecordStep(ctx context.Context, upd ProgressUpdate) (*models.ModuleProgress, error) {
	if upd.StudentCode == "" {
		return nil, ErrMissingStudentCode
	}
	if upd.ModuleID == "" {
		return nil, ErrMissingModuleID
	}

	totalSteps := upd.TotalSteps
	if totalSteps <= 0 {
		totalSteps = defaultTotalSteps
	}

	stamp := ProgressStamp(s.now())

	record, err := s.progressRepo.GetByStudentAndModule(upd.StudentCode, upd.ModuleID)
	if err != nil {
		return nil, err
	}

	wasComplete := record != nil && record.IsComplete()

	if record == nil {
		steps := []int{upd.StepNumber}
		record = &models.ModuleProgress{
			StudentCode:        upd.StudentCode,
			ModuleID:           upd.ModuleID,
			StepsCompleted:     models.FormatSteps(steps),
			TotalSteps:         totalSteps,
			ProgressPercentage: models.StepPercentage(len(steps), totalSteps),
			CurrentStep:        models.NextIncompleteStep(steps, totalSteps),
			StartedDate:        stamp,
			LastUpdated:        stamp,
		}
		if record.IsComplete() {
			record.CompletedDate = stamp
		}
		if err := s.progressRepo.Create(record); err != nil {
			return nil, err
		}
	} else {
		steps := record.Steps()
		if !models.ContainsStep(steps, upd.StepNumber) {
			steps = append(steps, upd.StepNumber)
		}
		record.StepsCompleted = models.FormatSteps(models.ParseSteps(models.FormatSteps(steps)))
		record.ProgressPercentage = models.StepPercentage(len(models.ParseSteps(record.StepsCompleted)), totalSteps)
		record.CurrentStep = models.NextIncompleteStep(record.Steps(), totalSteps)
		record.LastUpdated = stamp
		if record.IsComplete() && record.CompletedDate == "" {
			record.CompletedDate = stamp
		}
		if err := s.progressRepo.Update(record); err != nil {
			return nil, err
		}
	}

	if err := s.logStepDetail(upd, stamp); err != nil {
		return nil, err
	}

	if record.IsComplete() && !wasComplete {
		s.notifyCompletion(ctx, upd.StudentCode, upd.ModuleID)
	}

	return record, nil
}

// ListByStudent retrieves all progress records for a code
func (s *ProgressService) ListByStudent(code string) ([]models.ModuleProgress, error) {
	return s.progressRepo.ListByStudent(code)
}

func (s *ProgressService) logStepDetail(upd ProgressUpdate, stamp string) error {
	exists, err := s.progressRepo.StepDetailExists(upd.StudentCode, upd.ModuleID, upd.StepNumber)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	stepName := upd.StepName
	if stepName == "" {
		stepName = fmt.Sprintf("Step %d", upd.StepNumber)
	}

	return s.progressRepo.InsertStepDetail(&models.StepDetail{
		StudentCode: upd.StudentCode,
		ModuleID:    upd.ModuleID,
		StepNumber:  upd.StepNumber,
		StepName:    stepName,
		Completed:   true,
		CompletedAt: stamp,
		Attempts:    1,
	})
}

// notifyCompletion sends the module-completion email. Failures are logged
// and never surfaced: the progress write has already been committed.
func (s *ProgressService) notifyCompletion(ctx context.Context, code, moduleID string) {
	if s.emailService == nil || !s.emailService.IsEnabled() || s.teacherEmail == "" {
		return
	}

	studentName := code
	if s.studentRepo != nil {
		if student, err := s.studentRepo.GetByCode(code); err == nil && student != nil {
			studentName = student.Name
		}
	}

	if err := s.emailService.SendModuleCompletionEmail(ctx, s.teacherEmail, studentName, code, moduleID); err != nil {
		s.logger.Warn("failed to send completion email",
			zap.String("code", code),
			zap.String("module", moduleID),
			zap.Error(err),
		)
	}
}

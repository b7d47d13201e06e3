package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jandoedu/internal/metrics"
	"jandoedu/internal/models"
	"jandoedu/internal/repository"
	"jandoedu/internal/service"

	"go.uber.org/zap"
)

// GatewayHandler serves the single gateway endpoint. All operations are
// dispatched off the query string for GET and off the JSON body for POST and
// PUT, which is the protocol the game pages already speak.
type GatewayHandler struct {
	studentRepo     *repository.StudentRepository
	moduleRepo      *repository.ModuleRepository
	resultRepo      *repository.ResultRepository
	progressService *service.ProgressService
	resultService   *service.ResultService
	logger          *zap.Logger
	now             func() time.Time
}

// NewGatewayHandler creates a new gateway handler
func NewGatewayHandler(
	studentRepo *repository.StudentRepository,
	moduleRepo *repository.ModuleRepository,
	resultRepo *repository.ResultRepository,
	progressService *service.ProgressService,
	resultService *service.ResultService,
	logger *zap.Logger,
) *GatewayHandler {
	return &GatewayHandler{
		studentRepo:     studentRepo,
		moduleRepo:      moduleRepo,
		resultRepo:      resultRepo,
		progressService: progressService,
		resultService:   resultService,
		logger:          logger,
		now:             time.Now,
	}
}

// HandleGet dispatches a GET request. First matching parameter wins; the
// order mirrors what the deployed pages rely on.
func (h *GatewayHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch {
	case q.Get("games") == "list":
		h.handleListGames(w)
	case q.Get("sheet") != "":
		h.handleSheetRead(w, q.Get("sheet"))
	case q.Get("all") == "true":
		h.handleAllResults(w)
	case q.Get("modules") != "" && q.Get("year") != "":
		h.handleListModules(w, q.Get("year"))
	case q.Get("progress") != "" && q.Get("code") != "":
		h.handleGetProgress(w, q.Get("code"))
	case q.Get("code") != "" && q.Get("action") == "":
		h.handleLogin(w, q.Get("code"))
	case q.Get("rewards") != "":
		h.handleGetRewards(w, q.Get("rewards"))
	case q.Get("action") == "saveQuiz":
		h.handleSaveQuiz(w, q)
	case q.Get("test") == "connection":
		h.handleTestConnection(w)
	default:
		h.writeJSON(w, []string{})
	}
}

func (h *GatewayHandler) handleLogin(w http.ResponseWriter, code string) {
	metrics.RequestsTotal.WithLabelValues("login").Inc()

	student, err := h.studentRepo.GetByCode(strings.TrimSpace(code))
	if err != nil {
		h.serverError(w, "login", err)
		return
	}
	if student == nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		h.writeText(w, models.ResponseInvalid)
		return
	}

	stamp := service.LoginStamp(h.now())
	if err := h.studentRepo.UpdateLastLogin(student.Code, stamp); err != nil {
		h.serverError(w, "login", err)
		return
	}
	student.LastLogin = stamp

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.writeJSON(w, student)
}

func (h *GatewayHandler) handleGetRewards(w http.ResponseWriter, code string) {
	metrics.RequestsTotal.WithLabelValues("rewards").Inc()

	student, err := h.studentRepo.GetByCode(strings.TrimSpace(code))
	if err != nil {
		h.serverError(w, "rewards", err)
		return
	}

	resp := struct {
		Name    string `json:"name"`
		Code    string `json:"code"`
		Rewards string `json:"rewards"`
	}{}
	if student != nil {
		resp.Name = student.Name
		resp.Code = student.Code
		resp.Rewards = student.Rewards
	}
	h.writeJSON(w, resp)
}

func (h *GatewayHandler) handleListGames(w http.ResponseWriter) {
	metrics.RequestsTotal.WithLabelValues("list_games").Inc()

	sheets, err := h.resultRepo.ListGameSheets()
	if err != nil {
		h.serverError(w, "list_games", err)
		return
	}
	if sheets == nil {
		sheets = []string{}
	}
	h.writeJSON(w, sheets)
}

func (h *GatewayHandler) handleSheetRead(w http.ResponseWriter, sheet string) {
	metrics.RequestsTotal.WithLabelValues("read_sheet").Inc()

	switch {
	case models.IsQuizSheet(sheet):
		rows, err := h.resultRepo.QuizRows()
		if err != nil {
			h.serverError(w, "read_sheet", err)
			return
		}
		h.writeRows(w, rows)
	case sheet == models.SheetQuizResponses:
		rows, err := h.resultRepo.QuizResponseRows()
		if err != nil {
			h.serverError(w, "read_sheet", err)
			return
		}
		h.writeRows(w, rows)
	case strings.HasSuffix(sheet, models.ResponsesSheetSuffix):
		rows, err := h.resultRepo.ResponseRows(sheet)
		if err != nil {
			h.serverError(w, "read_sheet", err)
			return
		}
		h.writeRows(w, rows)
	case models.IsReservedSheet(sheet):
		// Core tables are not readable through the sheet interface
		h.writeJSON(w, []string{})
	default:
		rows, err := h.resultRepo.SummaryRows(sheet)
		if err != nil {
			h.serverError(w, "read_sheet", err)
			return
		}
		h.writeRows(w, rows)
	}
}

func (h *GatewayHandler) handleAllResults(w http.ResponseWriter) {
	metrics.RequestsTotal.WithLabelValues("all_results").Inc()

	rows, err := h.resultRepo.AllSummaryRows()
	if err != nil {
		h.serverError(w, "all_results", err)
		return
	}
	h.writeRows(w, rows)
}

func (h *GatewayHandler) handleListModules(w http.ResponseWriter, year string) {
	metrics.RequestsTotal.WithLabelValues("list_modules").Inc()

	modules, err := h.moduleRepo.ListActiveByYear(year)
	if err != nil {
		h.serverError(w, "list_modules", err)
		return
	}
	h.writeRows(w, modules)
}

func (h *GatewayHandler) handleGetProgress(w http.ResponseWriter, code string) {
	metrics.RequestsTotal.WithLabelValues("get_progress").Inc()

	records, err := h.progressService.ListByStudent(strings.TrimSpace(code))
	if err != nil {
		h.serverError(w, "get_progress", err)
		return
	}
	h.writeRows(w, records)
}

func (h *GatewayHandler) handleSaveQuiz(w http.ResponseWriter, q url.Values) {
	metrics.RequestsTotal.WithLabelValues("save_quiz").Inc()

	sub := service.QuizSubmission{
		Code:     strings.TrimSpace(q.Get("code")),
		ModuleID: q.Get("moduleId"),
	}
	sub.Score, _ = strconv.Atoi(q.Get("score"))
	sub.TotalQuestions, _ = strconv.Atoi(q.Get("totalQuestions"))

	if raw := q.Get("responses"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Responses); err != nil {
			h.logger.Warn("unparseable quiz responses", zap.Error(err))
		}
	}

	outcome, err := h.resultService.RecordQuiz(sub)
	if errors.Is(err, service.ErrMissingStudentCode) || errors.Is(err, service.ErrMissingModuleID) {
		h.writeJSON(w, service.QuizOutcome{Success: false, Message: "Missing student code or module ID"})
		return
	}
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("save_quiz").Inc()
		h.logger.Error("failed to save quiz", zap.Error(err))
		h.writeJSON(w, service.QuizOutcome{Success: false, Message: "Error saving quiz results"})
		return
	}
	h.writeJSON(w, outcome)
}

func (h *GatewayHandler) handleTestConnection(w http.ResponseWriter) {
	metrics.RequestsTotal.WithLabelValues("test_connection").Inc()

	gameSheets, err := h.resultRepo.ListGameSheets()
	if err != nil {
		h.serverError(w, "test_connection", err)
		return
	}
	available := append([]string{
		models.SheetStudents, models.SheetModules,
		models.SheetProgress, models.SheetStepDetails,
	}, gameSheets...)

	h.writeJSON(w, struct {
		Success         bool     `json:"success"`
		Message         string   `json:"message"`
		AvailableSheets []string `json:"availableSheets"`
		Timestamp       string   `json:"timestamp"`
	}{
		Success:         true,
		Message:         "Connection working",
		AvailableSheets: available,
		Timestamp:       h.now().Format(time.RFC3339),
	})
}

// HandlePost accepts a progress update or a game result. Failures come back
// as 200-status text payloads; the game pages treat submissions as
// fire-and-forget and only ever string-compare the body.
func (h *GatewayHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var probe struct {
		Action string `json:"action"`
	}
	body := json.NewDecoder(r.Body)
	raw := json.RawMessage{}
	if err := body.Decode(&raw); err != nil {
		h.writeText(w, "Error: invalid request body")
		return
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		h.writeText(w, "Error: invalid request body")
		return
	}

	if probe.Action == "updateProgress" {
		metrics.RequestsTotal.WithLabelValues("update_progress").Inc()

		var upd service.ProgressUpdate
		if err := json.Unmarshal(raw, &upd); err != nil {
			h.writeText(w, fmt.Sprintf("Error updating progress: %v", err))
			return
		}
		if _, err := h.progressService.RecordStep(r.Context(), upd); err != nil {
			metrics.ErrorsTotal.WithLabelValues("update_progress").Inc()
			h.logger.Error("failed to update progress", zap.Error(err))
			h.writeText(w, fmt.Sprintf("Error updating progress: %v", err))
			return
		}
		h.writeText(w, models.ResponseProgressUpdated)
		return
	}

	metrics.RequestsTotal.WithLabelValues("submit_result").Inc()

	var sub service.GameSubmission
	if err := json.Unmarshal(raw, &sub); err != nil {
		h.writeText(w, fmt.Sprintf("Error: %v", err))
		return
	}
	if err := h.resultService.RecordGame(sub); err != nil {
		metrics.ErrorsTotal.WithLabelValues("submit_result").Inc()
		h.logger.Error("failed to record result", zap.Error(err))
		h.writeText(w, fmt.Sprintf("Error: %v", err))
		return
	}
	h.writeText(w, models.ResponseSuccess)
}

// HandlePut patches one score cell, addressed by sheet name and 1-based row
func (h *GatewayHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("update_score").Inc()

	var req struct {
		Sheet    string      `json:"sheet"`
		Row      int         `json:"row"`
		NewScore interface{} `json:"newScore"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeText(w, "Error: invalid request body")
		return
	}

	err := h.resultService.PatchScore(req.Sheet, req.Row, scoreString(req.NewScore))
	switch {
	case err == nil:
		h.writeText(w, models.ResponseUpdated)
	case errors.Is(err, repository.ErrSheetNotFound):
		h.writeText(w, "Error: Sheet not found")
	case errors.Is(err, repository.ErrNoScoreColumn):
		h.writeText(w, "Error: No 'Score' column found")
	case errors.Is(err, repository.ErrRowNotFound):
		h.writeText(w, "Error: Row not found")
	default:
		metrics.ErrorsTotal.WithLabelValues("update_score").Inc()
		h.logger.Error("failed to update score", zap.Error(err))
		h.writeText(w, fmt.Sprintf("Error: %v", err))
	}
}

// writeRows writes a JSON array, turning a nil slice into [] so the pages
// always get an array back.
func (h *GatewayHandler) writeRows(w http.ResponseWriter, rows interface{}) {
	data, err := json.Marshal(rows)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if string(data) == "null" {
		data = []byte("[]")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *GatewayHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *GatewayHandler) writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}

func (h *GatewayHandler) serverError(w http.ResponseWriter, operation string, err error) {
	metrics.ErrorsTotal.WithLabelValues(operation).Inc()
	h.logger.Error("gateway request failed", zap.String("operation", operation), zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func scoreString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

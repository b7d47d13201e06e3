package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"jandoedu/internal/database"
	"jandoedu/internal/models"
	"jandoedu/internal/repository"
	"jandoedu/internal/service"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *database.DB) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := zap.NewNop()
	studentRepo := repository.NewStudentRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	resultRepo := repository.NewResultRepository(db)
	progressService := service.NewProgressService(progressRepo, studentRepo, nil, "", logger)
	resultService := service.NewResultService(db, logger)
	gateway := NewGatewayHandler(studentRepo, moduleRepo, resultRepo, progressService, resultService, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /exec", gateway.HandleGet)
	mux.HandleFunc("POST /exec", gateway.HandlePost)
	mux.HandleFunc("PUT /exec", gateway.HandlePut)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, db
}

func getBody(t *testing.T, srv *httptest.Server, query string) string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/exec?" + query)
	if err != nil {
		t.Fatalf("GET %s: %v", query, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", query, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func sendBody(t *testing.T, srv *httptest.Server, method, body string) string {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+"/exec", strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s /exec: %v", method, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestLoginEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	if err := repository.NewStudentRepository(db).Create(&models.Student{
		Name: "Ava Walker", Code: "ocean-panda-41", YearLevel: "6", Rewards: "🐶",
	}); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	t.Run("unknown code answers Invalid", func(t *testing.T) {
		body := getBody(t, srv, "code=nope")
		if strings.TrimSpace(body) != models.ResponseInvalid {
			t.Errorf("body = %q, want %q", body, models.ResponseInvalid)
		}
	})

	t.Run("known code answers the identity record", func(t *testing.T) {
		body := getBody(t, srv, "code=ocean-panda-41")

		var student models.Student
		if err := json.Unmarshal([]byte(body), &student); err != nil {
			t.Fatalf("response is not JSON: %v (%q)", err, body)
		}
		if student.Name != "Ava Walker" {
			t.Errorf("name = %q, want Ava Walker", student.Name)
		}
		if student.LastLogin == "" {
			t.Error("expected lastLogin to be stamped")
		}
	})

	t.Run("codes match case-insensitively", func(t *testing.T) {
		body := getBody(t, srv, "code=OCEAN-PANDA-41")
		if strings.TrimSpace(body) == models.ResponseInvalid {
			t.Error("case variant should resolve the same student")
		}
	})
}

func TestRewardsEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	if err := repository.NewStudentRepository(db).Create(&models.Student{
		Name: "Ava Walker", Code: "ocean-panda-41", Rewards: "🐶,🏆",
	}); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	body := getBody(t, srv, "rewards=ocean-panda-41")
	var resp struct {
		Name    string `json:"name"`
		Rewards string `json:"rewards"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Rewards != "🐶,🏆" {
		t.Errorf("rewards = %q, want 🐶,🏆", resp.Rewards)
	}

	body = getBody(t, srv, "rewards=unknown")
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("parse unknown response: %v", err)
	}
	if resp.Name != "" || resp.Rewards != "" {
		t.Errorf("unknown code should answer empty fields, got %+v", resp)
	}
}

func TestModulesEndpoint(t *testing.T) {
	srv, db := newTestServer(t)
	moduleRepo := repository.NewModuleRepository(db)
	seed := []models.LearningModule{
		{ModuleID: "MATH-Y6-01", ModuleName: "Fractions", YearLevel: "6", TotalSteps: 4, Status: models.ModuleStatusActive},
		{ModuleID: "MATH-Y5-01", ModuleName: "Times Tables", YearLevel: "5", TotalSteps: 4, Status: models.ModuleStatusActive},
		{ModuleID: "MATH-Y6-02", ModuleName: "Old Unit", YearLevel: "6", TotalSteps: 4, Status: "Archived"},
	}
	for _, m := range seed {
		m := m
		if err := moduleRepo.Create(&m); err != nil {
			t.Fatalf("seed module: %v", err)
		}
	}

	body := getBody(t, srv, "modules=true&year=6")
	var modules []models.LearningModule
	if err := json.Unmarshal([]byte(body), &modules); err != nil {
		t.Fatalf("parse modules: %v", err)
	}
	if len(modules) != 1 {
		t.Fatalf("modules = %d, want 1 (active year-6 only)", len(modules))
	}
	if modules[0].ModuleID != "MATH-Y6-01" {
		t.Errorf("moduleId = %q, want MATH-Y6-01", modules[0].ModuleID)
	}
}

func TestProgressRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	body := sendBody(t, srv, http.MethodPost, `{
		"action": "updateProgress",
		"studentCode": "ocean-panda-41",
		"moduleId": "MATH-Y6-01",
		"stepNumber": 1,
		"totalSteps": 4
	}`)
	if strings.TrimSpace(body) != models.ResponseProgressUpdated {
		t.Fatalf("body = %q, want %q", body, models.ResponseProgressUpdated)
	}

	body = getBody(t, srv, "progress=true&code=ocean-panda-41")
	var records []models.ModuleProgress
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		t.Fatalf("parse progress: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].StepsCompleted != "1" || records[0].ProgressPercentage != 25 {
		t.Errorf("record = %+v, want steps 1 at 25%%", records[0])
	}

	t.Run("missing fields answer a textual error", func(t *testing.T) {
		body := sendBody(t, srv, http.MethodPost, `{"action":"updateProgress","moduleId":"M"}`)
		if !strings.HasPrefix(body, "Error updating progress:") {
			t.Errorf("body = %q, want an Error updating progress prefix", body)
		}
	})
}

func TestGameResultRoundTrip(t *testing.T) {
	srv, db := newTestServer(t)
	if err := repository.NewStudentRepository(db).Create(&models.Student{
		Name: "Ava Walker", Code: "ocean-panda-41",
	}); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	body := sendBody(t, srv, http.MethodPost, `{
		"code": "ocean-panda-41",
		"game": "Fraction Frenzy",
		"sheet": "Fraction_Frenzy",
		"score": 4,
		"totalQuestions": 5,
		"responses": [{"question":"Q1","studentAnswer":"a","correctAnswer":"a"}]
	}`)
	if strings.TrimSpace(body) != models.ResponseSuccess {
		t.Fatalf("body = %q, want %q", body, models.ResponseSuccess)
	}

	t.Run("sheet read returns the summary shape", func(t *testing.T) {
		body := getBody(t, srv, "sheet=Fraction_Frenzy")
		var rows []models.GameResult
		if err := json.Unmarshal([]byte(body), &rows); err != nil {
			t.Fatalf("parse rows: %v", err)
		}
		if len(rows) != 1 || rows[0].Score != "4/5" {
			t.Errorf("rows = %+v, want one row scoring 4/5", rows)
		}
	})

	t.Run("games list includes both sheets", func(t *testing.T) {
		body := getBody(t, srv, "games=list")
		var sheets []string
		if err := json.Unmarshal([]byte(body), &sheets); err != nil {
			t.Fatalf("parse sheets: %v", err)
		}
		want := map[string]bool{"Fraction_Frenzy": true, "Fraction_Frenzy.Responses": true}
		for _, s := range sheets {
			delete(want, s)
		}
		if len(want) != 0 {
			t.Errorf("missing sheets %v in %v", want, sheets)
		}
	})

	t.Run("all aggregates summary rows", func(t *testing.T) {
		body := getBody(t, srv, "all=true")
		var rows []models.GameResult
		if err := json.Unmarshal([]byte(body), &rows); err != nil {
			t.Fatalf("parse rows: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("rows = %d, want 1", len(rows))
		}
	})
}

func TestSaveQuizEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	responses := url.QueryEscape(`[{"question":"Q1","studentAnswer":"a","correctAnswer":"a"}]`)
	body := getBody(t, srv, "action=saveQuiz&code=tiger-comet-07&moduleId=MATH-Y6-01&score=4&totalQuestions=5&responses="+responses)

	var ack struct {
		Success    bool `json:"success"`
		Percentage int  `json:"percentage"`
	}
	if err := json.Unmarshal([]byte(body), &ack); err != nil {
		t.Fatalf("parse ack: %v", err)
	}
	if !ack.Success || ack.Percentage != 80 {
		t.Errorf("ack = %+v, want success at 80%%", ack)
	}

	t.Run("missing module answers success false", func(t *testing.T) {
		body := getBody(t, srv, "action=saveQuiz&code=tiger-comet-07")
		var ack struct {
			Success bool `json:"success"`
		}
		if err := json.Unmarshal([]byte(body), &ack); err != nil {
			t.Fatalf("parse ack: %v", err)
		}
		if ack.Success {
			t.Error("expected success=false")
		}
	})
}

func TestPutScoreEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	sendBody(t, srv, http.MethodPost, `{"code":"x","game":"G","sheet":"Games","score":2}`)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "existing row", body: `{"sheet":"Games","row":2,"newScore":"5/5"}`, want: models.ResponseUpdated},
		{name: "unknown sheet", body: `{"sheet":"Nope","row":2,"newScore":"5/5"}`, want: "Error: Sheet not found"},
		{name: "numeric score accepted", body: `{"sheet":"Games","row":2,"newScore":7}`, want: models.ResponseUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.TrimSpace(sendBody(t, srv, http.MethodPut, tt.body))
			if got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnknownQueryAnswersEmptyArray(t *testing.T) {
	srv, _ := newTestServer(t)
	body := strings.TrimSpace(getBody(t, srv, "bogus=1"))
	if body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestConnectionCheck(t *testing.T) {
	srv, _ := newTestServer(t)
	body := getBody(t, srv, "test=connection")

	var resp struct {
		Success         bool     `json:"success"`
		AvailableSheets []string `json:"availableSheets"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if len(resp.AvailableSheets) < 4 {
		t.Errorf("availableSheets = %v, want at least the four core sheets", resp.AvailableSheets)
	}
}

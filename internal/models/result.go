package models

// Sheet names reserved for the core tables; everything else is a game sheet.
const (
	SheetStudents        = "Students"
	SheetModules         = "Learning_Modules"
	SheetProgress        = "Student_Progress"
	SheetStepDetails     = "Step_Details"
	SheetQuizResults     = "Quiz-Results"
	SheetQuizResultsAlt  = "Quiz_Results"
	SheetQuizResponses   = "Quiz_Results.Responses"
	ResponsesSheetSuffix = ".Responses"
	DefaultResultsSheet  = "Results"
)

// GameResult is one summary row of a game sheet. JSON keys match the
// spreadsheet header row, which is what the teacher dashboard consumes.
type GameResult struct {
	ID        int64  `json:"-"`
	SheetName string `json:"-"`
	RowNum    int    `json:"-"`
	Game      string `json:"Game"`
	Name      string `json:"Name"`
	Code      string `json:"Code"`
	Score     string `json:"Score"`
	Date      string `json:"Date"`
	Time      string `json:"Time"`
}

// GameResponse is one per-question row of a "<sheet>.Responses" detail sheet
type GameResponse struct {
	ID            int64  `json:"-"`
	SheetName     string `json:"-"`
	RowNum        int    `json:"-"`
	Game          string `json:"Game"`
	Name          string `json:"Name"`
	Code          string `json:"Code"`
	Question      string `json:"Question"`
	CorrectAnswer string `json:"CorrectAnswer"`
	StudentAnswer string `json:"StudentAnswer"`
	Result        string `json:"Result"`
	Date          string `json:"Date"`
	Time          string `json:"Time"`
}

// QuizResult is one summary row of the quiz results sheet
type QuizResult struct {
	ID             int64  `json:"-"`
	RowNum         int    `json:"-"`
	ModuleID       string `json:"Module_ID"`
	StudentName    string `json:"Student_Name"`
	StudentCode    string `json:"Student_Code"`
	Score          int    `json:"Score"`
	TotalQuestions int    `json:"Total_Questions"`
	Percentage     string `json:"Percentage"`
	Date           string `json:"Date"`
	Time           string `json:"Time"`
}

// QuizResponse is one per-question row of the quiz responses sheet
type QuizResponse struct {
	ID             int64  `json:"-"`
	RowNum         int    `json:"-"`
	ModuleID       string `json:"Module_ID"`
	StudentName    string `json:"Student_Name"`
	StudentCode    string `json:"Student_Code"`
	QuestionNumber int    `json:"Question_Number"`
	Question       string `json:"Question"`
	CorrectAnswer  string `json:"Correct_Answer"`
	StudentAnswer  string `json:"Student_Answer"`
	IsCorrect      string `json:"Is_Correct"`
	Date           string `json:"Date"`
	Time           string `json:"Time"`
}

// IsReservedSheet reports whether the name is one of the core tables that
// must never appear in game-sheet listings.
func IsReservedSheet(name string) bool {
	switch name {
	case SheetStudents, SheetModules, SheetProgress, SheetStepDetails:
		return true
	}
	return false
}

// IsQuizSheet reports whether the name addresses the quiz summary sheet
func IsQuizSheet(name string) bool {
	return name == SheetQuizResults || name == SheetQuizResultsAlt
}

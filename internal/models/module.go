package models

// ModuleStatusActive is the status flag required for a module to be listed
const ModuleStatusActive = "Active"

// LearningModule mirrors one row of the Learning_Modules sheet
type LearningModule struct {
	ID          int64  `json:"-"`
	ModuleID    string `json:"moduleId"`
	ModuleName  string `json:"moduleName"`
	Subject     string `json:"subject"`
	YearLevel   string `json:"yearLevel"`
	Description string `json:"description"`
	TotalSteps  int    `json:"totalSteps"`
	VideoID     string `json:"videoId"`
	GameLink    string `json:"gameLink"`
	Status      string `json:"status"`
}

// IsActive reports whether the module should appear in year-level listings
func (m *LearningModule) IsActive() bool {
	return m.Status == ModuleStatusActive
}

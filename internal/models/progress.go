package models

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ModuleProgress mirrors one row of the Student_Progress sheet: the per
// (student, module) lesson-step completion record. StepsCompleted is a
// sorted comma list of step numbers; the derived fields are recomputed on
// every update and never move backwards.
type ModuleProgress struct {
	ID                 int64  `json:"-"`
	StudentCode        string `json:"studentCode"`
	ModuleID           string `json:"moduleId"`
	StepsCompleted     string `json:"stepsCompleted"`
	TotalSteps         int    `json:"totalSteps"`
	ProgressPercentage int    `json:"progressPercentage"`
	CurrentStep        int    `json:"currentStep"`
	StartedDate        string `json:"startedDate"`
	LastUpdated        string `json:"lastUpdated"`
	CompletedDate      string `json:"completedDate"`
	TimeSpentMinutes   int    `json:"timeSpentMinutes"`
}

// StepDetail mirrors one row of the Step_Details sheet, a granular log of
// individual step completions, deduplicated per (student, module, step).
type StepDetail struct {
	ID          int64
	StudentCode string
	ModuleID    string
	StepNumber  int
	StepName    string
	Completed   bool
	CompletedAt string
	Attempts    int
}

// Steps parses the completed-step list into sorted ints.
// Malformed entries are skipped.
func (p *ModuleProgress) Steps() []int {
	return ParseSteps(p.StepsCompleted)
}

// IsComplete reports whether every step has been completed
func (p *ModuleProgress) IsComplete() bool {
	return p.ProgressPercentage == 100
}

// ParseSteps splits a comma list of step numbers into sorted ints
func ParseSteps(s string) []int {
	if s == "" {
		return nil
	}
	var steps []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		steps = append(steps, n)
	}
	sort.Ints(steps)
	return steps
}

// FormatSteps joins step numbers into the stored comma list
func FormatSteps(steps []int) string {
	parts := make([]string, len(steps))
	for i, n := range steps {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ContainsStep reports whether the step number is in the list
func ContainsStep(steps []int, step int) bool {
	for _, s := range steps {
		if s == step {
			return true
		}
	}
	return false
}

// StepPercentage computes the rounded completion percentage
func StepPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// NextIncompleteStep returns the smallest step in [1, total] not yet
// completed, or total when everything is done.
func NextIncompleteStep(steps []int, total int) int {
	for candidate := 1; candidate <= total; candidate++ {
		if !ContainsStep(steps, candidate) {
			return candidate
		}
	}
	return total
}

package models

import "strings"

// Student mirrors one row of the Students sheet. The code is the opaque,
// case-insensitive lookup key; rewards is a comma-delimited token set.
type Student struct {
	ID         int64  `json:"-"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Rewards    string `json:"rewards"`
	YearLevel  string `json:"yearLevel"`
	LastLogin  string `json:"lastLogin"`
	TotalGames int    `json:"totalGames"`
	TotalScore int    `json:"totalScore"`
}

// RewardList splits the delimited reward set into tokens
func (s *Student) RewardList() []string {
	if s.Rewards == "" {
		return nil
	}
	return strings.Split(s.Rewards, ",")
}

// HasReward reports whether the token is already in the reward set
func (s *Student) HasReward(token string) bool {
	for _, r := range s.RewardList() {
		if r == token {
			return true
		}
	}
	return false
}

// AddReward appends a token to the reward set if absent.
// Returns true when the set changed.
func (s *Student) AddReward(token string) bool {
	if token == "" || s.HasReward(token) {
		return false
	}
	if s.Rewards == "" {
		s.Rewards = token
	} else {
		s.Rewards = s.Rewards + "," + token
	}
	return true
}

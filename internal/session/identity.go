package session

import "strings"

// Identity is the signed-in student record held by the session slot.
// JSON keys match what the gateway returns, plus the local loginTime stamp.
type Identity struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Rewards    string `json:"rewards"`
	YearLevel  string `json:"yearLevel"`
	LastLogin  string `json:"lastLogin"`
	TotalGames int    `json:"totalGames"`
	TotalScore int    `json:"totalScore"`
	LoginTime  string `json:"loginTime"`
}

// RewardList splits the comma-separated rewards string, dropping empties
func (i *Identity) RewardList() []string {
	if i.Rewards == "" {
		return nil
	}
	parts := strings.Split(i.Rewards, ",")
	rewards := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			rewards = append(rewards, p)
		}
	}
	return rewards
}

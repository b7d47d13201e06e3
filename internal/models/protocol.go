package models

// Wire sentinels. The game pages compare these exact strings, so they are
// part of the protocol and must not change.
const (
	ResponseInvalid         = "Invalid"
	ResponseSuccess         = "Success"
	ResponseProgressUpdated = "Progress Updated"
	ResponseUpdated         = "Updated"
)

package service

import "time"

// Timestamp layouts carried over from the spreadsheet formats. Progress and
// login stamps include the time of day; result rows split date and time into
// separate columns.
const (
	dateLayout          = "02/01/2006"
	timeLayout          = "15:04:05"
	shortTimeLayout     = "15:04"
	loginStampLayout    = "02/01/2006 15:04"
	progressStampLayout = "02/01/2006 15:04:05"
)

// LoginStamp formats a last-login timestamp
func LoginStamp(t time.Time) string {
	return t.Format(loginStampLayout)
}

// ProgressStamp formats a progress-record timestamp
func ProgressStamp(t time.Time) string {
	return t.Format(progressStampLayout)
}

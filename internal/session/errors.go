package session

import "errors"

var (
	ErrEmptyCode   = errors.New("empty student code")
	ErrInvalidCode = errors.New("invalid student code")
	ErrTimeout     = errors.New("request timed out")
	ErrNetwork     = errors.New("network failure")
	ErrServer      = errors.New("server failure")
)

// UserMessage maps a login error to the message shown to the student
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCode):
		return "Please enter your student code"
	case errors.Is(err, ErrInvalidCode):
		return "Invalid student code. Please try again."
	case errors.Is(err, ErrTimeout):
		return "Request timed out. Please check your internet connection and try again."
	case errors.Is(err, ErrNetwork):
		return "Network error. Please check your internet connection and try again."
	case errors.Is(err, ErrServer):
		return "Server error. Please try again in a moment."
	default:
		return "Connection error. Please try again."
	}
}
